package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"solwatch/config"
	"solwatch/internal/aggregator"
	"solwatch/internal/api"
	"solwatch/internal/dashboard"
	"solwatch/internal/metrics"
	"solwatch/internal/notify"
	"solwatch/internal/rugcheck"
	"solwatch/logger"
)

func main() {
	log := logger.GetLogger()

	// Load environment variables from .env if present
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.WithError(err).Warn("Error loading .env file")
	}

	configPath := flag.String("config", "config/config.yml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(config.ResolveConfigPath(*configPath, "config/config.yml"))
	if err != nil {
		log.WithError(err).Error("Failed to load configuration")
		os.Exit(1)
	}

	if err := log.Configure(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output, cfg.Logging.MaxAge); err != nil {
		log.WithError(err).Error("Failed to configure logger")
		os.Exit(1)
	}

	log.WithFields(logger.Fields{
		"service": cfg.Solwatch.Name,
		"version": cfg.Solwatch.Version,
		"backend": cfg.API.BaseURL,
	}).Info("starting solwatch")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if strings.ToLower(cfg.Logging.Level) == "report" {
		logger.StartReport(ctx, log, 30*time.Second)
	}

	if cfg.Metrics.CloudWatch.Enabled {
		logger.InitCloudWatch(cfg.Metrics.CloudWatch.Region, cfg.Metrics.CloudWatch.Namespace, cfg.Metrics.CloudWatch.Dashboard)
	}
	if cfg.Metrics.Prometheus.Enabled {
		metrics.Init(cfg.Metrics.Prometheus.Address)
	}

	notices := notify.NewCenter(cfg.Dashboard.NoticeHistory)
	client := api.NewClient(cfg.API)

	agg := aggregator.New(cfg.Aggregator, client, notices, log)
	checks := rugcheck.New(client, notices, log)
	status := dashboard.NewStatusPoller(client, cfg.Aggregator.RefreshInterval, log)

	server, err := dashboard.NewServer(cfg.Dashboard, agg, checks, notices, status, log)
	if err != nil {
		log.WithError(err).Error("failed to create dashboard server")
		os.Exit(1)
	}

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := agg.Run(ctx); err != nil && ctx.Err() == nil {
			log.WithError(err).Warn("aggregator stopped unexpectedly")
		}
	}()

	if server != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := server.Run(ctx, cfg.Solwatch.Name); err != nil {
				log.WithError(err).Warn("dashboard server failed")
			}
		}()
		log.WithFields(logger.Fields{"address": server.Address()}).Info("dashboard listening")
	} else {
		log.WithComponent("main").Info("dashboard disabled; running headless")
	}

	log.Info("all components started successfully")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	log.WithFields(logger.Fields{"signal": sig.String()}).Info("shutdown signal received")

	log.Info("starting graceful shutdown")
	cancel()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Info("graceful shutdown completed")
	case <-time.After(30 * time.Second):
		log.Warn("graceful shutdown timeout exceeded")
	}

	log.Info("solwatch stopped")
}
