package dashboard

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"solwatch/config"
	"solwatch/internal/aggregator"
	"solwatch/internal/notify"
	"solwatch/internal/rugcheck"
	"solwatch/internal/view"
	"solwatch/logger"
)

//go:embed templates/*.tmpl assets/*
var embeddedFS embed.FS

// Server hosts the Gin-powered monitoring dashboard. It renders the tabbed
// view server-side and pushes refresh events over a websocket so open pages
// reload without polling aggressively.
type Server struct {
	cfg               config.DashboardConfig
	log               *logger.Log
	agg               *aggregator.Aggregator
	views             *view.Machine
	checks            *rugcheck.Workflow
	notices           *notify.Center
	cycles            *cycleStore
	status            *StatusPoller
	ws                *broadcaster
	resourceSampler   *resourceSampler
	httpServer        *http.Server
	refreshIntervalMs int
}

// NewServer constructs a dashboard server when the dashboard feature is
// enabled. When the dashboard is disabled the returned server will be nil.
func NewServer(
	cfg config.DashboardConfig,
	agg *aggregator.Aggregator,
	checks *rugcheck.Workflow,
	notices *notify.Center,
	status *StatusPoller,
	log *logger.Log,
) (*Server, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	cfg.Address = normalizeAddress(cfg.Address)

	if cfg.RefreshInterval <= 0 {
		cfg.RefreshInterval = 5 * time.Second
	}
	if cfg.CycleHistory <= 0 {
		cfg.CycleHistory = 200
	}

	server := &Server{
		cfg:               cfg,
		log:               log,
		agg:               agg,
		views:             view.NewMachine(),
		checks:            checks,
		notices:           notices,
		cycles:            newCycleStore(cfg.CycleHistory),
		status:            status,
		ws:                newBroadcaster(log),
		resourceSampler:   newResourceSampler(cfg.CycleHistory, cfg.RefreshInterval, log),
		refreshIntervalMs: int(cfg.RefreshInterval / time.Millisecond),
	}

	if server.refreshIntervalMs <= 0 {
		server.refreshIntervalMs = int((5 * time.Second) / time.Millisecond)
	}

	// Every completed cycle lands in the history and fans out to open pages.
	agg.Subscribe(server.cycles.handle)
	agg.Subscribe(func(c aggregator.Cycle) { server.ws.broadcast("cycle", c) })

	return server, nil
}

// Run starts the dashboard HTTP server and blocks until the provided context
// is cancelled or the underlying HTTP server exits with an error.
func (s *Server) Run(ctx context.Context, appName string) error {
	if s == nil {
		return nil
	}

	defer s.cleanup()

	router, err := s.buildRouter(appName)
	if err != nil {
		return err
	}

	if s.resourceSampler != nil {
		s.resourceSampler.start(ctx)
	}
	if s.status != nil {
		go s.status.run(ctx)
	}

	s.httpServer = &http.Server{
		Addr:    s.cfg.Address,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		<-errCh
		return nil
	case err := <-errCh:
		if err == nil {
			return nil
		}
		return err
	}
}

func (s *Server) cleanup() {
	if s.ws != nil {
		s.ws.closeAll()
	}
	if s.resourceSampler != nil {
		s.resourceSampler.stop()
	}
}

// Address reports the network address the dashboard server listens on.
func (s *Server) Address() string {
	if s == nil {
		return ""
	}
	return s.cfg.Address
}

func (s *Server) buildRouter(appName string) (*gin.Engine, error) {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	// Allow running behind load balancers and accessing the dashboard from
	// public networks by trusting all proxies by default. Users can
	// override Gin's trusted proxy list via the GIN_TRUSTED_PROXIES
	// environment variable if needed.
	if err := router.SetTrustedProxies(nil); err != nil {
		return nil, err
	}

	tmpl := template.Must(template.New("dashboard").Funcs(templateFuncs()).ParseFS(embeddedFS, "templates/index.tmpl"))
	router.SetHTMLTemplate(tmpl)

	if assetsFS, err := fsSub("assets"); err == nil {
		router.StaticFS("/assets", http.FS(assetsFS))
	}

	router.GET("/", s.handleIndex(appName))
	router.POST("/tabs/:tab", s.handleSelectTab)
	router.POST("/inspect", s.handleInspect)
	router.POST("/rugcheck", s.handleRugCheck)
	router.POST("/refresh", s.handleRefresh)

	router.GET("/api/snapshot", s.handleSnapshotJSON)
	router.GET("/api/notices", s.handleNoticesJSON)
	router.GET("/api/cycles", s.handleCyclesJSON)
	router.GET("/api/resources", s.handleResourcesJSON)

	router.GET("/ws", func(c *gin.Context) {
		s.ws.handle(c.Writer, c.Request)
	})

	return router, nil
}

func (s *Server) handleIndex(appName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		state := s.views.State()
		snap := s.agg.Snapshot()

		data := gin.H{
			"AppName":           appName,
			"RefreshIntervalMs": s.refreshIntervalMs,
			"Loading":           s.agg.Loading(),
			"ActiveTab":         state.ActiveTab,
			"PrefillAddress":    state.PrefillAddress,
			"Tabs":              view.Tabs,
			"Snapshot":          snap,
			"Notices":           s.notices.Snapshot(),
			"CheckInFlight":     s.checks.InFlight(),
			"RugCheck":          s.checks.Result(),
		}

		if cycle, ok := s.cycles.latest(); ok {
			data["LastCycle"] = cycle
		}
		if s.status != nil {
			if status, ok := s.status.current(); ok {
				data["SystemStatus"] = status
			}
		}

		c.HTML(http.StatusOK, "index.tmpl", data)
	}
}

func (s *Server) handleSelectTab(c *gin.Context) {
	tab, err := view.ParseTab(c.Param("tab"))
	if err != nil {
		c.String(http.StatusNotFound, "unknown tab")
		return
	}
	s.views.Select(tab)
	c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) handleInspect(c *gin.Context) {
	address := strings.TrimSpace(c.PostForm("address"))
	s.views.InspectToken(address)
	c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) handleRugCheck(c *gin.Context) {
	address := strings.TrimSpace(c.PostForm("address"))
	s.views.InspectToken(address)

	result, err := s.checks.Check(c.Request.Context(), address)
	switch {
	case errors.Is(err, rugcheck.ErrEmptyAddress):
		s.notices.Error("Enter a token address to check")
	case errors.Is(err, rugcheck.ErrCheckInFlight):
		s.notices.Error("A rug check is already running")
	case err == nil:
		s.ws.broadcast("rugcheck", result)
	}

	c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) handleRefresh(c *gin.Context) {
	if err := s.agg.Refresh(c.Request.Context()); err != nil {
		if errors.Is(err, aggregator.ErrRefreshLimited) {
			s.notices.Error("Refresh rate limit reached, try again shortly")
			c.Redirect(http.StatusSeeOther, "/")
			return
		}
		c.String(http.StatusInternalServerError, "refresh failed")
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) handleSnapshotJSON(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"loading":  s.agg.Loading(),
		"ready":    s.agg.Ready(),
		"snapshot": s.agg.Snapshot(),
	})
}

func (s *Server) handleNoticesJSON(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"notices": s.notices.Snapshot()})
}

func (s *Server) handleCyclesJSON(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"cycles": s.cycles.snapshot()})
}

func (s *Server) handleResourcesJSON(c *gin.Context) {
	snapshots := s.resourceSampler.snapshot()
	payload := make([]gin.H, 0, len(snapshots))
	for _, snap := range snapshots {
		payload = append(payload, gin.H{
			"timestamp":      snap.Timestamp.Format(time.RFC3339Nano),
			"cpu_percent":    snap.CPUPercent,
			"memory_used":    snap.MemoryUsed,
			"memory_total":   snap.MemoryTotal,
			"memory_percent": snap.MemoryPct,
			"disk_used":      snap.DiskUsed,
			"disk_total":     snap.DiskTotal,
			"disk_percent":   snap.DiskPct,
		})
	}
	c.JSON(http.StatusOK, gin.H{"resources": payload})
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"fillPercent": rugcheck.FillPercent,
		"highRisk":    rugcheck.HighRisk,
		"tabLabel":    tabLabel,
		"usd": func(v float64) string {
			return fmt.Sprintf("$%.2f", v)
		},
		"pct": func(v float64) string {
			return fmt.Sprintf("%.1f%%", v)
		},
	}
}

func tabLabel(tab view.Tab) string {
	switch tab {
	case view.TabOverview:
		return "Overview"
	case view.TabTrending:
		return "Trending"
	case view.TabRugcheck:
		return "Rug Check"
	case view.TabWhales:
		return "Whales"
	case view.TabTrades:
		return "Trades"
	case view.TabUsers:
		return "Users"
	case view.TabPayments:
		return "Payments"
	default:
		return string(tab)
	}
}

func fsSub(path string) (fs.FS, error) {
	sub, err := fs.Sub(embeddedFS, path)
	if err != nil {
		return nil, err
	}
	return sub, nil
}

func normalizeAddress(addr string) string {
	addr = strings.TrimSpace(addr)

	if addr == "" {
		return "0.0.0.0:8080"
	}

	if strings.Contains(addr, "://") {
		if parsed, err := url.Parse(addr); err == nil {
			if host := parsed.Host; host != "" {
				addr = host
			} else if parsed.Opaque != "" {
				addr = parsed.Opaque
			}
		}
	}

	if strings.HasPrefix(addr, ":") {
		if len(addr) > 1 && addr[1] >= '0' && addr[1] <= '9' {
			return "0.0.0.0" + addr
		}
	}

	host, port, err := net.SplitHostPort(addr)
	if err == nil {
		if host == "" || host == "*" {
			host = "0.0.0.0"
		}
		if port == "" {
			port = "8080"
		}
		return net.JoinHostPort(host, port)
	}

	if ip := net.ParseIP(addr); ip != nil {
		return net.JoinHostPort(addr, "8080")
	}

	if !strings.Contains(addr, ":") {
		return net.JoinHostPort(addr, "8080")
	}

	return addr
}
