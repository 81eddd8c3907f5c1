package logger

import (
	"context"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
	gnet "github.com/shirou/gopsutil/v3/net"

	"github.com/aws/aws-sdk-go-v2/aws"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

type feedStat struct {
	fetches int64
	errors  int64
}

var (
	errorsAggregator int64
	errorsRugcheck   int64
	warnsAggregator  int64
	warnsRugcheck    int64
	cyclesOK         int64
	cyclesFailed     int64
	rugchecksOK      int64
	rugchecksFailed  int64
	rugchecksRefused int64
	feeds            sync.Map // map[string]*feedStat
)

func recordWarn(component string) {
	if strings.Contains(component, "aggregator") {
		atomic.AddInt64(&warnsAggregator, 1)
	} else if strings.Contains(component, "rugcheck") {
		atomic.AddInt64(&warnsRugcheck, 1)
	}
}

func recordError(component string) {
	if strings.Contains(component, "aggregator") {
		atomic.AddInt64(&errorsAggregator, 1)
	} else if strings.Contains(component, "rugcheck") {
		atomic.AddInt64(&errorsRugcheck, 1)
	}
}

// IncrementCycleOK records one refresh cycle where all required feeds settled
// successfully.
func IncrementCycleOK() {
	atomic.AddInt64(&cyclesOK, 1)
}

// IncrementCycleFailed records one refresh cycle aborted by a required feed.
func IncrementCycleFailed() {
	atomic.AddInt64(&cyclesFailed, 1)
}

func IncrementRugcheckOK() {
	atomic.AddInt64(&rugchecksOK, 1)
}

func IncrementRugcheckFailed() {
	atomic.AddInt64(&rugchecksFailed, 1)
}

func IncrementRugcheckRefused() {
	atomic.AddInt64(&rugchecksRefused, 1)
}

// RecordFeedFetch tracks one request to a named feed and whether it failed.
func RecordFeedFetch(feed string, failed bool) {
	v, _ := feeds.LoadOrStore(feed, &feedStat{})
	fs := v.(*feedStat)
	atomic.AddInt64(&fs.fetches, 1)
	if failed {
		atomic.AddInt64(&fs.errors, 1)
	}
}

func startReport(ctx context.Context, log *Log, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		for {
			select {
			case <-ctx.Done():
				ticker.Stop()
				return
			case <-ticker.C:
				logReport(ctx, log)
			}
		}
	}()
}

// StartReport begins periodic logging of system and feed statistics.
// It exposes the internal startReport function for use by other packages.
func StartReport(ctx context.Context, log *Log, interval time.Duration) {
	startReport(ctx, log, interval)
}

func logReport(ctx context.Context, log *Log) {
	cpuPercent, _ := cpu.Percent(0, false)
	memStats, _ := mem.VirtualMemory()
	diskStats, _ := disk.Usage("/")
	netStats, _ := gnet.IOCounters(false)
	feedData := map[string]map[string]int64{}
	feeds.Range(func(k, v any) bool {
		name := k.(string)
		fs := v.(*feedStat)
		feedData[name] = map[string]int64{
			"fetches": atomic.LoadInt64(&fs.fetches),
			"errors":  atomic.LoadInt64(&fs.errors),
		}
		return true
	})

	cpuPct := 0.0
	if len(cpuPercent) > 0 {
		cpuPct = cpuPercent[0]
	}

	bytesSent := uint64(0)
	bytesRecv := uint64(0)
	if len(netStats) > 0 {
		bytesSent = netStats[0].BytesSent
		bytesRecv = netStats[0].BytesRecv
	}

	fields := Fields{
		"errors_aggregator": atomic.LoadInt64(&errorsAggregator),
		"errors_rugcheck":   atomic.LoadInt64(&errorsRugcheck),
		"warns_aggregator":  atomic.LoadInt64(&warnsAggregator),
		"warns_rugcheck":    atomic.LoadInt64(&warnsRugcheck),
		"cycles_ok":         atomic.LoadInt64(&cyclesOK),
		"cycles_failed":     atomic.LoadInt64(&cyclesFailed),
		"rugchecks_ok":      atomic.LoadInt64(&rugchecksOK),
		"rugchecks_failed":  atomic.LoadInt64(&rugchecksFailed),
		"rugchecks_refused": atomic.LoadInt64(&rugchecksRefused),
		"goroutines":        runtime.NumGoroutine(),
		"cpu_percent":       cpuPct,
		"memory_mb":         int64(memStats.Used) / 1024 / 1024,
		"disk_mb":           int64(diskStats.Used) / 1024 / 1024,
		"feeds":             feedData,
		"net_bytes_sent":    int64(bytesSent),
		"net_bytes_recv":    int64(bytesRecv),
	}

	log.WithComponent("report").WithFields(fields).Info("runtime report")

	var data []cwtypes.MetricDatum
	data = append(data,
		cwtypes.MetricDatum{MetricName: aws.String("Solwatch-CPUPercent"), Unit: cwtypes.StandardUnitPercent, Value: aws.Float64(cpuPct)},
		cwtypes.MetricDatum{MetricName: aws.String("Solwatch-MemoryMB"), Unit: cwtypes.StandardUnitMegabytes, Value: aws.Float64(float64(memStats.Used) / 1024 / 1024)},
		cwtypes.MetricDatum{MetricName: aws.String("Solwatch-DiskMB"), Unit: cwtypes.StandardUnitMegabytes, Value: aws.Float64(float64(diskStats.Used) / 1024 / 1024)},
		cwtypes.MetricDatum{MetricName: aws.String("Solwatch-CyclesOK"), Unit: cwtypes.StandardUnitCount, Value: aws.Float64(float64(fields["cycles_ok"].(int64)))},
		cwtypes.MetricDatum{MetricName: aws.String("Solwatch-CyclesFailed"), Unit: cwtypes.StandardUnitCount, Value: aws.Float64(float64(fields["cycles_failed"].(int64)))},
		cwtypes.MetricDatum{MetricName: aws.String("Solwatch-RugchecksOK"), Unit: cwtypes.StandardUnitCount, Value: aws.Float64(float64(fields["rugchecks_ok"].(int64)))},
		cwtypes.MetricDatum{MetricName: aws.String("Solwatch-RugchecksFailed"), Unit: cwtypes.StandardUnitCount, Value: aws.Float64(float64(fields["rugchecks_failed"].(int64)))},
		cwtypes.MetricDatum{MetricName: aws.String("Solwatch-RugchecksRefused"), Unit: cwtypes.StandardUnitCount, Value: aws.Float64(float64(fields["rugchecks_refused"].(int64)))},
		cwtypes.MetricDatum{MetricName: aws.String("Solwatch-ErrorsAggregator"), Unit: cwtypes.StandardUnitCount, Value: aws.Float64(float64(fields["errors_aggregator"].(int64)))},
		cwtypes.MetricDatum{MetricName: aws.String("Solwatch-ErrorsRugcheck"), Unit: cwtypes.StandardUnitCount, Value: aws.Float64(float64(fields["errors_rugcheck"].(int64)))},
		cwtypes.MetricDatum{MetricName: aws.String("Solwatch-NetBytesSent"), Unit: cwtypes.StandardUnitBytes, Value: aws.Float64(float64(bytesSent))},
		cwtypes.MetricDatum{MetricName: aws.String("Solwatch-NetBytesRecv"), Unit: cwtypes.StandardUnitBytes, Value: aws.Float64(float64(bytesRecv))},
	)

	var feedErrorsTotal int64
	for name, stats := range feedData {
		feedErrorsTotal += stats["errors"]
		data = append(data,
			cwtypes.MetricDatum{
				MetricName: aws.String("Solwatch-FeedFetches"),
				Unit:       cwtypes.StandardUnitCount,
				Dimensions: []cwtypes.Dimension{{Name: aws.String("Feed"), Value: aws.String(name)}},
				Value:      aws.Float64(float64(stats["fetches"])),
			},
			cwtypes.MetricDatum{
				MetricName: aws.String("Solwatch-FeedErrors"),
				Unit:       cwtypes.StandardUnitCount,
				Dimensions: []cwtypes.Dimension{{Name: aws.String("Feed"), Value: aws.String(name)}},
				Value:      aws.Float64(float64(stats["errors"])),
			},
		)
	}
	data = append(data, cwtypes.MetricDatum{
		MetricName: aws.String("Solwatch-FeedErrors"),
		Unit:       cwtypes.StandardUnitCount,
		Value:      aws.Float64(float64(feedErrorsTotal)),
	})

	publishMetrics(ctx, data)
}
