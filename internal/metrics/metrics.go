// Registers:
//
//	#Solwatch_cycles_total
//	#Solwatch_feed_errors_total
//	#Solwatch_rugchecks_total
//	#go_* and process_* system metrics
//
// Exposes them on the configured address using Prometheus HTTP handler
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	once       sync.Once
	cycles     *prometheus.CounterVec
	feedErrors *prometheus.CounterVec
	rugchecks  *prometheus.CounterVec
)

func Init(address string) {
	once.Do(func() {
		cycles = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "Solwatch_cycles_total",
				Help: "Number of completed refresh cycles by outcome",
			},
			[]string{"outcome"},
		)

		feedErrors = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "Solwatch_feed_errors_total",
				Help: "Number of failed feed fetches",
			},
			[]string{"feed"},
		)

		rugchecks = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "Solwatch_rugchecks_total",
				Help: "Number of rug check requests by outcome",
			},
			[]string{"outcome"},
		)

		_ = prometheus.Register(cycles)
		_ = prometheus.Register(feedErrors)
		_ = prometheus.Register(rugchecks)
		_ = prometheus.Register(collectors.NewGoCollector())
		_ = prometheus.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

		go func() {
			http.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(address, nil); err != nil {
				panic("metrics server failed: " + err.Error())
			}
		}()
	})
}

// IncrementCycleOK increases the cycle counter for the success outcome.
func IncrementCycleOK() {
	if cycles != nil {
		cycles.WithLabelValues("ok").Inc()
	}
}

// IncrementCycleFailed increases the cycle counter for the failure outcome.
func IncrementCycleFailed() {
	if cycles != nil {
		cycles.WithLabelValues("failed").Inc()
	}
}

// IncrementFeedError increases the error counter for a given feed.
func IncrementFeedError(feed string) {
	if feedErrors != nil {
		feedErrors.WithLabelValues(feed).Inc()
	}
}

// IncrementRugcheck increases the rug check counter for a given outcome.
func IncrementRugcheck(outcome string) {
	if rugchecks != nil {
		rugchecks.WithLabelValues(outcome).Inc()
	}
}
