// Package metrics holds the Prometheus collectors shared by the bot core and
// the side HTTP listener that exposes them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "scorebot"

var (
	// HandlerTotal counts handled updates by handler and summary status.
	HandlerTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "telegram",
		Name:      "handled_total",
		Help:      "Updates handled, by handler and status.",
	}, []string{"handler", "status"})

	// HandlerDuration observes handler latency.
	HandlerDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "telegram",
		Name:      "handler_duration_seconds",
		Help:      "Handler latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"handler"})

	// RateLimited counts updates dropped by the rate limiter.
	RateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "telegram",
		Name:      "rate_limited_total",
		Help:      "Updates dropped by the per-user rate limit.",
	})

	// SendTotal counts outbound Telegram calls by action and final status.
	SendTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "sender",
		Name:      "jobs_total",
		Help:      "Outbound Telegram calls, by action and status.",
	}, []string{"action", "status"})

	// StoreDuration observes storage operations by op and status.
	StoreDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "store",
		Name:      "op_duration_seconds",
		Help:      "Storage operation latency, by op and status.",
		Buckets:   []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
	}, []string{"op", "status"})
)

// RegisterSessionGauge exposes the number of tracked dialog sessions.
// Repeated calls are ignored.
func RegisterSessionGauge(count func() int) {
	g := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "dialog",
		Name:      "sessions",
		Help:      "Dialog sessions currently tracked.",
	}, func() float64 { return float64(count()) })
	_ = prometheus.Register(g)
}
