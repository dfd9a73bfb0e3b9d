package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "coinflip_http_requests_total", Help: "Total HTTP requests"},
		[]string{"method", "path", "status"},
	)
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "coinflip_http_request_duration_seconds",
			Help:    "Request duration",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
	RoundsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "coinflip_rounds_total", Help: "Game operations by mode and outcome"},
		[]string{"mode", "outcome"},
	)
	RateLimitHits = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "coinflip_rate_limit_total", Help: "Requests rejected by the rate limiter"},
	)
)

func init() {
	prometheus.MustRegister(RequestsTotal, RequestDuration, RoundsTotal, RateLimitHits)
}

// RegisterActiveSessions exposes the live ladder session count as a gauge.
func RegisterActiveSessions(count func() int) error {
	return prometheus.Register(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{Name: "coinflip_active_ladder_sessions", Help: "Ladder sessions currently open"},
		func() float64 { return float64(count()) },
	))
}
