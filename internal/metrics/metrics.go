package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"transfers24/internal/payment"
)

var (
	GatewayCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "transfers24",
			Name:      "gateway_calls_total",
			Help:      "Gateway calls by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	GatewayCallDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "transfers24",
			Name:      "gateway_call_duration_seconds",
			Help:      "Gateway call latency by operation",
			Buckets: []float64{
				0.05, 0.1, 0.2, 0.3, 0.5, 0.8,
				1.2, 2, 3, 5, 10, 30,
			},
		},
		[]string{"operation"},
	)
)

func init() {
	prometheus.MustRegister(GatewayCallsTotal, GatewayCallDuration)
}

// Outcome labels a response: "success", "failure" or "invalid".
func Outcome(resp payment.Response) string {
	switch {
	case resp == nil || resp.Kind() == payment.KindInvalid:
		return "invalid"
	case resp.IsSuccess():
		return "success"
	default:
		return "failure"
	}
}

func IncCall(operation, outcome string) {
	GatewayCallsTotal.WithLabelValues(operation, outcome).Inc()
}

func ObserveDuration(operation string, seconds float64) {
	GatewayCallDuration.WithLabelValues(operation).Observe(seconds)
}

// Observe records one finished call started at start.
func Observe(operation string, resp payment.Response, start time.Time) {
	IncCall(operation, Outcome(resp))
	ObserveDuration(operation, time.Since(start).Seconds())
}
