// Package metrics holds the Prometheus collectors shared by the verifier.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	Verifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mailprobe_verifications_total",
		Help: "The total number of verified addresses by classification",
	}, []string{"classification"})

	Probes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mailprobe_probes_total",
		Help: "The total number of SMTP probe sessions by reply class",
	}, []string{"outcome"})

	ProbeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "mailprobe_probe_duration_seconds",
		Help:    "Time taken by one SMTP probe session from connect to close",
		Buckets: prometheus.DefBuckets,
	})

	Resolutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mailprobe_resolutions_total",
		Help: "The total number of domain resolutions by result",
	}, []string{"result"})
)

// Outcome buckets an SMTP reply code into a low-cardinality label.
func Outcome(code int) string {
	switch {
	case code == 0:
		return "no_reply"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}
