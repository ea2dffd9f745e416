package gateway

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	resultOK      = "ok"
	resultNetwork = "network_error"
	resultDecode  = "decode_error"
)

type metrics struct {
	fetches  *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	f := promauto.With(reg)
	return &metrics{
		fetches: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gofind",
			Subsystem: "gateway",
			Name:      "fetch_total",
			Help:      "Remote dataset fetches by dataset and outcome.",
		}, []string{"dataset", "result"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "gofind",
			Subsystem: "gateway",
			Name:      "fetch_duration_seconds",
			Help:      "Wall-clock duration of remote dataset fetches.",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 15},
		}, []string{"dataset"}),
	}
}

func resultLabel(err error) string {
	var decErr *DecodeError
	switch {
	case err == nil:
		return resultOK
	case errors.As(err, &decErr):
		return resultDecode
	default:
		return resultNetwork
	}
}
