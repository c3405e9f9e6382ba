package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	EventsProcessed *prometheus.CounterVec
	RepliesSent     *prometheus.CounterVec
	APIErrors       prometheus.Counter
	PhotoFallbacks  prometheus.Counter
	RequestSeconds  *prometheus.HistogramVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		EventsProcessed: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "webhook_events_processed_total",
			Help: "Total number of processed webhook events.",
		}, []string{"type"}),
		RepliesSent: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "webhook_replies_sent_total",
			Help: "Total number of reply attempts to the messaging platform.",
		}, []string{"status"}),
		APIErrors: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "places_api_errors_total",
			Help: "Total number of errors received from the places provider API.",
		}),
		PhotoFallbacks: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "places_photo_fallbacks_total",
			Help: "Total number of venues rendered with the placeholder thumbnail.",
		}),
		RequestSeconds: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "places_request_duration_seconds",
			Help:    "Duration of requests to the places provider endpoints.",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
	}
}
