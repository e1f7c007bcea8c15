package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all prometheus metrics
type Metrics struct {
	ChatsHandled   prometheus.Counter
	AICallsTotal   prometheus.Counter
	RowsWritten    prometheus.Counter
	ChatLatency    prometheus.Histogram
	ErrorsCount    *prometheus.CounterVec
	EmailsSent     prometheus.Counter
}

// NewMetrics creates new prometheus metrics
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		ChatsHandled: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chats_handled_total",
			Help:      "The total number of chat messages handled",
		}),
		AICallsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ai_calls_total",
			Help:      "The total number of AI generation calls made",
		}),
		RowsWritten: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_rows_written_total",
			Help:      "The total number of booking rows appended or updated",
		}),
		ChatLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "chat_handling_time_seconds",
			Help:      "Time taken to handle a chat message",
			Buckets:   prometheus.DefBuckets,
		}),
		ErrorsCount: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "The total number of errors",
		}, []string{"operation"}),
		EmailsSent: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "emails_sent_total",
			Help:      "The total number of notification emails sent",
		}),
	}
}
