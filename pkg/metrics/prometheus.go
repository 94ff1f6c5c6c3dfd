package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all prometheus metrics
type Metrics struct {
	SlotsAttempted prometheus.Counter
	SlotsBooked    prometheus.Counter
	SlotsFailed    prometheus.Counter
	NavigationTime prometheus.Histogram
	CheckoutsTotal *prometheus.CounterVec
	ErrorsCount    *prometheus.CounterVec
}

// NewMetrics creates new prometheus metrics on the default registry
func NewMetrics(namespace string) *Metrics {
	return NewMetricsWith(prometheus.DefaultRegisterer, namespace)
}

// NewMetricsWith creates new prometheus metrics on the given registerer
func NewMetricsWith(reg prometheus.Registerer, namespace string) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		SlotsAttempted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "slots_attempted_total",
			Help:      "The total number of slot booking attempts",
		}),
		SlotsBooked: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "slots_booked_total",
			Help:      "The total number of slots successfully reserved",
		}),
		SlotsFailed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "slots_failed_total",
			Help:      "The total number of slot attempts that failed",
		}),
		NavigationTime: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "calendar_navigation_seconds",
			Help:      "Time taken to locate the target date on the calendar",
			Buckets:   prometheus.DefBuckets,
		}),
		CheckoutsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkouts_total",
			Help:      "Checkout pipeline outcomes",
		}, []string{"result"}),
		ErrorsCount: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "The total number of errors",
		}, []string{"operation"}),
	}
}
