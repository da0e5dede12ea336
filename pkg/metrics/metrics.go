package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// Scheduling metrics
	SlotChecks          *prometheus.CounterVec
	RecurringLatency    prometheus.Histogram
	AlternativesFound   prometheus.Histogram
	BookingsCreated     *prometheus.CounterVec
	BookingLockConflict prometheus.Counter

	// Database metrics
	DatabaseOperations *prometheus.CounterVec
	DatabaseLatency    *prometheus.HistogramVec

	// Redis metrics
	RedisOperations *prometheus.CounterVec

	// Notification metrics
	NotificationsSent   prometheus.Counter
	NotificationsFailed prometheus.Counter
}

// NewMetrics registers every collector on reg. Passing a fresh registry per
// test keeps registrations from colliding.
func NewMetrics(reg prometheus.Registerer, namespace, subsystem string) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		SlotChecks: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "slot_checks_total",
			Help:      "Slot checks evaluated, by outcome reason",
		}, []string{"reason"}),
		RecurringLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "recurring_check_duration_seconds",
			Help:      "Time spent evaluating a recurring request including snapshot load",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}),
		AlternativesFound: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "alternatives_returned",
			Help:      "Number of alternatives returned per search",
			Buckets:   []float64{0, 1, 2, 3, 5, 10, 20},
		}),
		BookingsCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "appointments_created_total",
			Help:      "Appointments written to the ledger",
		}, []string{"tab"}),
		BookingLockConflict: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "booking_lock_conflicts_total",
			Help:      "Bookings rejected because another booking held a slot lock",
		}),

		// Database metrics
		DatabaseOperations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "database_operations_total",
			Help:      "Total number of database operations",
		}, []string{"operation", "status"}),
		DatabaseLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "database_operation_duration_seconds",
			Help:      "Duration of database operations",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"operation"}),

		// Redis metrics
		RedisOperations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "redis_operations_total",
			Help:      "Total number of Redis operations",
		}, []string{"operation", "status"}),

		NotificationsSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "notifications_sent_total",
			Help:      "Confirmation emails delivered",
		}),
		NotificationsFailed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "notifications_failed_total",
			Help:      "Confirmation emails that could not be delivered",
		}),
	}
}

// Status labels an operation outcome for the *_operations_total counters.
func Status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
