package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics_SeparateRegistries(t *testing.T) {
	m1 := NewMetrics(prometheus.NewRegistry(), "scheduler", "test")
	m2 := NewMetrics(prometheus.NewRegistry(), "scheduler", "test")

	m1.SlotChecks.WithLabelValues("room_booked").Inc()
	m1.SlotChecks.WithLabelValues("room_booked").Inc()

	assert.Equal(t, 2.0, testutil.ToFloat64(m1.SlotChecks.WithLabelValues("room_booked")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m2.SlotChecks.WithLabelValues("room_booked")))
}

func TestNewMetrics_Gather(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg, "scheduler", "")
	m.BookingLockConflict.Inc()
	m.BookingsCreated.WithLabelValues("therapy").Add(3)

	n, err := testutil.GatherAndCount(reg, "scheduler_booking_lock_conflicts_total", "scheduler_appointments_created_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestStatus(t *testing.T) {
	assert.Equal(t, "ok", Status(nil))
	assert.Equal(t, "error", Status(errors.New("x")))
}
