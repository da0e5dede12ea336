package booking

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/jwalitptl/therapy-scheduler/internal/model"
	"github.com/jwalitptl/therapy-scheduler/internal/repository"
	"github.com/jwalitptl/therapy-scheduler/pkg/lock"
	"github.com/jwalitptl/therapy-scheduler/pkg/logger"
	"github.com/jwalitptl/therapy-scheduler/pkg/messaging"
	"github.com/jwalitptl/therapy-scheduler/pkg/metrics"
)

type fakeTherapists struct {
	rows  []*model.Therapist
	calls int
}

func (f *fakeTherapists) List(context.Context) ([]*model.Therapist, error) {
	f.calls++
	return f.rows, nil
}

type fakeRooms struct {
	rows []*model.Room
}

func (f *fakeRooms) List(context.Context) ([]*model.Room, error) {
	return f.rows, nil
}

type fakeAvailability struct {
	slots []*model.AvailabilitySlot
}

func (f *fakeAvailability) ListRange(_ context.Context, kind model.ResourceKind, from, to string) ([]*model.AvailabilitySlot, error) {
	var out []*model.AvailabilitySlot
	for _, s := range f.slots {
		if s.ResourceKind == kind && s.Date >= from && s.Date <= to {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeAvailability) Upsert(_ context.Context, slots []*model.AvailabilitySlot) error {
	f.slots = append(f.slots, slots...)
	return nil
}

type fakeAppointments struct {
	mu   sync.Mutex
	rows []*model.Appointment
}

func (f *fakeAppointments) ListRange(context.Context, string, string) ([]*model.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Appointment
	for _, a := range f.rows {
		if a.Status == model.AppointmentStatusScheduled {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeAppointments) List(_ context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Appointment
	for _, a := range f.rows {
		if filters.ClientID != "" && a.ClientID != filters.ClientID {
			continue
		}
		if filters.Tab != "" && a.Tab != filters.Tab {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (f *fakeAppointments) Get(_ context.Context, id string) (*model.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.rows {
		if a.ID == id {
			cp := *a
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeAppointments) CreateBatch(_ context.Context, appointments []*model.Appointment) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var created []string
	for _, a := range appointments {
		var existing *model.Appointment
		for _, row := range f.rows {
			if row.ID == a.ID {
				existing = row
				break
			}
		}
		switch {
		case existing == nil:
			cp := *a
			f.rows = append(f.rows, &cp)
			created = append(created, a.ID)
		case existing.Status == model.AppointmentStatusCancelled:
			existing.Status = model.AppointmentStatusScheduled
			existing.ClientEmail = a.ClientEmail
			existing.CancelReason = nil
			created = append(created, a.ID)
		}
	}
	return created, nil
}

func (f *fakeAppointments) Cancel(_ context.Context, id, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.rows {
		if a.ID == id && a.Status != model.AppointmentStatusCancelled {
			a.Status = model.AppointmentStatusCancelled
			a.CancelReason = &reason
			return nil
		}
	}
	return repository.ErrNotFound
}

type recordingBroker struct {
	mu       sync.Mutex
	messages []messaging.Message
}

func (b *recordingBroker) Publish(_ context.Context, _ string, message interface{}) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	raw, err := json.Marshal(message)
	if err != nil {
		return err
	}
	var msg messaging.Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		return err
	}
	b.messages = append(b.messages, msg)
	return nil
}

func (b *recordingBroker) Subscribe(context.Context, string) (<-chan []byte, error) {
	return nil, nil
}

func (b *recordingBroker) Close() error { return nil }

func (b *recordingBroker) events(t *testing.T) []model.BookingEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]model.BookingEvent, 0, len(b.messages))
	for _, m := range b.messages {
		var ev model.BookingEvent
		if err := json.Unmarshal(m.Payload, &ev); err != nil {
			t.Fatalf("decode event: %v", err)
		}
		out = append(out, ev)
	}
	return out
}

type harness struct {
	svc          *Service
	therapists   *fakeTherapists
	appointments *fakeAppointments
	broker       *recordingBroker
	locker       *lock.RedisLocker
	metrics      *metrics.Metrics
}

var mayDates = []string{"2025-05-20", "2025-05-21", "2025-05-22", "2025-05-23"}

// newHarness opens rooms r1, r2 and therapists t1..t4 at 07:00 and 08:00 on
// every date in mayDates.
func newHarness(t *testing.T, cfg Config) *harness {
	t.Helper()

	therapists := &fakeTherapists{rows: []*model.Therapist{
		{ID: "t1", Name: "Amira", Gender: "female", Active: true},
		{ID: "t2", Name: "Bilal", Gender: "male", Active: true},
		{ID: "t3", Name: "Carla", Gender: "female", Active: true},
		{ID: "t4", Name: "Dan", Gender: "male", Active: true},
	}}
	rooms := &fakeRooms{rows: []*model.Room{
		{ID: "r1", Name: "Room 1", Active: true},
		{ID: "r2", Name: "Room 2", Active: true},
	}}
	availability := &fakeAvailability{}
	for _, d := range mayDates {
		for _, slot := range []string{"07:00", "08:00"} {
			for _, r := range rooms.rows {
				availability.slots = append(availability.slots, &model.AvailabilitySlot{ResourceKind: model.ResourceRoom, ResourceID: r.ID, Date: d, Slot: slot})
			}
			for _, th := range therapists.rows {
				availability.slots = append(availability.slots, &model.AvailabilitySlot{ResourceKind: model.ResourceTherapist, ResourceID: th.ID, Date: d, Slot: slot})
			}
		}
	}

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	h := &harness{
		therapists:   therapists,
		appointments: &fakeAppointments{},
		broker:       &recordingBroker{},
		locker:       lock.NewRedisLocker(client, "lock:"),
		metrics:      metrics.NewMetrics(prometheus.NewRegistry(), "scheduler", "test"),
	}
	if cfg.LockTTL == 0 {
		cfg.LockTTL = time.Minute
	}
	h.svc = NewService(Repositories{
		Therapists:   therapists,
		Rooms:        rooms,
		Availability: availability,
		Appointments: h.appointments,
	}, h.locker, h.broker, h.metrics, logger.Nop(), cfg)
	return h
}

func (h *harness) seed(a *model.Appointment) {
	if a.Status == "" {
		a.Status = model.AppointmentStatusScheduled
	}
	if a.Tab == "" {
		a.Tab = "therapy"
	}
	h.appointments.rows = append(h.appointments.rows, a)
}
