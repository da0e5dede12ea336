package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/jwalitptl/therapy-scheduler/internal/model"
	"github.com/jwalitptl/therapy-scheduler/internal/repository"
	"github.com/jwalitptl/therapy-scheduler/internal/scheduling"
	apperrors "github.com/jwalitptl/therapy-scheduler/pkg/errors"
	"github.com/jwalitptl/therapy-scheduler/pkg/lock"
	"github.com/jwalitptl/therapy-scheduler/pkg/logger"
	"github.com/jwalitptl/therapy-scheduler/pkg/messaging"
	"github.com/jwalitptl/therapy-scheduler/pkg/metrics"
)

const directoryCacheKey = "directory"

type Config struct {
	DefaultTab         scheduling.Tab
	EnforceGenderMatch bool
	NonWorkingDays     []time.Weekday
	AlternativesLimit  int
	DirectoryCacheTTL  time.Duration
	LockTTL            time.Duration
	Channel            string
}

type Repositories struct {
	Therapists   repository.TherapistRepository
	Rooms        repository.RoomRepository
	Availability repository.AvailabilityRepository
	Appointments repository.AppointmentRepository
}

type Service struct {
	repos   Repositories
	locker  lock.Locker
	broker  messaging.Broker
	cache   *cache.Cache
	metrics *metrics.Metrics
	log     *logger.Logger
	cfg     Config
}

// NewService wires the booking service. broker may be nil, in which case no
// events are published.
func NewService(repos Repositories, locker lock.Locker, broker messaging.Broker, m *metrics.Metrics, log *logger.Logger, cfg Config) *Service {
	if cfg.DefaultTab == "" {
		cfg.DefaultTab = scheduling.TabTherapy
	}
	if cfg.AlternativesLimit <= 0 {
		cfg.AlternativesLimit = scheduling.DefaultAlternativesLimit
	}
	if cfg.DirectoryCacheTTL <= 0 {
		cfg.DirectoryCacheTTL = 5 * time.Minute
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 10 * time.Second
	}
	if cfg.Channel == "" {
		cfg.Channel = "appointments"
	}

	return &Service{
		repos:   repos,
		locker:  locker,
		broker:  broker,
		cache:   cache.New(cfg.DirectoryCacheTTL, 2*cfg.DirectoryCacheTTL),
		metrics: m,
		log:     log,
		cfg:     cfg,
	}
}

type directoryEntry struct {
	therapists []*model.Therapist
	rooms      []*model.Room
	dir        scheduling.Directory
}

func (s *Service) directory(ctx context.Context) (*directoryEntry, error) {
	if v, ok := s.cache.Get(directoryCacheKey); ok {
		return v.(*directoryEntry), nil
	}

	therapists, err := s.repos.Therapists.List(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	rooms, err := s.repos.Rooms.List(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	entry := &directoryEntry{
		therapists: therapists,
		rooms:      rooms,
		dir:        model.BuildDirectory(therapists, rooms),
	}
	s.cache.Set(directoryCacheKey, entry, cache.DefaultExpiration)
	return entry, nil
}

// InvalidateDirectory drops the cached therapist and room lists.
func (s *Service) InvalidateDirectory() {
	s.cache.Delete(directoryCacheKey)
}

func (s *Service) ListTherapists(ctx context.Context) ([]*model.Therapist, error) {
	entry, err := s.directory(ctx)
	if err != nil {
		return nil, err
	}
	return entry.therapists, nil
}

func (s *Service) ListRooms(ctx context.Context) ([]*model.Room, error) {
	entry, err := s.directory(ctx)
	if err != nil {
		return nil, err
	}
	return entry.rooms, nil
}

// loadSnapshot reads everything the engine needs for dates in [from, to].
func (s *Service) loadSnapshot(ctx context.Context, from, to string, tab scheduling.Tab) (scheduling.Snapshot, error) {
	entry, err := s.directory(ctx)
	if err != nil {
		return scheduling.Snapshot{}, err
	}

	start := time.Now()
	defer func() { s.metrics.DatabaseLatency.WithLabelValues("load_snapshot").Observe(time.Since(start).Seconds()) }()

	roomSlots, err := s.repos.Availability.ListRange(ctx, model.ResourceRoom, from, to)
	if err != nil {
		return scheduling.Snapshot{}, apperrors.Internal(err)
	}
	therapistSlots, err := s.repos.Availability.ListRange(ctx, model.ResourceTherapist, from, to)
	if err != nil {
		return scheduling.Snapshot{}, apperrors.Internal(err)
	}
	appointments, err := s.repos.Appointments.ListRange(ctx, from, to)
	s.metrics.DatabaseOperations.WithLabelValues("load_snapshot", metrics.Status(err)).Inc()
	if err != nil {
		return scheduling.Snapshot{}, apperrors.Internal(err)
	}

	return scheduling.Snapshot{
		Directory: entry.dir,
		Calendars: model.BuildCalendars(append(roomSlots, therapistSlots...)),
		Ledger:    model.BuildLedger(appointments).ForTab(tab),
	}, nil
}

func (s *Service) policy(o model.PolicyOverride) scheduling.Policy {
	enforce := s.cfg.EnforceGenderMatch
	if o.EnforceGenderMatch != nil {
		enforce = *o.EnforceGenderMatch
	}
	return scheduling.Policy{
		EnforceGenderMatch: enforce,
		ClientGender:       scheduling.Gender(o.ClientGender),
		NonWorkingDays:     s.cfg.NonWorkingDays,
	}
}

func (s *Service) tab(requested string) scheduling.Tab {
	if requested == "" {
		return s.cfg.DefaultTab
	}
	return scheduling.Tab(requested)
}

// span returns the last date covered by a request of days starting at start.
func span(start string, days int) (string, error) {
	if days < 1 {
		return "", apperrors.InvalidRequest("days must be at least 1, got %d", days)
	}
	to, err := scheduling.AddDays(start, days-1)
	if err != nil {
		return "", err
	}
	return to, nil
}

func (s *Service) publish(ctx context.Context, eventType string, event model.BookingEvent) {
	if s.broker == nil {
		return
	}
	msg, err := messaging.NewMessage(eventType, event)
	if err != nil {
		s.log.Error(err, "failed to encode booking event", "type", eventType)
		return
	}
	if err := s.broker.Publish(ctx, s.cfg.Channel, msg); err != nil {
		s.metrics.RedisOperations.WithLabelValues("publish", metrics.Status(err)).Inc()
		s.log.Error(err, "failed to publish booking event", "type", eventType, "client_id", event.ClientID)
		return
	}
	s.metrics.RedisOperations.WithLabelValues("publish", metrics.Status(nil)).Inc()
}

func (s *Service) event(dir scheduling.Directory, clientID, clientEmail, roomID, slot string, therapistIDs, ids, dates []string, tab scheduling.Tab) model.BookingEvent {
	names := make([]string, 0, len(therapistIDs))
	for _, id := range therapistIDs {
		names = append(names, dir.TherapistName(id))
	}
	return model.BookingEvent{
		AppointmentIDs: ids,
		ClientID:       clientID,
		ClientEmail:    clientEmail,
		RoomName:       dir.RoomName(roomID),
		TherapistNames: names,
		Slot:           slot,
		Dates:          dates,
		Tab:            string(tab),
	}
}

func lockKeys(roomID, slot string, therapistIDs, dates []string) []string {
	keys := make([]string, 0, len(dates)*(1+len(therapistIDs)))
	for _, date := range dates {
		keys = append(keys, fmt.Sprintf("room:%s:%s:%s", roomID, date, slot))
		for _, id := range therapistIDs {
			keys = append(keys, fmt.Sprintf("therapist:%s:%s:%s", id, date, slot))
		}
	}
	return keys
}
