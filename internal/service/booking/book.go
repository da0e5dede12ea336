package booking

import (
	"context"
	"errors"

	"github.com/lib/pq"

	"github.com/jwalitptl/therapy-scheduler/internal/model"
	"github.com/jwalitptl/therapy-scheduler/internal/repository"
	"github.com/jwalitptl/therapy-scheduler/internal/scheduling"
	apperrors "github.com/jwalitptl/therapy-scheduler/pkg/errors"
	"github.com/jwalitptl/therapy-scheduler/pkg/lock"
	"github.com/jwalitptl/therapy-scheduler/pkg/metrics"
)

// Book re-checks the request against a fresh snapshot while holding slot
// locks and writes the bookable days. Without AcceptPartial nothing is
// written unless every checked day is available. The response always carries
// the evaluation and report; Created is empty when nothing was written.
func (s *Service) Book(ctx context.Context, req *model.BookRequest) (*model.BookResponse, error) {
	tab := s.tab(req.Tab)
	to, err := span(req.StartDate, req.Days)
	if err != nil {
		return nil, err
	}
	dates, err := scheduling.DateRange(req.StartDate, req.Days)
	if err != nil {
		return nil, err
	}

	lease, err := s.locker.Acquire(ctx, lockKeys(req.RoomID, req.Slot, req.TherapistIDs, dates), s.cfg.LockTTL)
	if errors.Is(err, lock.ErrNotAcquired) {
		s.metrics.BookingLockConflict.Inc()
		s.log.Warn("booking lock contention", "client_id", req.ClientID, "room_id", req.RoomID, "date", req.StartDate)
		return nil, apperrors.Conflict("slot is being booked by another request, retry shortly", err)
	}
	s.metrics.RedisOperations.WithLabelValues("lock", metrics.Status(err)).Inc()
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	defer func() {
		if err := lease.Release(context.WithoutCancel(ctx)); err != nil {
			s.log.Error(err, "failed to release booking lock", "client_id", req.ClientID)
		}
	}()

	snap, err := s.loadSnapshot(ctx, req.StartDate, to, tab)
	if err != nil {
		return nil, err
	}
	policy := s.policy(req.PolicyOverride)
	result, err := scheduling.CheckRecurring(toRecurring(&req.RecurringCheckRequest), snap, policy)
	if err != nil {
		return nil, err
	}

	resp := &model.BookResponse{
		Created: []*model.Appointment{},
		Skipped: result.Skipped,
		Result:  result,
	}

	if len(result.Days) == 0 {
		return nil, apperrors.InvalidRequest("every requested day falls on a non-working day")
	}

	bookable := result.AvailableDates()
	if (!result.AllAvailable && !req.AcceptPartial) || len(bookable) == 0 {
		alternatives, err := s.firstConflictAlternatives(result, snap, policy)
		if err != nil {
			return nil, err
		}
		resp.Report = scheduling.BuildReport(result, alternatives, snap.Directory)
		s.log.Info("booking rejected", "client_id", req.ClientID, "room_id", req.RoomID,
			"date", req.StartDate, "conflicts", len(result.Conflicts()))
		return resp, nil
	}

	appointments := make([]*model.Appointment, 0, len(bookable))
	for _, date := range bookable {
		appointments = append(appointments, &model.Appointment{
			ID:           scheduling.AppointmentID(req.ClientID, req.TherapistIDs, req.RoomID, date, req.Slot),
			ClientID:     req.ClientID,
			ClientEmail:  req.ClientEmail,
			RoomID:       req.RoomID,
			TherapistIDs: pq.StringArray(req.TherapistIDs),
			Date:         date,
			Slot:         req.Slot,
			DurationDays: 1,
			Tab:          string(tab),
			Status:       model.AppointmentStatusScheduled,
		})
	}

	createdIDs, err := s.repos.Appointments.CreateBatch(ctx, appointments)
	s.metrics.DatabaseOperations.WithLabelValues("create_appointments", metrics.Status(err)).Inc()
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	created := make(map[string]bool, len(createdIDs))
	for _, id := range createdIDs {
		created[id] = true
	}
	var createdDates []string
	for _, a := range appointments {
		if created[a.ID] {
			resp.Created = append(resp.Created, a)
			createdDates = append(createdDates, a.Date)
		}
	}
	s.metrics.BookingsCreated.WithLabelValues(string(tab)).Add(float64(len(resp.Created)))

	var alternatives []scheduling.AlternativeSlot
	if !result.AllAvailable {
		if alternatives, err = s.firstConflictAlternatives(result, snap, policy); err != nil {
			return nil, err
		}
	}
	resp.Report = scheduling.BuildReport(result, alternatives, snap.Directory)

	s.log.Info("appointments booked", "client_id", req.ClientID, "room_id", req.RoomID,
		"created", len(resp.Created), "partial", !result.AllAvailable)

	if len(createdIDs) > 0 {
		s.publish(ctx, model.EventAppointmentBooked, s.event(snap.Directory, req.ClientID, req.ClientEmail,
			req.RoomID, req.Slot, req.TherapistIDs, createdIDs, createdDates, tab))
	}
	return resp, nil
}

func (s *Service) ListAppointments(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	appointments, err := s.repos.Appointments.List(ctx, filters)
	s.metrics.DatabaseOperations.WithLabelValues("list_appointments", metrics.Status(err)).Inc()
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if appointments == nil {
		appointments = []*model.Appointment{}
	}
	return appointments, nil
}

// CancelAppointment frees the appointment's slot for future checks.
func (s *Service) CancelAppointment(ctx context.Context, id, reason string) error {
	apt, err := s.repos.Appointments.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NotFound("appointment", err)
	}
	if err != nil {
		return apperrors.Internal(err)
	}
	if apt.Status == model.AppointmentStatusCancelled {
		return apperrors.Conflict("appointment is already cancelled", nil)
	}

	err = s.repos.Appointments.Cancel(ctx, id, reason)
	s.metrics.DatabaseOperations.WithLabelValues("cancel_appointment", metrics.Status(err)).Inc()
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NotFound("appointment", err)
	}
	if err != nil {
		return apperrors.Internal(err)
	}

	entry, err := s.directory(ctx)
	if err != nil {
		s.log.Error(err, "failed to resolve names for cancellation event", "appointment_id", id)
		return nil
	}
	s.publish(ctx, model.EventAppointmentCancelled, s.event(entry.dir, apt.ClientID, apt.ClientEmail, apt.RoomID, apt.Slot,
		apt.TherapistIDs, []string{apt.ID}, []string{apt.Date}, scheduling.Tab(apt.Tab)))
	return nil
}
