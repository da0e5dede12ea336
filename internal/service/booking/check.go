package booking

import (
	"context"
	"time"

	"github.com/jwalitptl/therapy-scheduler/internal/model"
	"github.com/jwalitptl/therapy-scheduler/internal/scheduling"
)

func reasonLabel(a scheduling.Availability) string {
	if a.Available {
		return "available"
	}
	return string(a.Reason)
}

func (s *Service) CheckSlot(ctx context.Context, req *model.CheckSlotRequest) (scheduling.Availability, error) {
	tab := s.tab(req.Tab)
	snap, err := s.loadSnapshot(ctx, req.Date, req.Date, tab)
	if err != nil {
		return scheduling.Availability{}, err
	}

	result, err := scheduling.CheckSlot(scheduling.SlotRequest{
		Date:         req.Date,
		Slot:         req.Slot,
		RoomID:       req.RoomID,
		TherapistIDs: req.TherapistIDs,
	}, snap, s.policy(req.PolicyOverride))
	if err != nil {
		return scheduling.Availability{}, err
	}

	s.metrics.SlotChecks.WithLabelValues(reasonLabel(result)).Inc()
	return result, nil
}

// CheckRecurring evaluates every day of the request and, when any day fails,
// searches alternatives for the first failing day.
func (s *Service) CheckRecurring(ctx context.Context, req *model.RecurringCheckRequest) (*model.RecurringCheckResponse, error) {
	start := time.Now()
	defer func() { s.metrics.RecurringLatency.Observe(time.Since(start).Seconds()) }()

	tab := s.tab(req.Tab)
	to, err := span(req.StartDate, req.Days)
	if err != nil {
		return nil, err
	}
	snap, err := s.loadSnapshot(ctx, req.StartDate, to, tab)
	if err != nil {
		return nil, err
	}

	policy := s.policy(req.PolicyOverride)
	result, err := scheduling.CheckRecurring(toRecurring(req), snap, policy)
	if err != nil {
		return nil, err
	}
	for _, day := range result.Days {
		s.metrics.SlotChecks.WithLabelValues(reasonLabel(day)).Inc()
	}

	alternatives, err := s.firstConflictAlternatives(result, snap, policy)
	if err != nil {
		return nil, err
	}

	return &model.RecurringCheckResponse{
		Result: result,
		Report: scheduling.BuildReport(result, alternatives, snap.Directory),
	}, nil
}

func (s *Service) FindAlternatives(ctx context.Context, req *model.AlternativesRequest) (*model.AlternativesResponse, error) {
	tab := s.tab(req.Tab)
	snap, err := s.loadSnapshot(ctx, req.Date, req.Date, tab)
	if err != nil {
		return nil, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = s.cfg.AlternativesLimit
	}
	alternatives, err := scheduling.FindAlternatives(scheduling.ConflictRecord{
		Date:         req.Date,
		Slot:         req.Slot,
		RoomID:       req.RoomID,
		TherapistIDs: req.TherapistIDs,
	}, snap, s.policy(req.PolicyOverride), limit)
	if err != nil {
		return nil, err
	}
	s.metrics.AlternativesFound.Observe(float64(len(alternatives)))

	resp := &model.AlternativesResponse{
		Alternatives: make([]scheduling.AlternativeView, 0, len(alternatives)),
	}
	for _, alt := range alternatives {
		resp.Alternatives = append(resp.Alternatives, scheduling.AlternativeView{
			AlternativeSlot: alt,
			RoomName:        snap.Directory.RoomName(alt.RoomID),
			TherapistName:   snap.Directory.TherapistName(alt.TherapistID),
		})
	}
	if len(alternatives) == 0 {
		resp.Message = scheduling.MsgNoAlternatives
	}
	return resp, nil
}

func (s *Service) firstConflictAlternatives(result scheduling.RecurringResult, snap scheduling.Snapshot, policy scheduling.Policy) ([]scheduling.AlternativeSlot, error) {
	conflicts := result.Conflicts()
	if len(conflicts) == 0 {
		return nil, nil
	}
	alternatives, err := scheduling.FindAlternatives(conflicts[0], snap, policy, s.cfg.AlternativesLimit)
	if err != nil {
		return nil, err
	}
	s.metrics.AlternativesFound.Observe(float64(len(alternatives)))
	return alternatives, nil
}

func toRecurring(req *model.RecurringCheckRequest) scheduling.RecurringRequest {
	return scheduling.RecurringRequest{
		StartDate:          req.StartDate,
		Days:               req.Days,
		RoomID:             req.RoomID,
		Slot:               req.Slot,
		TherapistIDs:       req.TherapistIDs,
		SkipNonWorkingDays: req.SkipNonWorkingDays,
	}
}
