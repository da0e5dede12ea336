package scheduling

import (
	apperrors "github.com/jwalitptl/therapy-scheduler/pkg/errors"
)

// RecurringRequest expands one booking across Days consecutive dates.
type RecurringRequest struct {
	StartDate          string
	Days               int
	RoomID             string
	Slot               string
	TherapistIDs       []string
	SkipNonWorkingDays bool
}

// RecurringResult holds one Availability per checked day. AllAvailable is the
// conjunction over Days, so it is true when every requested day was skipped
// and Days is empty; callers that write bookings must check len(Days).
type RecurringResult struct {
	Slot         string         `json:"slot"`
	RoomID       string         `json:"room_id"`
	TherapistIDs []string       `json:"therapist_ids"`
	Days         []Availability `json:"days"`
	Skipped      []string       `json:"skipped,omitempty"`
	AllAvailable bool           `json:"all_available"`
}

// CheckRecurring runs CheckSlot for every day of req against the same
// snapshot. A day's hypothetical booking never affects later days.
func CheckRecurring(req RecurringRequest, snap Snapshot, policy Policy) (RecurringResult, error) {
	if req.Days < 1 {
		return RecurringResult{}, apperrors.InvalidRequest("days must be at least 1, got %d", req.Days)
	}
	if err := validateResources(req.Slot, req.RoomID, req.TherapistIDs, snap.Directory); err != nil {
		return RecurringResult{}, err
	}
	dates, err := DateRange(req.StartDate, req.Days)
	if err != nil {
		return RecurringResult{}, err
	}

	res := RecurringResult{
		Slot:         req.Slot,
		RoomID:       req.RoomID,
		TherapistIDs: req.TherapistIDs,
		Days:         make([]Availability, 0, len(dates)),
		AllAvailable: true,
	}
	for _, date := range dates {
		if req.SkipNonWorkingDays {
			off, err := policy.IsNonWorkingDay(date)
			if err != nil {
				return RecurringResult{}, err
			}
			if off {
				res.Skipped = append(res.Skipped, date)
				continue
			}
		}

		day := checkSlot(SlotRequest{
			Date:         date,
			Slot:         req.Slot,
			RoomID:       req.RoomID,
			TherapistIDs: req.TherapistIDs,
		}, snap, policy)
		res.Days = append(res.Days, day)
		res.AllAvailable = res.AllAvailable && day.Available
	}
	return res, nil
}

// AvailableDates lists the checked dates that can be booked.
func (r RecurringResult) AvailableDates() []string {
	var out []string
	for _, d := range r.Days {
		if d.Available {
			out = append(out, d.Date)
		}
	}
	return out
}

// Conflicts returns one record per unavailable day.
func (r RecurringResult) Conflicts() []ConflictRecord {
	var out []ConflictRecord
	for _, d := range r.Days {
		if d.Available {
			continue
		}
		out = append(out, ConflictRecord{
			Date:         d.Date,
			Slot:         r.Slot,
			RoomID:       r.RoomID,
			TherapistIDs: r.TherapistIDs,
			Reason:       d.Reason,
		})
	}
	return out
}
