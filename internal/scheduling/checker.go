// Package scheduling decides slot availability for clinic bookings, expands
// recurring requests across days and proposes alternatives when a requested
// combination is taken. Every function is pure over the Snapshot it is given.
package scheduling

import (
	"time"

	apperrors "github.com/jwalitptl/therapy-scheduler/pkg/errors"
)

// Reason explains why a slot is unavailable.
type Reason string

const (
	ReasonRoomClosed           Reason = "room closed"
	ReasonTherapistUnavailable Reason = "therapist unavailable"
	ReasonRoomBooked           Reason = "room booked"
	ReasonTherapistBooked      Reason = "therapist booked"
	ReasonGenderMismatch       Reason = "gender mismatch"
)

// ReasonPriority is the order CheckSlot evaluates its checks in. Only the
// first failing check is reported.
var ReasonPriority = []Reason{
	ReasonRoomClosed,
	ReasonTherapistUnavailable,
	ReasonRoomBooked,
	ReasonTherapistBooked,
	ReasonGenderMismatch,
}

// Booked reports whether r comes from an existing appointment rather than a
// closed calendar or policy.
func (r Reason) Booked() bool {
	return r == ReasonRoomBooked || r == ReasonTherapistBooked
}

// Policy is the clinic configuration applied on top of the raw calendars.
type Policy struct {
	EnforceGenderMatch bool
	// ClientGender is empty when unknown; the gender check is then skipped.
	ClientGender   Gender
	NonWorkingDays []time.Weekday
}

func (p Policy) genderCheck() bool {
	return p.EnforceGenderMatch && p.ClientGender.Valid()
}

// IsNonWorkingDay reports whether date falls on one of the policy's weekly
// off days.
func (p Policy) IsNonWorkingDay(date string) (bool, error) {
	wd, err := Weekday(date)
	if err != nil {
		return false, err
	}
	for _, d := range p.NonWorkingDays {
		if d == wd {
			return true, nil
		}
	}
	return false, nil
}

// SlotRequest identifies one (date, slot, room, therapist set) combination.
type SlotRequest struct {
	Date         string
	Slot         string
	RoomID       string
	TherapistIDs []string
}

type Availability struct {
	Date      string `json:"date"`
	Available bool   `json:"available"`
	Reason    Reason `json:"reason,omitempty"`
}

// CheckSlot decides whether req can be booked against snap.
func CheckSlot(req SlotRequest, snap Snapshot, policy Policy) (Availability, error) {
	if err := validateSlotRequest(req, snap.Directory); err != nil {
		return Availability{}, err
	}
	return checkSlot(req, snap, policy), nil
}

// checkSlot assumes req has been validated.
func checkSlot(req SlotRequest, snap Snapshot, policy Policy) Availability {
	unavailable := func(r Reason) Availability {
		return Availability{Date: req.Date, Available: false, Reason: r}
	}

	if !snap.Calendars.Rooms.Open(req.RoomID, req.Date, req.Slot) {
		return unavailable(ReasonRoomClosed)
	}
	for _, id := range req.TherapistIDs {
		if !snap.Calendars.Therapists.Open(id, req.Date, req.Slot) {
			return unavailable(ReasonTherapistUnavailable)
		}
	}

	occupying := snap.Ledger.At(req.Date, req.Slot)
	for _, a := range occupying {
		if a.RoomID == req.RoomID {
			return unavailable(ReasonRoomBooked)
		}
	}
	for _, a := range occupying {
		for _, id := range req.TherapistIDs {
			if a.HasTherapist(id) {
				return unavailable(ReasonTherapistBooked)
			}
		}
	}

	if policy.genderCheck() && !anyGender(req.TherapistIDs, snap.Directory, policy.ClientGender) {
		return unavailable(ReasonGenderMismatch)
	}

	return Availability{Date: req.Date, Available: true}
}

func anyGender(therapistIDs []string, dir Directory, g Gender) bool {
	for _, id := range therapistIDs {
		if t, ok := dir.Therapist(id); ok && t.Gender == g {
			return true
		}
	}
	return false
}

func validateSlotRequest(req SlotRequest, dir Directory) error {
	if _, err := ParseDate(req.Date); err != nil {
		return err
	}
	return validateResources(req.Slot, req.RoomID, req.TherapistIDs, dir)
}

func validateResources(slot, roomID string, therapistIDs []string, dir Directory) error {
	if err := ValidateSlot(slot); err != nil {
		return err
	}
	if _, ok := dir.Room(roomID); !ok {
		return apperrors.InvalidRequest("unknown room %q", roomID)
	}
	if len(therapistIDs) == 0 {
		return apperrors.InvalidRequest("at least one therapist is required")
	}
	for _, id := range therapistIDs {
		if _, ok := dir.Therapist(id); !ok {
			return apperrors.InvalidRequest("unknown therapist %q", id)
		}
	}
	return nil
}
