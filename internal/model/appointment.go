package model

import (
	"github.com/lib/pq"

	"github.com/jwalitptl/therapy-scheduler/internal/scheduling"
)

type AppointmentStatus string

const (
	AppointmentStatusScheduled AppointmentStatus = "scheduled"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
)

type Appointment struct {
	ID           string            `db:"id" json:"id"`
	ClientID     string            `db:"client_id" json:"client_id"`
	ClientEmail  string            `db:"client_email" json:"client_email,omitempty"`
	RoomID       string            `db:"room_id" json:"room_id"`
	TherapistIDs pq.StringArray    `db:"therapist_ids" json:"therapist_ids"`
	Date         string            `db:"date" json:"date"`
	Slot         string            `db:"slot" json:"slot"`
	DurationDays int               `db:"duration_days" json:"duration_days"`
	Tab          string            `db:"tab" json:"tab"`
	Status       AppointmentStatus `db:"status" json:"status"`
	CancelReason *string           `db:"cancel_reason" json:"cancel_reason,omitempty"`
	Timestamps
}

func (a *Appointment) ToScheduling() scheduling.Appointment {
	return scheduling.Appointment{
		ID:           a.ID,
		Date:         a.Date,
		Slot:         a.Slot,
		RoomID:       a.RoomID,
		TherapistIDs: []string(a.TherapistIDs),
		ClientID:     a.ClientID,
		DurationDays: a.DurationDays,
		Tab:          scheduling.Tab(a.Tab),
	}
}

// BuildLedger keeps only appointments that still hold their slot.
func BuildLedger(appointments []*Appointment) scheduling.Ledger {
	ledger := make(scheduling.Ledger, 0, len(appointments))
	for _, a := range appointments {
		if a.Status == AppointmentStatusCancelled {
			continue
		}
		ledger = append(ledger, a.ToScheduling())
	}
	return ledger
}

type AppointmentFilters struct {
	Tab      string            `form:"tab" binding:"omitempty,tab"`
	ClientID string            `form:"client_id"`
	Status   AppointmentStatus `form:"status" binding:"omitempty,oneof=scheduled cancelled"`
	From     string            `form:"from" binding:"omitempty,isodate"`
	To       string            `form:"to" binding:"omitempty,isodate"`
}
