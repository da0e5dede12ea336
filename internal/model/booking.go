package model

import (
	"github.com/jwalitptl/therapy-scheduler/internal/scheduling"
)

// PolicyOverride lets one request tighten or relax the clinic's gender rule.
type PolicyOverride struct {
	EnforceGenderMatch *bool  `json:"enforce_gender_match"`
	ClientGender       string `json:"client_gender" binding:"omitempty,oneof=male female"`
}

type CheckSlotRequest struct {
	Date         string   `json:"date" binding:"required,isodate"`
	Slot         string   `json:"slot" binding:"required,slot"`
	RoomID       string   `json:"room_id" binding:"required"`
	TherapistIDs []string `json:"therapist_ids" binding:"required,min=1,dive,required"`
	Tab          string   `json:"tab" binding:"omitempty,tab"`
	PolicyOverride
}

type RecurringCheckRequest struct {
	StartDate          string   `json:"start_date" binding:"required,isodate"`
	Days               int      `json:"days" binding:"required,min=1,max=366"`
	Slot               string   `json:"slot" binding:"required,slot"`
	RoomID             string   `json:"room_id" binding:"required"`
	TherapistIDs       []string `json:"therapist_ids" binding:"required,min=1,dive,required"`
	SkipNonWorkingDays bool     `json:"skip_non_working_days"`
	Tab                string   `json:"tab" binding:"omitempty,tab"`
	PolicyOverride
}

type AlternativesRequest struct {
	Date         string   `json:"date" binding:"required,isodate"`
	Slot         string   `json:"slot" binding:"required,slot"`
	RoomID       string   `json:"room_id" binding:"required"`
	TherapistIDs []string `json:"therapist_ids" binding:"required,min=1,dive,required"`
	Limit        int      `json:"limit" binding:"omitempty,min=1,max=50"`
	Tab          string   `json:"tab" binding:"omitempty,tab"`
	PolicyOverride
}

type BookRequest struct {
	RecurringCheckRequest
	ClientID      string `json:"client_id" binding:"required"`
	ClientEmail   string `json:"client_email" binding:"omitempty,email"`
	AcceptPartial bool   `json:"accept_partial"`
}

type CancelRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

type AlternativesResponse struct {
	Alternatives []scheduling.AlternativeView `json:"alternatives"`
	Message      string                       `json:"message,omitempty"`
}

type RecurringCheckResponse struct {
	Result scheduling.RecurringResult `json:"result"`
	Report scheduling.Report          `json:"report"`
}

type BookResponse struct {
	Created []*Appointment             `json:"created"`
	Skipped []string                   `json:"skipped,omitempty"`
	Result  scheduling.RecurringResult `json:"result"`
	Report  scheduling.Report          `json:"report"`
}

// BookingEvent is published after appointments are written or cancelled.
type BookingEvent struct {
	AppointmentIDs []string `json:"appointment_ids"`
	ClientID       string   `json:"client_id"`
	ClientEmail    string   `json:"client_email,omitempty"`
	RoomName       string   `json:"room_name"`
	TherapistNames []string `json:"therapist_names"`
	Slot           string   `json:"slot"`
	Dates          []string `json:"dates"`
	Tab            string   `json:"tab"`
}

const (
	EventAppointmentBooked    = "appointment.booked"
	EventAppointmentCancelled = "appointment.cancelled"
)
