package scheduling

import (
	"sort"
	"strings"

	"github.com/google/uuid"
)

// Tab is the scheduling context an appointment belongs to.
type Tab string

const (
	TabTherapy Tab = "therapy"
	TabDoctor  Tab = "doctor"
)

// appointmentNamespace seeds the name-based appointment ids.
var appointmentNamespace = uuid.MustParse("5b8f6b0e-3c1d-4c55-9a57-2f0d1f6a9e21")

type Appointment struct {
	ID           string   `json:"id"`
	Date         string   `json:"date"`
	Slot         string   `json:"slot"`
	RoomID       string   `json:"room_id"`
	TherapistIDs []string `json:"therapist_ids"`
	ClientID     string   `json:"client_id"`
	DurationDays int      `json:"duration_days,omitempty"`
	Tab          Tab      `json:"tab,omitempty"`
}

// AppointmentID derives the id for a booking. Identical requests produce the
// same id regardless of therapist order, so a repeated submission collides
// instead of duplicating.
func AppointmentID(clientID string, therapistIDs []string, roomID, date, slot string) string {
	ids := append([]string(nil), therapistIDs...)
	sort.Strings(ids)
	key := strings.Join([]string{clientID, strings.Join(ids, ","), roomID, date, slot}, "|")
	return uuid.NewSHA1(appointmentNamespace, []byte(key)).String()
}

// Occupies reports whether the appointment holds slot on date. Multi-day
// appointments hold the same slot on each consecutive day of their span.
func (a Appointment) Occupies(date, slot string) bool {
	if a.Slot != slot {
		return false
	}
	if a.Date == date {
		return true
	}
	if a.DurationDays <= 1 {
		return false
	}
	start, err := ParseDate(a.Date)
	if err != nil {
		return false
	}
	d, err := ParseDate(date)
	if err != nil {
		return false
	}
	offset := int(d.Sub(start).Hours() / 24)
	return offset >= 0 && offset < a.DurationDays
}

func (a Appointment) HasTherapist(id string) bool {
	return contains(a.TherapistIDs, id)
}

// Ledger is a read-only snapshot of existing appointments.
type Ledger []Appointment

// ForTab returns the appointments booked under tab. An empty tab keeps all.
func (l Ledger) ForTab(tab Tab) Ledger {
	if tab == "" {
		return l
	}
	out := make(Ledger, 0, len(l))
	for _, a := range l {
		if a.Tab == tab {
			out = append(out, a)
		}
	}
	return out
}

// At returns the appointments occupying slot on date.
func (l Ledger) At(date, slot string) []Appointment {
	var out []Appointment
	for _, a := range l {
		if a.Occupies(date, slot) {
			out = append(out, a)
		}
	}
	return out
}

// ForClient returns the client's appointments in ledger order.
func (l Ledger) ForClient(clientID string) Ledger {
	var out Ledger
	for _, a := range l {
		if a.ClientID == clientID {
			out = append(out, a)
		}
	}
	return out
}

// Snapshot is everything one engine call reads.
type Snapshot struct {
	Directory Directory
	Calendars Calendars
	Ledger    Ledger
}
