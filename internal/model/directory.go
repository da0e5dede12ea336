package model

import (
	"github.com/jwalitptl/therapy-scheduler/internal/scheduling"
)

type Therapist struct {
	ID        string `db:"id" json:"id"`
	Name      string `db:"name" json:"name"`
	Gender    string `db:"gender" json:"gender"`
	Email     string `db:"email" json:"email,omitempty"`
	SortOrder int    `db:"sort_order" json:"-"`
	Active    bool   `db:"active" json:"active"`
	Timestamps
}

func (t *Therapist) ToScheduling() scheduling.Therapist {
	return scheduling.Therapist{ID: t.ID, Name: t.Name, Gender: scheduling.Gender(t.Gender)}
}

type Room struct {
	ID        string `db:"id" json:"id"`
	Name      string `db:"name" json:"name"`
	SortOrder int    `db:"sort_order" json:"-"`
	Active    bool   `db:"active" json:"active"`
	Timestamps
}

func (r *Room) ToScheduling() scheduling.Room {
	return scheduling.Room{ID: r.ID, Name: r.Name}
}

type ResourceKind string

const (
	ResourceRoom      ResourceKind = "room"
	ResourceTherapist ResourceKind = "therapist"
)

// AvailabilitySlot is one open slot for a room or therapist on a date.
type AvailabilitySlot struct {
	ResourceKind ResourceKind `db:"resource_kind" json:"resource_kind"`
	ResourceID   string       `db:"resource_id" json:"resource_id"`
	Date         string       `db:"date" json:"date"`
	Slot         string       `db:"slot" json:"slot"`
}

// BuildDirectory converts stored rows into the engine's directory, keeping
// row order.
func BuildDirectory(therapists []*Therapist, rooms []*Room) scheduling.Directory {
	dir := scheduling.Directory{
		Therapists: make([]scheduling.Therapist, 0, len(therapists)),
		Rooms:      make([]scheduling.Room, 0, len(rooms)),
	}
	for _, t := range therapists {
		dir.Therapists = append(dir.Therapists, t.ToScheduling())
	}
	for _, r := range rooms {
		dir.Rooms = append(dir.Rooms, r.ToScheduling())
	}
	return dir
}

// BuildCalendars groups availability rows by resource kind.
func BuildCalendars(slots []*AvailabilitySlot) scheduling.Calendars {
	cals := scheduling.NewCalendars()
	for _, s := range slots {
		switch s.ResourceKind {
		case ResourceRoom:
			cals.Rooms.Add(s.ResourceID, s.Date, s.Slot)
		case ResourceTherapist:
			cals.Therapists.Add(s.ResourceID, s.Date, s.Slot)
		}
	}
	return cals
}
