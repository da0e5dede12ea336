package repository

import (
	"context"
	"errors"

	"github.com/jwalitptl/therapy-scheduler/internal/model"
)

var ErrNotFound = errors.New("not found")

// All repository interfaces in one file
type (
	TherapistRepository interface {
		List(ctx context.Context) ([]*model.Therapist, error)
	}

	RoomRepository interface {
		List(ctx context.Context) ([]*model.Room, error)
	}

	AvailabilityRepository interface {
		// ListRange returns open slots of one resource kind with from <= date <= to.
		ListRange(ctx context.Context, kind model.ResourceKind, from, to string) ([]*model.AvailabilitySlot, error)
		Upsert(ctx context.Context, slots []*model.AvailabilitySlot) error
	}

	AppointmentRepository interface {
		// ListRange returns appointments whose occupied span intersects
		// [from, to], including ones that started before from.
		ListRange(ctx context.Context, from, to string) ([]*model.Appointment, error)
		List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error)
		Get(ctx context.Context, id string) (*model.Appointment, error)
		// CreateBatch inserts in one transaction and returns the ids that
		// now hold their slot. A cancelled row with the same id is revived;
		// a scheduled one is left untouched.
		CreateBatch(ctx context.Context, appointments []*model.Appointment) ([]string, error)
		Cancel(ctx context.Context, id string, reason string) error
	}
)
