package postgres

import (
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/therapy-scheduler/internal/repository"
)

type therapistRepository struct {
	db *sqlx.DB
}

type roomRepository struct {
	db *sqlx.DB
}

type availabilityRepository struct {
	BaseRepository
}

type appointmentRepository struct {
	BaseRepository
}

func NewTherapistRepository(db *sqlx.DB) repository.TherapistRepository {
	return &therapistRepository{db: db}
}

func NewRoomRepository(db *sqlx.DB) repository.RoomRepository {
	return &roomRepository{db: db}
}

func NewAvailabilityRepository(db *sqlx.DB) repository.AvailabilityRepository {
	return &availabilityRepository{BaseRepository: NewBaseRepository(db)}
}

func NewAppointmentRepository(db *sqlx.DB) repository.AppointmentRepository {
	return &appointmentRepository{BaseRepository: NewBaseRepository(db)}
}
