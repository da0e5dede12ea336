package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/therapy-scheduler/internal/model"
	"github.com/jwalitptl/therapy-scheduler/internal/repository"
)

const appointmentColumns = `
	id, client_id, client_email, room_id, therapist_ids, to_char(date, 'YYYY-MM-DD') AS date, slot,
	duration_days, tab, status, cancel_reason, created_at, updated_at
`

func (r *appointmentRepository) ListRange(ctx context.Context, from, to string) ([]*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE status = $1
		  AND date <= $3
		  AND date + GREATEST(duration_days, 1) - 1 >= $2
		ORDER BY date ASC, slot ASC, created_at ASC
	`
	var appointments []*model.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query, model.AppointmentStatusScheduled, from, to); err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE 1 = 1
	`
	args := []interface{}{}
	argCount := 1

	if filters != nil {
		if filters.Tab != "" {
			query += fmt.Sprintf(" AND tab = $%d", argCount)
			args = append(args, filters.Tab)
			argCount++
		}
		if filters.ClientID != "" {
			query += fmt.Sprintf(" AND client_id = $%d", argCount)
			args = append(args, filters.ClientID)
			argCount++
		}
		if filters.Status != "" {
			query += fmt.Sprintf(" AND status = $%d", argCount)
			args = append(args, filters.Status)
			argCount++
		}
		if filters.From != "" {
			query += fmt.Sprintf(" AND date >= $%d", argCount)
			args = append(args, filters.From)
			argCount++
		}
		if filters.To != "" {
			query += fmt.Sprintf(" AND date <= $%d", argCount)
			args = append(args, filters.To)
			argCount++
		}
	}

	query += " ORDER BY date ASC, slot ASC"

	var appointments []*model.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) Get(ctx context.Context, id string) (*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE id = $1
	`
	var appointment model.Appointment
	err := r.db.GetContext(ctx, &appointment, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return &appointment, nil
}

func (r *appointmentRepository) CreateBatch(ctx context.Context, appointments []*model.Appointment) ([]string, error) {
	query := `
		INSERT INTO appointments (
			id, client_id, client_email, room_id, therapist_ids, date, slot,
			duration_days, tab, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			client_email = EXCLUDED.client_email,
			cancel_reason = NULL,
			updated_at = EXCLUDED.updated_at
		WHERE appointments.status = 'cancelled'
	`
	var created []string
	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		now := time.Now().UTC()
		for _, a := range appointments {
			a.CreatedAt = now
			a.UpdatedAt = now
			if a.Status == "" {
				a.Status = model.AppointmentStatusScheduled
			}
			result, err := tx.ExecContext(ctx, query,
				a.ID,
				a.ClientID,
				a.ClientEmail,
				a.RoomID,
				a.TherapistIDs,
				a.Date,
				a.Slot,
				a.DurationDays,
				a.Tab,
				a.Status,
				a.CreatedAt,
				a.UpdatedAt,
			)
			if err != nil {
				return fmt.Errorf("failed to create appointment: %w", err)
			}
			rows, err := result.RowsAffected()
			if err != nil {
				return fmt.Errorf("failed to get rows affected: %w", err)
			}
			if rows > 0 {
				created = append(created, a.ID)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (r *appointmentRepository) Cancel(ctx context.Context, id string, reason string) error {
	query := `
		UPDATE appointments
		SET status = $1, cancel_reason = $2, updated_at = $3
		WHERE id = $4 AND status <> $1
	`
	var cancelReason *string
	if reason != "" {
		cancelReason = &reason
	}

	result, err := r.db.ExecContext(ctx, query, model.AppointmentStatusCancelled, cancelReason, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to cancel appointment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}

	return nil
}
