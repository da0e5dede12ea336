package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/therapy-scheduler/internal/model"
)

func (r *availabilityRepository) ListRange(ctx context.Context, kind model.ResourceKind, from, to string) ([]*model.AvailabilitySlot, error) {
	query := `
		SELECT resource_kind, resource_id, to_char(date, 'YYYY-MM-DD') AS date, slot
		FROM availability_slots
		WHERE resource_kind = $1 AND date BETWEEN $2 AND $3
		ORDER BY resource_id, date, slot
	`
	var slots []*model.AvailabilitySlot
	if err := r.db.SelectContext(ctx, &slots, query, kind, from, to); err != nil {
		return nil, fmt.Errorf("failed to list availability: %w", err)
	}
	return slots, nil
}

func (r *availabilityRepository) Upsert(ctx context.Context, slots []*model.AvailabilitySlot) error {
	query := `
		INSERT INTO availability_slots (resource_kind, resource_id, date, slot)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT DO NOTHING
	`
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		for _, s := range slots {
			if _, err := tx.ExecContext(ctx, query, s.ResourceKind, s.ResourceID, s.Date, s.Slot); err != nil {
				return fmt.Errorf("failed to upsert availability: %w", err)
			}
		}
		return nil
	})
}
