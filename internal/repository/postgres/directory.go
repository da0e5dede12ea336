package postgres

import (
	"context"
	"fmt"

	"github.com/jwalitptl/therapy-scheduler/internal/model"
)

func (r *therapistRepository) List(ctx context.Context) ([]*model.Therapist, error) {
	query := `
		SELECT id, name, gender, email, sort_order, active, created_at, updated_at
		FROM therapists
		WHERE active = TRUE
		ORDER BY sort_order ASC, id ASC
	`
	var therapists []*model.Therapist
	if err := r.db.SelectContext(ctx, &therapists, query); err != nil {
		return nil, fmt.Errorf("failed to list therapists: %w", err)
	}
	return therapists, nil
}

func (r *roomRepository) List(ctx context.Context) ([]*model.Room, error) {
	query := `
		SELECT id, name, sort_order, active, created_at, updated_at
		FROM rooms
		WHERE active = TRUE
		ORDER BY sort_order ASC, id ASC
	`
	var rooms []*model.Room
	if err := r.db.SelectContext(ctx, &rooms, query); err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	return rooms, nil
}
