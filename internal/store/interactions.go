package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

// CreateInteraction inserts a logged interaction. The embedding column is
// left NULL; it is populated later by the backfill job.
func (s *Store) CreateInteraction(ctx context.Context, userID, contactID uuid.UUID, date time.Time, notes string, location *string) (*Interaction, error) {
	var i Interaction
	err := s.pool.QueryRow(ctx,
		`INSERT INTO interactions (user_id, contact_id, interaction_date, notes, location)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, user_id, contact_id, interaction_date, notes, location, created_at, updated_at`,
		userID, contactID, date, notes, location,
	).Scan(
		&i.ID, &i.UserID, &i.ContactID, &i.InteractionDate,
		&i.Notes, &i.Location, &i.CreatedAt, &i.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create interaction: %w", err)
	}
	return &i, nil
}

// ListInteractionsMissingEmbedding returns interactions whose embedding has
// not been computed yet, oldest first
func (s *Store) ListInteractionsMissingEmbedding(ctx context.Context, limit int) ([]Interaction, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, contact_id, interaction_date, notes, location, created_at, updated_at
		 FROM interactions
		 WHERE embedding IS NULL
		 ORDER BY created_at, id
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list interactions missing embedding: %w", err)
	}
	defer rows.Close()

	var interactions []Interaction
	for rows.Next() {
		var i Interaction
		if err := rows.Scan(
			&i.ID, &i.UserID, &i.ContactID, &i.InteractionDate,
			&i.Notes, &i.Location, &i.CreatedAt, &i.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan interaction: %w", err)
		}
		interactions = append(interactions, i)
	}
	return interactions, rows.Err()
}

// SetInteractionEmbedding stores the computed embedding for an interaction
func (s *Store) SetInteractionEmbedding(ctx context.Context, id uuid.UUID, embedding pgvector.Vector) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE interactions SET embedding = $2, updated_at = NOW() WHERE id = $1`,
		id, embedding,
	)
	if err != nil {
		return fmt.Errorf("failed to set interaction embedding: %w", err)
	}
	return nil
}
