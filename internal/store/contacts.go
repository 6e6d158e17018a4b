package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// FindOrCreateContact returns the user's contact matching the given name
// case-insensitively, creating it when absent. Name matching on both first
// and last name keeps repeated mentions of the same person on one record.
func (s *Store) FindOrCreateContact(ctx context.Context, userID uuid.UUID, firstName, lastName string, birthday *time.Time, latestNews *string) (*Contact, error) {
	var c Contact
	err := s.pool.QueryRow(ctx,
		`SELECT id, user_id, first_name, last_name, birthday, latest_news, created_at, updated_at
		 FROM contacts
		 WHERE user_id = $1 AND LOWER(first_name) = LOWER($2) AND LOWER(last_name) = LOWER($3)`,
		userID, firstName, lastName,
	).Scan(
		&c.ID, &c.UserID, &c.FirstName, &c.LastName, &c.Birthday,
		&c.LatestNews, &c.CreatedAt, &c.UpdatedAt,
	)
	if err == nil {
		return &c, nil
	}
	if err != pgx.ErrNoRows {
		return nil, fmt.Errorf("failed to find contact: %w", err)
	}

	err = s.pool.QueryRow(ctx,
		`INSERT INTO contacts (user_id, first_name, last_name, birthday, latest_news)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, user_id, first_name, last_name, birthday, latest_news, created_at, updated_at`,
		userID, firstName, lastName, birthday, latestNews,
	).Scan(
		&c.ID, &c.UserID, &c.FirstName, &c.LastName, &c.Birthday,
		&c.LatestNews, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create contact: %w", err)
	}
	return &c, nil
}

// UpdateLatestNews replaces the contact's latest_news with the given text
func (s *Store) UpdateLatestNews(ctx context.Context, contactID uuid.UUID, news string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE contacts SET latest_news = $2, updated_at = NOW() WHERE id = $1`,
		contactID, news,
	)
	if err != nil {
		return fmt.Errorf("failed to update latest news: %w", err)
	}
	return nil
}
