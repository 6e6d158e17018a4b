package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"
)

// All search queries filter on user_id as the first predicate. Tenant
// isolation is enforced here, not left to callers.

// TermContacts finds the user's contacts whose name or latest news contains
// the query case-insensitively. Term matching carries no relevance
// gradient, so every match scores a constant 1.0.
func (s *Store) TermContacts(ctx context.Context, userID uuid.UUID, query string, limit int) ([]ContactMatch, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, first_name, last_name, birthday, latest_news, 1.0::float8 AS score
		 FROM contacts
		 WHERE user_id = $1
		   AND (first_name ILIKE '%' || $2 || '%'
		     OR last_name ILIKE '%' || $2 || '%'
		     OR latest_news ILIKE '%' || $2 || '%')
		 ORDER BY first_name, last_name, id
		 LIMIT $3`,
		userID, query, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to term search contacts: %w", err)
	}
	return scanContactMatches(rows)
}

// FuzzyContacts finds the user's contacts by trigram similarity between the
// query and the full name or latest news. The reported score is the maximum
// similarity across fields; rows at or below the threshold are excluded.
func (s *Store) FuzzyContacts(ctx context.Context, userID uuid.UUID, query string, threshold float64, limit int) ([]ContactMatch, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, first_name, last_name, birthday, latest_news,
		        GREATEST(similarity(first_name || ' ' || last_name, $2),
		                 similarity(COALESCE(latest_news, ''), $2))::float8 AS score
		 FROM contacts
		 WHERE user_id = $1
		   AND GREATEST(similarity(first_name || ' ' || last_name, $2),
		                similarity(COALESCE(latest_news, ''), $2)) > $3
		 ORDER BY score DESC, first_name, last_name, id
		 LIMIT $4`,
		userID, query, threshold, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to fuzzy search contacts: %w", err)
	}
	return scanContactMatches(rows)
}

// TermInteractions finds the user's interactions whose notes or location
// contains the query case-insensitively. Ties share the constant 1.0 score,
// so rows come back most recent first.
func (s *Store) TermInteractions(ctx context.Context, userID uuid.UUID, query string, limit int) ([]InteractionMatch, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT i.id, i.contact_id, i.interaction_date, i.notes, i.location,
		        c.first_name AS contact_first_name, c.last_name AS contact_last_name,
		        1.0::float8 AS score
		 FROM interactions i
		 JOIN contacts c ON c.id = i.contact_id
		 WHERE i.user_id = $1
		   AND (i.notes ILIKE '%' || $2 || '%'
		     OR i.location ILIKE '%' || $2 || '%')
		 ORDER BY i.interaction_date DESC, i.id
		 LIMIT $3`,
		userID, query, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to term search interactions: %w", err)
	}
	return scanInteractionMatches(rows)
}

// FuzzyInteractions finds the user's interactions by trigram similarity
// between the query and the notes or location, thresholded and ordered by
// descending similarity.
func (s *Store) FuzzyInteractions(ctx context.Context, userID uuid.UUID, query string, threshold float64, limit int) ([]InteractionMatch, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT i.id, i.contact_id, i.interaction_date, i.notes, i.location,
		        c.first_name AS contact_first_name, c.last_name AS contact_last_name,
		        GREATEST(similarity(i.notes, $2),
		                 similarity(COALESCE(i.location, ''), $2))::float8 AS score
		 FROM interactions i
		 JOIN contacts c ON c.id = i.contact_id
		 WHERE i.user_id = $1
		   AND GREATEST(similarity(i.notes, $2),
		                similarity(COALESCE(i.location, ''), $2)) > $3
		 ORDER BY score DESC, i.interaction_date DESC, i.id
		 LIMIT $4`,
		userID, query, threshold, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to fuzzy search interactions: %w", err)
	}
	return scanInteractionMatches(rows)
}

// SemanticInteractions finds the user's interactions nearest to the query
// embedding by cosine distance. Only rows with a stored embedding
// participate. Score is 1 - distance, floored at zero so vectors pointing
// away from the query read as zero relevance rather than negative.
func (s *Store) SemanticInteractions(ctx context.Context, userID uuid.UUID, embedding pgvector.Vector, limit int) ([]InteractionMatch, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT i.id, i.contact_id, i.interaction_date, i.notes, i.location,
		        c.first_name AS contact_first_name, c.last_name AS contact_last_name,
		        GREATEST(0.0, 1.0 - (i.embedding <=> $2))::float8 AS score
		 FROM interactions i
		 JOIN contacts c ON c.id = i.contact_id
		 WHERE i.user_id = $1
		   AND i.embedding IS NOT NULL
		 ORDER BY i.embedding <=> $2, i.interaction_date DESC, i.id
		 LIMIT $3`,
		userID, embedding, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to semantic search interactions: %w", err)
	}
	return scanInteractionMatches(rows)
}

func scanContactMatches(rows pgx.Rows) ([]ContactMatch, error) {
	defer rows.Close()

	var matches []ContactMatch
	for rows.Next() {
		var m ContactMatch
		if err := rows.Scan(&m.ID, &m.FirstName, &m.LastName, &m.Birthday, &m.LatestNews, &m.Score); err != nil {
			return nil, fmt.Errorf("failed to scan contact match: %w", err)
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

func scanInteractionMatches(rows pgx.Rows) ([]InteractionMatch, error) {
	defer rows.Close()

	var matches []InteractionMatch
	for rows.Next() {
		var m InteractionMatch
		if err := rows.Scan(
			&m.ID, &m.ContactID, &m.InteractionDate, &m.Notes, &m.Location,
			&m.ContactFirstName, &m.ContactLastName, &m.Score,
		); err != nil {
			return nil, fmt.Errorf("failed to scan interaction match: %w", err)
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}
