package search

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"

	"github.com/memoro/memoro/internal/store"
)

// ContactStore is the contact search surface of the data store. Every
// method is scoped to a single user.
type ContactStore interface {
	TermContacts(ctx context.Context, userID uuid.UUID, query string, limit int) ([]store.ContactMatch, error)
	FuzzyContacts(ctx context.Context, userID uuid.UUID, query string, threshold float64, limit int) ([]store.ContactMatch, error)
}

// InteractionStore is the interaction search surface of the data store.
// Every method is scoped to a single user.
type InteractionStore interface {
	TermInteractions(ctx context.Context, userID uuid.UUID, query string, limit int) ([]store.InteractionMatch, error)
	FuzzyInteractions(ctx context.Context, userID uuid.UUID, query string, threshold float64, limit int) ([]store.InteractionMatch, error)
	SemanticInteractions(ctx context.Context, userID uuid.UUID, embedding pgvector.Vector, limit int) ([]store.InteractionMatch, error)
}

// Embedder resolves query text to an embedding vector.
type Embedder interface {
	Embed(ctx context.Context, text string) (*pgvector.Vector, error)
}

// query carries one validated search request through the per-entity
// searchers. Embedding is set only for semantic mode.
type query struct {
	userID    uuid.UUID
	text      string
	mode      Mode
	embedding *pgvector.Vector
	limit     int
}

// contactSearcher runs one search mode against contact rows and projects
// matches into normalized results. Contacts carry no embedding column, so
// semantic mode yields no contact results.
type contactSearcher struct {
	store     ContactStore
	threshold float64
}

func (cs *contactSearcher) search(ctx context.Context, q query) ([]Result, error) {
	var matches []store.ContactMatch
	var err error

	switch q.mode {
	case ModeTerm:
		matches, err = cs.store.TermContacts(ctx, q.userID, q.text, q.limit)
	case ModeFuzzy:
		matches, err = cs.store.FuzzyContacts(ctx, q.userID, q.text, cs.threshold, q.limit)
	case ModeSemantic:
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidMode, q.mode)
	}
	if err != nil {
		return nil, fmt.Errorf("contact search failed: %w", err)
	}

	results := make([]Result, 0, len(matches))
	for _, m := range matches {
		results = append(results, Result{
			Type:  EntityContact,
			Score: m.Score,
			Contact: &ContactResult{
				ID:         m.ID,
				FirstName:  m.FirstName,
				LastName:   m.LastName,
				Birthday:   m.Birthday,
				LatestNews: m.LatestNews,
			},
		})
	}
	return results, nil
}

// interactionSearcher runs one search mode against interaction rows and
// projects matches into normalized results.
type interactionSearcher struct {
	store     InteractionStore
	threshold float64
}

func (is *interactionSearcher) search(ctx context.Context, q query) ([]Result, error) {
	var matches []store.InteractionMatch
	var err error

	switch q.mode {
	case ModeTerm:
		matches, err = is.store.TermInteractions(ctx, q.userID, q.text, q.limit)
	case ModeFuzzy:
		matches, err = is.store.FuzzyInteractions(ctx, q.userID, q.text, is.threshold, q.limit)
	case ModeSemantic:
		if q.embedding == nil {
			return nil, fmt.Errorf("%w: no query embedding resolved", ErrEmbeddingUnavailable)
		}
		matches, err = is.store.SemanticInteractions(ctx, q.userID, *q.embedding, q.limit)
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidMode, q.mode)
	}
	if err != nil {
		return nil, fmt.Errorf("interaction search failed: %w", err)
	}

	results := make([]Result, 0, len(matches))
	for _, m := range matches {
		results = append(results, Result{
			Type:  EntityInteraction,
			Score: m.Score,
			Interaction: &InteractionResult{
				ID:               m.ID,
				ContactID:        m.ContactID,
				InteractionDate:  m.InteractionDate,
				Notes:            m.Notes,
				Location:         m.Location,
				ContactFirstName: m.ContactFirstName,
				ContactLastName:  m.ContactLastName,
			},
		})
	}
	return results, nil
}
