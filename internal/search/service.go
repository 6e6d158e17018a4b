package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"golang.org/x/sync/errgroup"
)

const (
	defaultFuzzyThreshold = 0.3
	defaultEmbedTimeout   = 10 * time.Second
)

// Service is the single entry point for unified search across contacts and
// interactions. Each call is independent and safe to run concurrently.
type Service struct {
	contacts     *contactSearcher
	interactions *interactionSearcher
	embedder     Embedder
	embedTimeout time.Duration
	logger       *slog.Logger
}

// Option configures a Service.
type Option func(*Service) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithFuzzyThreshold sets the minimum trigram similarity for fuzzy matches.
// Default is 0.3, matching pg_trgm's default.
func WithFuzzyThreshold(threshold float64) Option {
	return func(s *Service) error {
		if threshold < 0 || threshold >= 1 {
			return fmt.Errorf("fuzzy threshold must be in [0, 1): %v", threshold)
		}
		s.contacts.threshold = threshold
		s.interactions.threshold = threshold
		return nil
	}
}

// WithEmbedTimeout bounds how long semantic mode waits for the query
// embedding. Default is 10s.
func WithEmbedTimeout(timeout time.Duration) Option {
	return func(s *Service) error {
		if timeout <= 0 {
			return fmt.Errorf("embed timeout must be positive: %v", timeout)
		}
		s.embedTimeout = timeout
		return nil
	}
}

// NewService creates a search service. The embedder may be nil, in which
// case semantic searches fail with ErrEmbeddingUnavailable.
func NewService(contacts ContactStore, interactions InteractionStore, embedder Embedder, opts ...Option) (*Service, error) {
	if contacts == nil {
		return nil, ErrContactStoreRequired
	}
	if interactions == nil {
		return nil, ErrInteractionStoreRequired
	}

	s := &Service{
		contacts:     &contactSearcher{store: contacts, threshold: defaultFuzzyThreshold},
		interactions: &interactionSearcher{store: interactions, threshold: defaultFuzzyThreshold},
		embedder:     embedder,
		embedTimeout: defaultEmbedTimeout,
		logger:       slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Search runs a unified search for one user and returns a single merged
// list ordered by descending score, truncated to limit. An empty return
// always means zero matches; every failure surfaces as a typed error.
func (s *Service) Search(ctx context.Context, userID uuid.UUID, queryText string, mode Mode, limit int) ([]Result, error) {
	contactResults, interactionResults, err := s.dispatch(ctx, userID, queryText, mode, limit)
	if err != nil {
		return nil, err
	}

	merged := make([]Result, 0, len(contactResults)+len(interactionResults))
	merged = append(merged, contactResults...)
	merged = append(merged, interactionResults...)
	sortResults(merged)
	if limit > 0 && len(merged) > limit {
		merged = merged[:limit]
	}

	s.logger.Info("search completed",
		"user_id", userID,
		"mode", mode,
		"query", queryText,
		"results", len(merged),
	)
	return merged, nil
}

// Buckets holds per-entity search results, each independently capped at
// the requested limit.
type Buckets struct {
	Contacts     []Result
	Interactions []Result
}

// SearchBuckets runs a unified search and returns the contact and
// interaction results un-merged.
func (s *Service) SearchBuckets(ctx context.Context, userID uuid.UUID, queryText string, mode Mode, limit int) (*Buckets, error) {
	contactResults, interactionResults, err := s.dispatch(ctx, userID, queryText, mode, limit)
	if err != nil {
		return nil, err
	}

	sortResults(contactResults)
	sortResults(interactionResults)

	s.logger.Info("search completed",
		"user_id", userID,
		"mode", mode,
		"query", queryText,
		"results", len(contactResults)+len(interactionResults),
	)
	return &Buckets{Contacts: contactResults, Interactions: interactionResults}, nil
}

// dispatch validates the request, resolves the query embedding for semantic
// mode, and fans out to both per-entity searchers concurrently.
func (s *Service) dispatch(ctx context.Context, userID uuid.UUID, queryText string, mode Mode, limit int) ([]Result, []Result, error) {
	if !mode.Valid() {
		return nil, nil, fmt.Errorf("%w: %q", ErrInvalidMode, mode)
	}
	if strings.TrimSpace(queryText) == "" {
		return nil, nil, ErrEmptyQuery
	}
	if limit <= 0 {
		return nil, nil, nil
	}

	q := query{userID: userID, text: queryText, mode: mode, limit: limit}

	if mode == ModeSemantic {
		embedding, err := s.resolveQueryEmbedding(ctx, queryText)
		if err != nil {
			return nil, nil, err
		}
		q.embedding = embedding
	}

	var contactResults, interactionResults []Result
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		contactResults, err = s.contacts.search(gCtx, q)
		return err
	})
	g.Go(func() error {
		var err error
		interactionResults, err = s.interactions.search(gCtx, q)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	if err := s.checkScores(contactResults); err != nil {
		return nil, nil, err
	}
	if err := s.checkScores(interactionResults); err != nil {
		return nil, nil, err
	}

	return contactResults, interactionResults, nil
}

// resolveQueryEmbedding produces the query vector for semantic mode under
// the configured timeout. Failures propagate; the mode is never silently
// downgraded.
func (s *Service) resolveQueryEmbedding(ctx context.Context, queryText string) (*pgvector.Vector, error) {
	if s.embedder == nil {
		return nil, fmt.Errorf("%w: no embedding provider configured", ErrEmbeddingUnavailable)
	}

	ctx, cancel := context.WithTimeout(ctx, s.embedTimeout)
	defer cancel()

	embedding, err := s.embedder.Embed(ctx, queryText)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: embedding query: %v", ErrUpstreamTimeout, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingUnavailable, err)
	}
	if embedding == nil || len(embedding.Slice()) == 0 {
		return nil, fmt.Errorf("%w: provider returned empty vector", ErrEmbeddingUnavailable)
	}
	return embedding, nil
}

// checkScores asserts every score lies in [0, 1]. An out-of-range score is
// a backend bug and must surface as an internal error, not a result.
func (s *Service) checkScores(results []Result) error {
	for _, r := range results {
		if r.Score < 0 || r.Score > 1 {
			s.logger.Error("backend returned out-of-range score",
				"entity_type", r.Type,
				"score", r.Score,
			)
			return fmt.Errorf("%w: %s scored %v", ErrInvalidScore, r.Type, r.Score)
		}
	}
	return nil
}
