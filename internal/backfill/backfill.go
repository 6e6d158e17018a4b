package backfill

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"github.com/pgvector/pgvector-go"

	"github.com/memoro/memoro/internal/store"
)

// InteractionStore is the persistence surface the backfiller needs.
type InteractionStore interface {
	ListInteractionsMissingEmbedding(ctx context.Context, limit int) ([]store.Interaction, error)
	SetInteractionEmbedding(ctx context.Context, id uuid.UUID, embedding pgvector.Vector) error
}

// Embedder resolves interaction text to embedding vectors.
type Embedder interface {
	Embed(ctx context.Context, text string) (*pgvector.Vector, error)
	EmbedBatch(ctx context.Context, texts []string) ([]*pgvector.Vector, error)
}

// Backfiller computes and stores embeddings for interactions that were
// created without one. Interactions are processed in batches through a
// bounded worker pool.
type Backfiller struct {
	store      InteractionStore
	embedder   Embedder
	batchSize  int
	workers    int
	maxRetries int
	retryDelay time.Duration
	logger     *slog.Logger
}

// Option configures a Backfiller.
type Option func(*Backfiller) error

// WithBatchSize sets how many interactions are fetched per batch.
// Default is 100.
func WithBatchSize(size int) Option {
	return func(b *Backfiller) error {
		if size < 1 {
			return fmt.Errorf("batch size must be positive: %d", size)
		}
		b.batchSize = size
		return nil
	}
}

// WithWorkers sets the worker pool size. Default is 4.
func WithWorkers(workers int) Option {
	return func(b *Backfiller) error {
		if workers < 1 {
			return fmt.Errorf("worker count must be positive: %d", workers)
		}
		b.workers = workers
		return nil
	}
}

// WithRetry sets per-interaction retry behavior for embedding calls.
// Defaults are 3 attempts with a 1s base delay.
func WithRetry(maxRetries int, baseDelay time.Duration) Option {
	return func(b *Backfiller) error {
		if maxRetries < 1 {
			return fmt.Errorf("max retries must be positive: %d", maxRetries)
		}
		b.maxRetries = maxRetries
		b.retryDelay = baseDelay
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(b *Backfiller) error {
		if logger == nil {
			logger = slog.Default()
		}
		b.logger = logger
		return nil
	}
}

// New creates a backfiller.
func New(s InteractionStore, embedder Embedder, opts ...Option) (*Backfiller, error) {
	if s == nil {
		return nil, ErrStoreRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	b := &Backfiller{
		store:      s,
		embedder:   embedder,
		batchSize:  100,
		workers:    4,
		maxRetries: 3,
		retryDelay: time.Second,
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(b); err != nil {
			return nil, err
		}
	}

	return b, nil
}

// Run processes batches until no interactions are missing embeddings.
// Returns the number of interactions embedded. A batch in which every item
// fails aborts the run; otherwise failed items are left NULL for the next
// run to retry.
func (b *Backfiller) Run(ctx context.Context) (int, error) {
	total := 0
	pool, err := ants.NewPool(b.workers)
	if err != nil {
		return 0, fmt.Errorf("failed to create worker pool: %w", err)
	}
	defer pool.Release()

	for {
		if err := ctx.Err(); err != nil {
			return total, err
		}

		batch, err := b.store.ListInteractionsMissingEmbedding(ctx, b.batchSize)
		if err != nil {
			return total, fmt.Errorf("failed to list interactions: %w", err)
		}
		if len(batch) == 0 {
			break
		}

		succeeded, err := b.processBatch(ctx, pool, batch)
		total += succeeded
		if err != nil {
			return total, err
		}
		if succeeded == 0 {
			return total, fmt.Errorf("embedding backfill stalled: all %d interactions in batch failed", len(batch))
		}

		b.logger.Info("backfill batch completed", "embedded", succeeded, "batch", len(batch), "total", total)

		if len(batch) < b.batchSize {
			break
		}
	}

	b.logger.Info("backfill completed", "embedded", total)
	return total, nil
}

// processBatch embeds one batch. The whole batch goes through a single
// EmbedBatch call first; if that fails, each item is retried individually
// through the worker pool so one bad row cannot sink the rest.
func (b *Backfiller) processBatch(ctx context.Context, pool *ants.Pool, batch []store.Interaction) (int, error) {
	texts := make([]string, len(batch))
	for i, interaction := range batch {
		texts[i] = embeddingText(interaction)
	}

	embeddings, err := b.embedder.EmbedBatch(ctx, texts)
	if err != nil || len(embeddings) != len(batch) {
		b.logger.Warn("batch embedding failed, retrying items individually", "batch", len(batch), "error", err)
		return b.processItems(ctx, pool, batch)
	}

	succeeded := 0
	for i, interaction := range batch {
		embedding := embeddings[i]
		if embedding == nil || len(embedding.Slice()) == 0 {
			b.logger.Warn("embedding provider returned empty vector", "interaction_id", interaction.ID)
			continue
		}
		if err := b.store.SetInteractionEmbedding(ctx, interaction.ID, *embedding); err != nil {
			b.logger.Warn("failed to store embedding", "interaction_id", interaction.ID, "error", err)
			continue
		}
		succeeded++
	}
	return succeeded, nil
}

// processItems embeds items one at a time through the worker pool.
// Individual item failures are logged and skipped; only pool submission
// errors abort.
func (b *Backfiller) processItems(ctx context.Context, pool *ants.Pool, batch []store.Interaction) (int, error) {
	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0

	for _, interaction := range batch {
		interaction := interaction
		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			if err := b.embedOne(ctx, interaction); err != nil {
				b.logger.Warn("failed to embed interaction", "interaction_id", interaction.ID, "error", err)
				return
			}
			mu.Lock()
			succeeded++
			mu.Unlock()
		})
		if err != nil {
			wg.Done()
			wg.Wait()
			return succeeded, fmt.Errorf("failed to submit embedding task: %w", err)
		}
	}

	wg.Wait()
	return succeeded, nil
}

// embedOne computes and stores the embedding for a single interaction,
// retrying the embedding call with exponential backoff.
func (b *Backfiller) embedOne(ctx context.Context, interaction store.Interaction) error {
	text := embeddingText(interaction)

	var embedding *pgvector.Vector
	err := retryWithBackoff(ctx, func() error {
		var err error
		embedding, err = b.embedder.Embed(ctx, text)
		return err
	}, b.maxRetries, b.retryDelay)
	if err != nil {
		return fmt.Errorf("failed to generate embedding after %d attempts: %w", b.maxRetries, err)
	}
	if embedding == nil || len(embedding.Slice()) == 0 {
		return fmt.Errorf("embedding provider returned empty vector")
	}

	if err := b.store.SetInteractionEmbedding(ctx, interaction.ID, *embedding); err != nil {
		return fmt.Errorf("failed to store embedding: %w", err)
	}
	return nil
}

// embeddingText is the searchable text of an interaction: notes plus
// location when present. Must stay aligned with the fields semantic search
// queries against.
func embeddingText(interaction store.Interaction) string {
	if interaction.Location != nil && *interaction.Location != "" {
		return interaction.Notes + "\n" + *interaction.Location
	}
	return interaction.Notes
}
