package backfill

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memoro/memoro/internal/store"
)

type fakeInteractionStore struct {
	mu       sync.Mutex
	missing  []store.Interaction
	embedded map[uuid.UUID]pgvector.Vector
	setErr   error
}

func newFakeInteractionStore(missing ...store.Interaction) *fakeInteractionStore {
	return &fakeInteractionStore{
		missing:  missing,
		embedded: make(map[uuid.UUID]pgvector.Vector),
	}
}

func (f *fakeInteractionStore) ListInteractionsMissingEmbedding(_ context.Context, limit int) ([]store.Interaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []store.Interaction
	for _, i := range f.missing {
		if _, done := f.embedded[i.ID]; !done {
			out = append(out, i)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (f *fakeInteractionStore) SetInteractionEmbedding(_ context.Context, id uuid.UUID, embedding pgvector.Vector) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return f.setErr
	}
	f.embedded[id] = embedding
	return nil
}

type fakeEmbedder struct {
	mu    sync.Mutex
	calls int
	texts []string
	err   error
	// failFirst makes only the first call fail, to exercise retry.
	failFirst bool
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) (*pgvector.Vector, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.texts = append(f.texts, text)
	if f.failFirst && f.calls == 1 {
		return nil, errors.New("transient failure")
	}
	if f.err != nil {
		return nil, f.err
	}
	v := pgvector.NewVector([]float32{0.5, 0.5})
	return &v, nil
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([]*pgvector.Vector, error) {
	out := make([]*pgvector.Vector, len(texts))
	for i, text := range texts {
		emb, err := f.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = emb
	}
	return out, nil
}

// nilVectorEmbedder returns a nil vector without an error, as a misbehaving
// provider might.
type nilVectorEmbedder struct {
	batchErr error
}

func (f *nilVectorEmbedder) Embed(context.Context, string) (*pgvector.Vector, error) {
	return nil, nil
}

func (f *nilVectorEmbedder) EmbedBatch(_ context.Context, texts []string) ([]*pgvector.Vector, error) {
	if f.batchErr != nil {
		return nil, f.batchErr
	}
	return make([]*pgvector.Vector, len(texts)), nil
}

func interactionFixture(notes string, location *string) store.Interaction {
	return store.Interaction{
		ID:              uuid.New(),
		UserID:          uuid.New(),
		ContactID:       uuid.New(),
		InteractionDate: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		Notes:           notes,
		Location:        location,
	}
}

func TestNew(t *testing.T) {
	t.Run("nil store", func(t *testing.T) {
		_, err := New(nil, &fakeEmbedder{})
		assert.Equal(t, ErrStoreRequired, err)
	})

	t.Run("nil embedder", func(t *testing.T) {
		_, err := New(newFakeInteractionStore(), nil)
		assert.Equal(t, ErrEmbedderRequired, err)
	})

	t.Run("invalid batch size", func(t *testing.T) {
		_, err := New(newFakeInteractionStore(), &fakeEmbedder{}, WithBatchSize(0))
		assert.Error(t, err)
	})
}

func TestRun(t *testing.T) {
	ctx := context.Background()

	t.Run("embeds all missing interactions", func(t *testing.T) {
		loc := "Starbucks"
		fs := newFakeInteractionStore(
			interactionFixture("coffee", &loc),
			interactionFixture("lunch", nil),
			interactionFixture("hike", nil),
		)
		b, err := New(fs, &fakeEmbedder{}, WithBatchSize(2), WithWorkers(2))
		require.NoError(t, err)

		embedded, err := b.Run(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, embedded)
		assert.Len(t, fs.embedded, 3)
	})

	t.Run("embedding text includes location when present", func(t *testing.T) {
		loc := "Starbucks"
		fs := newFakeInteractionStore(interactionFixture("coffee", &loc))
		emb := &fakeEmbedder{}
		b, err := New(fs, emb)
		require.NoError(t, err)

		_, err = b.Run(ctx)
		require.NoError(t, err)
		require.Len(t, emb.texts, 1)
		assert.Equal(t, "coffee\nStarbucks", emb.texts[0])
	})

	t.Run("falls back to per-item retry when the batch call fails", func(t *testing.T) {
		fs := newFakeInteractionStore(interactionFixture("coffee", nil))
		emb := &fakeEmbedder{failFirst: true}
		b, err := New(fs, emb, WithRetry(3, time.Millisecond))
		require.NoError(t, err)

		embedded, err := b.Run(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, embedded)
		assert.Equal(t, 2, emb.calls)
	})

	t.Run("skips nil vectors without storing them", func(t *testing.T) {
		fs := newFakeInteractionStore(interactionFixture("coffee", nil))
		b, err := New(fs, &nilVectorEmbedder{}, WithRetry(1, time.Millisecond))
		require.NoError(t, err)

		embedded, err := b.Run(ctx)
		assert.Error(t, err)
		assert.Zero(t, embedded)
		assert.Empty(t, fs.embedded)
	})

	t.Run("rejects nil vectors on the per-item path", func(t *testing.T) {
		fs := newFakeInteractionStore(interactionFixture("coffee", nil))
		emb := &nilVectorEmbedder{batchErr: errors.New("batch endpoint unavailable")}
		b, err := New(fs, emb, WithRetry(1, time.Millisecond))
		require.NoError(t, err)

		embedded, err := b.Run(ctx)
		assert.Error(t, err)
		assert.Zero(t, embedded)
		assert.Empty(t, fs.embedded)
	})

	t.Run("aborts when every item in a batch fails", func(t *testing.T) {
		fs := newFakeInteractionStore(interactionFixture("coffee", nil))
		emb := &fakeEmbedder{err: errors.New("model offline")}
		b, err := New(fs, emb, WithRetry(1, time.Millisecond))
		require.NoError(t, err)

		embedded, err := b.Run(ctx)
		assert.Error(t, err)
		assert.Zero(t, embedded)
	})

	t.Run("nothing to do", func(t *testing.T) {
		b, err := New(newFakeInteractionStore(), &fakeEmbedder{})
		require.NoError(t, err)

		embedded, err := b.Run(ctx)
		require.NoError(t, err)
		assert.Zero(t, embedded)
	})

	t.Run("honors context cancellation", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		b, err := New(newFakeInteractionStore(interactionFixture("coffee", nil)), &fakeEmbedder{})
		require.NoError(t, err)

		_, err = b.Run(cancelled)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
