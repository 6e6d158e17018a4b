package search

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func contactHit(score float64, first, last string) Result {
	return Result{
		Type:    EntityContact,
		Score:   score,
		Contact: &ContactResult{ID: uuid.New(), FirstName: first, LastName: last},
	}
}

func interactionHit(score float64, day time.Time, notes string) Result {
	return Result{
		Type:  EntityInteraction,
		Score: score,
		Interaction: &InteractionResult{
			ID:              uuid.New(),
			InteractionDate: day,
			Notes:           notes,
		},
	}
}

func TestSortResults(t *testing.T) {
	jan := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)

	t.Run("higher score first", func(t *testing.T) {
		results := []Result{contactHit(0.4, "Ann", "Ames"), interactionHit(0.9, jan, "call")}
		sortResults(results)
		assert.Equal(t, 0.9, results[0].Score)
	})

	t.Run("tied score puts contacts before interactions", func(t *testing.T) {
		results := []Result{interactionHit(1.0, jan, "call"), contactHit(1.0, "Ann", "Ames")}
		sortResults(results)
		assert.Equal(t, EntityContact, results[0].Type)
	})

	t.Run("tied contacts order by name", func(t *testing.T) {
		results := []Result{contactHit(1.0, "Zoe", "Zern"), contactHit(1.0, "Ann", "Ames")}
		sortResults(results)
		assert.Equal(t, "Ann", results[0].Contact.FirstName)
	})

	t.Run("tied interactions order most recent first", func(t *testing.T) {
		results := []Result{interactionHit(1.0, jan, "older"), interactionHit(1.0, feb, "newer")}
		sortResults(results)
		assert.Equal(t, "newer", results[0].Interaction.Notes)
	})

	t.Run("full tie falls back to id for stable ordering", func(t *testing.T) {
		a := interactionHit(0.5, jan, "a")
		b := interactionHit(0.5, jan, "b")
		first := []Result{a, b}
		second := []Result{b, a}
		sortResults(first)
		sortResults(second)
		assert.Equal(t, first, second)
	})
}
