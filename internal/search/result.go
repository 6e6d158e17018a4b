package search

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// EntityType identifies which entity a result came from.
type EntityType string

const (
	// EntityContact marks a result projected from a contact row.
	EntityContact EntityType = "contact"

	// EntityInteraction marks a result projected from an interaction row.
	EntityInteraction EntityType = "interaction"
)

// ContactResult holds the display fields of a matched contact.
type ContactResult struct {
	ID         uuid.UUID
	FirstName  string
	LastName   string
	Birthday   *time.Time
	LatestNews *string
}

// InteractionResult holds the display fields of a matched interaction,
// including the owning contact's name.
type InteractionResult struct {
	ID               uuid.UUID
	ContactID        uuid.UUID
	InteractionDate  time.Time
	Notes            string
	Location         *string
	ContactFirstName string
	ContactLastName  string
}

// Result is a single normalized search hit. Exactly one of Contact or
// Interaction is set, according to Type.
type Result struct {
	Type        EntityType
	Score       float64
	Contact     *ContactResult
	Interaction *InteractionResult
}

// sortResults orders results by descending score. Ties break
// deterministically: contacts before interactions, then contact name
// ascending or interaction date descending (most recent first), then id,
// so identical queries always return identical ordering.
func sortResults(results []Result) {
	sort.Slice(results, func(i, j int) bool {
		return lessResult(results[i], results[j])
	})
}

func lessResult(a, b Result) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if a.Type != b.Type {
		return a.Type == EntityContact
	}
	if a.Type == EntityContact {
		an, bn := contactSortName(a.Contact), contactSortName(b.Contact)
		if an != bn {
			return an < bn
		}
		return a.Contact.ID.String() < b.Contact.ID.String()
	}
	if !a.Interaction.InteractionDate.Equal(b.Interaction.InteractionDate) {
		return a.Interaction.InteractionDate.After(b.Interaction.InteractionDate)
	}
	return a.Interaction.ID.String() < b.Interaction.ID.String()
}

func contactSortName(c *ContactResult) string {
	return c.FirstName + " " + c.LastName
}
