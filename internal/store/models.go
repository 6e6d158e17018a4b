package store

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

// Contact represents a person tracked by a user
type Contact struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	FirstName  string
	LastName   string
	Birthday   *time.Time
	LatestNews *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Interaction represents a logged event with a contact
type Interaction struct {
	ID              uuid.UUID
	UserID          uuid.UUID
	ContactID       uuid.UUID
	InteractionDate time.Time
	Notes           string
	Location        *string
	Embedding       *pgvector.Vector
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// FamilyMember represents a directed relationship between two contacts
type FamilyMember struct {
	ID              uuid.UUID
	ContactID       uuid.UUID
	FamilyContactID uuid.UUID
	Relationship    string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ContactMatch is a contact row returned by a search query, with its
// relevance score
type ContactMatch struct {
	ID         uuid.UUID
	FirstName  string
	LastName   string
	Birthday   *time.Time
	LatestNews *string
	Score      float64
}

// InteractionMatch is an interaction row returned by a search query,
// joined with the owning contact's name for display
type InteractionMatch struct {
	ID               uuid.UUID
	ContactID        uuid.UUID
	InteractionDate  time.Time
	Notes            string
	Location         *string
	ContactFirstName string
	ContactLastName  string
	Score            float64
}
