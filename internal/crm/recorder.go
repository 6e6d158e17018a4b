package crm

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/memoro/memoro/internal/store"
)

// Store is the persistence surface the recorder needs.
type Store interface {
	FindOrCreateContact(ctx context.Context, userID uuid.UUID, firstName, lastName string, birthday *time.Time, latestNews *string) (*store.Contact, error)
	CreateInteraction(ctx context.Context, userID, contactID uuid.UUID, date time.Time, notes string, location *string) (*store.Interaction, error)
	UpdateLatestNews(ctx context.Context, contactID uuid.UUID, news string) error
	CreateFamilyMember(ctx context.Context, contactID, familyContactID uuid.UUID, relationship string) (bool, error)
}

// FamilyMention is a relative referenced by an interaction.
type FamilyMention struct {
	FirstName    string
	LastName     string
	Relationship string
}

// InteractionRecord is one logged event to persist: the contact it concerns,
// the interaction details, and any relatives it mentions.
type InteractionRecord struct {
	FirstName string
	LastName  string
	Birthday  *time.Time
	Date      time.Time
	Notes     string
	Location  *string
	Family    []FamilyMention
}

// RecordResult reports what a Record call persisted.
type RecordResult struct {
	ContactID     uuid.UUID
	InteractionID uuid.UUID
	FamilyLinked  int
}

// Recorder persists interaction records: it finds or creates the contact,
// inserts the interaction, refreshes the contact's latest news, and links
// mentioned family members bidirectionally.
type Recorder struct {
	store  Store
	logger *slog.Logger
}

// NewRecorder creates a recorder. A nil logger falls back to slog.Default().
func NewRecorder(s Store, logger *slog.Logger) (*Recorder, error) {
	if s == nil {
		return nil, ErrStoreRequired
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{store: s, logger: logger}, nil
}

// Record persists one interaction record for the given user.
func (r *Recorder) Record(ctx context.Context, userID uuid.UUID, rec InteractionRecord) (*RecordResult, error) {
	firstName := rec.FirstName
	if firstName == "" {
		firstName = "Unknown"
	}

	// Interaction notes become the contact's initial latest news.
	notes := rec.Notes
	contact, err := r.store.FindOrCreateContact(ctx, userID, firstName, rec.LastName, rec.Birthday, &notes)
	if err != nil {
		return nil, fmt.Errorf("failed to find or create contact: %w", err)
	}

	interaction, err := r.store.CreateInteraction(ctx, userID, contact.ID, rec.Date, rec.Notes, rec.Location)
	if err != nil {
		return nil, fmt.Errorf("failed to create interaction: %w", err)
	}

	if err := r.store.UpdateLatestNews(ctx, contact.ID, rec.Notes); err != nil {
		return nil, fmt.Errorf("failed to update latest news: %w", err)
	}

	linked, err := r.linkFamily(ctx, userID, contact.ID, firstName, rec.Family)
	if err != nil {
		return nil, err
	}

	r.logger.Info("interaction recorded",
		"user_id", userID,
		"contact_id", contact.ID,
		"interaction_id", interaction.ID,
		"family_linked", linked,
	)

	return &RecordResult{
		ContactID:     contact.ID,
		InteractionID: interaction.ID,
		FamilyLinked:  linked,
	}, nil
}

// linkFamily creates contact records for mentioned relatives and links them
// in both directions so either side of the relationship can be queried.
// Returns the count of newly linked relatives.
func (r *Recorder) linkFamily(ctx context.Context, userID, contactID uuid.UUID, contactFirstName string, mentions []FamilyMention) (int, error) {
	linked := 0
	for _, mention := range mentions {
		if mention.FirstName == "" {
			continue
		}

		news := fmt.Sprintf("Family member of %s", contactFirstName)
		relative, err := r.store.FindOrCreateContact(ctx, userID, mention.FirstName, mention.LastName, nil, &news)
		if err != nil {
			return linked, fmt.Errorf("failed to find or create family contact: %w", err)
		}

		forward, err := r.store.CreateFamilyMember(ctx, contactID, relative.ID, mention.Relationship)
		if err != nil {
			return linked, fmt.Errorf("failed to link family member: %w", err)
		}

		reverse, err := r.store.CreateFamilyMember(ctx, relative.ID, contactID, InverseRelationship(mention.Relationship))
		if err != nil {
			return linked, fmt.Errorf("failed to link family member: %w", err)
		}

		if forward || reverse {
			linked++
			r.logger.Info("family member linked",
				"contact_id", contactID,
				"family_contact_id", relative.ID,
				"relationship", mention.Relationship,
			)
		}
	}
	return linked, nil
}
