package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// CreateFamilyMember links two contacts with a directed relationship.
// Duplicate links are ignored via the uniqueness constraint on
// (contact_id, family_contact_id, relationship); the returned bool reports
// whether a new row was created.
func (s *Store) CreateFamilyMember(ctx context.Context, contactID, familyContactID uuid.UUID, relationship string) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`INSERT INTO family_members (contact_id, family_contact_id, relationship)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (contact_id, family_contact_id, relationship) DO NOTHING`,
		contactID, familyContactID, relationship,
	)
	if err != nil {
		return false, fmt.Errorf("failed to create family member: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
