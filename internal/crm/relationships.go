package crm

import "strings"

// relationshipInverses maps each relationship label to its inverse for
// bidirectional family links. Single source of truth.
var relationshipInverses = map[string]string{
	"parent":  "child",
	"child":   "parent",
	"spouse":  "spouse",
	"sibling": "sibling",
}

// InverseRelationship returns the inverse of a relationship label, falling
// back to "related_to" for labels without a defined inverse.
func InverseRelationship(relationship string) string {
	if inverse, ok := relationshipInverses[strings.ToLower(relationship)]; ok {
		return inverse
	}
	return "related_to"
}
