package search

import "fmt"

// Mode selects the matching strategy for a search.
type Mode string

const (
	// ModeTerm matches by case-insensitive substring containment.
	ModeTerm Mode = "term"

	// ModeFuzzy matches by trigram string similarity.
	ModeFuzzy Mode = "fuzzy"

	// ModeSemantic matches by embedding cosine similarity.
	ModeSemantic Mode = "semantic"
)

// ParseMode converts a string into a Mode, rejecting unknown values.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeTerm, ModeFuzzy, ModeSemantic:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
}

// Valid reports whether the mode is one of the known strategies.
func (m Mode) Valid() bool {
	switch m {
	case ModeTerm, ModeFuzzy, ModeSemantic:
		return true
	}
	return false
}
