package domain

import "strings"

// ClientFilter selects clients by free text and active state. The zero value
// matches everything.
type ClientFilter struct {
	// Search is matched case-insensitively as a substring of the name, the
	// tax id or the address.
	Search string

	// Active restricts results to clients whose Active equals *Active.
	Active *bool
}

// Fold is the case folding applied to both sides of a search comparison.
// Stores persist folded copies of searchable columns using this same
// function so that SQL and in-memory matching agree.
func Fold(s string) string {
	return strings.ToLower(s)
}

// Needle returns the folded search text. Whitespace is part of the text.
func (f ClientFilter) Needle() string {
	return Fold(f.Search)
}

// Matches reports whether c satisfies the filter.
func (f ClientFilter) Matches(c Client) bool {
	if f.Active != nil && c.Active != *f.Active {
		return false
	}

	needle := f.Needle()
	if needle == "" {
		return true
	}
	return strings.Contains(Fold(c.Name), needle) ||
		strings.Contains(Fold(c.TaxID), needle) ||
		strings.Contains(Fold(c.Address), needle)
}
