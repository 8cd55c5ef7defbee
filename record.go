package webcite

import "strings"

// Record is the formatted result of a successful capture.
type Record struct {
	Key  string
	Text string

	// URL is the canonical URL the record was checked against.
	URL string

	// Fields holds the concrete fields the record was formatted from.
	Fields map[string]string
}

// DuplicateError is returned when a record already exists in the corpus.
// It unwraps to an *Error with code EDUPLICATE.
type DuplicateError struct {
	// Check names the duplicate check that matched ("key", "url" or "link").
	Check string

	// Pattern is the value that was searched for.
	Pattern string

	// Matches holds every match of that check.
	Matches []Match
}

// Error implements the error interface.
func (e *DuplicateError) Error() string {
	return e.Unwrap().Error()
}

// Unwrap returns the application error for the duplicate.
func (e *DuplicateError) Unwrap() error {
	locations := make([]string, 0, len(e.Matches))
	for _, m := range e.Matches {
		locations = append(locations, m.String())
	}
	return Errorf(EDUPLICATE, "%s %q already captured at %s",
		e.Check, e.Pattern, strings.Join(locations, ", "))
}

// First returns the first match.
func (e *DuplicateError) First() Match {
	if len(e.Matches) == 0 {
		return Match{}
	}
	return e.Matches[0]
}

