package webcite

import "context"

// DOIResolver looks up a DOI with an external service.
type DOIResolver interface {
	// Resolve returns a formatted BibTeX record for doi.
	// Returns EUNRESOLVED if the lookup fails.
	Resolve(ctx context.Context, doi string) (string, error)
}
