package domain

import (
	"context"
	"errors"
)

// ErrNotFound indicates the description source has no page for a query term.
// It is a non-fatal outcome: callers fall through to the next query variant.
var ErrNotFound = errors.New("description not found")

// Describer fetches a short descriptive text for a query term.
type Describer interface {
	// Summary returns the description for a term, or "" with a nil error
	// when the source has a page but no usable text. A missing page is
	// reported as ErrNotFound.
	Summary(ctx context.Context, term string) (string, error)
}
