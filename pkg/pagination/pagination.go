package pagination

import "fmt"

const (
	// DefaultSize is the page length used when a size is not provided.
	DefaultSize = 10
)

// Params holds offset pagination inputs from controllers.
//
// From is translated to a page index with integer division, so callers get
// correct slices only when From is a multiple of Size.
type Params struct {
	From int
	Size int
}

// New validates the raw inputs: from must be >= 0 and size > 0.
func New(from, size int) (Params, error) {
	if from < 0 {
		return Params{}, fmt.Errorf("from must not be negative, got %d", from)
	}
	if size <= 0 {
		return Params{}, fmt.Errorf("size must be positive, got %d", size)
	}
	return Params{From: from, Size: size}, nil
}

// Page returns the zero-based page index.
func (p Params) Page() int {
	if p.Size <= 0 {
		return 0
	}
	return p.From / p.Size
}

// Offset returns the row offset of the first record on the page.
func (p Params) Offset() int {
	return p.Page() * p.Limit()
}

// Limit returns the page length, falling back to DefaultSize.
func (p Params) Limit() int {
	if p.Size <= 0 {
		return DefaultSize
	}
	return p.Size
}
