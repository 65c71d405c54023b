// Package source defines the spreadsheet backend consumed by the search.
package source

import (
	"context"
	"errors"
	"fmt"
)

// ErrSourceUnavailable the backend is unreachable or rejected our credentials.
// A search that hits it fails as a whole.
var ErrSourceUnavailable = errors.New("spreadsheet source unavailable")

// Unavailable wraps cause so errors.Is(err, ErrSourceUnavailable) holds.
func Unavailable(op string, cause error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrSourceUnavailable, cause)
}

// Source lists the spreadsheets a search may look into
type Source interface {
	// Kind short backend name, e.g. "xlsx" or "gsheets".
	Kind() string
	ListSpreadsheets(ctx context.Context) ([]Spreadsheet, error)
}

// Spreadsheet one document of the backend
type Spreadsheet interface {
	Name() string
	Worksheets(ctx context.Context) ([]Worksheet, error)
}

// Worksheet one tab of a spreadsheet
type Worksheet interface {
	Title() string
	// ReadAllValues returns every row as text, first row being the header.
	ReadAllValues(ctx context.Context) ([][]string, error)
}
