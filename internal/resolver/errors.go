package resolver

import (
	"errors"
	"fmt"

	"github.com/rotisserie/eris"

	"github.com/richmondnkrumah/Data-Scraper/internal/model"
)

// ErrNotFound means no provider produced descriptive or financial data for
// the company.
var ErrNotFound = eris.New("resolver: company not found")

// NotFoundError carries the name that failed and, when a full resolution
// ran, the placeholder record it produced.
type NotFoundError struct {
	Name        string
	Placeholder *model.CompanyRecord
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("resolver: no data retrieved for %q", e.Name)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// IsNotFound reports whether err is a resolution failure.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
