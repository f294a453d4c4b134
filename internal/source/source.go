package source

import (
	"context"
	"errors"
	"fmt"

	"filmawards/internal/util"
)

var ErrNotFound = errors.New("page not found")

// Fetcher returns the raw markup behind a ceremony page URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// CeremonyURL fills the template's %s with the ceremony ordinal ("96th").
func CeremonyURL(template string, ceremonyNumber int) string {
	return fmt.Sprintf(template, util.Ordinal(ceremonyNumber))
}
