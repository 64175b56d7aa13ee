package products

import (
	"fmt"
	"strings"
)

// SourceNotFoundError is returned for an id missing from the catalog.
type SourceNotFoundError struct {
	ID       string
	ValidIDs []string
}

func (e *SourceNotFoundError) Error() string {
	return fmt.Sprintf("feed source '%s' not found, valid sources: %s", e.ID, strings.Join(e.ValidIDs, ", "))
}

// SourceDisabledError is returned for a configured but disabled source.
type SourceDisabledError struct {
	ID string
}

func (e *SourceDisabledError) Error() string {
	return fmt.Sprintf("feed source '%s' is disabled", e.ID)
}
