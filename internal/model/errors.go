package model

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors shared by the data access layer. Handlers match on these
// with errors.Is to pick the response status.
var (
	ErrNotFound = errors.New("not found")
	ErrExists   = errors.New("already exists")
)

// NewError prefixes a sentinel with the entity it concerns, e.g.
// "station: not found".
func NewError(entity string, err error) error {
	return fmt.Errorf("%s: %w", strings.ToLower(entity), err)
}
