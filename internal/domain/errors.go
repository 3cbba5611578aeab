package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrNotFound           = errors.New("record not found")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUnauthenticated    = errors.New("authentication credentials were not provided")
	ErrForbidden          = errors.New("you do not have permission to perform this action")
)

// FieldErrors maps a field name to the constraint it failed.
// It is returned as an error when a record is rejected before storage.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, fe[k]))
	}
	return "invalid fields: " + strings.Join(parts, "; ")
}

// Add records msg for field unless the field already has an error.
func (fe FieldErrors) Add(field, msg string) {
	if _, ok := fe[field]; !ok {
		fe[field] = msg
	}
}

// Err returns nil when no field failed.
func (fe FieldErrors) Err() error {
	if len(fe) == 0 {
		return nil
	}
	return fe
}

// ReferencedError is returned when a delete is blocked because other
// records still point at the target.
type ReferencedError struct {
	Entity       string
	ReferencedBy string
	Count        int
}

func (e *ReferencedError) Error() string {
	return fmt.Sprintf("cannot delete %s: still referenced by %d %s", e.Entity, e.Count, e.ReferencedBy)
}
