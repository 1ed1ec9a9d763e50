// Package backend holds the business rules of the reference API. Handlers
// call into it; it calls the repositories.
package backend

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/thenextevent/eventdesk/internal/repository"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrForbidden          = errors.New("forbidden")
)

// FieldErrors reports per-field validation failures. It unwraps to
// repository.ErrInvalid so handlers answer 400.
type FieldErrors map[string][]string

func (e FieldErrors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f, strings.Join(e[f], ", ")))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e FieldErrors) Unwrap() error { return repository.ErrInvalid }

func (e FieldErrors) add(field, msg string) {
	e[field] = append(e[field], msg)
}

func (e FieldErrors) err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}
