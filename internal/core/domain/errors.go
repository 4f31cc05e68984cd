package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Adapters wrap failures with one of these so the HTTP layer
// can pick a status without knowing which dependency failed.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
	ErrConflict     = errors.New("conflict")
	ErrTemporary    = errors.New("temporary failure")
	ErrUpstream     = errors.New("upstream failure")
)

// kinds is ordered by precedence: a caller mistake outranks the dependency
// failure it may have triggered.
var kinds = []error{
	ErrInvalidInput,
	ErrUnauthorized,
	ErrNotFound,
	ErrConflict,
	ErrTemporary,
	ErrUpstream,
}

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}

// KindOf returns the highest-precedence kind err carries, or nil.
func KindOf(err error) error {
	if err == nil {
		return nil
	}
	for _, kind := range kinds {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}
