package domain

import (
	"errors"
	"fmt"
)

var (
	ErrIntakeItemNotFound = errors.New("intake item not found")
	ErrMatterNotFound     = errors.New("matter not found")
	ErrStateConflict      = errors.New("intake item state conflict")
	ErrInvalidInput       = errors.New("invalid input")
	ErrTemporary          = errors.New("temporary failure")
)

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
