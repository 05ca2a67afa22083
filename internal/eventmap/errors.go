package eventmap

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound    = errors.New("not found")
	ErrValidation  = errors.New("validation failed")
	ErrPersistence = errors.New("persistence failure")

	// ErrMissingIdentity is returned when a call needs an email to key
	// analytics records and none was supplied.
	ErrMissingIdentity = fmt.Errorf("%w: identity email required", ErrValidation)
)
