package errors

import (
	"fmt"
)

var (
	ErrNotFound      = fmt.Errorf("not found")
	ErrInvalidInput  = fmt.Errorf("invalid input")
	ErrNotConfigured = fmt.Errorf("no communication methods configured")
	ErrSequence      = fmt.Errorf("sequence violation")
)
