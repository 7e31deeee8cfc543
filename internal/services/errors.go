package services

import (
	"errors"
	"strings"
)

// ErrInvalidInput marks caller errors such as an unknown status filter.
var ErrInvalidInput = errors.New("invalid input")

// ValidationError rejects an upload that does not look like a license file.
type ValidationError struct {
	Reasons []string
}

func (e *ValidationError) Error() string {
	return "invalid license file: " + strings.Join(e.Reasons, "; ")
}
