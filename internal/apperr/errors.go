// Package apperr defines the error taxonomy shared by the vault layers.
package apperr

import (
	"errors"
	"strings"
)

var (
	ErrAccessDenied      = errors.New("access denied: path outside vault")
	ErrNotFound          = errors.New("note not found")
	ErrNotANote          = errors.New("path is not a note")
	ErrTextNotFound      = errors.New("text not found in note")
	ErrMissingParameters = errors.New("required parameters missing")
	ErrUnknownOperation  = errors.New("unknown operation")
	ErrInvalidRoot       = errors.New("vault root is invalid")
)

// MissingParametersError lists every required argument that was absent or empty.
type MissingParametersError struct {
	Names []string
}

func (e *MissingParametersError) Error() string {
	return ErrMissingParameters.Error() + ": " + strings.Join(e.Names, ", ")
}

// Is reports ErrMissingParameters as the matching sentinel.
func (e *MissingParametersError) Is(target error) bool {
	return target == ErrMissingParameters
}
