// Package apperr defines sentinel errors shared across packages.
package apperr

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrUnknownGenerator = errors.New("unknown generator")
	ErrInvalidMapping   = errors.New("invalid callout mapping")
	ErrNotConfigured    = errors.New("not configured")
	ErrBusy             = errors.New("run already in progress")
)
