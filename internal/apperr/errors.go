// Package apperr holds sentinel errors shared across layers. Handlers map
// them to transport status codes with errors.Is.
package apperr

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrRebuildRunning   = errors.New("rebuild already running")
	ErrRebuildCancelled = errors.New("rebuild cancelled")
	ErrQueryTooShort    = errors.New("query too short")
)
