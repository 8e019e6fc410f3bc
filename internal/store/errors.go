package store

import (
	"errors"
	"fmt"
)

// Sentinel errors for the two recoverable failure classes. Remote failures
// downgrade operations to local-only; missing ids are no-ops the caller may
// surface as a warning. Nothing in this package is fatal.
var (
	ErrRemoteUnavailable = errors.New("remote store unavailable")
	ErrNotFound          = errors.New("task not found")
)

// ValidationError rejects a malformed task before any store mutation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// SyncStatus reports whether an operation reached the remote store or fell
// back to local-only mutation.
type SyncStatus int

const (
	SyncRemote SyncStatus = iota
	SyncLocalOnly
)

func (s SyncStatus) String() string {
	if s == SyncLocalOnly {
		return "local-only"
	}
	return "remote"
}
