package events

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound       = errors.New("event not found")
	ErrAccessDenied   = errors.New("access denied: event belongs to different tenant")
	ErrTenantRequired = errors.New("tenant id required")
	ErrStateConflict  = errors.New("illegal lifecycle transition")

	// ErrTrashLive and ErrPurgeNotTrashed wrap ErrStateConflict with the
	// specific rule that was violated.
	ErrTrashLive       = fmt.Errorf("%w: live events must be cancelled before moving to trash", ErrStateConflict)
	ErrPurgeNotTrashed = fmt.Errorf("%w: only trashed events can be permanently deleted", ErrStateConflict)
)

// ValidationError reports a request that fails the field constraints for its
// event mode.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Field + ": " + e.Reason
}

// IsStateConflict reports whether err is one of the lifecycle guard errors.
func IsStateConflict(err error) bool {
	return errors.Is(err, ErrStateConflict)
}
