package challenge

import (
	"errors"
	"fmt"

	"github.com/dokseo/dokseo/app/models"
)

// Typed failures for the level-lock transitions. Controllers map these to
// conflict responses with a machine-readable code so the client can offer
// the right follow-up flow (e.g. the level-change form on ALREADY_LOCKED).
var (
	ErrRequestAlreadyPending = errors.New("a level change request is already pending for this period")
	ErrNoPendingRequest      = errors.New("no pending level change request for this period")
	ErrRequestNotPending     = errors.New("level change request was already decided")
	ErrNotLocked             = errors.New("no level lock exists for this period")
)

// AlreadyLockedError reports a join against a period that already has a lock.
// CurrentLevelID lets the client show which level the user is committed to;
// joining the level the user already holds is reported the same way.
type AlreadyLockedError struct {
	CurrentLevelID string
}

func (e *AlreadyLockedError) Error() string {
	return fmt.Sprintf("already locked to level %s for this period", e.CurrentLevelID)
}

// Conflict codes surfaced in API responses.
const (
	CodeAlreadyLocked         = "ALREADY_LOCKED"
	CodeRequestAlreadyPending = "REQUEST_ALREADY_PENDING"
	CodeNoPendingRequest      = "NO_PENDING_REQUEST"
)

// ConflictCode translates a policy failure into its API code. Empty string
// means the error is not a policy conflict.
func ConflictCode(err error) string {
	var locked *AlreadyLockedError
	switch {
	case errors.As(err, &locked):
		return CodeAlreadyLocked
	case errors.Is(err, ErrRequestAlreadyPending):
		return CodeRequestAlreadyPending
	case errors.Is(err, ErrNoPendingRequest), errors.Is(err, ErrRequestNotPending):
		return CodeNoPendingRequest
	default:
		return ""
	}
}

// canJoin checks the join transition: only a period without a lock may be
// joined. lock is nil when no lock exists.
func canJoin(lock *models.UserLevelLock) error {
	if lock != nil {
		return &AlreadyLockedError{CurrentLevelID: lock.LevelID}
	}
	return nil
}

// canRequestChange checks the level-change transition: a lock must exist, the
// target must differ from the locked level, and no request may be pending.
func canRequestChange(lock *models.UserLevelLock, pending *models.LevelChangeRequest, targetLevelID string) error {
	if lock == nil {
		return ErrNotLocked
	}
	if lock.LevelID == targetLevelID {
		return &AlreadyLockedError{CurrentLevelID: lock.LevelID}
	}
	if pending != nil {
		return ErrRequestAlreadyPending
	}
	return nil
}

// canCancelRequest checks that a pending request exists to cancel.
func canCancelRequest(pending *models.LevelChangeRequest) error {
	if pending == nil {
		return ErrNoPendingRequest
	}
	return nil
}
