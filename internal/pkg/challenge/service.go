package challenge

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/dokseo/dokseo/app/models"
	"github.com/dokseo/dokseo/internal/pkg/clock"
)

// ErrInvalidLevelType rejects level types other than AR and RC.
var ErrInvalidLevelType = errors.New("level type must be AR or RC")

// Service applies the monthly level-lock policy. The current challenge period
// always comes from the injected clock (Korea Standard Time), never from
// server-local time.
type Service struct {
	repo Repository
	clk  clock.Clock
}

// NewService creates a challenge service from an injected repository and clock.
func NewService(repo Repository, clk clock.Clock) *Service {
	return &Service{repo: repo, clk: clk}
}

// NewServiceFromDB creates a challenge service from a GORM DB handle using
// the system clock.
func NewServiceFromDB(db *gorm.DB) *Service {
	return NewService(NewRepository(db), clock.System())
}

func normalizeLevelType(levelType string) (string, error) {
	switch strings.ToUpper(strings.TrimSpace(levelType)) {
	case models.LevelTypeAR:
		return models.LevelTypeAR, nil
	case models.LevelTypeRC:
		return models.LevelTypeRC, nil
	default:
		return "", ErrInvalidLevelType
	}
}

// State is the per-period view returned to the client.
type State struct {
	Period         clock.Period               `json:"period"`
	Lock           *models.UserLevelLock      `json:"lock,omitempty"`
	PendingRequest *models.LevelChangeRequest `json:"pending_request,omitempty"`
	Points         int                        `json:"points"`
}

// GetState returns the user's lock, pending request and score for the current
// period.
func (s *Service) GetState(ctx context.Context, userID uint, levelType string) (*State, error) {
	_ = ctx
	lt, err := normalizeLevelType(levelType)
	if err != nil {
		return nil, err
	}
	period := clock.CurrentPeriod(s.clk)

	lock, err := s.repo.GetLock(userID, lt, period)
	if err != nil {
		return nil, err
	}
	pending, err := s.repo.GetPendingRequest(userID, lt, period)
	if err != nil {
		return nil, err
	}
	score, err := s.repo.GetScore(userID, lt, period)
	if err != nil {
		return nil, err
	}

	st := &State{Period: period, Lock: lock, PendingRequest: pending}
	if score != nil {
		st.Points = score.Points
	}
	return st, nil
}

// Join locks the user to targetLevelID for the current period. Fails with
// AlreadyLockedError when any lock already exists, including one for the
// same level (idempotent join).
func (s *Service) Join(ctx context.Context, userID uint, levelType, targetLevelID string) (*models.UserLevelLock, error) {
	_ = ctx
	lt, err := normalizeLevelType(levelType)
	if err != nil {
		return nil, err
	}
	targetLevelID = strings.TrimSpace(targetLevelID)
	if targetLevelID == "" {
		return nil, errors.New("target level is required")
	}
	period := clock.CurrentPeriod(s.clk)

	var lock *models.UserLevelLock
	err = s.repo.WithinTx(func(tx Repository) error {
		existing, err := tx.GetLock(userID, lt, period)
		if err != nil {
			return err
		}
		if err := canJoin(existing); err != nil {
			return err
		}
		lock = &models.UserLevelLock{
			UserID:    userID,
			LevelType: lt,
			LevelID:   targetLevelID,
			Year:      period.Year,
			Month:     int(period.Month),
		}
		return tx.CreateLock(lock)
	})
	if err != nil {
		return nil, err
	}
	return lock, nil
}

// RequestLevelChange files a PENDING request to move the user's lock to
// targetLevelID. The lock itself is untouched until an admin approves.
func (s *Service) RequestLevelChange(ctx context.Context, userID uint, levelType, targetLevelID string) (*models.LevelChangeRequest, error) {
	_ = ctx
	lt, err := normalizeLevelType(levelType)
	if err != nil {
		return nil, err
	}
	targetLevelID = strings.TrimSpace(targetLevelID)
	if targetLevelID == "" {
		return nil, errors.New("target level is required")
	}
	period := clock.CurrentPeriod(s.clk)

	var req *models.LevelChangeRequest
	err = s.repo.WithinTx(func(tx Repository) error {
		lock, err := tx.GetLock(userID, lt, period)
		if err != nil {
			return err
		}
		pending, err := tx.GetPendingRequest(userID, lt, period)
		if err != nil {
			return err
		}
		if err := canRequestChange(lock, pending, targetLevelID); err != nil {
			return err
		}
		req = &models.LevelChangeRequest{
			UserID:      userID,
			LevelType:   lt,
			FromLevelID: lock.LevelID,
			ToLevelID:   targetLevelID,
			Year:        period.Year,
			Month:       int(period.Month),
			Status:      models.ChangeRequestPending,
		}
		return tx.CreateRequest(req)
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

// CancelLevelChangeRequest withdraws the user's pending request for the
// current period. The lock stays as it was.
func (s *Service) CancelLevelChangeRequest(ctx context.Context, userID uint, levelType string) error {
	_ = ctx
	lt, err := normalizeLevelType(levelType)
	if err != nil {
		return err
	}
	period := clock.CurrentPeriod(s.clk)

	return s.repo.WithinTx(func(tx Repository) error {
		pending, err := tx.GetPendingRequest(userID, lt, period)
		if err != nil {
			return err
		}
		if err := canCancelRequest(pending); err != nil {
			return err
		}
		return tx.DeleteRequest(pending.ID)
	})
}

// ApproveLevelChangeRequest moves the lock to the requested level, resets the
// period's score to zero and marks the request APPROVED. Admin only; the
// RBAC check happens in the HTTP layer.
func (s *Service) ApproveLevelChangeRequest(ctx context.Context, requestID uint) (*models.UserLevelLock, error) {
	_ = ctx
	var lock *models.UserLevelLock
	err := s.repo.WithinTx(func(tx Repository) error {
		req, err := tx.GetRequestByID(requestID)
		if err != nil {
			return err
		}
		if req.Status != models.ChangeRequestPending {
			return ErrRequestNotPending
		}
		period := clock.Period{Year: req.Year, Month: time.Month(req.Month)}

		lock, err = tx.GetLock(req.UserID, req.LevelType, period)
		if err != nil {
			return err
		}
		if lock == nil {
			return ErrNotLocked
		}
		lock.LevelID = req.ToLevelID
		if err := tx.SaveLock(lock); err != nil {
			return err
		}
		if err := tx.ResetScore(req.UserID, req.LevelType, period); err != nil {
			return err
		}

		now := s.clk.Now()
		req.Status = models.ChangeRequestApproved
		req.DecidedAt = &now
		return tx.SaveRequest(req)
	})
	if err != nil {
		return nil, err
	}
	return lock, nil
}

// RejectLevelChangeRequest marks the request REJECTED without touching the
// lock or score.
func (s *Service) RejectLevelChangeRequest(ctx context.Context, requestID uint) error {
	_ = ctx
	return s.repo.WithinTx(func(tx Repository) error {
		req, err := tx.GetRequestByID(requestID)
		if err != nil {
			return err
		}
		if req.Status != models.ChangeRequestPending {
			return ErrRequestNotPending
		}
		now := s.clk.Now()
		req.Status = models.ChangeRequestRejected
		req.DecidedAt = &now
		return tx.SaveRequest(req)
	})
}

// ListPendingRequests pages through open requests for the admin dashboard.
func (s *Service) ListPendingRequests(ctx context.Context, offset, limit int) ([]models.LevelChangeRequest, error) {
	_ = ctx
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.repo.ListPendingRequests(offset, limit)
}
