package challenge

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dokseo/dokseo/app/models"
	"github.com/dokseo/dokseo/internal/pkg/clock"
)

// fakeRepository keeps all rows in memory. WithinTx runs the callback
// directly; atomicity is the real repository's concern.
type fakeRepository struct {
	locks    []*models.UserLevelLock
	requests []*models.LevelChangeRequest
	scores   []*models.ChallengeScore
	nextID   uint
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{nextID: 1}
}

func (f *fakeRepository) id() uint {
	id := f.nextID
	f.nextID++
	return id
}

func (f *fakeRepository) WithinTx(fn func(Repository) error) error { return fn(f) }

func (f *fakeRepository) GetLock(userID uint, levelType string, p clock.Period) (*models.UserLevelLock, error) {
	for _, l := range f.locks {
		if l.UserID == userID && l.LevelType == levelType && l.Year == p.Year && l.Month == int(p.Month) {
			return l, nil
		}
	}
	return nil, nil
}

func (f *fakeRepository) CreateLock(lock *models.UserLevelLock) error {
	lock.ID = f.id()
	f.locks = append(f.locks, lock)
	return nil
}

func (f *fakeRepository) SaveLock(lock *models.UserLevelLock) error { return nil }

func (f *fakeRepository) GetPendingRequest(userID uint, levelType string, p clock.Period) (*models.LevelChangeRequest, error) {
	for _, r := range f.requests {
		if r.UserID == userID && r.LevelType == levelType && r.Year == p.Year &&
			r.Month == int(p.Month) && r.Status == models.ChangeRequestPending {
			return r, nil
		}
	}
	return nil, nil
}

func (f *fakeRepository) GetRequestByID(id uint) (*models.LevelChangeRequest, error) {
	for _, r := range f.requests {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, errors.New("record not found")
}

func (f *fakeRepository) CreateRequest(req *models.LevelChangeRequest) error {
	req.ID = f.id()
	f.requests = append(f.requests, req)
	return nil
}

func (f *fakeRepository) SaveRequest(req *models.LevelChangeRequest) error { return nil }

func (f *fakeRepository) DeleteRequest(id uint) error {
	for i, r := range f.requests {
		if r.ID == id {
			f.requests = append(f.requests[:i], f.requests[i+1:]...)
			return nil
		}
	}
	return nil
}

func (f *fakeRepository) ListPendingRequests(offset, limit int) ([]models.LevelChangeRequest, error) {
	var out []models.LevelChangeRequest
	for _, r := range f.requests {
		if r.Status == models.ChangeRequestPending {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeRepository) ResetScore(userID uint, levelType string, p clock.Period) error {
	for _, s := range f.scores {
		if s.UserID == userID && s.LevelType == levelType && s.Year == p.Year && s.Month == int(p.Month) {
			s.Points = 0
		}
	}
	return nil
}

func (f *fakeRepository) GetScore(userID uint, levelType string, p clock.Period) (*models.ChallengeScore, error) {
	for _, s := range f.scores {
		if s.UserID == userID && s.LevelType == levelType && s.Year == p.Year && s.Month == int(p.Month) {
			return s, nil
		}
	}
	return nil, nil
}

func newTestService(repo *fakeRepository) *Service {
	// Pinned inside June 2024 KST.
	return NewService(repo, clock.Fixed(time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)))
}

func TestJoinFromNoLock(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(repo)

	lock, err := svc.Join(context.Background(), 1, "RC", "RC-Level-2")
	require.NoError(t, err)
	assert.Equal(t, "RC-Level-2", lock.LevelID)
	assert.Equal(t, 2024, lock.Year)
	assert.Equal(t, 6, lock.Month)
}

func TestJoinWhileLockedReportsCurrentLevel(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(repo)

	_, err := svc.Join(context.Background(), 1, "RC", "RC-Level-2")
	require.NoError(t, err)

	_, err = svc.Join(context.Background(), 1, "RC", "RC-Level-3")
	var locked *AlreadyLockedError
	require.ErrorAs(t, err, &locked)
	assert.Equal(t, "RC-Level-2", locked.CurrentLevelID)
	assert.Equal(t, CodeAlreadyLocked, ConflictCode(err))
}

func TestJoinSameLevelIsAlreadyLocked(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(repo)

	_, err := svc.Join(context.Background(), 1, "RC", "RC-Level-2")
	require.NoError(t, err)

	_, err = svc.Join(context.Background(), 1, "RC", "RC-Level-2")
	var locked *AlreadyLockedError
	require.ErrorAs(t, err, &locked)
	assert.Equal(t, "RC-Level-2", locked.CurrentLevelID)
	require.Len(t, repo.locks, 1)
}

func TestJoinDifferentLevelTypesAreIndependent(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(repo)

	_, err := svc.Join(context.Background(), 1, "RC", "RC-Level-2")
	require.NoError(t, err)
	_, err = svc.Join(context.Background(), 1, "AR", "AR-Level-5")
	require.NoError(t, err)
	require.Len(t, repo.locks, 2)
}

func TestRequestLevelChangeFlow(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(repo)
	ctx := context.Background()

	_, err := svc.Join(ctx, 1, "RC", "A")
	require.NoError(t, err)

	req, err := svc.RequestLevelChange(ctx, 1, "RC", "B")
	require.NoError(t, err)
	assert.Equal(t, "A", req.FromLevelID)
	assert.Equal(t, "B", req.ToLevelID)
	assert.Equal(t, models.ChangeRequestPending, req.Status)

	// Second request while one is pending.
	_, err = svc.RequestLevelChange(ctx, 1, "RC", "C")
	require.ErrorIs(t, err, ErrRequestAlreadyPending)
	assert.Equal(t, CodeRequestAlreadyPending, ConflictCode(err))

	// Cancel clears it, then a new request goes through.
	require.NoError(t, svc.CancelLevelChangeRequest(ctx, 1, "RC"))
	_, err = svc.RequestLevelChange(ctx, 1, "RC", "C")
	require.NoError(t, err)
}

func TestRequestLevelChangeWithoutLock(t *testing.T) {
	svc := newTestService(newFakeRepository())

	_, err := svc.RequestLevelChange(context.Background(), 1, "RC", "B")
	require.ErrorIs(t, err, ErrNotLocked)
}

func TestRequestLevelChangeToSameLevel(t *testing.T) {
	svc := newTestService(newFakeRepository())
	ctx := context.Background()

	_, err := svc.Join(ctx, 1, "RC", "A")
	require.NoError(t, err)

	_, err = svc.RequestLevelChange(ctx, 1, "RC", "A")
	var locked *AlreadyLockedError
	require.ErrorAs(t, err, &locked)
	assert.Equal(t, "A", locked.CurrentLevelID)
}

func TestCancelWithoutPendingRequest(t *testing.T) {
	svc := newTestService(newFakeRepository())

	err := svc.CancelLevelChangeRequest(context.Background(), 1, "RC")
	require.ErrorIs(t, err, ErrNoPendingRequest)
	assert.Equal(t, CodeNoPendingRequest, ConflictCode(err))
}

func TestApproveMutatesLockAndResetsScore(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(repo)
	ctx := context.Background()

	_, err := svc.Join(ctx, 1, "RC", "A")
	require.NoError(t, err)
	repo.scores = append(repo.scores, &models.ChallengeScore{
		UserID: 1, LevelType: "RC", Year: 2024, Month: 6, Points: 420,
	})

	req, err := svc.RequestLevelChange(ctx, 1, "RC", "B")
	require.NoError(t, err)

	lock, err := svc.ApproveLevelChangeRequest(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, "B", lock.LevelID)
	assert.Equal(t, models.ChangeRequestApproved, req.Status)
	assert.NotNil(t, req.DecidedAt)
	assert.Equal(t, 0, repo.scores[0].Points)

	// Still exactly one lock for the period.
	require.Len(t, repo.locks, 1)

	// Re-approving a decided request fails.
	_, err = svc.ApproveLevelChangeRequest(ctx, req.ID)
	require.ErrorIs(t, err, ErrRequestNotPending)
}

func TestRejectLeavesLockAndScoreAlone(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(repo)
	ctx := context.Background()

	_, err := svc.Join(ctx, 1, "RC", "A")
	require.NoError(t, err)
	repo.scores = append(repo.scores, &models.ChallengeScore{
		UserID: 1, LevelType: "RC", Year: 2024, Month: 6, Points: 100,
	})

	req, err := svc.RequestLevelChange(ctx, 1, "RC", "B")
	require.NoError(t, err)

	require.NoError(t, svc.RejectLevelChangeRequest(ctx, req.ID))
	assert.Equal(t, models.ChangeRequestRejected, req.Status)
	assert.Equal(t, "A", repo.locks[0].LevelID)
	assert.Equal(t, 100, repo.scores[0].Points)
}

func TestInvalidLevelType(t *testing.T) {
	svc := newTestService(newFakeRepository())

	_, err := svc.Join(context.Background(), 1, "XX", "A")
	require.Error(t, err)
	assert.Empty(t, ConflictCode(err))
}
