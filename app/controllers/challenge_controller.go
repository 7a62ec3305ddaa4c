package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/dokseo/dokseo/internal/pkg/challenge"
	"github.com/dokseo/dokseo/internal/pkg/clock"
	"github.com/dokseo/dokseo/internal/pkg/database"
	"github.com/dokseo/dokseo/internal/pkg/metrics/counter"
	"github.com/dokseo/dokseo/internal/pkg/usercontext"
)

// challengeConflict maps a level-lock policy failure to a 409 with a
// machine-readable code. ALREADY_LOCKED additionally carries the level the
// user is committed to so the client can open the change-request flow.
func challengeConflict(c *fiber.Ctx, err error) error {
	code := challenge.ConflictCode(err)
	if code == "" {
		return jsonInternalError(c, "challenge", err)
	}

	body := fiber.Map{"error": code, "message": err.Error()}
	var locked *challenge.AlreadyLockedError
	if errors.As(err, &locked) {
		body["current_locked_level"] = locked.CurrentLevelID
	}
	return c.Status(fiber.StatusConflict).JSON(body)
}

// HandleGetChallengeState returns the caller's lock, pending request and
// score for the current KST period.
func HandleGetChallengeState(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	levelType := c.Query("level_type", "AR")

	svc := challenge.NewServiceFromDB(database.GetDB())
	state, err := svc.GetState(c.Context(), userCtx.UserID, levelType)
	if err != nil {
		if errors.Is(err, challenge.ErrInvalidLevelType) {
			return jsonError(c, fiber.StatusBadRequest, "invalid_level_type", err.Error())
		}
		return jsonInternalError(c, "challenge state", err)
	}
	return c.JSON(state)
}

type challengeJoinRequest struct {
	LevelType string `json:"level_type"`
	LevelID   string `json:"level_id"`
}

// HandleJoinChallenge locks the caller to a level for the current month.
func HandleJoinChallenge(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	var req challengeJoinRequest
	if err := c.BodyParser(&req); err != nil || req.LevelID == "" {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "level_type and level_id are required")
	}

	svc := challenge.NewServiceFromDB(database.GetDB())
	lock, err := svc.Join(c.Context(), userCtx.UserID, req.LevelType, req.LevelID)
	if err != nil {
		if challenge.ConflictCode(err) != "" {
			return challengeConflict(c, err)
		}
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", err.Error())
	}
	return c.Status(fiber.StatusCreated).JSON(lock)
}

type levelChangeRequest struct {
	LevelType string `json:"level_type"`
	LevelID   string `json:"level_id"`
}

// HandleRequestLevelChange files a pending change request; the lock stays
// until an admin approves.
func HandleRequestLevelChange(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	var req levelChangeRequest
	if err := c.BodyParser(&req); err != nil || req.LevelID == "" {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "level_type and level_id are required")
	}

	svc := challenge.NewServiceFromDB(database.GetDB())
	change, err := svc.RequestLevelChange(c.Context(), userCtx.UserID, req.LevelType, req.LevelID)
	if err != nil {
		if challenge.ConflictCode(err) != "" {
			return challengeConflict(c, err)
		}
		if errors.Is(err, challenge.ErrNotLocked) {
			return jsonError(c, fiber.StatusConflict, "NOT_LOCKED", err.Error())
		}
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", err.Error())
	}
	return c.Status(fiber.StatusCreated).JSON(change)
}

type quizPointsRequest struct {
	LevelType string `json:"level_type"`
	Points    int    `json:"points"`
}

// HandleSubmitQuizPoints buffers quiz points for the caller's current period.
// Points land in Redis first and reach challenge_scores on the next flush, so
// the state endpoint may trail a just-finished quiz by a few seconds.
func HandleSubmitQuizPoints(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	var req quizPointsRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "malformed points payload")
	}
	if req.Points <= 0 || req.Points > 1000 {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "points must be between 1 and 1000")
	}
	levelType := req.LevelType
	if levelType != "AR" && levelType != "RC" {
		return jsonError(c, fiber.StatusBadRequest, "invalid_level_type", "level type must be AR or RC")
	}

	period := clock.CurrentPeriod(clock.System())
	if err := counter.AddPoints(userCtx.UserID, levelType, period, req.Points); err != nil {
		return jsonInternalError(c, "submit quiz points", err)
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"ok": true})
}

// HandleCancelLevelChange withdraws the caller's pending change request.
func HandleCancelLevelChange(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	levelType := c.Query("level_type", "AR")

	svc := challenge.NewServiceFromDB(database.GetDB())
	if err := svc.CancelLevelChangeRequest(c.Context(), userCtx.UserID, levelType); err != nil {
		if challenge.ConflictCode(err) != "" {
			return challengeConflict(c, err)
		}
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", err.Error())
	}
	return c.JSON(fiber.Map{"ok": true})
}
