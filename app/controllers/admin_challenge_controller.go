package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/dokseo/dokseo/internal/pkg/challenge"
	"github.com/dokseo/dokseo/internal/pkg/database"
)

// HandleAdminListLevelChangeRequests pages through pending requests for the
// review queue.
func HandleAdminListLevelChangeRequests(c *fiber.Ctx) error {
	offset := c.QueryInt("offset", 0)
	limit := c.QueryInt("limit", 50)

	svc := challenge.NewServiceFromDB(database.GetDB())
	requests, err := svc.ListPendingRequests(c.Context(), offset, limit)
	if err != nil {
		return jsonInternalError(c, "admin list level change requests", err)
	}
	return c.JSON(fiber.Map{"requests": requests})
}

// HandleAdminApproveLevelChange moves the user's lock to the requested level
// and resets the period score.
func HandleAdminApproveLevelChange(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", err.Error())
	}

	svc := challenge.NewServiceFromDB(database.GetDB())
	lock, err := svc.ApproveLevelChangeRequest(c.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return jsonError(c, fiber.StatusNotFound, "request_not_found", "Level change request does not exist")
		case errors.Is(err, challenge.ErrRequestNotPending):
			return jsonError(c, fiber.StatusConflict, challenge.CodeNoPendingRequest, err.Error())
		case errors.Is(err, challenge.ErrNotLocked):
			return jsonError(c, fiber.StatusConflict, "NOT_LOCKED", err.Error())
		}
		return jsonInternalError(c, "admin approve level change", err)
	}
	return c.JSON(lock)
}

// HandleAdminRejectLevelChange marks the request rejected; lock and score
// stay untouched.
func HandleAdminRejectLevelChange(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", err.Error())
	}

	svc := challenge.NewServiceFromDB(database.GetDB())
	if err := svc.RejectLevelChangeRequest(c.Context(), id); err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return jsonError(c, fiber.StatusNotFound, "request_not_found", "Level change request does not exist")
		case errors.Is(err, challenge.ErrRequestNotPending):
			return jsonError(c, fiber.StatusConflict, challenge.CodeNoPendingRequest, err.Error())
		}
		return jsonInternalError(c, "admin reject level change", err)
	}
	return c.JSON(fiber.Map{"ok": true})
}
