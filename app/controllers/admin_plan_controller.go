package controllers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/dokseo/dokseo/app/models"
	"github.com/dokseo/dokseo/app/repository"
)

func parseIDParam(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, errors.New("invalid id")
	}
	return uint(id), nil
}

// HandleAdminListPlans returns all plans, active or not.
func HandleAdminListPlans(c *fiber.Ctx) error {
	plans, err := repository.GetGlobalFactory().GetPlanRepository().GetAll()
	if err != nil {
		return jsonInternalError(c, "admin list plans", err)
	}
	return c.JSON(fiber.Map{"plans": plans})
}

// HandleAdminCreatePlan creates a new billing plan.
func HandleAdminCreatePlan(c *fiber.Ctx) error {
	var plan models.Plan
	if err := c.BodyParser(&plan); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "malformed plan payload")
	}
	plan.ID = 0
	if err := plan.Validate(); err != nil {
		return jsonValidationError(c, err)
	}

	if err := repository.GetGlobalFactory().GetPlanRepository().Create(&plan); err != nil {
		return jsonInternalError(c, "admin create plan", err)
	}
	return c.Status(fiber.StatusCreated).JSON(plan)
}

// HandleAdminUpdatePlan updates name, price, duration or active flag.
// Existing subscriptions keep the terms they were charged under; price
// changes only affect future registrations.
func HandleAdminUpdatePlan(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", err.Error())
	}

	repo := repository.GetGlobalFactory().GetPlanRepository()
	plan, err := repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "plan_not_found", "Plan does not exist")
		}
		return jsonInternalError(c, "admin update plan", err)
	}

	if err := c.BodyParser(plan); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "malformed plan payload")
	}
	plan.ID = id
	if err := plan.Validate(); err != nil {
		return jsonValidationError(c, err)
	}

	if err := repo.Update(plan); err != nil {
		return jsonInternalError(c, "admin update plan", err)
	}
	return c.JSON(plan)
}

// HandleAdminDeletePlan deletes a plan. Plans still referenced by
// subscriptions or payments are a state conflict, not deletable.
func HandleAdminDeletePlan(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", err.Error())
	}

	if err := repository.GetGlobalFactory().GetPlanRepository().Delete(id); err != nil {
		if errors.Is(err, repository.ErrPlanInUse) {
			return jsonError(c, fiber.StatusConflict, "PLAN_IN_USE", err.Error())
		}
		return jsonInternalError(c, "admin delete plan", err)
	}
	return c.JSON(fiber.Map{"ok": true})
}
