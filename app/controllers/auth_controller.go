package controllers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/dokseo/dokseo/app/models"
	"github.com/dokseo/dokseo/app/repository"
	"github.com/dokseo/dokseo/internal/pkg/env"
	"github.com/dokseo/dokseo/internal/pkg/session"
	"github.com/dokseo/dokseo/internal/pkg/usercontext"
)

// sessionRequest is the identity assertion the external auth provider posts
// after it has verified the user's credentials.
type sessionRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// HandleCreateSession exchanges a gateway-verified identity for a session.
// Credentials never reach this service; the auth provider authenticates and
// calls here with a shared secret. The user row is a local mirror keyed by
// email.
func HandleCreateSession(c *fiber.Ctx) error {
	secret := env.GetEnv("AUTH_GATEWAY_SECRET", "")
	if secret == "" || c.Get("X-Auth-Gateway-Secret") != secret {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized", "invalid gateway secret")
	}

	var req sessionRequest
	if err := c.BodyParser(&req); err != nil || req.Email == "" {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "email is required")
	}

	repo := repository.GetGlobalFactory().GetUserRepository()
	user, err := repo.GetByEmail(req.Email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		user = &models.User{
			Name:   req.Name,
			Email:  req.Email,
			Role:   models.ROLE_USER,
			Status: models.STATUS_ACTIVE,
		}
		if req.Role == models.ROLE_ADMIN {
			user.Role = models.ROLE_ADMIN
		}
		if verr := user.Validate(); verr != nil {
			return jsonValidationError(c, verr)
		}
		if cerr := repo.Create(user); cerr != nil {
			return jsonInternalError(c, "create session", cerr)
		}
	} else if err != nil {
		return jsonInternalError(c, "create session", err)
	}

	now := time.Now()
	user.LastLoginAt = &now
	if err := repo.Update(user); err != nil {
		return jsonInternalError(c, "create session", err)
	}

	sess, err := session.GetSessionStore().Get(c)
	if err != nil {
		return jsonInternalError(c, "create session", err)
	}
	sess.Set(usercontext.KeyUserID, user.ID)
	sess.Set(usercontext.KeyIsAdmin, user.IsAdmin())
	if err := sess.Save(); err != nil {
		return jsonInternalError(c, "create session", err)
	}
	_ = session.SetSessionValue(c, usercontext.KeyUsername, user.Name)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"user_id":  user.ID,
		"is_admin": user.IsAdmin(),
	})
}

// HandleDestroySession logs the caller out.
func HandleDestroySession(c *fiber.Ctx) error {
	if err := session.DestroySession(c); err != nil {
		return jsonInternalError(c, "destroy session", err)
	}
	return c.JSON(fiber.Map{"ok": true})
}
