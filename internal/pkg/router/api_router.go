package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/dokseo/dokseo/app/controllers"
	"github.com/dokseo/dokseo/internal/pkg/constants"
	"github.com/dokseo/dokseo/internal/pkg/middleware"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api", limiter.New())
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "Hello from api",
		})
	})

	v1 := api.Group("/v1")

	// Session bootstrap, called by the external auth provider
	v1.Post("/auth/session", controllers.HandleCreateSession)
	v1.Delete("/auth/session", controllers.HandleDestroySession)

	// Public pricing page data
	v1.Get("/plans", controllers.HandleListPlans)

	// Subscription lifecycle
	sub := v1.Group("/subscription", middleware.RequireAPISessionAuth)
	sub.Get("/", controllers.HandleGetSubscriptionStatus)
	sub.Post("/register", controllers.HandleRegisterSubscription)
	sub.Post("/cancel", controllers.HandleCancelSubscription)
	sub.Post("/apply-coupon", controllers.HandleApplyCoupon)

	// Monthly reading challenge
	ch := v1.Group("/challenge", middleware.RequireAPISessionAuth)
	ch.Get("/", controllers.HandleGetChallengeState)
	ch.Post("/join", controllers.HandleJoinChallenge)
	ch.Post("/points", middleware.RequirePremium, controllers.HandleSubmitQuizPoints)
	ch.Post("/level-change", controllers.HandleRequestLevelChange)
	ch.Delete("/level-change", controllers.HandleCancelLevelChange)

	// Payment provider callbacks; authenticated by HMAC signature, not session
	v1.Post("/billing/webhook/:provider", controllers.HandleBillingWebhook)

	// Admin API
	admin := app.Group(constants.AdminAPIRoute, middleware.RequireAPIAdmin)

	admin.Get("/plans", controllers.HandleAdminListPlans)
	admin.Post("/plans", controllers.HandleAdminCreatePlan)
	admin.Put("/plans/:id", controllers.HandleAdminUpdatePlan)
	admin.Delete("/plans/:id", controllers.HandleAdminDeletePlan)

	admin.Get("/coupons", controllers.HandleAdminListCoupons)
	admin.Post("/coupons", controllers.HandleAdminCreateCoupon)
	admin.Put("/coupons/:id", controllers.HandleAdminUpdateCoupon)
	admin.Delete("/coupons/:id", controllers.HandleAdminDeleteCoupon)

	admin.Get("/level-change-requests", controllers.HandleAdminListLevelChangeRequests)
	admin.Post("/level-change-requests/:id/approve", controllers.HandleAdminApproveLevelChange)
	admin.Post("/level-change-requests/:id/reject", controllers.HandleAdminRejectLevelChange)
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}
