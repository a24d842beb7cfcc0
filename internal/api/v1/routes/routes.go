// Package routes wires the v1 handlers onto the fiber app
package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/glrv/reviewd/internal/api/v1/handlers"
)

// SetupRoutes configures all the v1 routes
func SetupRoutes(router fiber.Router, h *handlers.Handler, auth fiber.Handler) {
	// Webhook ingestion authenticates with the shared GitLab token, not a
	// user session.
	webhooks := router.Group("/webhooks")
	webhooks.Post("/gitlab", h.GitlabWebhook)

	commits := router.Group("/commits", auth)
	commits.Get("/:commit_id/review", h.GetCommitReview)

	mrs := router.Group("/merge_requests", auth)
	mrs.Get("/:repo_id/:mr_iid/review", h.GetMergeRequestReview)

	analysis := router.Group("/analysis", auth)
	analysis.Post("/", h.StartAnalysis)
	analysis.Get("/history", h.GetAnalysisHistory)
	analysis.Get("/:analysis_id", h.GetAnalysis)

	notifications := router.Group("/notifications", auth)
	notifications.Get("/settings", h.GetNotificationSettings)
	notifications.Put("/settings", h.UpdateNotificationSettings)
}

// Register registers the v1 routes
func Register(app *fiber.App, h *handlers.Handler, auth fiber.Handler) {
	v1Group := app.Group("/api/v1")
	SetupRoutes(v1Group, h, auth)
}
