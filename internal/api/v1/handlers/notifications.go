package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/glrv/reviewd/internal/api/v1/middleware"
	"github.com/glrv/reviewd/internal/db/models"
)

// UpdateNotificationSettingsRequest is the body for PUT /notifications/settings.
// The webhook secret is accepted here but never echoed back in responses.
type UpdateNotificationSettingsRequest struct {
	NotifyLevel    int    `json:"notify_level"`
	EmailEnabled   bool   `json:"email_enabled"`
	WebhookEnabled bool   `json:"webhook_enabled"`
	WebhookURL     string `json:"webhook_url"`
	WebhookSecret  string `json:"webhook_secret"`
}

// GetNotificationSettings returns the caller's notification settings
func (h *Handler) GetNotificationSettings(c *fiber.Ctx) error {
	settings, err := h.notifications.GetSettings(c.Context(), middleware.UserID(c))
	if err != nil {
		return err
	}
	return c.JSON(Success(settings))
}

// UpdateNotificationSettings replaces the caller's notification settings
func (h *Handler) UpdateNotificationSettings(c *fiber.Ctx) error {
	var req UpdateNotificationSettingsRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	settings := &models.NotificationSettings{
		NotifyLevel:    models.RiskLevel(req.NotifyLevel),
		EmailEnabled:   req.EmailEnabled,
		WebhookEnabled: req.WebhookEnabled,
		WebhookURL:     req.WebhookURL,
		WebhookSecret:  req.WebhookSecret,
	}
	if err := h.notifications.UpdateSettings(c.Context(), middleware.UserID(c), settings); err != nil {
		return err
	}
	return c.JSON(Success(nil))
}
