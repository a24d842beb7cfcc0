package handlers

import (
	"github.com/gofiber/fiber/v2"
)

// GitlabWebhook receives an inbound GitLab webhook. Authentication is the
// shared X-Gitlab-Token header, not a user session.
func (h *Handler) GitlabWebhook(c *fiber.Ctx) error {
	token := c.Get("X-Gitlab-Token")
	if err := h.ingestor.Receive(c.Context(), token, c.Body()); err != nil {
		return err
	}
	return c.JSON(Success(nil))
}
