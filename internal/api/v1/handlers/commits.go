package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/glrv/reviewd/internal/api/v1/middleware"
)

// GetCommitReview returns the completed review for a commit SHA
func (h *Handler) GetCommitReview(c *fiber.Ctx) error {
	commitSHA := c.Params("commit_id")
	if commitSHA == "" {
		return fiber.NewError(fiber.StatusBadRequest, "commit_id is required")
	}

	review, err := h.reviews.GetCommitReview(c.Context(), middleware.UserID(c), commitSHA)
	if err != nil {
		return err
	}

	return c.JSON(Success(ReviewOutput{
		Review:    string(review.ReviewJSON),
		CreatedAt: review.CreatedAt.Unix(),
	}))
}
