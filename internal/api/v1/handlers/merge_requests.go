package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/glrv/reviewd/internal/api/v1/middleware"
)

// GetMergeRequestReview returns the latest completed review for a merge
// request, addressed by repository id and merge request iid.
func (h *Handler) GetMergeRequestReview(c *fiber.Ctx) error {
	repoID, err := c.ParamsInt("repo_id")
	if err != nil || repoID <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "invalid repo_id")
	}
	mrIID, err := c.ParamsInt("mr_iid")
	if err != nil || mrIID <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "invalid mr_iid")
	}

	review, err := h.reviews.GetMergeRequestReview(c.Context(), middleware.UserID(c), uint(repoID), uint(mrIID))
	if err != nil {
		return err
	}

	return c.JSON(Success(ReviewOutput{
		Review:    string(review.ReviewJSON),
		CreatedAt: review.CreatedAt.Unix(),
	}))
}
