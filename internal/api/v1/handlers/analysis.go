package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/glrv/reviewd/internal/api/v1/middleware"
)

// StartAnalysisRequest is the body for POST /analysis
type StartAnalysisRequest struct {
	RepoID uint   `json:"repo_id"`
	Ref    string `json:"ref"`
}

// StartAnalysis queues a whole-repository analysis run
func (h *Handler) StartAnalysis(c *fiber.Ctx) error {
	var req StartAnalysisRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.RepoID == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "repo_id is required")
	}
	if req.Ref == "" {
		req.Ref = "main"
	}

	if err := h.reviews.StartRepositoryAnalysisForUser(c.Context(), middleware.UserID(c), req.RepoID, req.Ref); err != nil {
		return err
	}
	return c.Status(fiber.StatusAccepted).JSON(Success(nil))
}

// GetAnalysisHistory lists a repository's analysis run ids, newest first
func (h *Handler) GetAnalysisHistory(c *fiber.Ctx) error {
	repoID := c.QueryInt("repo_id")
	if repoID <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "invalid repo_id")
	}

	ids, err := h.reviews.GetAnalysisHistory(c.Context(), middleware.UserID(c), uint(repoID))
	if err != nil {
		return err
	}

	return c.JSON(Success(AnalysisHistoryOutput{
		RepoID:      uint(repoID),
		AnalysisIDs: ids,
	}))
}

// GetAnalysis returns a completed repository analysis by id
func (h *Handler) GetAnalysis(c *fiber.Ctx) error {
	analysisID, err := c.ParamsInt("analysis_id")
	if err != nil || analysisID <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "invalid analysis_id")
	}

	analysis, err := h.reviews.GetAnalysis(c.Context(), middleware.UserID(c), uint(analysisID))
	if err != nil {
		return err
	}

	return c.JSON(Success(AnalysisOutput{
		ID:        analysis.ID,
		RepoID:    analysis.RepoID,
		Analysis:  string(analysis.AnalysisJSON),
		CreatedAt: analysis.CreatedAt.Unix(),
	}))
}
