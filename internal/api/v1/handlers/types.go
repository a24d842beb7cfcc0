// Package handlers implements the v1 HTTP handlers
package handlers

import (
	"github.com/glrv/reviewd/internal/services"
)

// BaseOutput is the uniform response envelope. Status zero means success;
// non-zero values are application status codes from the apperrors catalog.
type BaseOutput struct {
	Status int         `json:"status"`
	Info   string      `json:"info"`
	Data   interface{} `json:"data"`
}

// Success wraps a payload in a zero-status envelope
func Success(data interface{}) BaseOutput {
	return BaseOutput{Status: 0, Info: "ok", Data: data}
}

// Failure builds an envelope for an application error
func Failure(status int, info string) BaseOutput {
	return BaseOutput{Status: status, Info: info, Data: nil}
}

// ReviewOutput is the payload for completed commit and merge request reviews
type ReviewOutput struct {
	Review    string `json:"review"`
	CreatedAt int64  `json:"created_at"`
}

// AnalysisOutput is the payload for a completed repository analysis
type AnalysisOutput struct {
	ID        uint   `json:"id"`
	RepoID    uint   `json:"repo_id"`
	Analysis  string `json:"analysis"`
	CreatedAt int64  `json:"created_at"`
}

// AnalysisHistoryOutput lists a repository's analysis run ids, newest first
type AnalysisHistoryOutput struct {
	RepoID      uint   `json:"repo_id"`
	AnalysisIDs []uint `json:"analysis_ids"`
}

// Handler bundles the services behind the v1 routes
type Handler struct {
	ingestor      *services.Ingestor
	reviews       *services.Review
	notifications *services.Notification
}

// NewHandler creates the v1 handler set
func NewHandler(ingestor *services.Ingestor, reviews *services.Review, notifications *services.Notification) *Handler {
	return &Handler{
		ingestor:      ingestor,
		reviews:       reviews,
		notifications: notifications,
	}
}
