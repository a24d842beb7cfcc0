// Package services implements the review pipeline: job lifecycle, webhook
// ingestion and notification fan-out.
package services

import (
	"encoding/json"
	"fmt"

	"github.com/glrv/reviewd/internal/db/models"
)

// Verdict is the validated, structured result of a review.
type Verdict struct {
	Info       string           `json:"info"`
	Suggestion json.RawMessage  `json:"suggestion"`
	Level      models.RiskLevel `json:"level"`
}

// ParseVerdict validates raw orchestrator output against the verdict shape.
// Output missing any of the required fields is rejected; the caller treats
// that as a review failure, never as a completed result.
func ParseVerdict(raw string) (*Verdict, error) {
	var probe struct {
		Info       *string         `json:"info"`
		Suggestion json.RawMessage `json:"suggestion"`
		Level      *int            `json:"level"`
	}
	if err := json.Unmarshal([]byte(raw), &probe); err != nil {
		return nil, fmt.Errorf("verdict is not valid JSON: %w", err)
	}
	if probe.Info == nil {
		return nil, fmt.Errorf("verdict is missing the info field")
	}
	if len(probe.Suggestion) == 0 {
		return nil, fmt.Errorf("verdict is missing the suggestion field")
	}
	if probe.Level == nil {
		return nil, fmt.Errorf("verdict is missing the level field")
	}

	level, err := models.RiskLevelFromInt(*probe.Level)
	if err != nil {
		return nil, err
	}

	return &Verdict{
		Info:       *probe.Info,
		Suggestion: probe.Suggestion,
		Level:      level,
	}, nil
}
