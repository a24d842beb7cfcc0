// Package models defines the persistent data model of the review service.
package models

import (
	"encoding/json"
	"fmt"
)

// CreatedAtField is the database field name for creation timestamps
const CreatedAtField = "created_at"

// ReviewStatus represents the current state of a review job
type ReviewStatus int

// Review status constants
const (
	// ReviewStatusUnknown represents an unknown or invalid review status
	ReviewStatusUnknown ReviewStatus = iota
	// ReviewStatusPending indicates the review is waiting for a result
	ReviewStatusPending
	// ReviewStatusCompleted indicates the review finished with a verdict
	ReviewStatusCompleted
	// ReviewStatusFailed indicates the review failed to produce a verdict
	ReviewStatusFailed
)

var reviewStatusNames = []string{
	"unknown",
	"pending",
	"completed",
	"failed",
}

// ParseReviewStatus converts a string representation of a review status to ReviewStatus
func ParseReviewStatus(str string) (ReviewStatus, error) {
	for i, status := range reviewStatusNames {
		if status == str {
			return ReviewStatus(i), nil
		}
	}
	return ReviewStatusUnknown, fmt.Errorf("invalid review status: %s", str)
}

func (s ReviewStatus) String() string {
	if int(s) >= len(reviewStatusNames) {
		return reviewStatusNames[0]
	}
	return reviewStatusNames[s]
}

// IsTerminal reports whether the status is one of the immutable end states
func (s ReviewStatus) IsTerminal() bool {
	return s == ReviewStatusCompleted || s == ReviewStatusFailed
}

// MarshalJSON implements the json.Marshaler interface for ReviewStatus
func (s ReviewStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface for ReviewStatus
func (s *ReviewStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}

	status, err := ParseReviewStatus(str)
	if err != nil {
		return err
	}

	*s = status
	return nil
}
