package models

import (
	"encoding/json"

	"gorm.io/gorm"
)

// CommitReview tracks one review attempt for a pushed commit range.
//
// AfterCommit is unique per repository so a redelivered push webhook cannot
// create a second job for the same push. ReviewJSON stays nil until the
// review completes.
type CommitReview struct {
	gorm.Model
	RepoID       uint            `json:"repo_id" gorm:"not null;uniqueIndex:idx_commit_reviews_repo_after"`
	BeforeCommit string          `json:"before_commit" gorm:"not null"`
	AfterCommit  string          `json:"after_commit" gorm:"not null;index;uniqueIndex:idx_commit_reviews_repo_after"`
	Status       ReviewStatus    `json:"status" gorm:"index"`
	ReviewJSON   json.RawMessage `json:"review_json,omitempty" gorm:"type:jsonb"`
}

// MergeRequestReview tracks one review attempt for a merge request. A new
// pipeline run on the same merge request produces a fresh row; lookups return
// the most recent one.
type MergeRequestReview struct {
	gorm.Model
	RepoID     uint            `json:"repo_id" gorm:"not null;index:idx_mr_reviews_repo_mr"`
	MrIID      uint            `json:"mr_iid" gorm:"not null;index:idx_mr_reviews_repo_mr"`
	Status     ReviewStatus    `json:"status" gorm:"index"`
	ReviewJSON json.RawMessage `json:"review_json,omitempty" gorm:"type:jsonb"`
}

// RepositoryAnalysis tracks one whole-repository analysis run. The owning
// Repository keeps a pointer to its latest analysis.
type RepositoryAnalysis struct {
	gorm.Model
	RepoID       uint            `json:"repo_id" gorm:"not null;index"`
	Status       ReviewStatus    `json:"status" gorm:"index"`
	AnalysisJSON json.RawMessage `json:"analysis_json,omitempty" gorm:"type:jsonb"`
}
