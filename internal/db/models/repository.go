package models

import (
	"time"

	"gorm.io/gorm"
)

// Repository mirrors a bound GitLab project. The primary key is the GitLab
// project id, not an autoincrement value.
type Repository struct {
	ID         uint           `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Name       string         `json:"name" gorm:"not null"`
	AnalysisID *uint          `json:"analysis_id,omitempty"` // latest analysis pointer
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `json:"-" gorm:"index"`
}

// RepositoryBinding links a user to a repository they may read reviews for
// and be notified about.
type RepositoryBinding struct {
	gorm.Model
	UserID uint `json:"user_id" gorm:"not null;uniqueIndex:idx_bindings_user_repo"`
	RepoID uint `json:"repo_id" gorm:"not null;uniqueIndex:idx_bindings_user_repo"`
}

// User is the minimal account record the pipeline needs: an id to bind with
// and an address to notify.
type User struct {
	gorm.Model
	Email string `json:"email" gorm:"not null"`
}

// Token maps an opaque session token to a user. Session issuance itself is
// handled outside this service.
type Token struct {
	gorm.Model
	Token  string `json:"-" gorm:"not null;uniqueIndex"`
	UserID uint   `json:"user_id" gorm:"not null;index"`
}
