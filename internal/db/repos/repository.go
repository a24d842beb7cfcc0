package repos

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/glrv/reviewd/internal/db/models"
)

// RepositoryRepository provides access to bound repositories and their user
// bindings
type RepositoryRepository struct {
	db *gorm.DB
}

// NewRepositoryRepository creates a new repository repository instance
func NewRepositoryRepository(db *gorm.DB) *RepositoryRepository {
	return &RepositoryRepository{db: db}
}

// Create registers a repository under its GitLab project id
func (r *RepositoryRepository) Create(ctx context.Context, repo *models.Repository) error {
	return r.db.WithContext(ctx).Create(repo).Error
}

// Get retrieves a repository by its GitLab project id
func (r *RepositoryRepository) Get(ctx context.Context, repoID uint) (*models.Repository, error) {
	var repo models.Repository
	if err := r.db.WithContext(ctx).First(&repo, "id = ?", repoID).Error; err != nil {
		return nil, fmt.Errorf("failed to get repository: %w", err)
	}
	return &repo, nil
}

// Bind links a user to a repository
func (r *RepositoryRepository) Bind(ctx context.Context, userID, repoID uint) error {
	binding := &models.RepositoryBinding{UserID: userID, RepoID: repoID}
	return r.db.WithContext(ctx).Create(binding).Error
}

// HasBinding reports whether the user is bound to the repository
func (r *RepositoryRepository) HasBinding(ctx context.Context, userID, repoID uint) (bool, error) {
	var binding models.RepositoryBinding
	err := r.db.WithContext(ctx).
		Where(&models.RepositoryBinding{UserID: userID, RepoID: repoID}).
		First(&binding).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check binding: %w", err)
	}
	return true, nil
}
