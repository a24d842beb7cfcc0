package repos

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/glrv/reviewd/internal/db/models"
)

// UserRepository provides access to user and session token records
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository instance
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// GetUserIDByToken resolves a session token to its owning user id
func (r *UserRepository) GetUserIDByToken(ctx context.Context, token string) (uint, error) {
	var record models.Token
	err := r.db.WithContext(ctx).
		Where(&models.Token{Token: token}).
		First(&record).Error
	if err != nil {
		return 0, fmt.Errorf("failed to resolve token: %w", err)
	}
	return record.UserID, nil
}
