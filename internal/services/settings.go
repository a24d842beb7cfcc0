package services

import (
	"context"

	"github.com/glrv/reviewd/internal/apperrors"
	"github.com/glrv/reviewd/internal/db/models"
	"github.com/glrv/reviewd/internal/db/repos"
)

// Notification manages per-user notification preferences.
type Notification struct {
	repo *repos.NotificationRepository
}

// NewNotificationService creates a new notification settings service
func NewNotificationService(repo *repos.NotificationRepository) *Notification {
	return &Notification{repo: repo}
}

// GetSettings retrieves a user's notification settings, defaults included
func (s *Notification) GetSettings(ctx context.Context, userID uint) (*models.NotificationSettings, error) {
	return s.repo.GetSettings(ctx, userID)
}

// UpdateSettings validates and replaces a user's notification settings
func (s *Notification) UpdateSettings(ctx context.Context, userID uint, settings *models.NotificationSettings) error {
	settings.UserID = userID
	if err := settings.Validate(); err != nil {
		return apperrors.ErrInvalidNotificationSettings
	}
	return s.repo.UpsertSettings(ctx, settings)
}
