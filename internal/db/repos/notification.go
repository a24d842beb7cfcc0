package repos

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/glrv/reviewd/internal/db/models"
)

// NotificationRepository provides access to notification settings and the
// recipient queries used by the dispatcher
type NotificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new notification repository instance
func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// GetSettings retrieves a user's notification settings. A user without a row
// gets the zero-value defaults.
func (r *NotificationRepository) GetSettings(ctx context.Context, userID uint) (*models.NotificationSettings, error) {
	var settings models.NotificationSettings
	err := r.db.WithContext(ctx).
		Where(&models.NotificationSettings{UserID: userID}).
		First(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.NotificationSettings{UserID: userID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get notification settings: %w", err)
	}
	return &settings, nil
}

// UpsertSettings replaces a user's notification settings
func (r *NotificationRepository) UpsertSettings(ctx context.Context, settings *models.NotificationSettings) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Hard delete so the unique index on user_id frees up for the
		// replacement row.
		res := tx.Unscoped().
			Where(&models.NotificationSettings{UserID: settings.UserID}).
			Delete(&models.NotificationSettings{})
		if res.Error != nil {
			return res.Error
		}
		return tx.Create(settings).Error
	})
}

// EmailRecipients returns the addresses of repository-bound users with email
// notifications enabled whose threshold is satisfied by the given level.
func (r *NotificationRepository) EmailRecipients(ctx context.Context, repoID uint, level models.RiskLevel) ([]string, error) {
	var emails []string
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Joins("JOIN repository_bindings ON repository_bindings.user_id = users.id").
		Joins("JOIN notification_settings ON notification_settings.user_id = users.id").
		Where("repository_bindings.repo_id = ?", repoID).
		Where("notification_settings.notify_level <= ?", level).
		Where("notification_settings.email_enabled = ?", true).
		Pluck("users.email", &emails).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query email recipients: %w", err)
	}
	return emails, nil
}

// WebhookRecipients returns the settings rows of repository-bound users with
// webhook notifications enabled whose threshold is satisfied.
func (r *NotificationRepository) WebhookRecipients(ctx context.Context, repoID uint, level models.RiskLevel) ([]models.NotificationSettings, error) {
	var settings []models.NotificationSettings
	err := r.db.WithContext(ctx).Model(&models.NotificationSettings{}).
		Joins("JOIN repository_bindings ON repository_bindings.user_id = notification_settings.user_id").
		Where("repository_bindings.repo_id = ?", repoID).
		Where("notification_settings.notify_level <= ?", level).
		Where("notification_settings.webhook_enabled = ?", true).
		Find(&settings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query webhook recipients: %w", err)
	}
	return settings, nil
}
