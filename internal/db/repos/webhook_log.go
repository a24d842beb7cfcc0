package repos

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/glrv/reviewd/internal/db/models"
)

// WebhookLogRepository provides append-only access to the webhook audit log
type WebhookLogRepository struct {
	db *gorm.DB
}

// NewWebhookLogRepository creates a new webhook log repository instance
func NewWebhookLogRepository(db *gorm.DB) *WebhookLogRepository {
	return &WebhookLogRepository{db: db}
}

// Record appends a raw webhook payload to the audit log
func (r *WebhookLogRepository) Record(ctx context.Context, data string) error {
	if err := r.db.WithContext(ctx).Create(&models.WebhookLog{Data: data}).Error; err != nil {
		return fmt.Errorf("failed to record webhook payload: %w", err)
	}
	return nil
}

// Count returns the number of recorded webhook payloads
func (r *WebhookLogRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.WebhookLog{}).Count(&count).Error
	return count, err
}
