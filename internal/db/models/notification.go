package models

import (
	"fmt"

	"gorm.io/gorm"
)

// NotificationSettings holds a user's notification preferences: the minimum
// risk level they care about and which channels are enabled.
type NotificationSettings struct {
	gorm.Model
	UserID         uint      `json:"user_id" gorm:"not null;uniqueIndex"`
	NotifyLevel    RiskLevel `json:"notify_level" gorm:"not null;default:0"`
	EmailEnabled   bool      `json:"email_enabled" gorm:"not null;default:false"`
	WebhookEnabled bool      `json:"webhook_enabled" gorm:"not null;default:false"`
	WebhookURL     string    `json:"webhook_url,omitempty"`
	WebhookSecret  string    `json:"-"`
}

// Validate checks the settings are internally consistent before persisting.
func (s *NotificationSettings) Validate() error {
	if _, err := RiskLevelFromInt(int(s.NotifyLevel)); err != nil {
		return err
	}
	if s.WebhookEnabled && (s.WebhookURL == "" || s.WebhookSecret == "") {
		return fmt.Errorf("webhook notifications require a url and a secret")
	}
	return nil
}
