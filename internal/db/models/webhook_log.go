package models

import "time"

// WebhookLog is the append-only audit record of every received webhook
// payload. Rows are written before the payload is interpreted and are never
// read by the pipeline itself.
type WebhookLog struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Data      string    `json:"data" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
}
