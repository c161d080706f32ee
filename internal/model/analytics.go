package model

import "time"

// AnalyticsEvent is append-only; rows are never updated.
type AnalyticsEvent struct {
	ID        string    `gorm:"primaryKey;size:64;not null" json:"id"`
	EventType string    `gorm:"size:64;index;not null" json:"eventType"`
	UserID    string    `gorm:"size:64;index" json:"userId,omitempty"`
	ProductID string    `gorm:"size:64;index" json:"productId,omitempty"`
	OrderID   string    `gorm:"size:64;index" json:"orderId,omitempty"`
	Metadata  string    `gorm:"type:text" json:"metadata,omitempty"` // free-form JSON
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
}
