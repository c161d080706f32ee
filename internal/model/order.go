package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Order struct {
	ID          string          `gorm:"primaryKey;size:64;not null" json:"id"`
	UserID      string          `gorm:"size:64;index;not null" json:"userId"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"totalAmount"`
	Status      string          `gorm:"size:32;index;not null" json:"status"` // pending, completed, failed
	Items       []OrderItem     `gorm:"foreignKey:OrderID" json:"items,omitempty"`
	Logs        []OrderLog      `gorm:"foreignKey:OrderID" json:"logs,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

const (
	OrderStatusPending   = "pending"
	OrderStatusCompleted = "completed"
	OrderStatusFailed    = "failed"
)

// OrderItem snapshots the product at purchase time; later catalog edits do
// not rewrite history. SecretID references the premium secret handed out for
// this line, when any.
type OrderItem struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	OrderID   string          `gorm:"size:64;index;not null" json:"-"`
	ProductID string          `gorm:"size:64;index;not null" json:"productId"`
	Name      string          `gorm:"size:255;not null" json:"name"`
	Type      ProductType     `gorm:"size:32;not null" json:"type"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unitPrice"`
	Quantity  int32           `gorm:"not null" json:"quantity"`
	SecretID  *string         `gorm:"size:64;index" json:"-"`
	CreatedAt time.Time       `json:"createdAt"`
}

// OrderLog is the append-only delivery audit trail.
type OrderLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	OrderID   string    `gorm:"size:64;index;not null" json:"-"`
	Status    string    `gorm:"size:32;not null" json:"status"`
	Message   string    `gorm:"size:512" json:"message"`
	Timestamp time.Time `gorm:"not null" json:"timestamp"`
}
