package model

import "time"

type Role string

const (
	RoleCustomer     Role = "customer"
	RoleAdmin        Role = "admin"
	RoleLimitedAdmin Role = "limited_admin"
)

type User struct {
	ID           string     `gorm:"primaryKey;size:64;not null" json:"id"`
	Email        string     `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Name         string     `gorm:"size:255" json:"name"`
	PasswordHash string     `gorm:"size:255;not null" json:"-"`
	Role         Role       `gorm:"size:32;index;not null;default:customer" json:"role"`
	Permissions  StringList `gorm:"type:text" json:"permissions"`
	IsVerified   bool       `gorm:"not null;default:false;index" json:"isVerified"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// CartItem is ephemeral working state, one row per (user, product).
type CartItem struct {
	UserID    string    `gorm:"primaryKey;size:64;not null" json:"userId"`
	ProductID string    `gorm:"primaryKey;size:64;not null" json:"productId"`
	Quantity  int32     `gorm:"not null" json:"quantity"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
