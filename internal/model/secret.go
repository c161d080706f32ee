package model

import "time"

type SecretKind string

const (
	SecretKindCode       SecretKind = "code"
	SecretKindCredential SecretKind = "credential"
)

// PremiumSecret is one assignable unit of a premium product: either a single
// activation code or an email/password credential. Both kinds are stored as
// one encrypted payload; the database only ever sees ciphertext.
type PremiumSecret struct {
	ID               string     `gorm:"primaryKey;size:64;not null"`
	ProductID        string     `gorm:"size:64;index;not null"`
	Kind             SecretKind `gorm:"size:16;index;not null"`
	EncryptedPayload string     `gorm:"type:text;not null"`
	IsAssigned       bool       `gorm:"not null;default:false;index"`
	AssignedOrderID  *string    `gorm:"size:64;index"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// CredentialPayload is the plaintext shape of a credential-kind secret.
// It is JSON-encoded before encryption and never persisted in the clear.
type CredentialPayload struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	AdditionalNotes string `json:"additional_notes,omitempty"`
}
