package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type ProductType string

const (
	ProductTypeEbook   ProductType = "ebook"
	ProductTypePremium ProductType = "premium_account"
)

type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "active"
	ProductStatusInactive ProductStatus = "inactive"
)

type LicenseType string

const (
	LicenseTypeKey    LicenseType = "key"
	LicenseTypeLogin  LicenseType = "login"
	LicenseTypeSerial LicenseType = "serial"
)

// Product is a single-table union of both catalog types. Type selects which
// extension columns are meaningful; the shared columns apply to every row.
type Product struct {
	ID          string          `gorm:"primaryKey;size:64;not null" json:"id"`
	Type        ProductType     `gorm:"size:32;index;not null" json:"type"`
	Name        string          `gorm:"size:255;not null" json:"name"`
	Slug        string          `gorm:"size:255;uniqueIndex;not null" json:"slug"`
	Description string          `gorm:"type:text" json:"description"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	IsAvailable bool            `gorm:"not null;default:true" json:"isAvailable"`
	Status      ProductStatus   `gorm:"size:16;index;not null;default:active" json:"status"`
	Tags        StringList      `gorm:"type:text" json:"tags"`
	Language    string          `gorm:"size:64" json:"language,omitempty"`

	ThumbnailURL      string `gorm:"size:512" json:"thumbnailUrl,omitempty"`
	ThumbnailPublicID string `gorm:"size:255" json:"-"`
	DeliveryFormat    string `gorm:"size:64" json:"deliveryFormat,omitempty"`

	// Remote binary handle; the catalog never stores raw bytes.
	FileID   string `gorm:"size:255" json:"-"`
	FileName string `gorm:"size:255" json:"fileName,omitempty"`
	BucketID string `gorm:"size:255" json:"-"`

	// ebook extension
	Author          string     `gorm:"size:255" json:"author,omitempty"`
	ISBN            string     `gorm:"size:32" json:"isbn,omitempty"`
	PublicationDate *time.Time `json:"publicationDate,omitempty"`
	Publisher       string     `gorm:"size:255" json:"publisher,omitempty"`
	Edition         string     `gorm:"size:64" json:"edition,omitempty"`
	PageCount       int        `json:"pageCount,omitempty"`
	FileSize        int64      `json:"fileSize,omitempty"`
	FileFormat      string     `gorm:"size:32" json:"fileFormat,omitempty"`

	// premium extension
	Platform    string      `gorm:"size:128;index" json:"platform,omitempty"`
	Duration    string      `gorm:"size:64" json:"duration,omitempty"`
	LicenseType LicenseType `gorm:"size:16" json:"licenseType,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
