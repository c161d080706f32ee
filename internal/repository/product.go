package repository

import (
	"context"
	"errors"

	"digital-goods-store/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProductFilter drives the type-filtered catalog listing. Zero values mean
// "not filtered".
type ProductFilter struct {
	Type        model.ProductType
	PriceMin    *decimal.Decimal
	PriceMax    *decimal.Decimal
	Platform    string
	Duration    string
	LicenseType string
	Language    string
	FileFormat  string
	Tag         string
	Status      string
	Page        int
	Limit       int
}

type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	FindByID(ctx context.Context, id string) (*model.Product, error)
	FindBySlug(ctx context.Context, slug string) (*model.Product, error)
	Updates(ctx context.Context, id string, fields map[string]interface{}) (*model.Product, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ProductFilter) ([]*model.Product, int64, error)
}

type productRepoImpl struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepoImpl{db: db}
}

func (r *productRepoImpl) Create(ctx context.Context, product *model.Product) error {
	err := r.db.WithContext(ctx).Create(product).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrSlugTaken
	}
	return err
}

func (r *productRepoImpl) FindByID(ctx context.Context, id string) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&product).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepoImpl) FindBySlug(ctx context.Context, slug string) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).
		Where("slug = ?", slug).
		First(&product).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// Updates applies a partial update; only keys present in fields are touched.
func (r *productRepoImpl) Updates(ctx context.Context, id string, fields map[string]interface{}) (*model.Product, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("id = ?", id).
		Updates(fields)

	if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
		return nil, ErrSlugTaken
	}
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		// Either the row is gone or the update was a no-op; disambiguate.
		if _, err := r.FindByID(ctx, id); err != nil {
			return nil, err
		}
	}
	return r.FindByID(ctx, id)
}

func (r *productRepoImpl) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.Product{})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *productRepoImpl) List(ctx context.Context, filter ProductFilter) ([]*model.Product, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Product{})

	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.PriceMin != nil {
		q = q.Where("price >= ?", filter.PriceMin)
	}
	if filter.PriceMax != nil {
		q = q.Where("price <= ?", filter.PriceMax)
	}
	if filter.Platform != "" {
		q = q.Where("platform = ?", filter.Platform)
	}
	if filter.Duration != "" {
		q = q.Where("duration = ?", filter.Duration)
	}
	if filter.LicenseType != "" {
		q = q.Where("license_type = ?", filter.LicenseType)
	}
	if filter.Language != "" {
		q = q.Where("language = ?", filter.Language)
	}
	if filter.FileFormat != "" {
		q = q.Where("file_format = ?", filter.FileFormat)
	}
	if filter.Tag != "" {
		// tags column holds a JSON array; match the quoted element.
		q = q.Where("tags LIKE ?", "%\""+filter.Tag+"\"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 {
		limit = 20
	}

	var products []*model.Product
	err := q.Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&products).Error

	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}
