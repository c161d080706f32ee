package repository

import (
	"context"
	"errors"

	"digital-goods-store/internal/model"

	"gorm.io/gorm"
)

type SecretRepository interface {
	// CreateBatch inserts all secrets in one transaction; if any row fails
	// the whole batch is rolled back.
	CreateBatch(ctx context.Context, secrets []*model.PremiumSecret) error
	FindByID(ctx context.Context, id string) (*model.PremiumSecret, error)
	ListByProduct(ctx context.Context, productID string, kind model.SecretKind) ([]*model.PremiumSecret, error)
	// ListByKind pages through every secret of one kind across all products.
	ListByKind(ctx context.Context, kind model.SecretKind, page, limit int) ([]*model.PremiumSecret, int64, error)
	// Delete refuses to remove a secret that has been assigned to an order.
	Delete(ctx context.Context, id string) error
	// Assign flips is_assigned false -> true for the given secret exactly
	// once; a second caller gets ErrSecretAlreadyAssigned.
	Assign(ctx context.Context, id, orderID string) error
	// AssignNextFree claims any unassigned secret of the product for the
	// order and returns it.
	AssignNextFree(ctx context.Context, productID, orderID string) (*model.PremiumSecret, error)
	CountFree(ctx context.Context, productID string) (int64, error)
}

type secretRepoImpl struct {
	db *gorm.DB
}

func NewSecretRepository(db *gorm.DB) SecretRepository {
	return &secretRepoImpl{db: db}
}

func (r *secretRepoImpl) CreateBatch(ctx context.Context, secrets []*model.PremiumSecret) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&secrets).Error
	})
}

func (r *secretRepoImpl) FindByID(ctx context.Context, id string) (*model.PremiumSecret, error) {
	var secret model.PremiumSecret
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&secret).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &secret, nil
}

func (r *secretRepoImpl) ListByProduct(ctx context.Context, productID string, kind model.SecretKind) ([]*model.PremiumSecret, error) {
	q := r.db.WithContext(ctx).
		Where("product_id = ?", productID)
	if kind != "" {
		q = q.Where("kind = ?", kind)
	}

	var secrets []*model.PremiumSecret
	if err := q.Order("created_at ASC").Find(&secrets).Error; err != nil {
		return nil, err
	}
	return secrets, nil
}

func (r *secretRepoImpl) ListByKind(ctx context.Context, kind model.SecretKind, page, limit int) ([]*model.PremiumSecret, int64, error) {
	q := r.db.WithContext(ctx).
		Model(&model.PremiumSecret{}).
		Where("kind = ?", kind)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	var secrets []*model.PremiumSecret
	err := q.Order("created_at ASC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&secrets).Error

	if err != nil {
		return nil, 0, err
	}
	return secrets, total, nil
}

func (r *secretRepoImpl) Delete(ctx context.Context, id string) error {
	secret, err := r.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if secret.IsAssigned {
		return ErrSecretAlreadyAssigned
	}

	// Guard again inside the DELETE so a concurrent assignment between the
	// read and the delete cannot drop a consumed secret.
	result := r.db.WithContext(ctx).
		Where("id = ? AND is_assigned = ?", id, false).
		Delete(&model.PremiumSecret{})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSecretAlreadyAssigned
	}
	return nil
}

func (r *secretRepoImpl) Assign(ctx context.Context, id, orderID string) error {
	result := r.db.WithContext(ctx).
		Model(&model.PremiumSecret{}).
		Where("id = ? AND is_assigned = ?", id, false).
		Updates(map[string]interface{}{
			"is_assigned":       true,
			"assigned_order_id": orderID,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		// Lost the race or the id is bogus; tell them apart.
		if _, err := r.FindByID(ctx, id); err != nil {
			return err
		}
		return ErrSecretAlreadyAssigned
	}
	return nil
}

func (r *secretRepoImpl) AssignNextFree(ctx context.Context, productID, orderID string) (*model.PremiumSecret, error) {
	// Claim loop: pick a candidate, try the guarded flip, retry on contention
	// until the pool is exhausted.
	for {
		var secret model.PremiumSecret
		err := r.db.WithContext(ctx).
			Where("product_id = ? AND is_assigned = ?", productID, false).
			Order("created_at ASC").
			First(&secret).Error

		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoFreeSecret
		}
		if err != nil {
			return nil, err
		}

		err = r.Assign(ctx, secret.ID, orderID)
		if errors.Is(err, ErrSecretAlreadyAssigned) || errors.Is(err, ErrNotFound) {
			continue // someone else took it
		}
		if err != nil {
			return nil, err
		}

		secret.IsAssigned = true
		secret.AssignedOrderID = &orderID
		return &secret, nil
	}
}

func (r *secretRepoImpl) CountFree(ctx context.Context, productID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.PremiumSecret{}).
		Where("product_id = ? AND is_assigned = ?", productID, false).
		Count(&count).Error
	return count, err
}
