package repository

import (
	"context"
	"errors"
	"time"

	"digital-goods-store/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	FindByID(ctx context.Context, id string) (*model.Order, error)
	List(ctx context.Context, page, limit int) ([]*model.Order, int64, error)
	ListByUser(ctx context.Context, userID string) ([]*model.Order, error)
	UpdateStatus(ctx context.Context, id, status string) error
	SetItemSecret(ctx context.Context, itemID uint, secretID string) error
	AppendLog(ctx context.Context, orderID, status, message string) error
	RevenueBetween(ctx context.Context, from, to time.Time) (decimal.Decimal, int64, error)
}

type orderRepoImpl struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepoImpl{db: db}
}

func (r *orderRepoImpl) Create(ctx context.Context, order *model.Order) error {
	// Order and its item snapshots land together.
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(order).Error
	})
}

func (r *orderRepoImpl) FindByID(ctx context.Context, id string) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Logs", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_logs.id ASC")
		}).
		Where("id = ?", id).
		First(&order).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepoImpl) List(ctx context.Context, page, limit int) ([]*model.Order, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Order{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	var orders []*model.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&orders).Error

	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *orderRepoImpl) ListByUser(ctx context.Context, userID string) ([]*model.Order, error) {
	var orders []*model.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error

	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *orderRepoImpl) UpdateStatus(ctx context.Context, id, status string) error {
	result := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *orderRepoImpl) SetItemSecret(ctx context.Context, itemID uint, secretID string) error {
	return r.db.WithContext(ctx).
		Model(&model.OrderItem{}).
		Where("id = ?", itemID).
		Update("secret_id", secretID).Error
}

func (r *orderRepoImpl) AppendLog(ctx context.Context, orderID, status, message string) error {
	return r.db.WithContext(ctx).Create(&model.OrderLog{
		OrderID:   orderID,
		Status:    status,
		Message:   message,
		Timestamp: time.Now(),
	}).Error
}

func (r *orderRepoImpl) RevenueBetween(ctx context.Context, from, to time.Time) (decimal.Decimal, int64, error) {
	type row struct {
		Total decimal.Decimal
		Count int64
	}
	var res row
	err := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Select("COALESCE(SUM(total_amount), 0) AS total, COUNT(*) AS count").
		Where("status = ?", model.OrderStatusCompleted).
		Where("created_at >= ? AND created_at < ?", from, to).
		Scan(&res).Error

	if err != nil {
		return decimal.Zero, 0, err
	}
	return res.Total, res.Count, nil
}
