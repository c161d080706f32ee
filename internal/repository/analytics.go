package repository

import (
	"context"
	"time"

	"digital-goods-store/internal/model"

	"gorm.io/gorm"
)

type EventCount struct {
	EventType string `json:"eventType"`
	Count     int64  `json:"count"`
}

type AnalyticsRepository interface {
	Create(ctx context.Context, event *model.AnalyticsEvent) error
	CountByType(ctx context.Context, from, to time.Time) ([]EventCount, error)
}

type analyticsRepoImpl struct {
	db *gorm.DB
}

func NewAnalyticsRepository(db *gorm.DB) AnalyticsRepository {
	return &analyticsRepoImpl{db: db}
}

func (r *analyticsRepoImpl) Create(ctx context.Context, event *model.AnalyticsEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *analyticsRepoImpl) CountByType(ctx context.Context, from, to time.Time) ([]EventCount, error) {
	var counts []EventCount
	err := r.db.WithContext(ctx).
		Model(&model.AnalyticsEvent{}).
		Select("event_type, COUNT(*) AS count").
		Where("created_at >= ? AND created_at < ?", from, to).
		Group("event_type").
		Order("count DESC").
		Scan(&counts).Error

	if err != nil {
		return nil, err
	}
	return counts, nil
}
