package service

import (
	"context"
	"fmt"
	"time"

	"digital-goods-store/internal/model"
	"digital-goods-store/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type AnalyticsSummary struct {
	From           time.Time               `json:"from"`
	To             time.Time               `json:"to"`
	Events         []repository.EventCount `json:"events"`
	CompletedCount int64                   `json:"completedOrders"`
	Revenue        decimal.Decimal         `json:"revenue"`
}

type AnalyticsService interface {
	Track(ctx context.Context, event *model.AnalyticsEvent) error
	Summary(ctx context.Context, from, to time.Time) (*AnalyticsSummary, error)
}

type analyticsServiceImpl struct {
	analyticsRepo repository.AnalyticsRepository
	orderRepo     repository.OrderRepository
}

func NewAnalyticsService(analyticsRepo repository.AnalyticsRepository, orderRepo repository.OrderRepository) AnalyticsService {
	return &analyticsServiceImpl{
		analyticsRepo: analyticsRepo,
		orderRepo:     orderRepo,
	}
}

func (s *analyticsServiceImpl) Track(ctx context.Context, event *model.AnalyticsEvent) error {
	if event.EventType == "" {
		return fmt.Errorf("%w: eventType is required", ErrValidation)
	}
	event.ID = uuid.NewString()
	return s.analyticsRepo.Create(ctx, event)
}

func (s *analyticsServiceImpl) Summary(ctx context.Context, from, to time.Time) (*AnalyticsSummary, error) {
	if to.IsZero() {
		to = time.Now()
	}
	if from.IsZero() {
		from = to.AddDate(0, -1, 0)
	}
	if !from.Before(to) {
		return nil, fmt.Errorf("%w: from must be before to", ErrValidation)
	}

	events, err := s.analyticsRepo.CountByType(ctx, from, to)
	if err != nil {
		return nil, err
	}
	revenue, completed, err := s.orderRepo.RevenueBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}

	return &AnalyticsSummary{
		From:           from,
		To:             to,
		Events:         events,
		CompletedCount: completed,
		Revenue:        revenue,
	}, nil
}
