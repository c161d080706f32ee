package service

import (
	"context"
	"log"
	"time"

	"digital-goods-store/internal/repository"
)

// unverifiedMaxAge is how long an account may stay unverified before the
// cleanup task removes it.
const unverifiedMaxAge = 24 * time.Hour

type CleanupService interface {
	// PurgeUnverified deletes never-verified accounts older than 24h.
	// Idempotent; safe to run on any schedule.
	PurgeUnverified(ctx context.Context) (int64, error)
	// Run executes PurgeUnverified on every tick until ctx is cancelled.
	Run(ctx context.Context, interval time.Duration)
}

type cleanupServiceImpl struct {
	userRepo repository.UserRepository
}

func NewCleanupService(userRepo repository.UserRepository) CleanupService {
	return &cleanupServiceImpl{userRepo: userRepo}
}

func (s *cleanupServiceImpl) PurgeUnverified(ctx context.Context) (int64, error) {
	return s.userRepo.DeleteUnverifiedBefore(ctx, time.Now().Add(-unverifiedMaxAge))
}

func (s *cleanupServiceImpl) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := s.PurgeUnverified(ctx)
			if err != nil {
				log.Println("cleanup unverified accounts:", err)
				continue
			}
			if removed > 0 {
				log.Printf("cleanup removed %d unverified accounts", removed)
			}
		}
	}
}
