package service

import (
	"context"
	"time"

	"storefront-service/internal/models"
)

// Actor identifies who is performing an operation. Admin is an explicit
// capability: owner scoping is bypassed only when it is set, never through
// data-shape conventions like an empty user id.
type Actor struct {
	UserID string
	Admin  bool
}

// Publisher is the slice of the event broker the services need
type Publisher interface {
	PublishOrderCreated(ctx context.Context, event *models.OrderCreatedEvent) error
	PublishOrderStatusChanged(ctx context.Context, event *models.OrderStatusChangedEvent) error
	PublishMovementApproved(ctx context.Context, event *models.MovementApprovedEvent) error
}

// StatsCache caches the per-user stats roll-up. The cache is advisory: every
// method may fail without affecting correctness.
type StatsCache interface {
	GetUserStats(ctx context.Context, userID string) (*models.UserStats, error)
	SetUserStats(ctx context.Context, userID string, stats *models.UserStats, ttl time.Duration) error
	InvalidateUserStats(ctx context.Context, userID string) error
}

// Locker is a best-effort distributed lock used around movement approval
type Locker interface {
	AcquireLock(ctx context.Context, lockKey string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, lockKey string) error
}
