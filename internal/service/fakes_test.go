package service

import (
	"context"
	"testing"
	"time"

	"storefront-service/internal/filestore"
	"storefront-service/internal/models"
	"storefront-service/internal/store"

	"github.com/stretchr/testify/require"
)

// Tests run the services against the file driver in a temp directory, with
// fakes standing in for kafka and redis.

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	fs, err := filestore.NewFileStore(t.TempDir())
	require.NoError(t, err)
	return fs
}

type fakePublisher struct {
	created       []*models.OrderCreatedEvent
	statusChanged []*models.OrderStatusChangedEvent
	approved      []*models.MovementApprovedEvent
}

func (p *fakePublisher) PublishOrderCreated(ctx context.Context, e *models.OrderCreatedEvent) error {
	p.created = append(p.created, e)
	return nil
}

func (p *fakePublisher) PublishOrderStatusChanged(ctx context.Context, e *models.OrderStatusChangedEvent) error {
	p.statusChanged = append(p.statusChanged, e)
	return nil
}

func (p *fakePublisher) PublishMovementApproved(ctx context.Context, e *models.MovementApprovedEvent) error {
	p.approved = append(p.approved, e)
	return nil
}

type fakeCache struct {
	stats       map[string]*models.UserStats
	invalidated []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{stats: make(map[string]*models.UserStats)}
}

func (c *fakeCache) GetUserStats(ctx context.Context, userID string) (*models.UserStats, error) {
	return c.stats[userID], nil
}

func (c *fakeCache) SetUserStats(ctx context.Context, userID string, stats *models.UserStats, ttl time.Duration) error {
	c.stats[userID] = stats
	return nil
}

func (c *fakeCache) InvalidateUserStats(ctx context.Context, userID string) error {
	delete(c.stats, userID)
	c.invalidated = append(c.invalidated, userID)
	return nil
}

type fakeLocker struct {
	held map[string]bool
}

func newFakeLocker() *fakeLocker {
	return &fakeLocker{held: make(map[string]bool)}
}

func (l *fakeLocker) AcquireLock(ctx context.Context, lockKey string, ttl time.Duration) (bool, error) {
	if l.held[lockKey] {
		return false, nil
	}
	l.held[lockKey] = true
	return true, nil
}

func (l *fakeLocker) ReleaseLock(ctx context.Context, lockKey string) error {
	delete(l.held, lockKey)
	return nil
}
