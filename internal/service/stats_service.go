package service

import (
	"context"
	"time"

	"storefront-service/internal/models"
	"storefront-service/internal/store"
	"storefront-service/internal/util"

	"go.uber.org/zap"
)

// StatsService computes the per-user roll-up shown on the account page.
// The numbers are always derived from the store; redis only memoizes them
// for a short TTL.
type StatsService struct {
	store   store.Store
	cache   StatsCache
	ttl     time.Duration
	divisor int64
	logger  *zap.Logger
}

// NewStatsService creates a new stats service. divisor is the spend-to-points
// ratio (1000 VND per point by default).
func NewStatsService(st store.Store, cache StatsCache, ttl time.Duration, divisor int64) *StatsService {
	if divisor <= 0 {
		divisor = 1000
	}
	return &StatsService{
		store:   st,
		cache:   cache,
		ttl:     ttl,
		divisor: divisor,
		logger:  util.GetLogger(),
	}
}

// ComputeUserStats aggregates orders and wishlist size into UserStats.
// TotalOrders counts every order regardless of status; TotalSpent sums
// totals over delivered orders only; points are floor(spent / divisor).
func ComputeUserStats(orders []models.Order, wishlistCount int, divisor int64) models.UserStats {
	stats := models.UserStats{
		TotalOrders:   len(orders),
		TotalWishlist: wishlistCount,
	}
	for _, o := range orders {
		if o.Status == models.OrderStatusDelivered {
			stats.TotalSpent += o.Total
		}
	}
	stats.TotalPoints = stats.TotalSpent / divisor
	return stats
}

// GetUserStats returns the roll-up for a user, served from cache when fresh.
// Cache failures fall through to a recompute; store failures propagate.
func (s *StatsService) GetUserStats(ctx context.Context, userID string) (*models.UserStats, error) {
	ctx, span := util.StartSpan(ctx, "StatsService.GetUserStats")
	defer span.End()

	if s.cache != nil {
		cached, err := s.cache.GetUserStats(ctx, userID)
		if err != nil {
			s.logger.Warn("Stats cache read failed", zap.String("user_id", userID), zap.Error(err))
		} else if cached != nil {
			util.StatsCacheHits.Inc()
			return cached, nil
		}
	}
	util.StatsCacheMisses.Inc()

	orders, err := s.store.GetUserOrders(ctx, userID)
	if err != nil {
		return nil, err
	}
	wishlist, err := s.store.GetUserWishlist(ctx, userID)
	if err != nil {
		return nil, err
	}

	stats := ComputeUserStats(orders, len(wishlist), s.divisor)

	if s.cache != nil {
		if err := s.cache.SetUserStats(ctx, userID, &stats, s.ttl); err != nil {
			s.logger.Warn("Stats cache write failed", zap.String("user_id", userID), zap.Error(err))
		}
	}
	return &stats, nil
}
