package service

import (
	"context"
	"fmt"

	"storefront-service/internal/models"
	"storefront-service/internal/store"
	"storefront-service/internal/util"

	"go.uber.org/zap"
)

// WishlistService manages per-user wishlists
type WishlistService struct {
	store  store.Store
	cache  StatsCache
	logger *zap.Logger
}

// NewWishlistService creates a new wishlist service
func NewWishlistService(st store.Store, cache StatsCache) *WishlistService {
	return &WishlistService{
		store:  st,
		cache:  cache,
		logger: util.GetLogger(),
	}
}

// Add saves a product to the user's wishlist. Adding the same product again
// replaces the stored entry, so the operation is idempotent on the
// (user, product) key with the latest data winning.
func (s *WishlistService) Add(ctx context.Context, item models.WishlistItem) error {
	if item.UserID == "" || item.ProductID == "" {
		return fmt.Errorf("wishlist entry requires user and product ids")
	}
	if err := s.store.AddToWishlist(ctx, item); err != nil {
		return err
	}
	util.WishlistOpsTotal.WithLabelValues("add").Inc()
	s.invalidateStats(ctx, item.UserID)
	return nil
}

// Remove deletes a wishlist entry
func (s *WishlistService) Remove(ctx context.Context, userID, productID string) error {
	if err := s.store.RemoveFromWishlist(ctx, userID, productID); err != nil {
		return err
	}
	util.WishlistOpsTotal.WithLabelValues("remove").Inc()
	s.invalidateStats(ctx, userID)
	return nil
}

// List returns the user's wishlist, most recently added first
func (s *WishlistService) List(ctx context.Context, userID string) ([]models.WishlistItem, error) {
	return s.store.GetUserWishlist(ctx, userID)
}

// Contains reports whether the user has saved the product
func (s *WishlistService) Contains(ctx context.Context, userID, productID string) (bool, error) {
	return s.store.IsInWishlist(ctx, userID, productID)
}

func (s *WishlistService) invalidateStats(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateUserStats(ctx, userID); err != nil {
		s.logger.Warn("Failed to invalidate stats cache",
			zap.String("user_id", userID), zap.Error(err))
	}
}
