package store

import (
	"context"
	"time"

	"storefront-service/internal/models"
)

// GetUserWishlist retrieves a user's wishlist, most recently added first
func (s *PostgresStore) GetUserWishlist(ctx context.Context, userID string) ([]models.WishlistItem, error) {
	var items []models.WishlistItem
	err := s.db.SelectContext(ctx, &items,
		`SELECT user_id, product_id, product_name, price, image, added_at
		 FROM wishlist WHERE user_id = $1 ORDER BY added_at DESC`, userID)
	return items, err
}

// AddToWishlist upserts on the (user_id, product_id) key: re-adding the same
// product replaces the stored entry, last write wins.
func (s *PostgresStore) AddToWishlist(ctx context.Context, item models.WishlistItem) error {
	if item.AddedAt.IsZero() {
		item.AddedAt = time.Now().UTC()
	}
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO wishlist (user_id, product_id, product_name, price, image, added_at)
		VALUES (:user_id, :product_id, :product_name, :price, :image, :added_at)
		ON CONFLICT (user_id, product_id) DO UPDATE SET
			product_name = EXCLUDED.product_name,
			price = EXCLUDED.price,
			image = EXCLUDED.image,
			added_at = EXCLUDED.added_at`, item)
	return err
}

// RemoveFromWishlist deletes an entry; removing a missing entry is a no-op
func (s *PostgresStore) RemoveFromWishlist(ctx context.Context, userID, productID string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM wishlist WHERE user_id = $1 AND product_id = $2`, userID, productID)
	return err
}

// IsInWishlist reports whether the user has saved the product
func (s *PostgresStore) IsInWishlist(ctx context.Context, userID, productID string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM wishlist WHERE user_id = $1 AND product_id = $2)`,
		userID, productID)
	return exists, err
}
