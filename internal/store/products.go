package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"storefront-service/internal/models"

	"github.com/google/uuid"
)

// CreateProduct inserts a catalog product with its initial stock counts
func (s *PostgresStore) CreateProduct(ctx context.Context, p *models.Product) error {
	now := time.Now().UTC()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.TrackingType == "" {
		p.TrackingType = models.TrackingNone
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO products (id, sku, name, price, tracking_type, available, reserved, created_at, updated_at)
		VALUES (:id, :sku, :name, :price, :tracking_type, :available, :reserved, :created_at, :updated_at)`,
		p)
	return err
}

// GetProduct retrieves a product by id
func (s *PostgresStore) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	var p models.Product
	err := s.db.GetContext(ctx, &p,
		`SELECT id, sku, name, price, tracking_type, available, reserved, created_at, updated_at
		 FROM products WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("product %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListProducts retrieves all products ordered by SKU
func (s *PostgresStore) ListProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := s.db.SelectContext(ctx, &products,
		`SELECT id, sku, name, price, tracking_type, available, reserved, created_at, updated_at
		 FROM products ORDER BY sku`)
	return products, err
}
