package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront-service/internal/models"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Sentinel errors shared by every store driver.
var (
	ErrNotFound        = errors.New("not found")
	ErrVersionConflict = errors.New("version conflict")
	ErrForbidden       = errors.New("forbidden")
)

// OrderStore persists customer orders
type OrderStore interface {
	CreateOrder(ctx context.Context, order *models.Order) error
	GetOrderByID(ctx context.Context, id string) (*models.Order, error)
	GetUserOrder(ctx context.Context, id, userID string) (*models.Order, error)
	GetUserOrders(ctx context.Context, userID string) ([]models.Order, error)
	ListOrders(ctx context.Context) ([]models.Order, error)
	GetOrderByIdempotencyKey(ctx context.Context, key string) (*models.Order, error)
	UpdateOrder(ctx context.Context, order *models.Order) error
}

// WishlistStore persists per-user wishlists
type WishlistStore interface {
	GetUserWishlist(ctx context.Context, userID string) ([]models.WishlistItem, error)
	AddToWishlist(ctx context.Context, item models.WishlistItem) error
	RemoveFromWishlist(ctx context.Context, userID, productID string) error
	IsInWishlist(ctx context.Context, userID, productID string) (bool, error)
}

// MovementStore persists stock movements. Update and Approve take the version
// the caller read; a stale version yields ErrVersionConflict and no write.
type MovementStore interface {
	CreateMovement(ctx context.Context, m *models.StockMovement) error
	GetMovementByID(ctx context.Context, id string) (*models.StockMovement, error)
	ListMovements(ctx context.Context, status models.MovementStatus) ([]models.StockMovement, error)
	UpdateMovement(ctx context.Context, m *models.StockMovement, expectedVersion int) error
	ApproveMovement(ctx context.Context, m *models.StockMovement, expectedVersion int) error
}

// ProductStore persists catalog products and their stock counts
type ProductStore interface {
	CreateProduct(ctx context.Context, p *models.Product) error
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	ListProducts(ctx context.Context) ([]models.Product, error)
}

// Store is the full persistence surface the services depend on
type Store interface {
	OrderStore
	WishlistStore
	MovementStore
	ProductStore
}

// PostgresStore is the production Store backed by postgres via sqlx
type PostgresStore struct {
	db *sqlx.DB
}

var _ Store = (*PostgresStore)(nil)

// NewPostgresStore connects to postgres and returns the production store
func NewPostgresStore(databaseURL string) (*PostgresStore, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// Close closes the database connection
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// GetDB returns the underlying database handle
func (s *PostgresStore) GetDB() *sqlx.DB {
	return s.db
}
