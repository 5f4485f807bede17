package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"storefront-service/internal/models"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// PrepareNewOrder fills in identity and audit fields a checkout submission
// may omit: id, order number, default statuses and timestamps. Shared by
// every store driver so both persist the same shape.
func PrepareNewOrder(o *models.Order) {
	now := time.Now().UTC()
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	if o.OrderNumber == "" {
		o.OrderNumber = fmt.Sprintf("ORD-%s-%s", now.Format("20060102"), strings.ToUpper(o.ID[:8]))
	}
	if o.Status == "" {
		o.Status = models.OrderStatusPending
	}
	if o.PaymentStatus == "" {
		o.PaymentStatus = models.PaymentStatusPending
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
	}
	if o.UpdatedAt.IsZero() {
		o.UpdatedAt = now
	}
}

const orderColumns = `id, order_number, user_id, email, subtotal, shipping, tax, discount, total,
	status, payment_method, payment_status, shipping_address, inventory_status, outbound_id,
	cancel_reason, idempotency_key, created_at, updated_at, paid_at, delivered_at, cancelled_at,
	reserved_at, picked_at, packed_at, shipped_at`

// CreateOrder inserts an order and its line items in one transaction
func (s *PostgresStore) CreateOrder(ctx context.Context, order *models.Order) error {
	PrepareNewOrder(order)

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.NamedExecContext(ctx, `
		INSERT INTO orders (`+orderColumns+`)
		VALUES (:id, :order_number, :user_id, :email, :subtotal, :shipping, :tax, :discount, :total,
			:status, :payment_method, :payment_status, :shipping_address, :inventory_status,
			:outbound_id, :cancel_reason, :idempotency_key, :created_at, :updated_at, :paid_at,
			:delivered_at, :cancelled_at, :reserved_at, :picked_at, :packed_at, :shipped_at)`,
		order)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	for i := range order.Items {
		item := &order.Items[i]
		if item.ID == "" {
			item.ID = uuid.NewString()
		}
		item.OrderID = order.ID
		_, err = tx.NamedExecContext(ctx, `
			INSERT INTO order_items (id, order_id, product_id, name, price, quantity, size, color, image)
			VALUES (:id, :order_id, :product_id, :name, :price, :quantity, :size, :color, :image)`,
			item)
		if err != nil {
			return fmt.Errorf("failed to insert order item: %w", err)
		}
	}

	return tx.Commit()
}

// GetOrderByID retrieves an order by id without owner scoping (admin path)
func (s *PostgresStore) GetOrderByID(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("order %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if err := s.attachItems(ctx, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// GetUserOrder retrieves an order scoped to its owner
func (s *PostgresStore) GetUserOrder(ctx context.Context, id, userID string) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1 AND user_id = $2`, id, userID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("order %s for user %s: %w", id, userID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if err := s.attachItems(ctx, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// GetUserOrders retrieves a user's orders, newest first
func (s *PostgresStore) GetUserOrders(ctx context.Context, userID string) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.SelectContext(ctx, &orders,
		`SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	if err := s.attachItemsAll(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// ListOrders retrieves every order, newest first (admin export)
func (s *PostgresStore) ListOrders(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.SelectContext(ctx, &orders,
		`SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	if err := s.attachItemsAll(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// GetOrderByIdempotencyKey returns the existing order for a key, or nil
func (s *PostgresStore) GetOrderByIdempotencyKey(ctx context.Context, key string) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order,
		`SELECT `+orderColumns+` FROM orders WHERE idempotency_key = $1`, key)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := s.attachItems(ctx, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// UpdateOrder replaces the mutable fields of an order and bumps updated_at.
// Line items are immutable after creation. Returns ErrNotFound when no row
// matches, without writing anything.
func (s *PostgresStore) UpdateOrder(ctx context.Context, order *models.Order) error {
	order.UpdatedAt = time.Now().UTC()
	res, err := s.db.NamedExecContext(ctx, `
		UPDATE orders SET
			status = :status,
			payment_status = :payment_status,
			inventory_status = :inventory_status,
			outbound_id = :outbound_id,
			cancel_reason = :cancel_reason,
			updated_at = :updated_at,
			paid_at = :paid_at,
			delivered_at = :delivered_at,
			cancelled_at = :cancelled_at,
			reserved_at = :reserved_at,
			picked_at = :picked_at,
			packed_at = :packed_at,
			shipped_at = :shipped_at
		WHERE id = :id`, order)
	if err != nil {
		return fmt.Errorf("failed to update order: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("order %s: %w", order.ID, ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) attachItems(ctx context.Context, order *models.Order) error {
	var items []models.OrderItem
	err := s.db.SelectContext(ctx, &items,
		`SELECT id, order_id, product_id, name, price, quantity, size, color, image
		 FROM order_items WHERE order_id = $1`, order.ID)
	if err != nil {
		return err
	}
	order.Items = items
	return nil
}

func (s *PostgresStore) attachItemsAll(ctx context.Context, orders []models.Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]string, len(orders))
	for i := range orders {
		ids[i] = orders[i].ID
	}
	query, args, err := sqlx.In(`SELECT id, order_id, product_id, name, price, quantity, size, color, image
		FROM order_items WHERE order_id IN (?)`, ids)
	if err != nil {
		return err
	}
	query = s.db.Rebind(query)

	var items []models.OrderItem
	if err := s.db.SelectContext(ctx, &items, query, args...); err != nil {
		return err
	}
	byOrder := make(map[string][]models.OrderItem, len(orders))
	for _, item := range items {
		byOrder[item.OrderID] = append(byOrder[item.OrderID], item)
	}
	for i := range orders {
		orders[i].Items = byOrder[orders[i].ID]
	}
	return nil
}
