package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"storefront-service/internal/models"

	"github.com/google/uuid"
)

const movementColumns = `id, code, direction, status, warehouse, supplier, subtotal, vat_amount,
	discount_amount, final_total, paid_amount, debt_amount, note, history, version, created_by,
	approved_by, created_at, updated_at, submitted_at, approved_at, completed_at`

// CreateMovement inserts a draft movement and its items in one transaction
func (s *PostgresStore) CreateMovement(ctx context.Context, m *models.StockMovement) error {
	now := time.Now().UTC()
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	m.UpdatedAt = now

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.NamedExecContext(ctx, `
		INSERT INTO stock_movements (`+movementColumns+`)
		VALUES (:id, :code, :direction, :status, :warehouse, :supplier, :subtotal, :vat_amount,
			:discount_amount, :final_total, :paid_amount, :debt_amount, :note, :history, :version,
			:created_by, :approved_by, :created_at, :updated_at, :submitted_at, :approved_at,
			:completed_at)`, m)
	if err != nil {
		return fmt.Errorf("failed to insert movement: %w", err)
	}

	for i := range m.Items {
		item := &m.Items[i]
		if item.ID == "" {
			item.ID = uuid.NewString()
		}
		item.MovementID = m.ID
		_, err = tx.NamedExecContext(ctx, `
			INSERT INTO stock_movement_items (id, movement_id, product_id, product_name, quantity,
				unit_price, tracking_type, batch_number, manufacture_date, expiry_date, serials)
			VALUES (:id, :movement_id, :product_id, :product_name, :quantity, :unit_price,
				:tracking_type, :batch_number, :manufacture_date, :expiry_date, :serials)`, item)
		if err != nil {
			return fmt.Errorf("failed to insert movement item: %w", err)
		}
	}

	return tx.Commit()
}

// GetMovementByID retrieves a movement with its items
func (s *PostgresStore) GetMovementByID(ctx context.Context, id string) (*models.StockMovement, error) {
	var m models.StockMovement
	err := s.db.GetContext(ctx, &m,
		`SELECT `+movementColumns+` FROM stock_movements WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("movement %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if err := s.attachMovementItems(ctx, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// ListMovements retrieves movements, optionally filtered by status, newest first
func (s *PostgresStore) ListMovements(ctx context.Context, status models.MovementStatus) ([]models.StockMovement, error) {
	var movements []models.StockMovement
	var err error
	if status == "" {
		err = s.db.SelectContext(ctx, &movements,
			`SELECT `+movementColumns+` FROM stock_movements ORDER BY created_at DESC`)
	} else {
		err = s.db.SelectContext(ctx, &movements,
			`SELECT `+movementColumns+` FROM stock_movements WHERE status = $1 ORDER BY created_at DESC`,
			status)
	}
	if err != nil {
		return nil, err
	}
	for i := range movements {
		if err := s.attachMovementItems(ctx, &movements[i]); err != nil {
			return nil, err
		}
	}
	return movements, nil
}

// UpdateMovement replaces the mutable fields of a movement, guarded by the
// version the caller read. A stale version returns ErrVersionConflict and
// writes nothing.
func (s *PostgresStore) UpdateMovement(ctx context.Context, m *models.StockMovement, expectedVersion int) error {
	m.UpdatedAt = time.Now().UTC()
	m.Version = expectedVersion + 1
	res, err := s.db.ExecContext(ctx, `
		UPDATE stock_movements SET
			status = $1, paid_amount = $2, debt_amount = $3, note = $4, history = $5,
			approved_by = $6, updated_at = $7, submitted_at = $8, approved_at = $9,
			completed_at = $10, version = $11
		WHERE id = $12 AND version = $13`,
		m.Status, m.PaidAmount, m.DebtAmount, m.Note, m.History,
		m.ApprovedBy, m.UpdatedAt, m.SubmittedAt, m.ApprovedAt,
		m.CompletedAt, m.Version, m.ID, expectedVersion)
	if err != nil {
		return fmt.Errorf("failed to update movement: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		m.Version = expectedVersion
		return fmt.Errorf("movement %s at version %d: %w", m.ID, expectedVersion, ErrVersionConflict)
	}
	return nil
}

// ApproveMovement flips a movement to approved and applies every stock delta
// in the same transaction: either the status change and all product updates
// land together, or none do. Product rows are locked FOR UPDATE; an outbound
// movement that would drive stock negative aborts the whole transaction.
func (s *PostgresStore) ApproveMovement(ctx context.Context, m *models.StockMovement, expectedVersion int) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	m.UpdatedAt = time.Now().UTC()
	m.Version = expectedVersion + 1
	res, err := tx.ExecContext(ctx, `
		UPDATE stock_movements SET
			status = $1, history = $2, approved_by = $3, updated_at = $4, approved_at = $5,
			version = $6
		WHERE id = $7 AND version = $8`,
		m.Status, m.History, m.ApprovedBy, m.UpdatedAt, m.ApprovedAt,
		m.Version, m.ID, expectedVersion)
	if err != nil {
		return fmt.Errorf("failed to approve movement: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		m.Version = expectedVersion
		return fmt.Errorf("movement %s at version %d: %w", m.ID, expectedVersion, ErrVersionConflict)
	}

	for _, item := range m.Items {
		delta := m.StockDelta(item)

		var available int
		err = tx.GetContext(ctx, &available,
			`SELECT available FROM products WHERE id = $1 FOR UPDATE`, item.ProductID)
		if err == sql.ErrNoRows {
			return fmt.Errorf("product %s: %w", item.ProductID, ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to lock product %s: %w", item.ProductID, err)
		}
		if available+delta < 0 {
			return fmt.Errorf("insufficient stock for product %s: available=%d, requested=%d",
				item.ProductID, available, -delta)
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE products SET available = available + $1, updated_at = NOW() WHERE id = $2`,
			delta, item.ProductID)
		if err != nil {
			return fmt.Errorf("failed to adjust stock for product %s: %w", item.ProductID, err)
		}
	}

	return tx.Commit()
}

func (s *PostgresStore) attachMovementItems(ctx context.Context, m *models.StockMovement) error {
	var items []models.MovementItem
	err := s.db.SelectContext(ctx, &items,
		`SELECT id, movement_id, product_id, product_name, quantity, unit_price, tracking_type,
			batch_number, manufacture_date, expiry_date, serials
		 FROM stock_movement_items WHERE movement_id = $1`, m.ID)
	if err != nil {
		return err
	}
	m.Items = items
	return nil
}
