package filestore

import (
	"context"
	"fmt"
	"sort"
	"time"

	"storefront-service/internal/models"
	"storefront-service/internal/store"

	"github.com/google/uuid"
)

// CreateMovement appends a draft movement to the inventory document
func (fs *FileStore) CreateMovement(ctx context.Context, m *models.StockMovement) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	now := time.Now().UTC()
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	m.UpdatedAt = now
	for i := range m.Items {
		if m.Items[i].ID == "" {
			m.Items[i].ID = uuid.NewString()
		}
		m.Items[i].MovementID = m.ID
	}

	fs.inv.Movements = append(fs.inv.Movements, copyMovement(*m))
	return fs.saveInventory()
}

// GetMovementByID retrieves a movement with its items
func (fs *FileStore) GetMovementByID(ctx context.Context, id string) (*models.StockMovement, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	for _, m := range fs.inv.Movements {
		if m.ID == id {
			out := copyMovement(m)
			return &out, nil
		}
	}
	return nil, fmt.Errorf("movement %s: %w", id, store.ErrNotFound)
}

// ListMovements retrieves movements, optionally filtered by status, newest first
func (fs *FileStore) ListMovements(ctx context.Context, status models.MovementStatus) ([]models.StockMovement, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	var out []models.StockMovement
	for _, m := range fs.inv.Movements {
		if status != "" && m.Status != status {
			continue
		}
		out = append(out, copyMovement(m))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// UpdateMovement replaces the mutable fields of a movement, guarded by the
// version the caller read
func (fs *FileStore) UpdateMovement(ctx context.Context, m *models.StockMovement, expectedVersion int) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	stored, err := fs.findMovementLocked(m.ID, expectedVersion)
	if err != nil {
		return err
	}

	m.UpdatedAt = time.Now().UTC()
	m.Version = expectedVersion + 1
	stored.Status = m.Status
	stored.PaidAmount = m.PaidAmount
	stored.DebtAmount = m.DebtAmount
	stored.Note = m.Note
	stored.History = append(models.MovementHistory(nil), m.History...)
	stored.ApprovedBy = m.ApprovedBy
	stored.UpdatedAt = m.UpdatedAt
	stored.SubmittedAt = m.SubmittedAt
	stored.ApprovedAt = m.ApprovedAt
	stored.CompletedAt = m.CompletedAt
	stored.Version = m.Version
	return fs.saveInventory()
}

// ApproveMovement flips the movement to approved and applies every stock
// delta under the same lock and document write: either all of it lands or
// none of it does.
func (fs *FileStore) ApproveMovement(ctx context.Context, m *models.StockMovement, expectedVersion int) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	stored, err := fs.findMovementLocked(m.ID, expectedVersion)
	if err != nil {
		return err
	}

	// Check every delta before touching anything.
	products := make(map[string]*models.Product, len(stored.Items))
	for i := range fs.inv.Products {
		products[fs.inv.Products[i].ID] = &fs.inv.Products[i]
	}
	for _, item := range stored.Items {
		p, ok := products[item.ProductID]
		if !ok {
			return fmt.Errorf("product %s: %w", item.ProductID, store.ErrNotFound)
		}
		delta := m.StockDelta(item)
		if p.Available+delta < 0 {
			return fmt.Errorf("insufficient stock for product %s: available=%d, requested=%d",
				item.ProductID, p.Available, -delta)
		}
	}

	now := time.Now().UTC()
	for _, item := range stored.Items {
		p := products[item.ProductID]
		p.Available += m.StockDelta(item)
		p.UpdatedAt = now
	}

	m.UpdatedAt = now
	m.Version = expectedVersion + 1
	stored.Status = m.Status
	stored.History = append(models.MovementHistory(nil), m.History...)
	stored.ApprovedBy = m.ApprovedBy
	stored.UpdatedAt = m.UpdatedAt
	stored.ApprovedAt = m.ApprovedAt
	stored.Version = m.Version
	return fs.saveInventory()
}

func (fs *FileStore) findMovementLocked(id string, expectedVersion int) (*models.StockMovement, error) {
	for i := range fs.inv.Movements {
		if fs.inv.Movements[i].ID != id {
			continue
		}
		if fs.inv.Movements[i].Version != expectedVersion {
			return nil, fmt.Errorf("movement %s at version %d: %w", id, expectedVersion, store.ErrVersionConflict)
		}
		return &fs.inv.Movements[i], nil
	}
	return nil, fmt.Errorf("movement %s: %w", id, store.ErrNotFound)
}

// CreateProduct adds a catalog product with its initial stock counts
func (fs *FileStore) CreateProduct(ctx context.Context, p *models.Product) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

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

	fs.inv.Products = append(fs.inv.Products, *p)
	return fs.saveInventory()
}

// GetProduct retrieves a product by id
func (fs *FileStore) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	for _, p := range fs.inv.Products {
		if p.ID == id {
			out := p
			return &out, nil
		}
	}
	return nil, fmt.Errorf("product %s: %w", id, store.ErrNotFound)
}

// ListProducts retrieves all products ordered by SKU
func (fs *FileStore) ListProducts(ctx context.Context) ([]models.Product, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	out := make([]models.Product, len(fs.inv.Products))
	copy(out, fs.inv.Products)
	sort.Slice(out, func(i, j int) bool { return out[i].SKU < out[j].SKU })
	return out, nil
}
