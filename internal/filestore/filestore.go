// Package filestore implements the store contract on top of the flat JSON
// documents inherited from the predecessor system: orders.json holding
// {orders, wishlist} and inventory.json holding {products, movements}.
// A single RWMutex serializes writers and every save goes through a temp
// file + rename, so concurrent updates can no longer overwrite each other.
// It backs local development and the importer; postgres is the production
// driver.
package filestore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"storefront-service/internal/models"
	"storefront-service/internal/store"

	"github.com/google/uuid"
)

const (
	ordersFile    = "orders.json"
	inventoryFile = "inventory.json"
)

// FileStore is a JSON-document implementation of store.Store
type FileStore struct {
	mu            sync.RWMutex
	ordersPath    string
	inventoryPath string
	data          models.OrdersData
	inv           models.InventoryData
}

var _ store.Store = (*FileStore)(nil)

// NewFileStore opens (or initializes) the document store under dir. The
// directory is created on first use. A corrupt or unreadable document is an
// error, never silently treated as an empty store.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	fs := &FileStore{
		ordersPath:    filepath.Join(dir, ordersFile),
		inventoryPath: filepath.Join(dir, inventoryFile),
	}

	if err := loadJSON(fs.ordersPath, &fs.data); err != nil {
		return nil, err
	}
	if err := loadJSON(fs.inventoryPath, &fs.inv); err != nil {
		return nil, err
	}
	return fs, nil
}

func loadJSON(path string, v interface{}) error {
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

func saveJSON(path string, v interface{}) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", path, err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

func (fs *FileStore) saveOrders() error {
	return saveJSON(fs.ordersPath, &fs.data)
}

func (fs *FileStore) saveInventory() error {
	return saveJSON(fs.inventoryPath, &fs.inv)
}

func copyOrder(o models.Order) models.Order {
	o.Items = append([]models.OrderItem(nil), o.Items...)
	return o
}

func copyMovement(m models.StockMovement) models.StockMovement {
	m.Items = append([]models.MovementItem(nil), m.Items...)
	m.History = append(models.MovementHistory(nil), m.History...)
	return m
}

// CreateOrder assigns identity and audit fields when absent and appends
func (fs *FileStore) CreateOrder(ctx context.Context, order *models.Order) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	store.PrepareNewOrder(order)
	for i := range order.Items {
		if order.Items[i].ID == "" {
			order.Items[i].ID = uuid.NewString()
		}
		order.Items[i].OrderID = order.ID
	}

	fs.data.Orders = append(fs.data.Orders, copyOrder(*order))
	return fs.saveOrders()
}

// GetOrderByID retrieves an order by id without owner scoping (admin path)
func (fs *FileStore) GetOrderByID(ctx context.Context, id string) (*models.Order, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	for _, o := range fs.data.Orders {
		if o.ID == id {
			out := copyOrder(o)
			return &out, nil
		}
	}
	return nil, fmt.Errorf("order %s: %w", id, store.ErrNotFound)
}

// GetUserOrder retrieves an order scoped to its owner
func (fs *FileStore) GetUserOrder(ctx context.Context, id, userID string) (*models.Order, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	for _, o := range fs.data.Orders {
		if o.ID == id && o.UserID == userID {
			out := copyOrder(o)
			return &out, nil
		}
	}
	return nil, fmt.Errorf("order %s for user %s: %w", id, userID, store.ErrNotFound)
}

// GetUserOrders retrieves a user's orders, newest first
func (fs *FileStore) GetUserOrders(ctx context.Context, userID string) ([]models.Order, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	var out []models.Order
	for _, o := range fs.data.Orders {
		if o.UserID == userID {
			out = append(out, copyOrder(o))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// ListOrders retrieves every order, newest first
func (fs *FileStore) ListOrders(ctx context.Context) ([]models.Order, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	out := make([]models.Order, 0, len(fs.data.Orders))
	for _, o := range fs.data.Orders {
		out = append(out, copyOrder(o))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// GetOrderByIdempotencyKey returns the existing order for a key, or nil
func (fs *FileStore) GetOrderByIdempotencyKey(ctx context.Context, key string) (*models.Order, error) {
	if key == "" {
		return nil, nil
	}
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	for _, o := range fs.data.Orders {
		if o.IdempotencyKey == key {
			out := copyOrder(o)
			return &out, nil
		}
	}
	return nil, nil
}

// UpdateOrder replaces the mutable fields of an order and bumps UpdatedAt.
// A missing id returns ErrNotFound without touching the document.
func (fs *FileStore) UpdateOrder(ctx context.Context, order *models.Order) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	for i := range fs.data.Orders {
		if fs.data.Orders[i].ID != order.ID {
			continue
		}
		order.UpdatedAt = time.Now().UTC()
		stored := &fs.data.Orders[i]
		stored.Status = order.Status
		stored.PaymentStatus = order.PaymentStatus
		stored.InventoryStatus = order.InventoryStatus
		stored.OutboundID = order.OutboundID
		stored.CancelReason = order.CancelReason
		stored.UpdatedAt = order.UpdatedAt
		stored.PaidAt = order.PaidAt
		stored.DeliveredAt = order.DeliveredAt
		stored.CancelledAt = order.CancelledAt
		stored.ReservedAt = order.ReservedAt
		stored.PickedAt = order.PickedAt
		stored.PackedAt = order.PackedAt
		stored.ShippedAt = order.ShippedAt
		return fs.saveOrders()
	}
	return fmt.Errorf("order %s: %w", order.ID, store.ErrNotFound)
}

// GetUserWishlist retrieves a user's wishlist, most recently added first
func (fs *FileStore) GetUserWishlist(ctx context.Context, userID string) ([]models.WishlistItem, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	var out []models.WishlistItem
	for _, w := range fs.data.Wishlist {
		if w.UserID == userID {
			out = append(out, w)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].AddedAt.After(out[j].AddedAt)
	})
	return out, nil
}

// AddToWishlist drops any existing (user, product) entry before appending,
// so re-adding replaces and the latest data wins.
func (fs *FileStore) AddToWishlist(ctx context.Context, item models.WishlistItem) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if item.AddedAt.IsZero() {
		item.AddedAt = time.Now().UTC()
	}
	kept := fs.data.Wishlist[:0]
	for _, w := range fs.data.Wishlist {
		if w.UserID == item.UserID && w.ProductID == item.ProductID {
			continue
		}
		kept = append(kept, w)
	}
	fs.data.Wishlist = append(kept, item)
	return fs.saveOrders()
}

// RemoveFromWishlist deletes an entry; removing a missing entry is a no-op
func (fs *FileStore) RemoveFromWishlist(ctx context.Context, userID, productID string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	kept := fs.data.Wishlist[:0]
	removed := false
	for _, w := range fs.data.Wishlist {
		if w.UserID == userID && w.ProductID == productID {
			removed = true
			continue
		}
		kept = append(kept, w)
	}
	fs.data.Wishlist = kept
	if !removed {
		return nil
	}
	return fs.saveOrders()
}

// IsInWishlist reports whether the user has saved the product
func (fs *FileStore) IsInWishlist(ctx context.Context, userID, productID string) (bool, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	for _, w := range fs.data.Wishlist {
		if w.UserID == userID && w.ProductID == productID {
			return true, nil
		}
	}
	return false, nil
}
