package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront-service/internal/models"
	"storefront-service/internal/store"
	"storefront-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const approvalLockTTL = 10 * time.Second

// MovementService manages warehouse stock movements and their approval flow.
// Stock counts change only when a movement is approved, and the change is
// atomic with the status flip.
type MovementService struct {
	store     store.Store
	locker    Locker
	publisher Publisher
	logger    *zap.Logger
}

// NewMovementService creates a new movement service
func NewMovementService(st store.Store, locker Locker, publisher Publisher) *MovementService {
	return &MovementService{
		store:     st,
		locker:    locker,
		publisher: publisher,
		logger:    util.GetLogger(),
	}
}

// CreateMovementRequest describes a new receipt
type CreateMovementRequest struct {
	Direction      models.MovementDirection `json:"direction" binding:"required"`
	Warehouse      string                   `json:"warehouse"`
	Supplier       string                   `json:"supplier"`
	Items          []MovementItemRequest    `json:"items" binding:"required,min=1"`
	VATAmount      int64                    `json:"vatAmount"`
	DiscountAmount int64                    `json:"discountAmount"`
	PaidAmount     int64                    `json:"paidAmount"`
	Note           string                   `json:"note"`
}

// MovementItemRequest is one product line on a new receipt
type MovementItemRequest struct {
	ProductID       string              `json:"productId" binding:"required"`
	ProductName     string              `json:"productName"`
	Quantity        int                 `json:"quantity" binding:"required,min=1"`
	UnitPrice       int64               `json:"unitPrice"`
	TrackingType    models.TrackingType `json:"trackingType"`
	BatchNumber     string              `json:"batchNumber,omitempty"`
	ManufactureDate *time.Time          `json:"manufactureDate,omitempty"`
	ExpiryDate      *time.Time          `json:"expiryDate,omitempty"`
	Serials         []string            `json:"serials,omitempty"`
}

// Create builds a draft movement with server-computed financials and a seeded
// audit trail.
func (s *MovementService) Create(ctx context.Context, actor Actor, req *CreateMovementRequest) (*models.StockMovement, error) {
	ctx, span := util.StartSpan(ctx, "MovementService.Create")
	defer span.End()

	items := make([]models.MovementItem, len(req.Items))
	var subtotal int64
	for i, it := range req.Items {
		tt := it.TrackingType
		if tt == "" {
			tt = models.TrackingNone
		}
		items[i] = models.MovementItem{
			ProductID:       it.ProductID,
			ProductName:     it.ProductName,
			Quantity:        it.Quantity,
			UnitPrice:       it.UnitPrice,
			TrackingType:    tt,
			BatchNumber:     it.BatchNumber,
			ManufactureDate: it.ManufactureDate,
			ExpiryDate:      it.ExpiryDate,
			Serials:         it.Serials,
		}
		subtotal += it.UnitPrice * int64(it.Quantity)
	}

	now := time.Now().UTC()
	finalTotal := subtotal + req.VATAmount - req.DiscountAmount
	m := &models.StockMovement{
		ID:             uuid.NewString(),
		Direction:      req.Direction,
		Status:         models.MovementStatusDraft,
		Warehouse:      req.Warehouse,
		Supplier:       req.Supplier,
		Items:          items,
		Subtotal:       subtotal,
		VATAmount:      req.VATAmount,
		DiscountAmount: req.DiscountAmount,
		FinalTotal:     finalTotal,
		PaidAmount:     req.PaidAmount,
		DebtAmount:     finalTotal - req.PaidAmount,
		Note:           req.Note,
		CreatedBy:      actor.UserID,
		History: models.MovementHistory{
			{Action: "created", By: actor.UserID, At: now, Note: req.Note},
		},
	}
	m.Code = movementCode(m)

	if err := models.ValidateMovement(m); err != nil {
		return nil, err
	}
	if err := s.store.CreateMovement(ctx, m); err != nil {
		return nil, fmt.Errorf("failed to create movement: %w", err)
	}

	s.logger.Info("Movement created",
		zap.String("movement_id", m.ID),
		zap.String("code", m.Code),
		zap.String("direction", string(m.Direction)))
	return m, nil
}

// movementCode builds the receipt code: NK (nhập kho) for inbound,
// XK (xuất kho) for outbound.
func movementCode(m *models.StockMovement) string {
	prefix := "NK"
	if m.Direction == models.MovementOutbound {
		prefix = "XK"
	}
	return fmt.Sprintf("%s-%s-%s", prefix,
		time.Now().UTC().Format("20060102"), strings.ToUpper(m.ID[:8]))
}

// ListProducts returns the catalog with current stock counts
func (s *MovementService) ListProducts(ctx context.Context) ([]models.Product, error) {
	return s.store.ListProducts(ctx)
}

// Get retrieves a movement by id
func (s *MovementService) Get(ctx context.Context, id string) (*models.StockMovement, error) {
	return s.store.GetMovementByID(ctx, id)
}

// List retrieves movements, optionally filtered by status
func (s *MovementService) List(ctx context.Context, status models.MovementStatus) ([]models.StockMovement, error) {
	return s.store.ListMovements(ctx, status)
}

// Submit moves a draft to pending, waiting for approval
func (s *MovementService) Submit(ctx context.Context, actor Actor, id string, version int) (*models.StockMovement, error) {
	m, err := s.store.GetMovementByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := models.ValidateMovementStatusTransition(m.Status, models.MovementStatusPending); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	m.Status = models.MovementStatusPending
	m.SubmittedAt = &now
	m.History = append(m.History, models.MovementEvent{Action: "submitted", By: actor.UserID, At: now})

	if err := s.update(ctx, m, version); err != nil {
		return nil, err
	}
	return m, nil
}

// Approve flips a movement to approved and applies its stock deltas in one
// transaction. The caller supplies the version it last read; a concurrent
// approval from a stale admin session gets ErrVersionConflict instead of a
// silent double-apply. The redis lock only shortens the conflict window.
func (s *MovementService) Approve(ctx context.Context, actor Actor, id string, version int) (*models.StockMovement, error) {
	ctx, span := util.StartSpan(ctx, "MovementService.Approve")
	defer span.End()

	if !actor.Admin {
		return nil, fmt.Errorf("approving movement: %w", store.ErrForbidden)
	}

	if s.locker != nil {
		lockKey := fmt.Sprintf("movement:%s", id)
		acquired, err := s.locker.AcquireLock(ctx, lockKey, approvalLockTTL)
		if err != nil {
			s.logger.Warn("Approval lock unavailable", zap.String("movement_id", id), zap.Error(err))
		} else if !acquired {
			return nil, fmt.Errorf("movement %s is being approved: %w", id, store.ErrVersionConflict)
		} else {
			defer func() {
				if err := s.locker.ReleaseLock(ctx, lockKey); err != nil {
					s.logger.Warn("Failed to release approval lock", zap.Error(err))
				}
			}()
		}
	}

	m, err := s.store.GetMovementByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := models.ValidateMovementStatusTransition(m.Status, models.MovementStatusApproved); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	m.Status = models.MovementStatusApproved
	m.ApprovedBy = actor.UserID
	m.ApprovedAt = &now
	m.History = append(m.History, models.MovementEvent{Action: "approved", By: actor.UserID, At: now})

	start := time.Now()
	if err := s.store.ApproveMovement(ctx, m, version); err != nil {
		if isVersionConflict(err) {
			util.MovementConflictsTotal.Inc()
		}
		return nil, err
	}
	util.MovementApplyLatency.Observe(time.Since(start).Seconds())
	util.MovementsApprovedTotal.WithLabelValues(string(m.Direction)).Inc()

	s.logger.Info("Movement approved",
		zap.String("movement_id", m.ID),
		zap.String("code", m.Code),
		zap.String("approved_by", actor.UserID))

	event := &models.MovementApprovedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.NewString(),
			EventType: models.EventTypeMovementApproved,
			Timestamp: now,
		},
		MovementID: m.ID,
		Code:       m.Code,
		Direction:  m.Direction,
		ApprovedBy: actor.UserID,
	}
	if err := s.publisher.PublishMovementApproved(ctx, event); err != nil {
		s.logger.Error("Failed to publish MovementApproved event", zap.Error(err))
	}

	return m, nil
}

// Complete settles an approved movement, recording the final payment split
func (s *MovementService) Complete(ctx context.Context, actor Actor, id string, version int, paidAmount int64) (*models.StockMovement, error) {
	if !actor.Admin {
		return nil, fmt.Errorf("completing movement: %w", store.ErrForbidden)
	}

	m, err := s.store.GetMovementByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := models.ValidateMovementStatusTransition(m.Status, models.MovementStatusCompleted); err != nil {
		return nil, err
	}
	if paidAmount < 0 || paidAmount > m.FinalTotal {
		return nil, fmt.Errorf("paid amount %d out of range for final total %d", paidAmount, m.FinalTotal)
	}

	now := time.Now().UTC()
	m.Status = models.MovementStatusCompleted
	m.PaidAmount = paidAmount
	m.DebtAmount = m.FinalTotal - paidAmount
	m.CompletedAt = &now
	m.History = append(m.History, models.MovementEvent{Action: "completed", By: actor.UserID, At: now})

	if err := s.update(ctx, m, version); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *MovementService) update(ctx context.Context, m *models.StockMovement, version int) error {
	if err := s.store.UpdateMovement(ctx, m, version); err != nil {
		if isVersionConflict(err) {
			util.MovementConflictsTotal.Inc()
		}
		return err
	}
	return nil
}

func isVersionConflict(err error) bool {
	return errors.Is(err, store.ErrVersionConflict)
}
