package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"storefront-service/internal/models"
	"storefront-service/internal/service"
	"storefront-service/internal/store"
	"storefront-service/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler contains HTTP handlers
type Handler struct {
	orders    *service.OrderService
	wishlist  *service.WishlistService
	stats     *service.StatsService
	movements *service.MovementService
}

// NewHandler creates a new HTTP handler
func NewHandler(
	orders *service.OrderService,
	wishlist *service.WishlistService,
	stats *service.StatsService,
	movements *service.MovementService,
) *Handler {
	return &Handler{
		orders:    orders,
		wishlist:  wishlist,
		stats:     stats,
		movements: movements,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	{
		api.POST("/orders/create", h.createOrder)
		api.GET("/orders", h.listUserOrders)
		api.GET("/orders/:id", h.getOrder)
		api.POST("/orders/update-status", h.updateOrderStatus)

		api.GET("/wishlist", h.getWishlist)
		api.POST("/wishlist", h.addToWishlist)
		api.DELETE("/wishlist", h.removeFromWishlist)

		api.GET("/user/stats", h.getUserStats)

		admin := api.Group("/admin")
		{
			admin.GET("/orders/export", h.exportOrdersCSV)
			admin.POST("/orders/:id/payment-status", h.updatePaymentStatus)
			admin.POST("/orders/:id/inventory-status", h.advanceInventoryStatus)
		}

		inventory := api.Group("/inventory")
		{
			inventory.GET("/products", h.listProducts)
			inventory.GET("/movements", h.listMovements)
			inventory.POST("/movements", h.createMovement)
			inventory.GET("/movements/:id", h.getMovement)
			inventory.POST("/movements/:id/submit", h.submitMovement)
			inventory.POST("/movements/:id/approve", h.approveMovement)
			inventory.POST("/movements/:id/complete", h.completeMovement)
		}
	}
}

// actorFrom builds the request actor from gateway-injected identity headers.
// Authentication itself happens upstream.
func actorFrom(c *gin.Context) service.Actor {
	return service.Actor{
		UserID: c.GetHeader("X-User-ID"),
		Admin:  c.GetHeader("X-Admin-Role") == "admin",
	}
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found", "details": err.Error()})
	case errors.Is(err, store.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden", "details": err.Error()})
	case errors.Is(err, store.ErrVersionConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "Conflict", "details": err.Error()})
	case errors.Is(err, models.ErrInvalidTransition):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Invalid transition", "details": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error", "details": err.Error()})
	}
}

func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

func (h *Handler) createOrder(c *gin.Context) {
	var req service.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	if req.IdempotencyKey == "" {
		req.IdempotencyKey = c.GetHeader("Idempotency-Key")
	}

	order, err := h.orders.CreateOrder(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (h *Handler) listUserOrders(c *gin.Context) {
	actor := actorFrom(c)
	userID := c.Query("userId")
	if userID == "" {
		userID = actor.UserID
	}
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing user id"})
		return
	}
	if userID != actor.UserID && !actor.Admin {
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		return
	}

	orders, err := h.orders.ListUserOrders(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (h *Handler) getOrder(c *gin.Context) {
	order, err := h.orders.GetOrder(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

type updateOrderStatusRequest struct {
	OrderID      string             `json:"orderId" binding:"required"`
	Status       models.OrderStatus `json:"status" binding:"required"`
	CancelReason string             `json:"cancelReason,omitempty"`
}

func (h *Handler) updateOrderStatus(c *gin.Context) {
	var req updateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	order, err := h.orders.UpdateOrderStatus(c.Request.Context(), actorFrom(c), req.OrderID,
		req.Status, service.UpdateStatusOptions{CancelReason: req.CancelReason})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

type updatePaymentStatusRequest struct {
	Status models.PaymentStatus `json:"status" binding:"required"`
}

func (h *Handler) updatePaymentStatus(c *gin.Context) {
	var req updatePaymentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	order, err := h.orders.UpdatePaymentStatus(c.Request.Context(), actorFrom(c), c.Param("id"), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

type advanceInventoryStatusRequest struct {
	Status     models.InventoryStatus `json:"status" binding:"required"`
	OutboundID string                 `json:"outboundId,omitempty"`
}

func (h *Handler) advanceInventoryStatus(c *gin.Context) {
	var req advanceInventoryStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	order, err := h.orders.AdvanceInventoryStatus(c.Request.Context(), actorFrom(c), c.Param("id"),
		req.Status, req.OutboundID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) getWishlist(c *gin.Context) {
	actor := actorFrom(c)
	if actor.UserID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing user id"})
		return
	}
	items, err := h.wishlist.List(c.Request.Context(), actor.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"wishlist": items})
}

type addWishlistRequest struct {
	ProductID   string `json:"productId" binding:"required"`
	ProductName string `json:"productName"`
	Price       int64  `json:"price"`
	Image       string `json:"image,omitempty"`
}

func (h *Handler) addToWishlist(c *gin.Context) {
	actor := actorFrom(c)
	var req addWishlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	err := h.wishlist.Add(c.Request.Context(), models.WishlistItem{
		UserID:      actor.UserID,
		ProductID:   req.ProductID,
		ProductName: req.ProductName,
		Price:       req.Price,
		Image:       req.Image,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"added": true})
}

func (h *Handler) removeFromWishlist(c *gin.Context) {
	actor := actorFrom(c)
	productID := c.Query("productId")
	if productID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing product id"})
		return
	}
	if err := h.wishlist.Remove(c.Request.Context(), actor.UserID, productID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": true})
}

func (h *Handler) getUserStats(c *gin.Context) {
	actor := actorFrom(c)
	userID := c.Query("userId")
	if userID == "" {
		userID = actor.UserID
	}
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing user id"})
		return
	}
	if userID != actor.UserID && !actor.Admin {
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		return
	}

	stats, err := h.stats.GetUserStats(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *Handler) listProducts(c *gin.Context) {
	products, err := h.movements.ListProducts(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

func (h *Handler) listMovements(c *gin.Context) {
	status := models.MovementStatus(c.Query("status"))
	movements, err := h.movements.List(c.Request.Context(), status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"movements": movements})
}

func (h *Handler) createMovement(c *gin.Context) {
	var req service.CreateMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	m, err := h.movements.Create(c.Request.Context(), actorFrom(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

func (h *Handler) getMovement(c *gin.Context) {
	m, err := h.movements.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func movementVersion(c *gin.Context) (int, bool) {
	v, err := strconv.Atoi(c.Query("version"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing or invalid version"})
		return 0, false
	}
	return v, true
}

func (h *Handler) submitMovement(c *gin.Context) {
	version, ok := movementVersion(c)
	if !ok {
		return
	}
	m, err := h.movements.Submit(c.Request.Context(), actorFrom(c), c.Param("id"), version)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *Handler) approveMovement(c *gin.Context) {
	version, ok := movementVersion(c)
	if !ok {
		return
	}
	m, err := h.movements.Approve(c.Request.Context(), actorFrom(c), c.Param("id"), version)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

type completeMovementRequest struct {
	PaidAmount int64 `json:"paidAmount"`
}

func (h *Handler) completeMovement(c *gin.Context) {
	version, ok := movementVersion(c)
	if !ok {
		return
	}
	var req completeMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	m, err := h.movements.Complete(c.Request.Context(), actorFrom(c), c.Param("id"), version, req.PaidAmount)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
