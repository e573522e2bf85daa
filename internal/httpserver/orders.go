package httpserver

import (
	"context"
	"net/http"
	"time"

	"vendorhub/internal/domain"
	ordersvc "vendorhub/internal/service/order"

	"github.com/gin-gonic/gin"
)

type orderService interface {
	Get(ctx context.Context, id string) (*domain.Order, error)
	Confirm(ctx context.Context, sessionRef string) (*domain.Order, error)
	ListByShop(ctx context.Context, shopID string) ([]domain.Order, error)
	UpdateFulfillment(ctx context.Context, orderID string, in ordersvc.FulfillmentInput) (*domain.Order, error)
	MarkRefunded(ctx context.Context, providerSessionID string) (*domain.Order, error)
}

type orderHandler struct {
	orders orderService
}

// confirm is where the buyer lands after the provider redirect. The
// session_id query parameter may be the provider's session id or ours.
func (h *orderHandler) confirm(c *gin.Context) {
	order, err := h.orders.Confirm(c.Request.Context(), c.Query("session_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}

func (h *orderHandler) get(c *gin.Context) {
	order, err := h.orders.Get(c.Request.Context(), c.Param("orderId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}

func (h *orderHandler) listByShop(c *gin.Context) {
	orders, err := h.orders.ListByShop(c.Request.Context(), c.Param("shopId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

type fulfillmentRequest struct {
	Status            string     `json:"status" binding:"required"`
	TrackingNumber    string     `json:"trackingNumber"`
	Carrier           string     `json:"carrier"`
	EstimatedDelivery *time.Time `json:"estimatedDelivery"`
}

func (h *orderHandler) updateFulfillment(c *gin.Context) {
	var req fulfillmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	order, err := h.orders.UpdateFulfillment(c.Request.Context(), c.Param("orderId"), ordersvc.FulfillmentInput{
		Status:            domain.FulfillmentStatus(req.Status),
		TrackingNumber:    req.TrackingNumber,
		Carrier:           req.Carrier,
		EstimatedDelivery: req.EstimatedDelivery,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}
