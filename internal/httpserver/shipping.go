package httpserver

import (
	"context"
	"net/http"

	"vendorhub/internal/domain"
	shippingsvc "vendorhub/internal/service/shipping"

	"github.com/gin-gonic/gin"
)

type shippingResolver interface {
	Resolve(ctx context.Context, shopID, country string) ([]domain.ShippingRate, error)
}

type shippingService interface {
	shippingResolver
	CreateZone(ctx context.Context, in shippingsvc.ZoneInput) (*domain.ShippingZone, error)
	GetZone(ctx context.Context, id string) (*domain.ShippingZone, error)
	ListZones(ctx context.Context, shopID string) ([]domain.ShippingZone, error)
	UpdateZone(ctx context.Context, id, name string, countries []string) (*domain.ShippingZone, error)
	DeleteZone(ctx context.Context, id string) error
	CreateRate(ctx context.Context, zoneID string, in shippingsvc.RateInput) (*domain.ShippingRate, error)
	GetRate(ctx context.Context, id string) (*domain.ShippingRate, error)
	ListRates(ctx context.Context, zoneID string) ([]domain.ShippingRate, error)
	UpdateRate(ctx context.Context, id string, in shippingsvc.RateInput) (*domain.ShippingRate, error)
	DeleteRate(ctx context.Context, id string) error
}

type shippingHandler struct {
	shipping shippingService
}

func (h *shippingHandler) resolveRates(c *gin.Context) {
	rates, err := h.shipping.Resolve(c.Request.Context(), c.Query("shopId"), c.Query("country"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rates": rates})
}

func (h *shippingHandler) createZone(c *gin.Context) {
	var req shippingsvc.ZoneInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	zone, err := h.shipping.CreateZone(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"zone": zone})
}

func (h *shippingHandler) getZone(c *gin.Context) {
	zone, err := h.shipping.GetZone(c.Request.Context(), c.Param("zoneId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"zone": zone})
}

func (h *shippingHandler) listZones(c *gin.Context) {
	zones, err := h.shipping.ListZones(c.Request.Context(), c.Query("shopId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"zones": zones})
}

type updateZoneRequest struct {
	Name      string   `json:"name" binding:"required"`
	Countries []string `json:"countries" binding:"required,min=1"`
}

func (h *shippingHandler) updateZone(c *gin.Context) {
	var req updateZoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	zone, err := h.shipping.UpdateZone(c.Request.Context(), c.Param("zoneId"), req.Name, req.Countries)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"zone": zone})
}

func (h *shippingHandler) deleteZone(c *gin.Context) {
	if err := h.shipping.DeleteZone(c.Request.Context(), c.Param("zoneId")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *shippingHandler) createRate(c *gin.Context) {
	var req shippingsvc.RateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	rate, err := h.shipping.CreateRate(c.Request.Context(), c.Param("zoneId"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"rate": rate})
}

func (h *shippingHandler) getRate(c *gin.Context) {
	rate, err := h.shipping.GetRate(c.Request.Context(), c.Param("rateId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rate": rate})
}

func (h *shippingHandler) listRates(c *gin.Context) {
	rates, err := h.shipping.ListRates(c.Request.Context(), c.Param("zoneId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rates": rates})
}

func (h *shippingHandler) updateRate(c *gin.Context) {
	var req shippingsvc.RateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	rate, err := h.shipping.UpdateRate(c.Request.Context(), c.Param("rateId"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rate": rate})
}

func (h *shippingHandler) deleteRate(c *gin.Context) {
	if err := h.shipping.DeleteRate(c.Request.Context(), c.Param("rateId")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
