package httpserver

import (
	"context"
	"net/http"
	"strconv"

	"vendorhub/internal/domain"
	productsvc "vendorhub/internal/service/product"
	shopsvc "vendorhub/internal/service/shop"

	"github.com/gin-gonic/gin"
)

type shopService interface {
	Create(ctx context.Context, in shopsvc.CreateInput) (*domain.Shop, error)
	Get(ctx context.Context, id string) (*domain.Shop, error)
	List(ctx context.Context) ([]domain.Shop, error)
}

type productService interface {
	Upsert(ctx context.Context, in productsvc.UpsertInput) (*domain.Product, error)
	Get(ctx context.Context, id string) (*domain.Product, error)
	ListByShop(ctx context.Context, shopID string, activeOnly bool) ([]domain.Product, error)
	SetActive(ctx context.Context, id string, active bool) error
}

type shopHandler struct {
	shops    shopService
	products productService
}

func (h *shopHandler) create(c *gin.Context) {
	var req shopsvc.CreateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	shop, err := h.shops.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"shop": shop})
}

func (h *shopHandler) get(c *gin.Context) {
	shop, err := h.shops.Get(c.Request.Context(), c.Param("shopId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"shop": shop})
}

func (h *shopHandler) list(c *gin.Context) {
	shops, err := h.shops.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"shops": shops})
}

func (h *shopHandler) upsertProduct(c *gin.Context) {
	var req productsvc.UpsertInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	req.ShopID = c.Param("shopId")
	product, err := h.products.Upsert(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"product": product})
}

func (h *shopHandler) listProducts(c *gin.Context) {
	activeOnly, _ := strconv.ParseBool(c.DefaultQuery("active", "false"))
	products, err := h.products.ListByShop(c.Request.Context(), c.Param("shopId"), activeOnly)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

func (h *shopHandler) getProduct(c *gin.Context) {
	product, err := h.products.Get(c.Request.Context(), c.Param("productId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": product})
}

type setActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

func (h *shopHandler) setProductActive(c *gin.Context) {
	var req setActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	if err := h.products.SetActive(c.Request.Context(), c.Param("productId"), *req.Active); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
