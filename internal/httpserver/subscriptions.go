package httpserver

import (
	"context"
	"net/http"

	"vendorhub/internal/domain"

	"github.com/gin-gonic/gin"
)

type subscriptionService interface {
	Get(ctx context.Context, id string) (*domain.Subscription, error)
	ListByEmail(ctx context.Context, email string) ([]domain.Subscription, error)
	ListByShop(ctx context.Context, shopID string) ([]domain.Subscription, error)
	Cancel(ctx context.Context, id string) (*domain.Subscription, error)
	Pause(ctx context.Context, id string) (*domain.Subscription, error)
	Resume(ctx context.Context, id string) (*domain.Subscription, error)
	MarkPastDue(ctx context.Context, id string) (*domain.Subscription, error)
}

type subscriptionHandler struct {
	subs subscriptionService
}

func (h *subscriptionHandler) get(c *gin.Context) {
	sub, err := h.subs.Get(c.Request.Context(), c.Param("subscriptionId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"subscription": sub})
}

func (h *subscriptionHandler) list(c *gin.Context) {
	if shopID := c.Query("shopId"); shopID != "" {
		subs, err := h.subs.ListByShop(c.Request.Context(), shopID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"subscriptions": subs})
		return
	}
	subs, err := h.subs.ListByEmail(c.Request.Context(), c.Query("email"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"subscriptions": subs})
}

func (h *subscriptionHandler) transition(f func(context.Context, string) (*domain.Subscription, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		sub, err := f(c.Request.Context(), c.Param("subscriptionId"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"subscription": sub})
	}
}
