package httpserver

import (
	"context"
	"net/http"

	"vendorhub/internal/domain"
	"vendorhub/internal/payment"
	checkoutsvc "vendorhub/internal/service/checkout"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type checkoutService interface {
	Create(ctx context.Context, in checkoutsvc.CreateInput) (*domain.CheckoutSession, error)
	Get(ctx context.Context, id string) (*domain.CheckoutSession, error)
	SubmitInformation(ctx context.Context, sessionID string, in checkoutsvc.InformationInput) (*domain.CheckoutSession, error)
	SelectShipping(ctx context.Context, sessionID, rateID string) (*domain.CheckoutSession, error)
	CreatePayment(ctx context.Context, sessionID, method string) (*checkoutsvc.PaymentHandoff, error)
	HandleEvent(ctx context.Context, ev payment.WebhookEvent) (*domain.Order, error)
}

type webhookVerifier interface {
	VerifyWebhook(payload []byte, signatureHeader string) (payment.WebhookEvent, error)
}

type checkoutHandler struct {
	checkout checkoutService
	orders   orderService
	verifier webhookVerifier
	rates    shippingResolver
	logger   *zap.Logger
}

type createCheckoutRequest struct {
	ProductID    string `json:"productId" binding:"required"`
	BillingCycle string `json:"billingCycle"`
	Quantity     int    `json:"quantity" binding:"required,min=1"`
}

func (h *checkoutHandler) create(c *gin.Context) {
	var req createCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	session, err := h.checkout.Create(c.Request.Context(), checkoutsvc.CreateInput{
		ProductID:    req.ProductID,
		BillingCycle: domain.BillingCycle(req.BillingCycle),
		Quantity:     req.Quantity,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	checkoutSessionsStarted.Inc()
	c.JSON(http.StatusCreated, gin.H{"session": session, "nextStep": session.CurrentStep})
}

func (h *checkoutHandler) get(c *gin.Context) {
	session, err := h.checkout.Get(c.Request.Context(), c.Param("sessionId"))
	if err != nil {
		respondError(c, err)
		return
	}

	// Shipping options ride along once an address is known, so the client
	// does not need a second round trip on the shipping step.
	var options []domain.ShippingRate
	if session.ShippingAddress != nil && session.CurrentStep == domain.StepShipping {
		options, err = h.rates.Resolve(c.Request.Context(), session.ShopID, session.ShippingAddress.Country)
		if err != nil {
			respondError(c, err)
			return
		}
	}
	resp := gin.H{"session": session, "nextStep": session.CurrentStep}
	if options != nil {
		resp["shippingOptions"] = options
	}
	c.JSON(http.StatusOK, resp)
}

type informationRequest struct {
	Email           string          `json:"email" binding:"required,email"`
	Name            string          `json:"name" binding:"required"`
	Phone           string          `json:"phone"`
	ShippingAddress *domain.Address `json:"shippingAddress"`
	Note            string          `json:"note"`
}

func (h *checkoutHandler) submitInformation(c *gin.Context) {
	var req informationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	session, err := h.checkout.SubmitInformation(c.Request.Context(), c.Param("sessionId"), checkoutsvc.InformationInput{
		Email:   req.Email,
		Name:    req.Name,
		Phone:   req.Phone,
		Address: req.ShippingAddress,
		Note:    req.Note,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": session, "nextStep": session.CurrentStep})
}

type selectShippingRequest struct {
	ShippingRateID string `json:"shippingRateId" binding:"required"`
}

func (h *checkoutHandler) selectShipping(c *gin.Context) {
	var req selectShippingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	session, err := h.checkout.SelectShipping(c.Request.Context(), c.Param("sessionId"), req.ShippingRateID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": session, "nextStep": session.CurrentStep})
}

type createPaymentRequest struct {
	PaymentMethod string `json:"paymentMethod" binding:"required"`
}

func (h *checkoutHandler) createPayment(c *gin.Context) {
	var req createPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	handoff, err := h.checkout.CreatePayment(c.Request.Context(), c.Param("sessionId"), req.PaymentMethod)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"stripeCheckoutUrl": handoff.RedirectURL,
		"session":           handoff.Session,
	})
}

// webhook receives provider events. The signature is verified against the
// raw body before anything is trusted; processing failures return a
// non-2xx so the provider redelivers.
func (h *checkoutHandler) webhook(c *gin.Context) {
	payload, err := c.GetRawData()
	if err != nil {
		respondBindError(c, err)
		return
	}
	ev, err := h.verifier.VerifyWebhook(payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		h.logger.Warn("webhook: signature rejected", zap.Error(err))
		respondError(c, err)
		return
	}
	webhookEvents.WithLabelValues(string(ev.Kind)).Inc()

	if ev.Kind == payment.EventIgnored {
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}
	if ev.Kind == payment.EventRefunded {
		if _, err := h.orders.MarkRefunded(c.Request.Context(), ev.ProviderSessionID); err != nil {
			h.logger.Error("webhook: refund processing failed",
				zap.String("provider_session_id", ev.ProviderSessionID), zap.Error(err))
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	order, err := h.checkout.HandleEvent(c.Request.Context(), ev)
	if err != nil {
		h.logger.Error("webhook: event processing failed",
			zap.String("type", ev.ProviderEventType), zap.Error(err))
		respondError(c, err)
		return
	}
	if order != nil {
		ordersMaterialized.Inc()
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}
