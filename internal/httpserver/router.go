package httpserver

import (
	"fmt"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Deps carries the service implementations the router wires handlers to.
type Deps struct {
	Checkout      checkoutService
	Orders        orderService
	Shipping      shippingService
	Shops         shopService
	Products      productService
	Subscriptions subscriptionService
	Verifier      webhookVerifier
}

func (d Deps) validate() error {
	switch {
	case d.Checkout == nil:
		return fmt.Errorf("httpserver: checkout service required")
	case d.Orders == nil:
		return fmt.Errorf("httpserver: order service required")
	case d.Shipping == nil:
		return fmt.Errorf("httpserver: shipping service required")
	case d.Shops == nil:
		return fmt.Errorf("httpserver: shop service required")
	case d.Products == nil:
		return fmt.Errorf("httpserver: product service required")
	case d.Subscriptions == nil:
		return fmt.Errorf("httpserver: subscription service required")
	case d.Verifier == nil:
		return fmt.Errorf("httpserver: webhook verifier required")
	}
	return nil
}

// buildRouter wires routes for the API.
func buildRouter(logger *zap.Logger, db *pgxpool.Pool, deps Deps) (*gin.Engine, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(requestLogger(logger), gin.Recovery(), metricsMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "Stripe-Signature"},
		MaxAge:           12 * time.Hour,
		AllowCredentials: false,
	}))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	co := &checkoutHandler{
		checkout: deps.Checkout,
		orders:   deps.Orders,
		verifier: deps.Verifier,
		rates:    deps.Shipping,
		logger:   logger,
	}
	or := &orderHandler{orders: deps.Orders}
	sh := &shippingHandler{shipping: deps.Shipping}
	sp := &shopHandler{shops: deps.Shops, products: deps.Products}
	su := &subscriptionHandler{subs: deps.Subscriptions}

	checkout := router.Group("/checkout")
	{
		checkout.POST("", co.create)
		// Static segment; never swallowed by the :sessionId wildcard.
		checkout.GET("/orders/confirm", or.confirm)
		checkout.GET("/:sessionId", co.get)
		checkout.POST("/:sessionId/information", co.submitInformation)
		checkout.POST("/:sessionId/shipping", co.selectShipping)
		checkout.POST("/:sessionId/payment", co.createPayment)
	}

	router.POST("/api/stripe-webhook", co.webhook)

	shipping := router.Group("/shipping")
	{
		shipping.GET("/rates", sh.resolveRates)
		shipping.POST("/zones", sh.createZone)
		shipping.GET("/zones", sh.listZones)
		shipping.GET("/zones/:zoneId", sh.getZone)
		shipping.PUT("/zones/:zoneId", sh.updateZone)
		shipping.DELETE("/zones/:zoneId", sh.deleteZone)
		shipping.POST("/zones/:zoneId/rates", sh.createRate)
		shipping.GET("/zones/:zoneId/rates", sh.listRates)
		shipping.GET("/rates/:rateId", sh.getRate)
		shipping.PUT("/rates/:rateId", sh.updateRate)
		shipping.DELETE("/rates/:rateId", sh.deleteRate)
	}

	shops := router.Group("/shops")
	{
		shops.POST("", sp.create)
		shops.GET("", sp.list)
		shops.GET("/:shopId", sp.get)
		shops.POST("/:shopId/products", sp.upsertProduct)
		shops.GET("/:shopId/products", sp.listProducts)
		shops.GET("/:shopId/orders", or.listByShop)
	}

	router.GET("/products/:productId", sp.getProduct)
	router.PATCH("/products/:productId/active", sp.setProductActive)

	orders := router.Group("/orders")
	{
		orders.GET("/:orderId", or.get)
		orders.PATCH("/:orderId/fulfillment", or.updateFulfillment)
	}

	subs := router.Group("/subscriptions")
	{
		subs.GET("", su.list)
		subs.GET("/:subscriptionId", su.get)
		subs.POST("/:subscriptionId/cancel", su.transition(deps.Subscriptions.Cancel))
		subs.POST("/:subscriptionId/pause", su.transition(deps.Subscriptions.Pause))
		subs.POST("/:subscriptionId/resume", su.transition(deps.Subscriptions.Resume))
		subs.POST("/:subscriptionId/past-due", su.transition(deps.Subscriptions.MarkPastDue))
	}

	return router, nil
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}
		if c.Writer.Status() >= 500 {
			logger.Error("http request", fields...)
			return
		}
		logger.Info("http request", fields...)
	}
}
