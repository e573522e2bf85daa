package httpserver

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vendorhub_http_requests_total",
		Help: "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "vendorhub_http_request_duration_seconds",
		Help:    "HTTP request latency by method and route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	checkoutSessionsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vendorhub_checkout_sessions_started_total",
		Help: "Checkout sessions created.",
	})

	ordersMaterialized = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vendorhub_orders_materialized_total",
		Help: "Orders materialized from paid checkout sessions.",
	})

	webhookEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vendorhub_webhook_events_total",
		Help: "Payment provider webhook events by kind.",
	}, []string{"kind"})
)

func metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
