// Package main provides the Telegram bot server entry point.
package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/siddhantkochhar/ballu-go/internal/storage"
	"github.com/siddhantkochhar/ballu-go/internal/webhook"
)

// setupRoutes configures all HTTP routes
func setupRoutes(router *gin.Engine, webhookHandler *webhook.Handler, store storage.Store, registry *prometheus.Registry) {
	// Root endpoint - project home
	rootHandler := func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "https://github.com/siddhantkochhar/ballu-go")
	}
	router.GET("/", rootHandler)
	router.HEAD("/", rootHandler)

	// Liveness probe - only that the process is running, never checks
	// dependencies.
	healthHandler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
	router.GET("/healthz", healthHandler)
	router.HEAD("/healthz", healthHandler)

	// Readiness probe - storage reachability plus record counts.
	readyHandler := func(c *gin.Context) {
		if err := store.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "not ready",
				"reason": err.Error(),
			})
			return
		}

		var userCount, turnCount int64
		g, ctx := errgroup.WithContext(c.Request.Context())
		g.Go(func() error {
			var err error
			userCount, err = store.CountUsers(ctx)
			return err
		})
		g.Go(func() error {
			var err error
			turnCount, err = store.CountTurns(ctx)
			return err
		})
		if err := g.Wait(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "not ready",
				"reason": err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":   "ready",
			"database": "connected",
			"stats": gin.H{
				"users":      userCount,
				"chat_turns": turnCount,
			},
		})
	}
	router.GET("/ready", readyHandler)
	router.HEAD("/ready", readyHandler)

	// Telegram webhook endpoint
	router.POST("/webhook", webhookHandler.HandleWebhook)

	// User profile lookup
	router.GET("/user/:id", webhookHandler.HandleGetUser)

	// Manual test endpoints: run a fetcher or the classifier directly.
	router.POST("/test/function", webhookHandler.HandleTestFunction)
	router.POST("/test/intent", webhookHandler.HandleTestIntent)

	// Prometheus metrics endpoint
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
}
