// Package main provides the Telegram bot server entry point.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/siddhantkochhar/ballu-go/internal/config"
	"github.com/siddhantkochhar/ballu-go/internal/dispatch"
	"github.com/siddhantkochhar/ballu-go/internal/fetcher"
	"github.com/siddhantkochhar/ballu-go/internal/llm"
	"github.com/siddhantkochhar/ballu-go/internal/logger"
	"github.com/siddhantkochhar/ballu-go/internal/metrics"
	"github.com/siddhantkochhar/ballu-go/internal/storage"
	"github.com/siddhantkochhar/ballu-go/internal/telegram"
	"github.com/siddhantkochhar/ballu-go/internal/webhook"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.LogLevel)
	log.Info("Starting Ballu Telegram bot server")

	// Initialize Sentry (optional)
	sentryEnabled := false
	if cfg.SentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.SentryDSN,
			Environment: cfg.SentryEnvironment,
		})
		if err != nil {
			log.WithError(err).Warn("Failed to initialize Sentry, error reporting disabled")
		} else {
			sentryEnabled = true
			defer sentry.Flush(2 * time.Second)
			log.Info("Sentry error reporting enabled")
		}
	}

	// Connect to MongoDB; without it the bot still runs, it just
	// forgets everything on restart.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 10*time.Second)
	var store storage.Store
	mongoStore, err := storage.NewMongoStore(startupCtx, cfg.MongoURI, cfg.MongoDatabase)
	startupCancel()
	if err != nil {
		log.WithError(err).Warn("MongoDB unavailable, using in-memory storage")
		store = storage.NewMemoryStore()
	} else {
		store = mongoStore
		log.WithField("database", cfg.MongoDatabase).Info("MongoDB connected")
	}
	defer func() {
		closeCtx, closeCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer closeCancel()
		if err := store.Close(closeCtx); err != nil {
			log.WithError(err).Error("Failed to close storage")
		}
	}()

	// Create Prometheus registry
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	registry.MustRegister(collectors.NewBuildInfoCollector())

	m := metrics.New(registry)
	log.Info("Metrics initialized")

	// Create model providers: Gemini primary, Groq fallback.
	var providers []llm.Provider
	if cfg.GeminiAPIKey != "" {
		gemini, err := llm.NewGeminiProvider(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel, cfg.LLMTimeout)
		if err != nil {
			log.WithError(err).Warn("Failed to create Gemini provider")
		} else if gemini != nil {
			providers = append(providers, gemini)
			log.WithField("model", cfg.GeminiModel).Info("Gemini provider enabled")
		}
	}
	if groq := llm.NewGroqProvider(cfg.GroqAPIKey, cfg.GroqModel, cfg.LLMTimeout); groq != nil {
		providers = append(providers, groq)
		log.WithField("model", cfg.GroqModel).Info("Groq provider enabled")
	}
	if len(providers) == 0 {
		log.Warn("No model provider configured, every message will be handled as plain chat")
	}

	classifier := llm.NewClassifier(log, m, providers...)
	composer := llm.NewComposer(log, m, providers...)

	// Create data fetchers and the dispatch table.
	dispatcher := dispatch.New(
		fetcher.NewWeatherFetcher(cfg.WeatherAPIKey, cfg.WeatherBaseURL, cfg.FetchTimeout),
		fetcher.NewStockFetcher(cfg.StockBaseURL, cfg.FetchTimeout),
		fetcher.NewNewsFetcher(cfg.NewsAPIKey, cfg.NewsBaseURL, cfg.NewsCountry, cfg.FetchTimeout),
	)
	log.Info("Dispatcher created")

	// Create Telegram client
	tg, err := telegram.NewClient(cfg.TelegramToken)
	if err != nil {
		log.Fatal("Failed to authenticate with Telegram", "error", err.Error())
	}
	log.WithField("bot", tg.BotUsername()).Info("Telegram client ready")

	// Create webhook handler
	webhookHandler := webhook.New(
		log,
		m,
		store,
		classifier,
		composer,
		dispatcher,
		tg,
		cfg.HistoryWindow,
		cfg.MessageTimeout,
	)
	log.Info("Webhook handler created")

	// Set Gin mode based on log level
	if cfg.LogLevel == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(securityHeadersMiddleware())
	router.Use(loggingMiddleware(log))
	if sentryEnabled {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}

	setupRoutes(router, webhookHandler, store, registry)

	// Create HTTP server. Write timeout must cover the synchronous
	// message pipeline; see internal/config/timeouts.go.
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  config.HTTPRead,
		WriteTimeout: config.HTTPWrite,
		IdleTimeout:  config.HTTPIdle,
	}

	// Start server in goroutine
	go func() {
		log.WithField("port", cfg.Port).Info("Server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", "error", err.Error())
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Server forced to shutdown")
	}

	log.Info("Server stopped")
}
