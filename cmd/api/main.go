// Package main is the entry point for the API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/capitalize-ai/extension-chat/internal/chat"
	"github.com/capitalize-ai/extension-chat/internal/config"
	"github.com/capitalize-ai/extension-chat/internal/extension"
	"github.com/capitalize-ai/extension-chat/internal/extension/builtin"
	"github.com/capitalize-ai/extension-chat/internal/handler"
	"github.com/capitalize-ai/extension-chat/internal/llm"
	"github.com/capitalize-ai/extension-chat/internal/middleware"
	"github.com/capitalize-ai/extension-chat/internal/prompt"
	"github.com/capitalize-ai/extension-chat/internal/render"
	"github.com/capitalize-ai/extension-chat/internal/store"
	"github.com/capitalize-ai/extension-chat/pkg/logger"
	"github.com/capitalize-ai/extension-chat/pkg/tracing"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	logger.SetGlobal(log)

	log.Info("starting API server")

	// Initialize tracing if enabled
	ctx := context.Background()
	if cfg.TracingEnabled {
		tp, err := tracing.InitTracer(ctx, "extension-chat", cfg.TracingEndpoint)
		if err != nil {
			log.Warn("failed to initialize tracing", zap.Error(err))
		} else {
			defer tracing.Shutdown(ctx, tp)
		}
	}

	// Select persistence backend
	var (
		st    store.Store
		ready func() error
	)
	switch cfg.StoreBackend {
	case "nats":
		conn, err := store.ConnectNATS(store.NATSConfig{
			URL:      cfg.NATSURL,
			CAFile:   cfg.NATSCAFile,
			CertFile: cfg.NATSCertFile,
			KeyFile:  cfg.NATSKeyFile,
			Token:    cfg.NATSToken,
		}, log)
		if err != nil {
			log.Error("failed to connect to NATS", zap.Error(err))
			os.Exit(1)
		}
		defer conn.Close()

		natsStore, err := store.NewNATS(ctx, conn, log)
		if err != nil {
			log.Error("failed to initialize NATS store", zap.Error(err))
			os.Exit(1)
		}
		st = natsStore
		ready = natsStore.Healthy
	default:
		st = store.NewMemory()
	}

	// Initialize model client
	provider := llm.Provider(cfg.DefaultLLM)
	apiKey := cfg.AnthropicAPIKey
	if provider == llm.ProviderOpenAI {
		apiKey = cfg.OpenAIAPIKey
	}
	client, err := llm.NewClient(provider, apiKey)
	if err != nil {
		log.Error("failed to create model client", zap.Error(err))
		os.Exit(1)
	}

	// Build the extension registry and its derived model artifacts
	registry := extension.MustRegistry(builtin.All())
	system, err := prompt.BuildSystemPrompt(registry)
	if err != nil {
		log.Error("failed to build system prompt", zap.Error(err))
		os.Exit(1)
	}
	responseSchema := prompt.ResponseSchema(registry)

	transport := llm.NewTransport(client, system, cfg.DefaultModel, cfg.MaxTokens)

	storeOpts := []chat.Option{chat.WithFinalSchema(responseSchema)}
	if cfg.ResearchEnabled {
		storeOpts = append(storeOpts, chat.WithResearchHook(llm.NewResearchHook(client, cfg.DefaultModel, 1024)))
	}
	manager := chat.NewManager(st, transport, log, storeOpts...)

	// Initialize handlers
	dispatcher := render.NewDispatcher(registry, log)
	healthHandler := handler.NewHealthHandler(ready)
	conversationHandler := handler.NewConversationHandler(st, manager, log)
	generateHandler := handler.NewGenerateHandler(manager, log)
	interactHandler := handler.NewInteractHandler(manager, dispatcher, log)
	pinHandler := handler.NewPinHandler(st, log)

	// Create router
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(log))
	r.Use(middleware.SecurityHeaders)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"Link", "X-Correlation-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health endpoints (no auth required)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	// Metrics endpoint
	r.Handle("/metrics", promhttp.Handler())

	// API routes with authentication
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWTSecret))
		r.Use(middleware.RateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow))

		r.Route("/conversations", func(r chi.Router) {
			r.Get("/", conversationHandler.List)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/messages", conversationHandler.Messages)
				r.Get("/view", interactHandler.View)
				r.Delete("/", conversationHandler.Delete)
				r.Post("/generate", generateHandler.Generate)
				r.Post("/interact", interactHandler.Interact)
			})
		})

		r.Route("/pins", func(r chi.Router) {
			r.Post("/", pinHandler.Create)
			r.Get("/", pinHandler.List)
			r.Delete("/{id}", pinHandler.Delete)
		})
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      r,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info("server listening", zap.String("port", cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	log.Info("server stopped")
}
