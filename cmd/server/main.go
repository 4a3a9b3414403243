// HR assistant chat server.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/ashford-hq/hr-assistant/internal/api"
	"github.com/ashford-hq/hr-assistant/internal/config"
	"github.com/ashford-hq/hr-assistant/internal/domain"
	"github.com/ashford-hq/hr-assistant/internal/middleware"
	"github.com/ashford-hq/hr-assistant/internal/orchestrator"
	"github.com/ashford-hq/hr-assistant/internal/rag"
	"github.com/ashford-hq/hr-assistant/internal/session"
	"github.com/ashford-hq/hr-assistant/internal/store"
)

// disabledAnswerer stands in for the policy-answer service when Gemini
// or Qdrant is not configured, so the other two flows still work.
type disabledAnswerer struct{}

func (disabledAnswerer) Answer(_ context.Context, _ string, _ domain.UserContext) (string, error) {
	return "Policy question answering is not configured on this deployment. I can still update your address or check promotion eligibility.", nil
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting server", "port", cfg.Port, "dev", cfg.IsDevelopment())

	// Initialize dependencies.
	repo, err := store.NewSQLite(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			slog.Error("Failed to close repository", "error", closeErr)
		}
	}()

	if err := repo.Ping(context.Background()); err != nil {
		slog.Error("Database health check failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database connected")

	// Draft sessions: process-local by default (drafts are lost on
	// restart, which is acceptable), Redis when configured.
	var sessions session.Store
	switch cfg.SessionBackend {
	case config.SessionBackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		if err := client.Ping(context.Background()).Err(); err != nil {
			slog.Error("Redis health check failed", "error", err)
			os.Exit(1)
		}
		sessions = session.NewRedisStore(client, cfg.SessionTTL)
		slog.Info("Session store ready", "backend", "redis", "addr", cfg.RedisAddr)
	default:
		sessions = session.NewMemoryStore()
		slog.Info("Session store ready", "backend", "memory")
	}
	defer func() {
		if closeErr := sessions.Close(); closeErr != nil {
			slog.Error("Failed to close session store", "error", closeErr)
		}
	}()

	// Policy-answer collaborator (optional).
	var answerer orchestrator.Answerer = disabledAnswerer{}
	if cfg.PolicyAnswerEnabled() {
		gemini, err := rag.NewGeminiClient(context.Background(), rag.GeminiConfig{
			APIKey:        cfg.Gemini.APIKey,
			EmbedModel:    cfg.Gemini.EmbedModel,
			GenerateModel: cfg.Gemini.GenerateModel,
			Temperature:   0.2,
		})
		if err != nil {
			slog.Error("Failed to initialize Gemini client", "error", err)
			os.Exit(1)
		}

		index, err := rag.NewQdrantIndex(rag.QdrantConfig{
			URL:            cfg.Qdrant.URL,
			CollectionName: cfg.Qdrant.Collection,
			APIKey:         cfg.Qdrant.APIKey,
			VectorSize:     uint64(cfg.Qdrant.VectorSize),
		})
		if err != nil {
			slog.Error("Failed to initialize Qdrant client", "error", err)
			os.Exit(1)
		}
		defer func() {
			if closeErr := index.Close(); closeErr != nil {
				slog.Error("Failed to close Qdrant client", "error", closeErr)
			}
		}()

		answerer = rag.NewService(gemini, index, gemini, logger)
		slog.Info("Policy answering enabled", "collection", cfg.Qdrant.Collection)
	} else {
		slog.Info("Policy answering disabled (GEMINI_API_KEY or QDRANT_URL not set)")
	}

	orch := orchestrator.New(repo, sessions, answerer, logger)

	// Initialize handlers.
	chatHandler := api.NewChatHandler(orch)
	healthHandler := api.NewHealthHandler(repo)

	// Setup router.
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))
	r.Use(middleware.CORS([]string{"*"}))

	healthHandler.RegisterHealth(r)
	chatHandler.RegisterRoutes(r)

	// Create server.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start server.
	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal.
	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped successfully")
}
