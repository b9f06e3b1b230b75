package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/themobileprof/mindpage-be/internal/api"
	"github.com/themobileprof/mindpage-be/internal/api/middleware"
	"github.com/themobileprof/mindpage-be/internal/books"
	"github.com/themobileprof/mindpage-be/internal/chat"
	"github.com/themobileprof/mindpage-be/internal/completion"
	"github.com/themobileprof/mindpage-be/internal/config"
	"github.com/themobileprof/mindpage-be/internal/db"
	"github.com/themobileprof/mindpage-be/internal/language"
	"github.com/themobileprof/mindpage-be/internal/logger"
	"github.com/themobileprof/mindpage-be/internal/prompt"
	"github.com/themobileprof/mindpage-be/pkg/gemini"
	"github.com/themobileprof/mindpage-be/pkg/llm"
	"github.com/themobileprof/mindpage-be/pkg/openrouter"
)

// modeler is implemented by the vendor clients
type modeler interface {
	llm.Client
	Model() string
}

func main() {
	// Load environment variables
	if err := config.LoadDotEnv(); err != nil {
		log.Printf("Warning: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	zl, err := logger.New(cfg.IsProduction(), cfg.Debug)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zl.Sync()
	logger.SetGlobal(zl)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	client := newLLMClient(cfg)
	zl.Info("LLM client initialized",
		zap.String("provider", cfg.Provider),
		zap.String("model", client.Model()),
	)

	store, err := books.Load(context.Background(), bookSources(cfg), zl)
	if err != nil {
		zl.Fatal("failed to load book content", zap.Error(err))
	}

	// Initialize components
	langMgr := language.NewManager()
	completer := completion.NewClient(client, completion.Config{
		Model:       client.Model(),
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
	})
	engine := chat.NewEngine(langMgr, prompt.NewBuilder(), completer, store)
	chatHandler := api.NewChatHandler(engine, langMgr, cfg.IsProduction())

	limiter := middleware.NewRateLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)
	defer limiter.Stop()

	// Setup Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID(zl))
	router.Use(middleware.AccessLog())
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.PerIP(limiter))

	chatHandler.RegisterRoutes(router)

	// Retries can take up to ~14s on top of the upstream timeout
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      4*cfg.Timeout + 30*time.Second,
	}

	go func() {
		zl.Info("server starting",
			zap.String("addr", "http://localhost:"+cfg.Port),
			zap.String("env", cfg.Env),
			zap.Strings("routes", []string{"GET /health", "GET /languages", "POST /chat", "POST /workflow"}),
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zl.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zl.Error("server forced to shutdown", zap.Error(err))
	}

	zl.Info("server exited")
}

func newLLMClient(cfg *config.Config) modeler {
	switch cfg.Provider {
	case config.ProviderGemini:
		return gemini.NewHTTPClient(gemini.Config{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			Timeout: cfg.Timeout,
		})
	case config.ProviderGroq:
		return openrouter.NewGroqClient(openrouter.Config{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			Timeout: cfg.Timeout,
		})
	default:
		return openrouter.NewHTTPClient(openrouter.Config{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			Timeout: cfg.Timeout,
			Referer: cfg.AppURL,
			Title:   cfg.AppTitle,
		})
	}
}

// bookSources maps BOOK_CONTENT_PATH and DATABASE_URL onto book sources
func bookSources(cfg *config.Config) books.Sources {
	src := books.Sources{Path: cfg.BookContentPath}
	if cfg.DatabaseURL != "" {
		src.OpenDB = func(ctx context.Context) (*sql.DB, error) {
			database, err := db.New(ctx, db.Config{URL: cfg.DatabaseURL, MaxConnections: 2})
			if err != nil {
				return nil, err
			}
			return database.DB, nil
		}
	}
	return src
}
