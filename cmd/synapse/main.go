package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/synapse/internal/config"
	"github.com/kailas-cloud/synapse/internal/db"
	dbMemory "github.com/kailas-cloud/synapse/internal/db/memory"
	dbRedis "github.com/kailas-cloud/synapse/internal/db/redis"
	"github.com/kailas-cloud/synapse/internal/domain"
	logpkg "github.com/kailas-cloud/synapse/internal/logger"
	"github.com/kailas-cloud/synapse/internal/metrics"
	"github.com/kailas-cloud/synapse/internal/repository/embcache"
	itemrepo "github.com/kailas-cloud/synapse/internal/repository/item"
	searchrepo "github.com/kailas-cloud/synapse/internal/repository/search"
	chiTransport "github.com/kailas-cloud/synapse/internal/transport/chi"
	openaiTransport "github.com/kailas-cloud/synapse/internal/transport/openai"
	embeddinguc "github.com/kailas-cloud/synapse/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/synapse/internal/usecase/health"
	ingestuc "github.com/kailas-cloud/synapse/internal/usecase/ingest"
	searchuc "github.com/kailas-cloud/synapse/internal/usecase/search"
	"github.com/kailas-cloud/synapse/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting synapse API server",
		zap.String("build", version.String()),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	store, err := openStore(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	// Wait for database to be ready
	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterSearchMetrics()
	metrics.RegisterIngestMetrics()

	aiCfg := &openaiTransport.Config{
		APIKey:     cfg.OpenAI.APIKey,
		BaseURL:    cfg.OpenAI.BaseURL,
		Model:      cfg.OpenAI.EmbeddingModel,
		Dimensions: cfg.OpenAI.Dimensions,
		ChatModel:  cfg.OpenAI.ChatModel,
		Timeout:    time.Duration(cfg.OpenAI.TimeoutSec) * time.Second,
		Provider:   cfg.OpenAI.Provider,
		Logger:     logger,
	}
	baseEmbedder := openaiTransport.NewEmbedder(aiCfg)
	embedder := buildEmbedder(baseEmbedder, cfg, store, logger)
	classifier := openaiTransport.NewClassifier(aiCfg)
	enricher := openaiTransport.NewEnricher(aiCfg)
	logger.Info("AI clients created",
		zap.String("provider", cfg.OpenAI.Provider),
		zap.String("embedding_model", cfg.OpenAI.EmbeddingModel),
		zap.Int("dimensions", cfg.OpenAI.Dimensions),
		zap.String("chat_model", cfg.OpenAI.ChatModel),
	)

	// Repositories
	algorithm := db.ParseVectorAlgorithm(strings.ToUpper(cfg.Search.Algorithm))
	items := itemrepo.New(store, itemrepo.IndexConfig{
		Name:        cfg.Search.IndexName,
		Dimensions:  cfg.OpenAI.Dimensions,
		Algorithm:   algorithm,
		M:           cfg.Search.HNSWM,
		EFConstruct: cfg.Search.HNSWEFConstruction,
	})
	if err := items.EnsureIndex(ctx); err != nil {
		// Searches still work through the exact scan.
		logger.Warn("Vector index unavailable, searches will use the local fallback",
			zap.String("index", cfg.Search.IndexName),
			zap.Error(err),
		)
	}
	native := searchrepo.New(store, searchrepo.Options{
		IndexName:       cfg.Search.IndexName,
		Algorithm:       algorithm,
		CandidateFactor: cfg.Search.CandidateFactor,
		MinCandidates:   cfg.Search.MinCandidates,
	})

	// Use case services
	searchSvc := searchuc.New(native, searchuc.NewLocalRanker(items), classifier, embedder, metrics.SearchRecorder{})
	fetcher := ingestuc.NewHTTPFetcher(time.Duration(cfg.Ingest.FetchTimeoutSec) * time.Second)
	ingestSvc := ingestuc.New(items, enricher, embedder, fetcher, metrics.IngestRecorder{})
	healthSvc := healthuc.New(store, store, cfg.Search.IndexName, newEmbeddingHealthChecker(baseEmbedder))

	// Create chi server
	server := chiTransport.NewServer(searchSvc, ingestSvc, healthSvc, chiTransport.Options{
		DefaultLimit:   cfg.Search.DefaultLimit,
		MaxLimit:       cfg.Search.MaxLimit,
		MaxUploadBytes: cfg.HTTP.MaxUploadBytes,
	}, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.JWTAuthMiddleware(cfg.Auth.JWTSecret))
	r.Use(metrics.Middleware())
	chiTransport.HandlerWithOptions(server, chiTransport.ChiServerOptions{
		BaseRouter:       r,
		ErrorHandlerFunc: chiTransport.ParamErrorHandler,
	})

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// openStore creates the document store for the configured driver.
func openStore(cfg config.DatabaseConfig) (db.Store, error) {
	switch cfg.Driver {
	case "redis":
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Addrs,
			Username: cfg.Username,
			Password: cfg.Password,
			DB:       cfg.DB,
		})
		if err != nil {
			return nil, fmt.Errorf("redis store: %w", err)
		}
		return s, nil
	case "memory":
		return dbMemory.NewStore(), nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

// embeddingHealthChecker wraps domain.Embedder to implement health.EmbeddingChecker.
type embeddingHealthChecker struct {
	embedder domain.Embedder
}

func newEmbeddingHealthChecker(embedder domain.Embedder) *embeddingHealthChecker {
	return &embeddingHealthChecker{embedder: embedder}
}

func (h *embeddingHealthChecker) HealthCheck(ctx context.Context) error {
	if hc, ok := h.embedder.(domain.HealthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("embedding health check: %w", err)
		}
	}
	return nil
}

// buildEmbedder assembles the decorator chain: OpenAI -> Cached -> Instrumented.
func buildEmbedder(base domain.Embedder, cfg config.Config, store db.Store, logger *zap.Logger) domain.Embedder {
	embedder := base

	if ttl := time.Duration(cfg.Cache.EmbeddingTTLSec) * time.Second; ttl > 0 {
		embedder = embcache.New(base, store, cfg.OpenAI.EmbeddingModel, ttl, metrics.EmbeddingCacheTotal, logger)
	}

	// Instrumented is outermost so clipping happens before the cache key is computed.
	return embeddinguc.NewInstrumentedEmbedder(embedder, cfg.OpenAI.Provider, cfg.OpenAI.EmbeddingModel, cfg.Ingest.MaxEmbedRunes)
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					if rvr == http.ErrAbortHandler {
						panic(rvr)
					}
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line, one per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
