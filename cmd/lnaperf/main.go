package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/lnaperf/internal/config"
	"github.com/kailas-cloud/lnaperf/internal/db"
	dbRedis "github.com/kailas-cloud/lnaperf/internal/db/redis"
	logpkg "github.com/kailas-cloud/lnaperf/internal/logger"
	"github.com/kailas-cloud/lnaperf/internal/metrics"
	artifactrepo "github.com/kailas-cloud/lnaperf/internal/repository/artifact"
	"github.com/kailas-cloud/lnaperf/internal/repository/predcache"
	chiTransport "github.com/kailas-cloud/lnaperf/internal/transport/chi"
	healthuc "github.com/kailas-cloud/lnaperf/internal/usecase/health"
	predictionuc "github.com/kailas-cloud/lnaperf/internal/usecase/prediction"
	"github.com/kailas-cloud/lnaperf/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env,
		logpkg.WithLevel(cfg.Logging.Level),
		logpkg.WithFile(logpkg.FileOptions{
			Path:       cfg.Logging.File.Path,
			MaxSizeMB:  cfg.Logging.File.MaxSizeMB,
			MaxBackups: cfg.Logging.File.MaxBackups,
			MaxAgeDays: cfg.Logging.File.MaxAgeDays,
			Compress:   cfg.Logging.File.Compress,
		}),
	)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting lnaperf API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("artifact_source", cfg.Artifacts.Source),
		zap.String("cache_driver", cfg.Cache.Driver),
	)

	ctx := context.Background()

	// Database is optional: only the redis artifact source and the redis cache need it
	var store db.Store
	if cfg.NeedsDatabase() {
		rs, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Database.Addrs,
			Username: cfg.Database.Username,
			Password: cfg.Database.Password,
			DB:       cfg.Database.DB,
		})
		if err != nil {
			logger.Fatal("Failed to create database store", zap.Error(err))
		}
		defer rs.Close()

		if err := rs.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
			logger.Fatal("Database not ready", zap.Error(err))
		}
		logger.Info("Connected to database", zap.Strings("db_addrs", cfg.Database.Addrs))
		store = rs
	}

	metrics.RegisterPredictionMetrics()

	// Artifacts
	var source artifactrepo.Source
	switch cfg.Artifacts.Source {
	case config.SourceRedis:
		source = artifactrepo.NewKVSource(store, cfg.Artifacts.KeyPrefix)
	default:
		source = artifactrepo.NewFileSource(cfg.Artifacts.Dir)
	}
	loader := artifactrepo.NewLoader(source, artifactrepo.Names{
		Gain:    cfg.Artifacts.Gain,
		Noise:   cfg.Artifacts.Noise,
		Scaler:  cfg.Artifacts.Scaler,
		Encoder: cfg.Artifacts.Encoder,
	}, logger)

	var artifacts interface {
		predictionuc.ArtifactProvider
		healthuc.ArtifactProvider
	}
	if cfg.Artifacts.Lazy {
		artifacts = artifactrepo.NewLazy(loader)
	} else {
		loaded, err := loader.Load(ctx)
		if err != nil {
			logger.Fatal("Failed to load artifacts", zap.Error(err))
		}
		artifacts = artifactrepo.NewStatic(loaded)
	}

	// Prediction service
	predSvc := predictionuc.New(artifacts, logger).
		WithBatchLimits(cfg.Batch.MaxSize, cfg.Batch.Workers)
	ttl := time.Duration(cfg.Cache.TTLSec) * time.Second
	switch cfg.Cache.Driver {
	case config.CacheMemory:
		predSvc.WithCache(predcache.NewMemory(cfg.Cache.Size, ttl))
	case config.CacheRedis:
		predSvc.WithCache(predcache.NewKV(store, ttl, logger))
	}

	// Pass nil interface (not typed nil pointer) when no database is configured.
	var pinger healthuc.DBPinger
	if store != nil {
		pinger = store
	}
	healthSvc := healthuc.New(artifacts, pinger)

	// Create chi server
	server := chiTransport.NewServer(predSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	chiTransport.HandlerWithOptions(server, chiTransport.ChiServerOptions{
		BaseRouter:       r,
		ErrorHandlerFunc: chiTransport.BadRequestHandler,
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

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(chiTransport.ErrorResponse{
						Code:    chiTransport.ErrorResponseCodeInternalError,
						Message: "internal error",
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
