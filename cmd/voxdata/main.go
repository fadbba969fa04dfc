package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/atricence/voxdata/internal/config"
	"github.com/atricence/voxdata/internal/connector"
	logpkg "github.com/atricence/voxdata/internal/logger"
	"github.com/atricence/voxdata/internal/metrics"
	"github.com/atricence/voxdata/internal/source"
	sourceFile "github.com/atricence/voxdata/internal/source/file"
	sourceRedis "github.com/atricence/voxdata/internal/source/redis"
	chiTransport "github.com/atricence/voxdata/internal/transport/chi"
	mcpTransport "github.com/atricence/voxdata/internal/transport/mcp"
	openaiAgent "github.com/atricence/voxdata/internal/transport/openai"
	healthuc "github.com/atricence/voxdata/internal/usecase/health"
	queryuc "github.com/atricence/voxdata/internal/usecase/query"
	"github.com/atricence/voxdata/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting voxdata server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("storage_driver", cfg.Storage.Driver),
	)

	// Create the record source based on driver
	var loader source.Loader
	switch cfg.Storage.Driver {
	case "file":
		loader = sourceFile.New(cfg.Storage.Dir, cfg.Storage.Files)
	case "redis":
		src, err := sourceRedis.New(sourceRedis.Config{
			Addrs:     cfg.Storage.Addrs,
			Password:  cfg.Storage.Password,
			KeyPrefix: cfg.Storage.KeyPrefix,
		})
		if err != nil {
			logger.Fatal("Failed to create redis source", zap.Error(err))
		}
		defer src.Close()
		loader = src
	default:
		logger.Fatal("Unknown storage driver", zap.String("driver", cfg.Storage.Driver))
	}

	// Register pipeline metrics explicitly (no init())
	metrics.RegisterPipelineMetrics()

	// Connectors and the query service
	registry := connector.NewRegistry(
		connector.NewCRM(loader),
		connector.NewSupport(loader),
		connector.NewAnalytics(loader),
	)
	querySvc := queryuc.New(registry, logger)

	// Voice agent is optional; its routes return 503 without it
	var agent *openaiAgent.Agent
	if cfg.Agent.APIKey != "" {
		agent = openaiAgent.NewAgent(&openaiAgent.Config{
			APIKey:        cfg.Agent.APIKey,
			BaseURL:       cfg.Agent.BaseURL,
			Model:         cfg.Agent.Model,
			STTModel:      cfg.Agent.STTModel,
			TTSModel:      cfg.Agent.TTSModel,
			TTSVoice:      cfg.Agent.TTSVoice,
			MaxToolRounds: cfg.Agent.MaxToolRounds,
			Logger:        logger,
		}, querySvc)
		logger.Info("Voice agent configured",
			zap.String("model", cfg.Agent.Model),
			zap.String("base_url", cfg.Agent.BaseURL),
		)
	} else {
		logger.Warn("No agent API key configured; voice routes disabled")
	}

	// Health service. Pass nil interfaces (not typed nil pointers!) when
	// components are absent.
	var agentChecker healthuc.AgentChecker
	if agent != nil {
		agentChecker = agent
	}
	healthSvc := healthuc.New(map[string]healthuc.SourcePinger{"records": loader}, agentChecker)

	// MCP mode: `voxdata mcp` serves the tool surface over stdio instead
	// of running the HTTP API.
	if len(os.Args) > 1 && os.Args[1] == "mcp" {
		runMCP(querySvc, logger)
		return
	}

	var voiceHandler chiTransport.Voice
	if agent != nil {
		voiceHandler = agent
	}
	server := chiTransport.NewServer(querySvc, healthSvc, voiceHandler, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(metrics.Middleware())
	server.Routes(r)

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
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
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

func runMCP(querySvc *queryuc.Service, logger *zap.Logger) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Starting MCP server over stdio")
	if err := mcpTransport.NewServer(querySvc, logger).Run(ctx); err != nil {
		logger.Fatal("MCP server error", zap.Error(err))
	}
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
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
