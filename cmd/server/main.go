// Command server exposes the artifact scoring engine over HTTP: submit a
// model URL with its linked code and dataset URLs, get back the scored
// record; list and fetch previously scored artifacts.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/ZanzyTHEbar/model-o-meter/internal/adapters"
	"github.com/ZanzyTHEbar/model-o-meter/internal/analysis"
	"github.com/ZanzyTHEbar/model-o-meter/internal/apperrors"
	"github.com/ZanzyTHEbar/model-o-meter/internal/cache"
	"github.com/ZanzyTHEbar/model-o-meter/internal/config"
	"github.com/ZanzyTHEbar/model-o-meter/internal/metrics"
	"github.com/ZanzyTHEbar/model-o-meter/internal/monitoring"
	"github.com/ZanzyTHEbar/model-o-meter/internal/ratelimit"
	"github.com/ZanzyTHEbar/model-o-meter/internal/resilience"
	"github.com/ZanzyTHEbar/model-o-meter/internal/sandbox"
	"github.com/ZanzyTHEbar/model-o-meter/internal/storage"
	"github.com/ZanzyTHEbar/model-o-meter/internal/types"
)

type scoreRequest struct {
	ModelURL    string   `json:"model_url" binding:"required"`
	CodeURLs    []string `json:"code_urls"`
	DatasetURLs []string `json:"dataset_urls"`
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	appLogger := monitoring.NewLogger(logLevel(cfg.LogLevel))
	slog.SetDefault(appLogger.Logger)

	appMetrics := monitoring.NewMetrics()

	store, err := storage.NewStore(cfg.DataDir)
	if err != nil {
		slog.Error("Failed to initialize artifact store", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	var metaCache cache.Store
	if cfg.RedisAddr != "" {
		redisStore := cache.NewRedisStore(cfg.RedisAddr)
		defer redisStore.Close()
		metaCache = redisStore
	} else {
		metaCache = cache.NewMemoryStore()
	}

	limiter := ratelimit.NewHostLimiter(ratelimit.Config{
		RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
		Burst:             cfg.RateLimit.Burst,
	})
	httpClient := resilience.NewClient(limiter)

	tokens := config.EnvTokenSource{}
	hub := adapters.NewHuggingFaceAdapter(httpClient, metaCache, appLogger, appMetrics)
	github := adapters.NewGitHubAdapter(httpClient, metaCache, tokens, appLogger, appMetrics)
	builder := adapters.NewBundleBuilder(hub, github, appLogger.Logger)

	runner := sandbox.NewRunner(cfg.Interpreter, cfg.RunTimeout, appLogger.Logger)

	registry := metrics.DefaultRegistry(metrics.Deps{
		Index:    store,
		Tokens:   tokens,
		Runner:   runner,
		Datasets: hub,
	})

	weights, err := analysis.Weights(cfg.WeightVersion)
	if err != nil {
		slog.Error("Failed to load weight table", "version", cfg.WeightVersion, "error", err)
		os.Exit(1)
	}

	scorer, err := analysis.NewScorer(builder, registry, weights, store, cfg.MaxWorkers, appLogger, appMetrics)
	if err != nil {
		slog.Error("Failed to build scorer", "error", err)
		os.Exit(1)
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(appLogger))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":          "ok",
			"timestamp":       time.Now().Format(time.RFC3339),
			"circuit_breaker": httpClient.BreakerState().String(),
			"metrics":         appMetrics.Snapshot(),
		})
	})

	r.POST("/score", func(c *gin.Context) {
		var req scoreRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "model_url is required"})
			return
		}

		artifact := types.ArtifactURL{
			URL:      req.ModelURL,
			Category: types.CategoryModel,
			Code:     req.CodeURLs,
			Datasets: req.DatasetURLs,
		}

		record, err := scorer.Score(c.Request.Context(), artifact)
		if err != nil {
			appLogger.Error("Scoring failed", "url", req.ModelURL, "error", err)
			c.JSON(apperrors.HTTPStatusOf(err), gin.H{"error": err.Error()})
			return
		}

		line, err := record.MarshalLine()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to encode record"})
			return
		}
		c.Data(http.StatusOK, "application/json", line)
	})

	r.GET("/artifacts", func(c *gin.Context) {
		limit := 100
		if raw := c.Query("limit"); raw != "" {
			if n, err := strconv.Atoi(raw); err == nil && n > 0 {
				limit = n
			}
		}

		artifacts, err := store.ListArtifacts(c.Request.Context(), limit)
		if err != nil {
			c.JSON(apperrors.HTTPStatusOf(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"artifacts": artifacts, "count": len(artifacts)})
	})

	r.GET("/artifacts/:id", func(c *gin.Context) {
		artifact, err := store.GetArtifact(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.JSON(apperrors.HTTPStatusOf(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, artifact)
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		slog.Info("Starting server", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server exited")
}

func requestLogger(logger *monitoring.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.RequestLogger(c.Request.Method, c.Request.URL.Path, c.ClientIP(), c.Writer.Status(), time.Since(start))
	}
}

func logLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
