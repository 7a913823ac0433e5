// Command scorecard scores a batch of model URLs from a file and writes
// one NDJSON record per model to stdout. Input lines have the form
// "code_url,dataset_url,model_url"; code and dataset may be empty.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/ZanzyTHEbar/model-o-meter/internal/adapters"
	"github.com/ZanzyTHEbar/model-o-meter/internal/analysis"
	"github.com/ZanzyTHEbar/model-o-meter/internal/cache"
	"github.com/ZanzyTHEbar/model-o-meter/internal/config"
	"github.com/ZanzyTHEbar/model-o-meter/internal/encoding"
	"github.com/ZanzyTHEbar/model-o-meter/internal/metrics"
	"github.com/ZanzyTHEbar/model-o-meter/internal/monitoring"
	"github.com/ZanzyTHEbar/model-o-meter/internal/ratelimit"
	"github.com/ZanzyTHEbar/model-o-meter/internal/resilience"
	"github.com/ZanzyTHEbar/model-o-meter/internal/sandbox"
	"github.com/ZanzyTHEbar/model-o-meter/internal/storage"
	"github.com/ZanzyTHEbar/model-o-meter/internal/types"
)

func main() {
	app := &cli.App{
		Name:  "scorecard",
		Usage: "score ML model artifacts for reuse suitability",
		Commands: []*cli.Command{
			{
				Name:      "score",
				Usage:     "score every model listed in URL_FILE, emitting NDJSON to stdout",
				ArgsUsage: "URL_FILE",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "workers",
						Usage: "max concurrent metrics per artifact",
						Value: 0,
					},
					&cli.StringFlag{
						Name:  "weights",
						Usage: "weight table version (v1 or v2)",
						Value: "",
					},
					&cli.BoolFlag{
						Name:  "no-store",
						Usage: "skip persisting scored records (disables lineage lookups)",
					},
				},
				Action: runScore,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runScore(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("usage: scorecard score URL_FILE", 1)
	}

	cfg, err := config.Load()
	if err != nil {
		return cli.Exit(fmt.Sprintf("load configuration: %v", err), 1)
	}
	if workers := c.Int("workers"); workers > 0 {
		cfg.MaxWorkers = workers
	}
	if version := c.String("weights"); version != "" {
		cfg.WeightVersion = version
	}

	// Stdout carries the NDJSON stream; logs go to stderr.
	appLogger := monitoring.NewLoggerTo(os.Stderr, logLevel(cfg.LogLevel))
	slog.SetDefault(appLogger.Logger)

	artifacts, err := types.ParseURLFile(c.Args().First())
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	if len(artifacts) == 0 {
		return nil
	}

	appMetrics := monitoring.NewMetrics()
	limiter := ratelimit.NewHostLimiter(ratelimit.Config{
		RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
		Burst:             cfg.RateLimit.Burst,
	})
	httpClient := resilience.NewClient(limiter)

	metaCache := cache.Store(cache.NewMemoryStore())
	if cfg.RedisAddr != "" {
		redisStore := cache.NewRedisStore(cfg.RedisAddr)
		defer redisStore.Close()
		metaCache = redisStore
	}

	tokens := config.EnvTokenSource{}
	hub := adapters.NewHuggingFaceAdapter(httpClient, metaCache, appLogger, appMetrics)
	github := adapters.NewGitHubAdapter(httpClient, metaCache, tokens, appLogger, appMetrics)
	builder := adapters.NewBundleBuilder(hub, github, appLogger.Logger)
	runner := sandbox.NewRunner(cfg.Interpreter, cfg.RunTimeout, appLogger.Logger)

	var store *storage.Store
	if !c.Bool("no-store") {
		store, err = storage.NewStore(cfg.DataDir)
		if err != nil {
			return cli.Exit(fmt.Sprintf("open artifact store: %v", err), 1)
		}
		defer store.Close()
	}

	deps := metrics.Deps{
		Tokens:   tokens,
		Runner:   runner,
		Datasets: hub,
	}
	if store != nil {
		deps.Index = store
	}
	registry := metrics.DefaultRegistry(deps)

	weights, err := analysis.Weights(cfg.WeightVersion)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	scorer, err := analysis.NewScorer(builder, registry, weights, store, cfg.MaxWorkers, appLogger, appMetrics)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	encoder := encoding.NewEncoder(os.Stdout)
	for _, artifact := range artifacts {
		record, err := scorer.Score(c.Context, artifact)
		if err != nil {
			// Persistence problems should not silence the record itself.
			appLogger.Warn("Record not persisted", "url", artifact.URL, "error", err)
		}
		if err := encoder.Encode(record); err != nil {
			return cli.Exit(fmt.Sprintf("write record: %v", err), 1)
		}
	}

	return nil
}

func logLevel(level string) slog.Level {
	switch level {
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
