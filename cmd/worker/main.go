package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"

	"github.com/docpipeline/indexer/enrich"
	"github.com/docpipeline/indexer/llm"
	"github.com/docpipeline/indexer/objectstore"
	"github.com/docpipeline/indexer/observability"
	"github.com/docpipeline/indexer/pipeline"
	"github.com/docpipeline/indexer/queue"
	"github.com/docpipeline/indexer/store"
	"github.com/docpipeline/indexer/vectorindex"
)

func main() {
	envFile := flag.String("env", "", "Path to .env file (optional)")
	metricsAddr := flag.String("metrics-addr", ":9090", "Listen address for the /metrics endpoint")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	if *envFile != "" {
		if err := godotenv.Load(*envFile); err != nil {
			slog.Error("loading env file", "error", err)
			os.Exit(1)
		}
	} else {
		_ = godotenv.Load()
	}

	cfg, err := pipeline.LoadFromEnv(pipeline.DefaultConfig())
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	objStore, err := objectstore.New(ctx, objectstore.Config{
		Endpoint:     cfg.StorageEndpoint,
		Region:       cfg.StorageRegion,
		Bucket:       cfg.StorageBucket,
		AccessKey:    cfg.StorageAccessKey,
		SecretKey:    cfg.StorageSecretKey,
		UsePathStyle: cfg.StoragePathStyle,
	})
	if err != nil {
		slog.Error("connecting to object store", "error", err)
		os.Exit(1)
	}

	db, err := store.Connect(ctx, store.DefaultConfig(cfg.DBDSN))
	if err != nil {
		slog.Error("connecting to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.InitSchema(ctx); err != nil {
		slog.Error("initializing schema", "error", err)
		os.Exit(1)
	}
	persistStore := store.New(db)

	nc, err := nats.Connect(cfg.NATSURL)
	if err != nil {
		slog.Error("connecting to nats", "error", err)
		os.Exit(1)
	}
	defer nc.Close()

	consumer, err := queue.NewConsumer(nc)
	if err != nil {
		slog.Error("starting queue consumer", "error", err)
		os.Exit(1)
	}
	vectorPub := vectorindex.NewPublisher(nc)

	var questionGenerator *enrich.HypotheticalQuestionGenerator
	if cfg.EnrichLLMEnabled && cfg.EnrichHQEnabled {
		provider, err := llm.NewProvider(llm.Config{
			Provider: cfg.LLM.Provider,
			Model:    cfg.LLM.Model,
			BaseURL:  cfg.LLM.BaseURL,
			APIKey:   cfg.LLM.APIKey,
		})
		if err != nil {
			slog.Error("creating llm provider", "error", err)
			os.Exit(1)
		}
		questionGenerator = enrich.NewHypotheticalQuestionGenerator(provider, cfg.LLM.Model, 3)
	}

	metrics := observability.NewStageMetrics()
	metricsSrv := &http.Server{Addr: *metricsAddr, Handler: metrics.Handler()}
	go func() {
		slog.Info("metrics server starting", "addr", *metricsAddr)
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("metrics server error", "error", err)
		}
	}()

	orchestrator := pipeline.NewOrchestrator(cfg, consumer, persistStore, objStore, vectorPub, questionGenerator)

	slog.Info("worker starting", "workers", cfg.Workers)
	orchestrator.Run(ctx)

	slog.Info("shutting down worker...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		slog.Error("metrics server shutdown error", "error", err)
	}
	slog.Info("worker stopped")
}
