package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"newsgraph/api"
	"newsgraph/cache"
	"newsgraph/common"
	"newsgraph/config"
	"newsgraph/graphdb"
	"newsgraph/logger"
	"newsgraph/metrics"
	"newsgraph/orchestrator"
	"newsgraph/retrieval"
	"newsgraph/shared/kafka"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
)

func main() {
	configPath := flag.String("config", "", "Path to a YAML config file (overrides NEWSGRAPH_CONFIG)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("failed to load config", "err", err)
	}
	logger.Init(os.Stderr, cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid config", "err", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	var svc retrieval.Service = retrieval.NewRetriever(graphdb.NewConnector(cfg.Arango), cfg.Arango)

	// Redis backs both the result cache and the warm schedule
	var rdb redis.Cmdable
	if cfg.Redis.Addr != "" {
		store, err := cache.NewStore(cfg.Redis)
		if err != nil {
			logger.Warn("redis unavailable, caching disabled", "addr", cfg.Redis.Addr, "err", err)
		} else {
			defer store.Close()
			svc = cache.NewService(svc, store, cfg.Redis.TTL)
			rdb = store.Client()
			logger.Info("result cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.TTL)
		}
	}

	// outermost, so cache hits are measured too
	svc, err = metrics.NewService(svc, registry)
	if err != nil {
		logger.Fatal("failed to register metrics", "err", err)
	}

	var exporter *orchestrator.Exporter
	if cfg.S3.Bucket != "" {
		s3c, err := common.NewS3(ctx, cfg.S3)
		if err != nil {
			logger.Warn("failed to init S3 client, snapshot exports disabled", "err", err)
		} else {
			exporter = orchestrator.NewExporter(s3c)
			logger.Info("snapshot exports enabled", "bucket", cfg.S3.Bucket, "prefix", cfg.S3.Prefix)
		}
	}

	runner := orchestrator.NewRunner(svc, exporter, rdb, orchestrator.DefaultOptions())
	if rdb != nil {
		if err := runner.StartCron(cfg.WarmCron); err != nil {
			logger.Fatal("failed to start warm schedule", "err", err)
		}
		defer runner.Stop()
	}

	var consumer *kafka.Consumer
	if len(cfg.Kafka.Brokers) > 0 {
		handler := kafka.NewArticlePublishedHandler(func(ctx context.Context, key string) error {
			_, err := runner.Warm(ctx, key)
			return err
		})
		consumer, err = kafka.NewConsumer(cfg.Kafka, handler)
		if err != nil {
			logger.Error("failed to create kafka consumer", "err", err)
		} else {
			go func() {
				if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
					logger.Error("failed to start kafka consumer", "err", err)
				}
			}()
		}
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.NewRouter(svc, registry),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("starting API server", "addr", srv.Addr, "endpoint", cfg.Arango.Endpoint, "database", cfg.Arango.Database)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", "err", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "err", err)
	}
	if consumer != nil {
		if err := consumer.Close(); err != nil {
			logger.Error("kafka consumer close error", "err", err)
		}
	}
	logger.Info("server stopped")
}
