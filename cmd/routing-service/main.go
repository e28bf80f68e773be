// cmd/routing-service/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"marketplace-routing/internal/api"
	"marketplace-routing/internal/common/config"
	"marketplace-routing/internal/common/database"
	"marketplace-routing/internal/common/logger"
	"marketplace-routing/internal/common/observability"
	"marketplace-routing/internal/export"
	"marketplace-routing/internal/notify"
	"marketplace-routing/internal/routing"
	"marketplace-routing/internal/routing/quota"
	"marketplace-routing/internal/store"
	"marketplace-routing/internal/upc"
	"marketplace-routing/pkg/channels"
)

// retryWithBackoff attempts an operation with exponential backoff.
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("starting routing service",
		zap.String("environment", cfg.App.Environment),
		zap.String("version", cfg.App.Version),
	)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- PostgreSQL (item store) ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected")

	// --- Redis (quota ledger) ---
	var rdb *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		rdb, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return rdb.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer rdb.Close()
	zapLog.Info("Redis connected")

	// --- Routing config provider with hot reload ---
	provider := config.NewRoutingProvider(cfg.Routing)
	if path := os.Getenv("ROUTING_CONFIG_FILE"); path != "" {
		if err := provider.WatchFile(path, func(rc config.RoutingConfig) {
			zapLog.Info("routing config reloaded",
				zap.Int("highValueBrandRatio", rc.HighValueBrandRatio),
				zap.Int("heavyWeightThresholdOunces", rc.HeavyWeightThresholdOunces),
			)
		}); err != nil {
			zapLog.Warn("routing config watch disabled", zap.Error(err))
		}
	}
	configSource := func() routing.Config {
		rc := provider.Get()
		return routing.Config{
			HeavyWeightThresholdOunces: rc.HeavyWeightThresholdOunces,
			HighValueBrandRatio:        rc.HighValueBrandRatio,
			BlockedAmazonBrands:        rc.BlockedAmazonBrands,
			QuotaTrackedTiers:          rc.QuotaTrackedTiers,
		}
	}

	itemStore := store.NewItemStore(pg.DB, log)
	ledger := quota.NewRedisLedger(rdb.Client)

	opts := []routing.Option{routing.WithObservability(obs)}

	// --- Elasticsearch audit index (optional) ---
	if len(cfg.Database.Elasticsearch.Addresses) > 0 {
		esClient, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			zapLog.Warn("elasticsearch unavailable, audit indexing disabled", zap.Error(err))
		} else {
			indexer := export.NewIndexer(esClient.Client, cfg.Database.Elasticsearch.AuditIndex, log)
			opts = append(opts, routing.WithAuditRecorder(indexer))
			zapLog.Info("audit indexing enabled", zap.String("index", cfg.Database.Elasticsearch.AuditIndex))
		}
	}

	// --- Review notifications (optional) ---
	if cfg.Notifications.Enabled {
		var pub notify.SNSPublisher
		var sender notify.EmailSender
		if cfg.Notifications.ReviewTopicARN != "" {
			if pub, err = notify.NewSNSPublisher(ctx, cfg.Notifications.AWSRegion); err != nil {
				zapLog.Warn("SNS client unavailable", zap.Error(err))
			}
		}
		if cfg.Notifications.ReviewEmail != "" {
			if sender, err = notify.NewEmailSender(ctx, cfg.Notifications.AWSRegion); err != nil {
				zapLog.Warn("SES client unavailable", zap.Error(err))
			}
		}
		if pub != nil || sender != nil {
			notifier := notify.New(notify.Config{
				ReviewTopicARN: cfg.Notifications.ReviewTopicARN,
				ReviewEmail:    cfg.Notifications.ReviewEmail,
				SenderEmail:    cfg.Notifications.SenderEmail,
			}, pub, sender, log)
			opts = append(opts, routing.WithReviewNotifier(notifier))
			zapLog.Info("review notifications enabled")
		}
	}

	routingService := routing.NewService(configSource, ledger, itemStore, log, opts...)

	// --- UPC lookup (optional) ---
	var upcClient api.UPCLookup
	if cfg.UPC.BaseURL != "" {
		upcClient = upc.NewClient(cfg.UPC.BaseURL, cfg.UPC.APIKey, time.Duration(cfg.UPC.Timeout)*time.Millisecond, log)
	}

	// --- Channel registry ---
	var registry *channels.ChannelRegistry
	registryPath := os.Getenv("CHANNEL_REGISTRY_FILE")
	if registryPath == "" {
		registryPath = "configs/channel-registry.json"
	}
	if registry, err = channels.LoadRegistry(registryPath); err != nil {
		zapLog.Warn("channel registry unavailable", zap.Error(err), zap.String("path", registryPath))
		registry = nil
	}

	handlers := api.NewHandlers(routingService, itemStore, upcClient, log)
	server, err := api.NewServer(handlers, registry, log)
	if err != nil {
		zapLog.Fatal("api setup failed", zap.Error(err))
	}

	httpServer := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      server.Mux(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.String("address", cfg.Server.Address))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("http server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	zapLog.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("graceful shutdown failed", zap.Error(err))
	}
	zapLog.Info("stopped")
}
