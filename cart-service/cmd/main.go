package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fjod/kanap/cart-service/internal/catalog"
	"github.com/fjod/kanap/cart-service/internal/config"
	carthttp "github.com/fjod/kanap/cart-service/internal/http"
	"github.com/fjod/kanap/cart-service/internal/manager"
	"github.com/fjod/kanap/cart-service/internal/metrics"
	"github.com/fjod/kanap/cart-service/internal/poller"
	"github.com/fjod/kanap/cart-service/internal/storage"
	"github.com/fjod/kanap/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zlog, err := logger.New(cfg.LogLevel, cfg.LogDevelopment)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	zap.ReplaceGlobals(zlog)

	os.Exit(exitCode(zlog, run(cfg, zlog)))
}

// exitCode logs err and flushes the logger before the process exits.
func exitCode(zlog *zap.Logger, err error) int {
	code := 0
	if err != nil {
		zlog.Error("cart service failed", zap.Error(err))
		code = 1
	}
	_ = zlog.Sync()
	return code
}

func run(cfg config.Config, zlog *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Redis
	var redisClient *redis.Client
	if cfg.UsesRedis() {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       0,
		})
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis connection failed: %w", err)
		}
		zlog.Info("connected to redis", zap.String("addr", cfg.RedisAddr))
	}

	// Catalog
	httpCatalog := catalog.NewHTTPClient(cfg.CatalogURL, cfg.CatalogTimeout, zlog.Named("catalog"))
	var products catalog.Catalog
	switch cfg.CatalogSource {
	case config.CatalogSQLite:
		mirror, err := openMirror(ctx, cfg, httpCatalog, zlog)
		if err != nil {
			return err
		}
		defer mirror.Close()
		products = mirror
	default:
		products = catalog.NewCached(httpCatalog, catalog.NewRedisCache(redisClient), zlog.Named("catalog"))
	}

	// Cart persistence
	opts := manager.Options{
		Logger:  zlog,
		Metrics: metrics.NewCartMetrics(reg),
	}
	switch cfg.CartBackend {
	case manager.BackendDocument:
		mongoDB, err := manager.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName)
		if err != nil {
			return err
		}
		defer mongoDB.Client().Disconnect(context.Background())
		if err := manager.CreateIndexes(ctx, mongoDB); err != nil {
			return err
		}
		opts.Mongo = mongoDB
		zlog.Info("connected to mongodb", zap.String("database", cfg.MongoDBName))
	default:
		if cfg.CartStore == config.StoreRedis {
			opts.Store = storage.NewRedisStore(redisClient, cfg.CartTTL)
		} else {
			mem := storage.NewMemoryStore()
			defer mem.Close()
			opts.Store = mem
		}
	}
	managers := manager.NewFactory(cfg.CartBackend, opts)

	deps := carthttp.Deps{
		Managers: managers,
		Catalog:  products,
		Orders:   httpCatalog,
		Metrics:  metrics.NewServerMetrics(reg),
		Gatherer: reg,
		Logger:   zlog.Named("http"),
		Timeout:  cfg.RequestTimeout,
	}
	// Order events
	if len(cfg.KafkaBrokers) > 0 {
		publisher := poller.NewPublisher(cfg.KafkaOrdersTopic, cfg.KafkaBrokers...)
		defer publisher.Close()
		deps.Events = publisher

		p := poller.NewPoller(managers, zlog.Named("poller"), cfg.KafkaOrdersTopic, cfg.KafkaBrokers...)
		defer p.Close()
		go p.Run(ctx)
		zlog.Info("order poller started", zap.Strings("brokers", cfg.KafkaBrokers))
	}

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      carthttp.NewRouter(deps),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		zlog.Info("cart service listening",
			zap.String("port", cfg.HTTPPort),
			zap.String("backend", cfg.CartBackend.String()),
			zap.String("catalog", cfg.CatalogSource))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	zlog.Info("shutting down cart service")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	zlog.Info("cart service stopped")
	return nil
}

// openMirror prepares the SQLite catalog and refreshes it from the API. A
// failed refresh keeps the previous copy.
func openMirror(ctx context.Context, cfg config.Config, src catalog.Lister, zlog *zap.Logger) (*catalog.SQLiteCatalog, error) {
	mirror, err := catalog.NewSQLiteCatalog(cfg.CatalogSQLitePath)
	if err != nil {
		return nil, err
	}
	if err := mirror.RunMigrations(); err != nil {
		mirror.Close()
		return nil, err
	}

	n, err := catalog.Mirror(ctx, src, mirror)
	if err != nil {
		zlog.Warn("catalog refresh failed, serving the local copy",
			zap.String("path", cfg.CatalogSQLitePath), zap.Error(err))
	} else {
		zlog.Info("catalog mirrored", zap.Int("products", n), zap.String("path", cfg.CatalogSQLitePath))
	}
	return mirror, nil
}
