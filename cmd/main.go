package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"storefront/clientcore/internal/api"
	"storefront/clientcore/internal/config"
	"storefront/clientcore/internal/handler"
	"storefront/clientcore/internal/logger"
	"storefront/clientcore/internal/metrics"
	"storefront/clientcore/internal/migration"
	"storefront/clientcore/internal/model"
	"storefront/clientcore/internal/notify"
	"storefront/clientcore/internal/repository"
	"storefront/clientcore/internal/session"
	"storefront/clientcore/internal/store"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// 2. Initialize logger
	zl := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cfg.Log.Output})
	defer zl.Sync()

	// 3. Initialize durable key-value store
	var kv repository.KVStore
	switch cfg.Storage.Backend {
	case "redis":
		redisClient, err := config.NewRedisClient(cfg.Database.Redis)
		if err != nil {
			zl.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer redisClient.Close()
		kv = repository.NewRedisKVStore(redisClient)
		zl.Info("using Redis key-value store")
	case "postgres":
		db, err := config.NewPostgresDB(cfg.Database.Postgres)
		if err != nil {
			zl.Fatal("failed to connect to postgres", zap.Error(err))
		}
		if cfg.Database.Postgres.AutoMigrate {
			if err := model.AutoMigrate(db); err != nil {
				zl.Fatal("failed to auto-migrate", zap.Error(err))
			}
			zl.Info("database migration completed")
		}
		kv = repository.NewPGKVStore(db)
		zl.Info("using Postgres key-value store")
	case "memory":
		kv = repository.NewMemoryKVStore()
		zl.Info("using in-memory key-value store")
	default:
		zl.Fatal("unknown storage backend", zap.String("backend", cfg.Storage.Backend))
	}
	kv = repository.Namespaced(kv, cfg.Storage.Namespace)

	// 4. Metrics
	m := metrics.New()

	// 5. Storefront API client
	client := api.New(api.Config{
		BaseURL:       cfg.API.BaseURL,
		Timeout:       cfg.API.Timeout,
		RateLimit:     cfg.API.RateLimit,
		RateBurst:     cfg.API.RateBurst,
		ClientVersion: cfg.API.ClientVersion,
	}, kv, api.WithLogger(zl.Named("api")), api.WithObserver(m))

	// 6. Notifications: logged, and buffered for the view layer
	recorder := notify.NewRecorder(64)
	notifier := notify.Multi{notify.NewLogNotifier(zl), recorder}

	// 7. Central store
	ctx := context.Background()
	st := store.New(ctx, store.Deps{
		KV:       kv,
		Auth:     api.NewAuthAPI(client),
		Products: api.NewProductAPI(client),
		Orders:   api.NewOrderAPI(client),
		Notifier: notifier,
		Logger:   zl,
		Metrics:  m,
		PageSize: cfg.Catalog.PageSize,
	})
	client.OnUnauthorized(st.ForceLogout)

	// 8. Legacy migration and session restore, neither is fatal
	startupCtx, cancelStartup := context.WithTimeout(ctx, cfg.API.Timeout)
	res, outcome := session.Startup(startupCtx,
		migration.NewReconciler(kv, st, zl, m),
		session.NewBootstrapper(kv, st, zl),
	)
	cancelStartup()
	zl.Info("startup finished",
		zap.String("migration", string(res.Outcome)),
		zap.String("session", string(outcome)),
	)

	// 9. Setup router
	router := handler.SetupRouter(cfg, zl, m.Handler(), st.CurrentUser,
		handler.NewCartHandler(st),
		handler.NewFavoritesHandler(st),
		handler.NewAuthHandler(st),
		handler.NewOrderHandler(st),
		handler.NewProductHandler(st),
		handler.NewNotificationHandler(recorder),
	)

	// 10. Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
	}

	// 11. Start server with graceful shutdown
	go func() {
		zl.Info("server starting", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zl.Fatal("server failed", zap.Error(err))
		}
	}()

	// 12. Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zl.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zl.Fatal("server forced to shutdown", zap.Error(err))
	}
	st.Wait()
	zl.Info("server exited gracefully")
}
