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
	"gorm.io/gorm"

	"ocorrencias-ponto/backend/config"
	"ocorrencias-ponto/backend/internal/api/handler"
	"ocorrencias-ponto/backend/internal/api/router"
	"ocorrencias-ponto/backend/internal/classify"
	"ocorrencias-ponto/backend/internal/recordstore"
	"ocorrencias-ponto/backend/internal/repository"
	"ocorrencias-ponto/backend/internal/service"
	"ocorrencias-ponto/backend/pkg/database"
	"ocorrencias-ponto/backend/pkg/identity"
	"ocorrencias-ponto/backend/pkg/jwt"
	applogger "ocorrencias-ponto/backend/pkg/logger"
	"ocorrencias-ponto/backend/pkg/redis"
	"ocorrencias-ponto/backend/pkg/supabase"
)

func main() {
	// 1. configuration
	cfg, err := config.Load(os.Getenv("OCORRENCIAS_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	// 2. logger
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting",
		zap.Int("port", cfg.Server.Port),
		zap.String("backend_driver", cfg.Backend.Driver),
		zap.String("auth_provider", cfg.Auth.Provider),
		zap.String("log_level", cfg.Log.Level),
	)

	// 3. row store
	var (
		rowStore repository.RowStore
		sbClient *supabase.Client
		db       *gorm.DB
	)
	switch cfg.Backend.Driver {
	case config.DriverPostgres:
		db, err = database.NewDB(&cfg.Database, logger)
		if err != nil {
			logger.Fatal("database connection failed", zap.Error(err))
		}
		if cfg.Database.AutoMigrate {
			sqlDB, err := db.DB()
			if err != nil {
				logger.Fatal("get sql.DB failed", zap.Error(err))
			}
			if err := database.RunMigrations(sqlDB, logger); err != nil {
				logger.Fatal("database migration failed", zap.Error(err))
			}
		}
		rowStore = repository.NewGormStore(db)
	default:
		sbClient = supabase.NewClient(cfg.Backend.URL, cfg.Backend.AnonKey, cfg.Backend.Timeout)
		rowStore = repository.NewPostgRESTStore(sbClient)
	}
	repo := repository.NewRepository(rowStore, &cfg.Backend)

	// 4. Redis is optional: without it tokens cannot be revoked and rate limits are off
	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("redis unavailable, running without token blacklist and rate limits", zap.Error(err))
		rdb = nil
	}

	// 5. JWT
	jwtMgr := jwt.NewManager(&cfg.Auth)

	// 6. identity provider
	var provider identity.Provider
	switch cfg.Auth.Provider {
	case config.ProviderLocal:
		provider = identity.NewLocalProvider(cfg.Auth.LocalUsers)
	default:
		if sbClient == nil {
			sbClient = supabase.NewClient(cfg.Backend.URL, cfg.Backend.AnonKey, cfg.Backend.Timeout)
		}
		provider = identity.NewSupabaseProvider(sbClient, logger)
	}
	notifier := identity.NewNotifier()

	// 7. dataset; a failed first load leaves the service up and reporting 503
	store := recordstore.NewStore(repo, cfg.Backend.BatchSize, classify.NewRules(&cfg.Rules), logger)
	loadCtx, cancelLoad := context.WithTimeout(context.Background(), 5*time.Minute)
	if _, err := store.Refresh(loadCtx); err != nil {
		logger.Warn("initial dataset load failed, waiting for a manual refresh", zap.Error(err))
	}
	cancelLoad()

	// 8. Service → Handler
	svc := service.NewService(cfg, store, provider, notifier, jwtMgr, rdb, logger)

	var pinger handler.Pinger
	if rdb != nil {
		pinger = rdb
	}
	h := handler.NewHandler(svc, pinger)

	// 9. router
	engine := router.Setup(cfg, h, jwtMgr, rdb, logger)

	// 10. HTTP server with graceful shutdown
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // workbook exports of the full dataset
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("http server started", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("shutting down", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}

	if db != nil {
		if sqlDB, _ := db.DB(); sqlDB != nil {
			sqlDB.Close()
		}
	}
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("server stopped")
}
