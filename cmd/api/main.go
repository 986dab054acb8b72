package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"spimex/config"
	"spimex/internal/cache"
	"spimex/internal/handler"
	"spimex/internal/repository"
	"spimex/internal/router"
	"spimex/internal/service"
)

func main() {
	cfg := config.Load()

	logger := logrus.New()
	logger.SetLevel(logrus.InfoLevel)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	migrateFlag := flag.Bool("migrate", false, "Run database migrations before serving")
	flag.Parse()

	if *migrateFlag {
		sqlDB, err := db.DB()
		if err != nil {
			logger.Fatalf("Failed to get sql.DB: %v", err)
		}
		if err := goose.SetDialect("postgres"); err != nil {
			logger.Fatalf("Goose: failed to set dialect: %v", err)
		}
		logger.Info("Running database migrations...")
		if err := goose.Up(sqlDB, "migrations"); err != nil {
			logger.Fatalf("Goose migration failed: %v", err)
		}
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Fatalf("Invalid REDIS_URL: %v", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		logger.Fatalf("Failed to connect to redis: %v", err)
	}

	store, err := cache.NewStore(rdb, cfg.CacheTZ, cfg.CacheResetHour, cfg.CacheResetMinute)
	if err != nil {
		logger.Fatalf("Cache store: %v", err)
	}

	tradingRepo := repository.NewGormTradingRepository(db)
	tradingService := service.NewTradingService(tradingRepo, store, cfg.MaxLastDates, cfg.MaxDynamicsSpanDays)
	tradingHandler := handler.NewTradingHandler(tradingService, cfg.DefaultLastDates)

	engine := router.NewRouter(&router.Config{
		TradingHandler: tradingHandler,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
	})

	scheduler, err := newFlushScheduler(cfg, store, logger)
	if err != nil {
		logger.Fatalf("Flush scheduler: %v", err)
	}
	scheduler.Start()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.ServerPort),
		Handler: engine,
	}
	go func() {
		logger.Infof("Listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("HTTP shutdown: %v", err)
	}
	<-scheduler.Stop().Done()
	if err := store.Close(); err != nil {
		logger.Errorf("Redis close: %v", err)
	}
}

// newFlushScheduler wires the daily cache reset: the whole cache
// database is flushed at the cutoff, in the cache time zone.
func newFlushScheduler(cfg *config.Config, store *cache.Store, logger *logrus.Logger) (*cron.Cron, error) {
	loc, err := time.LoadLocation(cfg.CacheTZ)
	if err != nil {
		return nil, fmt.Errorf("unknown time zone %q: %w", cfg.CacheTZ, err)
	}
	scheduler := cron.New(cron.WithLocation(loc))
	spec := fmt.Sprintf("%d %d * * *", cfg.CacheResetMinute, cfg.CacheResetHour)
	_, err = scheduler.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := store.FlushAll(ctx); err != nil {
			logger.Errorf("Daily cache flush failed: %v", err)
			return
		}
		logger.Info("Daily cache flush done")
	})
	if err != nil {
		return nil, err
	}
	return scheduler, nil
}
