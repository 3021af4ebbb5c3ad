package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/zvrva/retreatbooking/api"
	"github.com/zvrva/retreatbooking/config"
	"github.com/zvrva/retreatbooking/internal/app"
	"github.com/zvrva/retreatbooking/internal/bootstrap"
	"github.com/zvrva/retreatbooking/internal/cache"
	"github.com/zvrva/retreatbooking/internal/domain"
	"github.com/zvrva/retreatbooking/internal/kafka"
	"github.com/zvrva/retreatbooking/internal/repository"
	"github.com/zvrva/retreatbooking/internal/service/booking"
	"github.com/zvrva/retreatbooking/internal/service/rooms"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := app.NewLogger(cfg.Env)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		logger.Fatal("connect postgres", zap.Error(err))
	}
	defer pool.Close()

	if cfg.Database.MigrationsPath != "" {
		migrator, err := app.NewMigrator(pool, cfg.Database.MigrationsPath)
		if err != nil {
			logger.Fatal("init migrator", zap.Error(err))
		}
		if err := migrator.Run(ctx); err != nil {
			logger.Fatal("apply migrations", zap.Error(err))
		}
		_ = migrator.Close()
	}

	calendar, err := domain.NewCalendar(cfg.Booking.Timezone)
	if err != nil {
		logger.Fatal("init calendar", zap.Error(err))
	}

	redisCache := cache.NewRedisCache(cfg.Redis,
		time.Duration(cfg.Booking.RoomsCacheTTL)*time.Second,
		time.Duration(cfg.Booking.BlockedDatesCacheTTL)*time.Second,
	)
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	bookingRepo := repository.NewBookingRepository(pool)
	roomRepo := repository.NewRoomRepository(pool)
	adminDirectory := repository.NewAdminDirectory(pool)

	bookingService := booking.NewBookingService(
		bookingRepo,
		adminDirectory,
		redisCache,
		producer,
		cfg.Kafka.NotificationsTopic,
		calendar,
		logger,
		booking.WithCancellationTTL(time.Duration(cfg.Worker.CancellationTTLHours)*time.Hour),
	)
	roomService := rooms.NewRoomService(roomRepo, redisCache)

	router := bootstrap.NewRouter(cfg,
		api.NewBookingHandler(bookingService),
		api.NewRoomHandler(roomService, bookingService),
	)

	if err := bootstrap.Run(ctx, cfg, logger, router); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
