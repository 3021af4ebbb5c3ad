package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	kafkaGo "github.com/segmentio/kafka-go"
	"github.com/zvrva/retreatbooking/config"
	"github.com/zvrva/retreatbooking/internal/app"
	"github.com/zvrva/retreatbooking/internal/cache"
	"github.com/zvrva/retreatbooking/internal/domain"
	"github.com/zvrva/retreatbooking/internal/kafka"
	"github.com/zvrva/retreatbooking/internal/notify"
	"github.com/zvrva/retreatbooking/internal/repository"
	"github.com/zvrva/retreatbooking/internal/service/booking"
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

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic)
	defer consumer.Close()

	sender := notify.NewSender(logger)

	go func() {
		if err := consumer.Consume(ctx, func(ctx context.Context, msg kafkaGo.Message) error {
			var event kafka.NotificationEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				logger.Warn("decode notification event", zap.Error(err))
				return nil
			}
			return sender.Send(ctx, event)
		}); err != nil {
			logger.Warn("consumer stopped", zap.Error(err))
		}
	}()

	sweepTicker := time.NewTicker(time.Duration(cfg.Worker.SweepIntervalMinutes) * time.Minute)
	defer sweepTicker.Stop()

	for {
		select {
		case <-sweepTicker.C:
			resolved, err := bookingService.ExpireStaleCancellations(ctx)
			if err != nil {
				logger.Warn("cancellation sweep", zap.Error(err))
				continue
			}
			if len(resolved) > 0 {
				logger.Info("resolved stale cancellation requests", zap.Int("count", len(resolved)))
			}
		case <-ctx.Done():
			logger.Info("shutting down worker")
			return
		}
	}
}
