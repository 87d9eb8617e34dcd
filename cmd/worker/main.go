package main

import (
	"context"
	"errors"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"database/sql"

	"github.com/inferno/inferno-bank/internal/config"
	"github.com/inferno/inferno-bank/internal/consumer"
	"github.com/inferno/inferno-bank/internal/integrations/userdir"
	"github.com/inferno/inferno-bank/internal/notification"
	"github.com/inferno/inferno-bank/internal/queue"
	"github.com/inferno/inferno-bank/internal/repository"
	"github.com/inferno/inferno-bank/internal/scheduler"
	"github.com/inferno/inferno-bank/internal/service"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logLevel, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	// Initialize database
	db, err := sql.Open("postgres", cfg.DBConn)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}

	// Initialize layers
	repo := repository.NewRepository(db)
	users := userdir.NewClient(cfg.UserServiceURL, cfg.UserServiceTimeout, logger)
	scores := rand.New(rand.NewSource(time.Now().UnixNano()))
	cardSvc := service.NewCardService(repo, users, scores, logger)
	sender := notification.NewSender(cfg, logger)
	userSvc := service.NewUserService(repo, nil, nil, cfg.JWTSecret, logger)

	// Pending-card reminder sweep
	reminder := scheduler.NewReminderJob(repo, userSvc, sender, logger)
	cronRunner, err := scheduler.Start(cfg.ReminderSchedule, reminder, logger)
	if err != nil {
		logger.Fatalf("Failed to start reminder scheduler: %v", err)
	}
	defer cronRunner.Stop()

	// Issuance queue consumer
	issuance := consumer.NewIssuanceHandler(cardSvc, userSvc, sender, logger)
	kafkaConsumer, err := queue.NewConsumer(cfg.KafkaBrokers, cfg.ConsumerGroup, logger)
	if err != nil {
		logger.Fatalf("Failed to create Kafka consumer: %v", err)
	}
	defer kafkaConsumer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Infof("Card worker consuming from %s", cfg.CardRequestTopic)
	if err := kafkaConsumer.Consume(ctx, []string{cfg.CardRequestTopic}, issuance); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatalf("Consumer failed: %v", err)
	}
	logger.Info("Card worker stopped")
}
