package main

import (
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"time"

	"database/sql"

	"github.com/gorilla/mux"
	"github.com/inferno/inferno-bank/internal/config"
	"github.com/inferno/inferno-bank/internal/handler"
	"github.com/inferno/inferno-bank/internal/integrations/userdir"
	"github.com/inferno/inferno-bank/internal/metrics"
	"github.com/inferno/inferno-bank/internal/middleware"
	"github.com/inferno/inferno-bank/internal/notification"
	"github.com/inferno/inferno-bank/internal/queue"
	"github.com/inferno/inferno-bank/internal/repository"
	"github.com/inferno/inferno-bank/internal/service"
	"github.com/inferno/inferno-bank/internal/storage"
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

	var avatars service.AvatarStore
	if store, err := storage.NewAvatarStore(cfg.ObjectStoreEndpoint, cfg.ObjectStoreAccessKey,
		cfg.ObjectStoreSecretKey, cfg.AvatarBucket, cfg.ObjectStoreUseSSL, logger); err != nil {
		logger.Warnf("Avatar storage unavailable: %v", err)
	} else {
		avatars = store
	}

	userSvc := service.NewUserService(repo, avatars, sender, cfg.JWTSecret, logger)

	// Metrics and queue producer
	registry := metrics.NewRegistry()
	producerMetrics := queue.NewProducerMetrics(registry)

	var publisher queue.Publisher
	if producer, err := queue.NewSyncProducer(cfg.KafkaBrokers, logger, producerMetrics); err != nil {
		logger.Warnf("Kafka producer unavailable, card issuance disabled: %v", err)
	} else {
		publisher = producer
		defer producer.Close()
	}

	h := handler.NewHandler(cardSvc, userSvc, publisher, cfg.CardRequestTopic, sender, logger)

	// Setup router
	r := mux.NewRouter()
	r.Use(middleware.MetricsMiddleware)
	// Public routes
	r.HandleFunc("/register", h.Register).Methods("POST")
	r.HandleFunc("/login", h.Login).Methods("POST")
	r.HandleFunc("/users/profile/{uuid}", h.GetProfile).Methods("GET")
	r.HandleFunc("/health", h.Health).Methods("GET")
	r.Handle("/metrics", metrics.Handler(registry)).Methods("GET")
	// Protected routes
	authRouter := r.PathPrefix("/").Subrouter()
	authRouter.Use(middleware.AuthMiddleware(cfg))
	authRouter.HandleFunc("/users/profile/{uuid}", h.UpdateProfile).Methods("PUT")
	authRouter.HandleFunc("/users/profile/{uuid}/avatar", h.UploadAvatar).Methods("POST")
	authRouter.HandleFunc("/cards", h.CreateCard).Methods("POST")
	authRouter.HandleFunc("/cards/activate", h.ActivateCards).Methods("POST")

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	logger.Infof("Starting server on %s", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("Server failed: %v", err)
	}
}
