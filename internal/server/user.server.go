package server

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"user-profile-service/internal/config"
	"user-profile-service/internal/handler"
	"user-profile-service/internal/repository"
	"user-profile-service/internal/router"
	"user-profile-service/internal/usecase"
	"user-profile-service/pkg/id"
	"user-profile-service/pkg/jwtutil"
	"user-profile-service/pkg/kafka"
	"user-profile-service/pkg/middleware"
)

func NewServer(cfg config.AppConfig) *http.Server {
	db, err := config.ConnectDB()
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	sf, err := id.NewSnowflake(cfg.SnowflakeNode)
	if err != nil {
		log.Fatalf("failed to init snowflake: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
		DB:       0,
	})

	verifier := jwtutil.LoadAndBuild(jwtutil.JWTConfig{
		PubPath:  cfg.JWTPublicKeyPath,
		Issuer:   cfg.JWTIssuer,
		Audience: cfg.JWTAudience,
	})
	auth := middleware.NewAuthMiddleware(verifier)

	profileRepo := repository.NewProfileRepository(db)
	userUC := usecase.NewUserUsecase(profileRepo, sf)
	userHandler := handler.NewUserHandler(userUC)

	consumer, err := kafka.NewUserEventConsumer(cfg.KafkaBrokers, cfg.KafkaGroupID, userUC)
	if err != nil {
		log.Fatal("Failed to create Kafka consumer:", err)
	}

	// Long-running consumer context, cancelled only on shutdown signal.
	bgCtx, bgCancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Println("🛑 Shutdown signal received, initiating graceful shutdown...")

		bgCancel()

		log.Println("Stopping Kafka consumer...")
		if err := consumer.Close(); err != nil {
			log.Printf("Error closing consumer: %v", err)
		}

		log.Println("Closing Redis connection...")
		if err := rdb.Close(); err != nil {
			log.Printf("Error closing Redis: %v", err)
		}

		log.Println("Closing database connection...")
		db.Close()

		log.Println("✅ Graceful shutdown complete")
		time.Sleep(100 * time.Millisecond)
		os.Exit(0)
	}()

	go func() {
		log.Println("Starting user event consumer...")
		if err := consumer.Start(bgCtx); err != nil {
			log.Printf("User event consumer error: %v", err)
		}
	}()

	r := chi.NewRouter()
	router.SetupRoutes(r, userHandler, auth, rdb)

	return &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}
}
