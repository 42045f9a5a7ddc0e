package main

import (
	"log"

	"user-profile-service/internal/config"
	"user-profile-service/internal/server"

	"github.com/joho/godotenv"
)

func main() {
	// Load .env (optional)
	if err := godotenv.Load(); err != nil {
		log.Println("UserProfile: No .env file found, relying on system env vars")
	}

	cfg := config.Load()

	srv := server.NewServer(cfg)

	log.Printf("🚀 User profile service HTTP server starting on %s", cfg.HTTPAddr)
	if err := srv.ListenAndServe(); err != nil {
		log.Fatalf("User profile service failed: %v", err)
	}
}
