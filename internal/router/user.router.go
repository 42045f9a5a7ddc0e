package router

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"

	"user-profile-service/internal/handler"
	"user-profile-service/pkg/middleware"
)

func SetupRoutes(
	r chi.Router,
	h *handler.UserHandler,
	auth *middleware.AuthMiddleware,
	rdb *redis.Client,
) chi.Router {
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// ---------------- Public ----------------
	r.Get("/health", h.Health)

	// ---------------- Authenticated profile API ----------------
	r.Route("/api/users", func(api chi.Router) {
		api.Use(auth.RequireAuth())
		api.Use(middleware.RateLimiter(rdb, 100, time.Minute, time.Minute, "user_profile"))

		api.Get("/me", h.HandleMe)
		api.Post("/save", h.HandleSaveUser)
		api.Put("/{userId}", h.HandleUpdateUser)
	})

	return r
}
