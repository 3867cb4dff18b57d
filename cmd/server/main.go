package main

import (
	"context"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ecoclean/backend/internal/config"
	"github.com/ecoclean/backend/internal/handlers"
	appMiddleware "github.com/ecoclean/backend/internal/middleware"
	"github.com/ecoclean/backend/internal/services"
	"github.com/ecoclean/backend/internal/storage"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	// Persistent store: Mongo when configured, JSON files otherwise.
	var store storage.Store
	if cfg.MongoURI != "" {
		mongoStore, err := storage.NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			log.Fatalf("Failed to connect to MongoDB: %v", err)
		}
		defer mongoStore.Close(ctx)
		store = mongoStore
	} else {
		jsonStore, err := storage.NewJSONStore(cfg.DataDir)
		if err != nil {
			log.Fatalf("Failed to open data directory: %v", err)
		}
		store = jsonStore
	}

	// Leaderboard rank snapshot (optional).
	var ranks *storage.RankSnapshot
	if cfg.RedisAddr != "" {
		var err error
		ranks, err = storage.NewRankSnapshot(cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			log.Printf("Warning: Redis unavailable, leaderboard trend disabled: %v", err)
		} else {
			defer ranks.Close()
		}
	}

	// SafeSearch screening (optional).
	var screener *services.SafeSearchScreener
	if cfg.SafeSearchEnabled {
		var err error
		screener, err = services.NewSafeSearchScreener(ctx)
		if err != nil {
			log.Printf("Warning: SafeSearch unavailable, screening disabled: %v", err)
		}
	}

	// Services
	userService := services.NewUserService(store, cfg.AdminEmail, cfg.AdminPassword)
	submissionService := services.NewSubmissionService(store)
	verifyService := services.NewVerifyService(cfg.ClassifierEndpoint, cfg.ClassifierAPIKey)
	progressionService := services.NewProgressionService(userService)
	leaderboardService := services.NewLeaderboardService(userService, ranks)

	if err := userService.Seed(ctx); err != nil {
		log.Fatalf("Failed to seed users: %v", err)
	}
	if err := submissionService.Seed(ctx); err != nil {
		log.Fatalf("Failed to seed submissions: %v", err)
	}

	// Handlers
	authHandler := handlers.NewAuthHandler(userService, cfg.JWTSecret, cfg.JWTExpiration)
	scanHandler := handlers.NewScanHandler(submissionService, userService, verifyService, progressionService)
	submissionHandler := handlers.NewSubmissionHandler(submissionService, userService, verifyService, progressionService, screener)
	leaderboardHandler := handlers.NewLeaderboardHandler(leaderboardService)
	adminHandler := handlers.NewAdminHandler(submissionService, userService, verifyService)

	// Create router
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Public auth routes
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(appMiddleware.JWTAuth(cfg.JWTSecret))

			r.Get("/auth/me", authHandler.Me)
			r.Put("/auth/profile", authHandler.UpdateProfile)

			// Verified-bin directory
			r.Get("/bins", submissionHandler.ListBins)
			r.Get("/bins/{binId}/map-link", submissionHandler.BinMapLink)

			// Disposal flow
			r.Post("/scan/decode", scanHandler.DecodeBin)
			r.Post("/scan/geofence", scanHandler.Geofence)
			r.Post("/scan/disposal", scanHandler.Disposal)

			// Report and suggest flows
			r.Post("/reports", submissionHandler.Report)
			r.Post("/bins/suggest", submissionHandler.SuggestBin)

			r.Get("/leaderboard", leaderboardHandler.List)

			// Admin routes
			r.Route("/admin", func(r chi.Router) {
				r.Use(appMiddleware.RequireAdmin)

				r.Get("/submissions", adminHandler.ListSubmissions)
				r.Post("/submissions/{submissionId}/approve", adminHandler.Approve)
				r.Post("/submissions/{submissionId}/reject", adminHandler.Reject)
				r.Put("/bins/{binId}/location", adminHandler.RelocateBin)
				r.Post("/bins", adminHandler.CreateBin)
				r.Get("/bins/{binId}/qr", adminHandler.BinQR)
				r.Get("/stats", adminHandler.Stats)
			})
		})
	})

	log.Printf("EcoClean API server starting on %s", cfg.ServerAddress)
	if err := http.ListenAndServe(cfg.ServerAddress, r); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
