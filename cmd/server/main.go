package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/solace-app/solace/backend/internal/auth"
	"github.com/solace-app/solace/backend/internal/chat"
	"github.com/solace-app/solace/backend/internal/config"
	"github.com/solace-app/solace/backend/internal/handlers"
	"github.com/solace-app/solace/backend/internal/services"
	"github.com/solace-app/solace/backend/internal/store"
	"github.com/solace-app/solace/backend/internal/websocket"
)

func main() {
	// Load configuration from environment
	cfg := config.Load()

	// Open the durable store (transcript + users)
	db, err := store.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}

	// Identity resolution: token verification backed by the user store
	tokens := auth.NewTokenManager(cfg.JWTSecret)
	resolver := auth.NewResolver(tokens, db)

	// The coordination engine
	coordinator := chat.NewCoordinator(db, chat.Options{
		StoreTimeout:    cfg.StoreTimeout,
		HistoryLimit:    cfg.HistoryLimit,
		RateLimitBurst:  cfg.RateLimitBurst,
		RateLimitWindow: cfg.RateLimitWindow,
	})

	// Start background reaper for unclean disconnects
	reaper := services.NewReaper(coordinator, cfg.ReaperInterval)
	go reaper.Start()

	// Initialize handlers
	wsHandler := websocket.NewHandler(coordinator, resolver)
	historyHandler := handlers.NewHistoryHandler(db, cfg.HistoryLimit)
	presenceHandler := handlers.NewPresenceHandler(coordinator.Presence())

	// Set up router with middleware
	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)

	// CORS configuration - reads from CORS_ORIGINS env var
	// Format: comma-separated list of origins, e.g., "http://localhost:5173,https://solace.example.com"
	corsOrigins := getCorsOrigins()
	log.Printf("CORS allowed origins: %v", corsOrigins)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check endpoint
	r.Get("/health", handlers.HealthCheck)

	// Real-time connections
	r.Get("/ws", wsHandler.ServeWS)

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Get("/presence", presenceHandler.GetPresence)
		r.Route("/rooms", func(r chi.Router) {
			// Transcript endpoint for polling fallback
			r.Get("/{id}/messages", historyHandler.GetMessages)
		})
		if cfg.DevTokenEndpoint {
			log.Println("WARNING: dev token endpoint enabled at /api/auth/token")
			tokenHandler := handlers.NewTokenHandler(tokens, db)
			r.Post("/auth/token", tokenHandler.MintToken)
		}
	})

	// Start server
	addr := fmt.Sprintf(":%s", cfg.ServerPort)
	log.Printf("🚀 Solace backend starting on %s", addr)
	log.Fatal(http.ListenAndServe(addr, r))
}

// getCorsOrigins returns allowed CORS origins from environment or defaults
func getCorsOrigins() []string {
	originsEnv := os.Getenv("CORS_ORIGINS")
	if originsEnv == "" {
		// Default to localhost for development
		return []string{"http://localhost:5173", "http://localhost:3000"}
	}

	// Split comma-separated origins and trim whitespace
	origins := strings.Split(originsEnv, ",")
	for i, origin := range origins {
		origins[i] = strings.TrimSpace(origin)
	}
	return origins
}
