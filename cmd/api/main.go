package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"referral-backend/cmd"
	"referral-backend/internal/analytics"
	"referral-backend/internal/api"
	"referral-backend/internal/assistant"
	"referral-backend/internal/auth"
	"referral-backend/internal/database"
)

type APIConfig struct {
	DatabaseURL string        `env:"DATABASE_URL" envDefault:"referral-backend.db"`
	APIPort     string        `env:"API_PORT" envDefault:"8001"`
	JWTSecret   string        `env:"JWT_SECRET,notEmpty,required"`
	SessionTTL  time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	OpenAIModel string        `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
}

func main() {
	log.Println("Starting API Server...")

	cmd.LoadEnvFile()

	var cfg APIConfig
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("error parsing config: %v", err)
	}

	db, err := database.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	sessions := auth.NewSessions(cfg.JWTSecret, cfg.SessionTTL)
	aggregator := analytics.NewAggregator(db)
	asst := assistant.NewAssistant(
		assistant.NewConversationStore(),
		assistant.NewOpenAI(cfg.OpenAIModel),
		aggregator,
	)

	r := chi.NewRouter()

	// Middleware
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)                    // Log requests
	r.Use(middleware.Recoverer)                 // Recover from panics
	r.Use(middleware.Timeout(60 * time.Second)) // Set request timeout

	authService := api.NewAuthService(db, sessions)
	crmService := api.NewCRMService(db)
	analyticsService := api.NewAnalyticsService(db, aggregator)
	assistantService := api.NewAssistantService(db, asst)

	r.Route("/api", func(r chi.Router) {
		authService.AddRoutes(r)

		r.Group(func(r chi.Router) {
			r.Use(sessions.Middleware)
			authService.AddProtectedRoutes(r)
			crmService.AddRoutes(r)
			analyticsService.AddRoutes(r)
			assistantService.AddRoutes(r)
		})
	})

	server := &http.Server{
		Addr:    ":" + cfg.APIPort,
		Handler: r,
	}

	// Goroutine for graceful shutdown
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Println("Shutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			log.Fatalf("Server forced to shutdown: %v", err)
		}
	}()

	log.Printf("API server listening on port %s", cfg.APIPort)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Could not listen on %s: %v\n", cfg.APIPort, err)
	}

	log.Println("Server stopped.")
}
