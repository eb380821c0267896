// cmd/main.go is the application entry point.
// It wires together all layers and starts the HTTP server.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"eventgate/internal/auth"
	"eventgate/internal/config"
	"eventgate/internal/database"
	"eventgate/internal/handler"
	"eventgate/internal/repository"
	"eventgate/internal/security"
	"eventgate/internal/service"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	loc, err := cfg.Location()
	if err != nil {
		log.Fatalf("timezone %q: %v", cfg.Timezone, err)
	}

	// ── 1. Connect to PostgreSQL and apply the schema ─────────────────────
	pool, err := database.NewPool(ctx, cfg.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer pool.Close()
	if err := database.Migrate(ctx, pool); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	log.Println("✓ Connected to PostgreSQL")

	// ── 2. Wire up layers ────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(pool)
	eventRepo := repository.NewEventRepository(pool)
	regRepo := repository.NewRegistrationRepository(pool)

	userSvc := service.NewUserService(userRepo)
	eventSvc := service.NewEventService(eventRepo, regRepo)
	regSvc := service.NewRegistrationService(regRepo, eventRepo)
	entrySvc := service.NewEntryService(regRepo, loc)

	if err := userSvc.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminName, cfg.AdminPassword); err != nil {
		log.Fatalf("bootstrap admin: %v", err)
	}

	sessions := auth.NewManager(cfg.JWTSecret, cfg.SessionTTL)
	h := handler.New(userSvc, eventSvc, regSvc, entrySvc, sessions)

	// Optional Redis-backed throttling for login and ticket scanning.
	throttle := func(next http.Handler) http.Handler { return next }
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()
		limiter := security.NewRateLimiter(rdb, cfg.RateLimit)
		throttle = limiter.Limit("throttle")
		log.Println("✓ Rate limiting enabled")
	}

	// ── 3. Build the router ───────────────────────────────────────────────
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer) // recover from panics, return 500
	r.Use(chimiddleware.RequestID) // attach request IDs
	r.Use(chimiddleware.RealIP)    // trust X-Forwarded-For
	r.Use(handler.Logger)          // structured access log
	r.Use(handler.CORS)            // permissive CORS for browser clients

	r.Get("/health", handler.HealthCheck)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(h.Authenticate)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.Signup)
			r.With(throttle).Post("/login", h.Login)
			r.With(handler.RequireAuth).Get("/me", h.Me)
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(handler.RequireAuth)
			r.Get("/", h.ListUsers)
			r.Post("/", h.Signup)
			r.Get("/{id}", h.GetUser)
			r.Put("/{id}", h.UpdateUser)
			r.Delete("/{id}", h.DeleteUser)
		})

		r.Route("/events", func(r chi.Router) {
			r.Get("/public", h.ListPublicEvents)
			r.Get("/public/{id}", h.GetEvent)

			r.Group(func(r chi.Router) {
				r.Use(handler.RequireAuth)
				r.Get("/my-events", h.ListMyEvents)
				r.Post("/", h.CreateEvent)
				r.Put("/{id}", h.UpdateEvent)
				r.Delete("/{id}", h.DeleteEvent)
				r.Get("/{id}/stats", h.EventStats)
			})
		})

		r.Route("/registrations", func(r chi.Router) {
			r.Use(handler.RequireAuth)
			r.Post("/", h.CreateRegistration)
			r.Get("/my", h.ListMyRegistrations)
			r.Get("/{id}", h.GetRegistration)
			r.Delete("/{id}", h.CancelRegistration)
			r.Put("/{id}/payment-proof", h.UploadPaymentProof)
			r.Put("/{id}/validate-payment", h.ValidatePayment)
			r.Get("/event/{eventId}", h.ListEventRegistrations)
			r.With(throttle).Post("/validate-entry", h.ValidateEntry)
		})
	})

	// ── 4. Start server with graceful shutdown ────────────────────────────
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("✓ Server listening on http://localhost:%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server…")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("graceful shutdown failed: %v", err)
	}
	log.Println("server stopped")
}
