package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/xavierca1/ligue-crm/internal/auth"
	"github.com/xavierca1/ligue-crm/internal/infra/database"
	"github.com/xavierca1/ligue-crm/internal/infra/http/handlers"
	"github.com/xavierca1/ligue-crm/internal/infra/http/middleware"
	"github.com/xavierca1/ligue-crm/internal/infra/queue"
	"github.com/xavierca1/ligue-crm/internal/ratelimit"
	"github.com/xavierca1/ligue-crm/internal/usecase"
)

func main() {
	godotenv.Load()

	db, err := database.NewDBConnection(os.Getenv("DATABASE_URL"))
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	// Realtime is optional: without a broker the API still works, clients
	// just refresh on their own.
	var notifier usecase.ChangeNotifier
	var rabbitMQ *queue.RabbitMQ
	if host := os.Getenv("RABBITMQ_HOST"); host != "" {
		rabbitMQ, err = queue.NewRabbitMQ(
			os.Getenv("RABBITMQ_USER"), os.Getenv("RABBITMQ_PASS"),
			host, os.Getenv("RABBITMQ_PORT"),
		)
		if err != nil {
			log.Fatal(err)
		}
		defer rabbitMQ.Conn.Close()
		defer rabbitMQ.Ch.Close()
		notifier = queue.NewNotifier(rabbitMQ.Ch)
	} else {
		log.Println("RABBITMQ_HOST not set, realtime notifications disabled")
	}

	// 1. Repositories
	leadRepo := database.NewLeadRepository(db)
	interactionRepo := database.NewInteractionRepository(db)

	// 2. Rate limiter: in-memory by default, Postgres-backed counters when
	// running more than one instance.
	var limiter ratelimit.Limiter
	if os.Getenv("RATE_LIMIT_BACKEND") == "postgres" {
		limiter = ratelimit.NewStoreLimiter(database.NewRateLimitStore(db))
	} else {
		memLimiter := ratelimit.NewMemoryLimiter()
		memLimiter.Start()
		defer memLimiter.Stop()
		limiter = memLimiter
	}

	verifier := auth.NewStaticVerifierFromEnv(os.Getenv("API_TOKENS"))

	// 3. UseCases
	leadUC := usecase.NewLeadUseCase(leadRepo, notifier)
	interactionUC := usecase.NewInteractionUseCase(interactionRepo, leadRepo)

	// 4. Handlers
	leadHandler := handlers.NewLeadHandler(leadUC)
	interactionHandler := handlers.NewInteractionHandler(interactionUC)
	importExportHandler := handlers.NewImportExportHandler(leadUC)
	healthHandler := handlers.NewHealthHandler(db, nil)
	if rabbitMQ != nil {
		healthHandler = handlers.NewHealthHandler(db, rabbitMQ.Conn)
	}

	// 5. Router
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"http://localhost:5173", "*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}))

	r.Get("/health", healthHandler.Handle)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(verifier))

		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(limiter, ratelimit.Standard))
			r.Post("/leads", leadHandler.Create)
			r.Get("/leads", leadHandler.List)
			r.Get("/leads/{id}", leadHandler.Get)
			r.Patch("/leads/{id}", leadHandler.Update)
			r.Delete("/leads/{id}", leadHandler.Delete)
			r.Post("/interactions", interactionHandler.Create)
			r.Get("/interactions", interactionHandler.List)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(limiter, ratelimit.Search))
			r.Get("/leads/search", leadHandler.Search)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(limiter, ratelimit.Bulk))
			r.Post("/leads/import", importExportHandler.Import)
			r.Get("/leads/export", importExportHandler.Export)
		})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{Addr: ":" + port, Handler: r}
	go func() {
		log.Printf("🔥 Server LigueCRM rodando na porta :%s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
