package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	api "github.com/quizforge/quizforge/internal/api/http"
	"github.com/quizforge/quizforge/internal/auth"
	"github.com/quizforge/quizforge/internal/config"
	"github.com/quizforge/quizforge/internal/db"
	"github.com/quizforge/quizforge/internal/rbac"
	"github.com/quizforge/quizforge/internal/seed"
	"github.com/quizforge/quizforge/internal/session"
	"github.com/quizforge/quizforge/internal/store"
)

func main() {
	cfg := config.FromEnv()

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}
	st := store.NewSQLStore(dbh)

	// Bootstrap admin account.
	if err := auth.EnsureUser(dbh, cfg.AdminUser, "admin", cfg.AdminPassHash); err != nil {
		log.Fatalf("bootstrap admin: %v", err)
	}

	// Optional quiz fixtures.
	if cfg.SeedFile != "" {
		n, err := seed.LoadFile(ctx, st, cfg.SeedFile)
		if err != nil {
			log.Fatalf("seed %s: %v", cfg.SeedFile, err)
		}
		log.Printf("seeded %d quizzes from %s", n, cfg.SeedFile)
	}

	authSvc := auth.NewService(cfg.HMACSecret)
	registry := session.NewRegistry()

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/auth/login", auth.LoginHandler(authSvc, dbh))
	r.Post("/auth/register", auth.RegisterHandler(authSvc, dbh))

	// Protected API (JWT → role in context → RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))

		// Authoring (admin)
		pr.With(rbac.Require("quiz:create")).
			Post("/quizzes", api.CreateQuizHandler(st))
		pr.With(rbac.Require("quiz:delete")).
			Delete("/quizzes/{quizID}", api.DeleteQuizHandler(st))
		pr.With(rbac.Require("quiz:create")).
			Post("/quizzes/bulk-parse", api.BulkParseHandler())

		// Browsing
		pr.With(rbac.Require("quiz:view")).
			Get("/quizzes", api.ListQuizzesHandler(st))
		pr.With(rbac.Require("quiz:view")).
			Get("/quizzes/{quizID}", api.GetQuizHandler(st))

		// Quiz taking
		pr.With(rbac.Require("attempt:create")).
			Post("/quizzes/{quizID}/attempts", api.StartAttemptHandler(st, registry))
		pr.With(rbac.Require("attempt:drive")).
			Get("/attempts/{attemptID}", api.GetAttemptHandler(registry))
		pr.With(rbac.Require("attempt:drive")).
			Post("/attempts/{attemptID}/answer", api.AnswerHandler(registry))
		pr.With(rbac.Require("attempt:drive")).
			Post("/attempts/{attemptID}/next", api.NextHandler(registry))
		pr.With(rbac.Require("attempt:drive")).
			Post("/attempts/{attemptID}/previous", api.PreviousHandler(registry))
		pr.With(rbac.Require("attempt:drive")).
			Post("/attempts/{attemptID}/submit", api.SubmitAttemptHandler(registry))
		pr.With(rbac.Require("attempt:drive")).
			Delete("/attempts/{attemptID}", api.CloseAttemptHandler(registry))

		// Results
		pr.With(rbac.RequireAny("result:view-own", "result:view-all")).
			Get("/results", api.ListResultsHandler(st))
		pr.With(rbac.RequireAny("result:view-own", "result:view-all")).
			Get("/results/{resultID}", api.GetResultHandler(st))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	log.Printf("listening on %s (db=%s)", cfg.HTTPAddr, cfg.DBDriver)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}
