package main

import (
	"context"
	"log"
	"net/http"
	"time"

	api "github.com/quizhub/quizhub/internal/api/http"
	"github.com/quizhub/quizhub/internal/audit"
	"github.com/quizhub/quizhub/internal/auth"
	"github.com/quizhub/quizhub/internal/config"
	"github.com/quizhub/quizhub/internal/db"
	"github.com/quizhub/quizhub/internal/quiz"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
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
	store := quiz.NewSQLStore(dbh, nil)

	// --- Auth ---
	authSvc := auth.NewAuthService(cfg.AuthHMACSecret, cfg.TokenTTL)
	accounts := auth.NewAccounts(store, authSvc)

	// --- Session manager ---
	session := quiz.NewSession(store, store, store, nil, audit.NewEventLog(dbh))

	if err := seed(ctx, cfg, store, store); err != nil {
		log.Fatalf("seed: %v", err)
	}

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	origins := cfg.CORSOriginsOffline
	if cfg.Mode == config.ModeOnline {
		origins = cfg.CORSOriginsOnline
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	api.Mount(r, api.Deps{
		Session:  session,
		Quizzes:  store,
		Users:    store,
		Accounts: accounts,
		Auth:     authSvc,
	})

	log.Printf("listening on %s (mode=%s, db=%s)", cfg.HTTPAddr, cfg.Mode, cfg.DBDriver)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}
