package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/pressly/goose/v3"

	"gatekeep/auth"
	"gatekeep/handlers"
	"gatekeep/migrations"
	"gatekeep/redact"
	"gatekeep/store"
)

func main() {
	// Load environment variables
	if os.Getenv("APP_ENV") != "production" {
		_ = godotenv.Load()
	}

	logger := redact.NewLogger(os.Stdout, redact.DefaultFields)
	logger.Info("environment", "app_env", os.Getenv("APP_ENV"))

	ctx := context.Background()

	var st store.UserStore
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		if err := runMigrations(ctx, dsn); err != nil {
			logger.Error("migrations failed", "error", err)
			os.Exit(1)
		}

		pool, err := pgxpool.New(ctx, dsn)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		if err := pool.Ping(ctx); err != nil {
			logger.Error("failed to ping database", "error", err)
			os.Exit(1)
		}

		st = store.NewPostgres(pool)
	} else {
		logger.Warn("DATABASE_URL not set, using in-memory store")
		st = store.NewMemory()
	}

	a := auth.New(st)

	// Set up the HTTP server and handlers
	mux := http.NewServeMux()

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		handlers.Home(w, r)
	})
	mux.HandleFunc("/users", func(w http.ResponseWriter, r *http.Request) {
		handlers.RegisterUser(w, r, a, logger)
	})
	mux.HandleFunc("/sessions", func(w http.ResponseWriter, r *http.Request) {
		handlers.Sessions(w, r, a, logger)
	})
	mux.HandleFunc("/profile", func(w http.ResponseWriter, r *http.Request) {
		handlers.Profile(w, r, a, logger)
	})
	mux.HandleFunc("/reset_password", func(w http.ResponseWriter, r *http.Request) {
		handlers.ResetPassword(w, r, a, logger)
	})

	addr := os.Getenv("ADDR")
	if addr == "" {
		addr = ":8080"
	}

	logger.Info("starting server", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func runMigrations(ctx context.Context, dsn string) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("db open error: %w", err)
	}
	defer db.Close()

	goose.SetBaseFS(migrations.Migrations)

	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}

	return nil
}
