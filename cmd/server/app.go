package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/calvinwijaya/hearts-be/internal/api"
	"github.com/calvinwijaya/hearts-be/internal/auth"
	"github.com/calvinwijaya/hearts-be/internal/config"
	"github.com/calvinwijaya/hearts-be/internal/db"
	"github.com/calvinwijaya/hearts-be/internal/game"
	"github.com/calvinwijaya/hearts-be/internal/log"
	"github.com/calvinwijaya/hearts-be/internal/notify"
	"github.com/calvinwijaya/hearts-be/internal/store"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

const resultQueueSize = 256

// run wires the server and blocks until ctx is cancelled.
func run(ctx context.Context, cfg *config.Config) error {
	users, err := openStore(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer users.Close(context.Background())
	log.Info("%s user store initialized", cfg.Store.Driver)

	verifier, err := auth.New(cfg.Auth.Mode, cfg.Auth.Secret)
	if err != nil {
		return err
	}

	results := newResultWriter(users, resultQueueSize)
	go results.Run(ctx)

	registry := notify.NewRegistry()
	pool := game.NewPool(game.Options{
		TurnTimeout: cfg.Game.TurnTimeout,
		PassGrace:   cfg.Game.PassGrace,
		TrickPause:  cfg.Game.TrickPause,
		Notifier:    notify.NewDispatcher(registry),
		OnRoundEnd:  results.Record,
		Connected: func(playerID int64) bool {
			_, ok := registry.Lookup(playerID)
			return ok
		},
	})

	hub := api.NewHub(pool, registry, users, verifier, []string{cfg.Server.FrontendURL})
	handlers := api.NewHandlers(users, pool, registry, hub)

	r := mux.NewRouter()
	handlers.RegisterRoutes(r)
	r.Use(api.LoggingMiddleware)

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{cfg.Server.FrontendURL},
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      c.Handler(r),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}

	log.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// openStore picks the user store for the configured driver.
func openStore(ctx context.Context, conf config.StoreConf) (store.UserStore, error) {
	switch conf.Driver {
	case "memory":
		return store.NewMemoryStore(), nil
	case db.SQLite, db.Postgres:
		database, err := db.Open(ctx, conf.Driver, conf.DSN)
		if err != nil {
			return nil, err
		}
		return store.NewDatabaseStore(database), nil
	case "mongo":
		return store.NewMongoStore(ctx, conf.Mongo)
	default:
		return nil, fmt.Errorf("unknown store driver %q", conf.Driver)
	}
}
