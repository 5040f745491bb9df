package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/Bleutonik/lovirtual-backend/internal/api"
	"github.com/Bleutonik/lovirtual-backend/internal/auth"
	"github.com/Bleutonik/lovirtual-backend/internal/engine"
	"github.com/Bleutonik/lovirtual-backend/internal/presence"
	"github.com/Bleutonik/lovirtual-backend/internal/server"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func newPersister() (engine.Persister, string, error) {
	backend := envOr("LOVIRTUAL_BACKEND", "file")
	switch backend {
	case "file":
		dataDir := envOr("LOVIRTUAL_DATA_DIR", "./data")
		p, err := engine.NewFilePersister(filepath.Join(dataDir, "lovirtual.json"))
		return p, backend, err
	case "sqlite":
		dbPath := envOr("LOVIRTUAL_DB_PATH", "./data/lovirtual.db")
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, backend, err
		}
		p, err := engine.NewSQLitePersister(dbPath)
		return p, backend, err
	default:
		return nil, backend, fmt.Errorf("unknown backend %q (want file or sqlite)", backend)
	}
}

func main() {
	fmt.Println("Starting LoVirtual backend...")

	// A missing .env is fine; the environment still applies.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: could not load .env: %v", err)
	}

	persister, backend, err := newPersister()
	if err != nil {
		log.Fatalf("Failed to initialize %s backend: %v", backend, err)
	}
	defer persister.Close()

	store, err := engine.NewStore(persister)
	if err != nil {
		log.Fatalf("Failed to load store: %v", err)
	}
	if err := engine.Seed(store); err != nil {
		log.Fatalf("Failed to seed store: %v", err)
	}
	fmt.Printf("Store ready on %s backend.\n", backend)

	ttl := auth.DefaultTokenTTL
	if raw := os.Getenv("LOVIRTUAL_TOKEN_TTL"); raw != "" {
		minutes, err := strconv.Atoi(raw)
		if err != nil || minutes <= 0 {
			log.Fatalf("LOVIRTUAL_TOKEN_TTL must be a positive number of minutes, got %q", raw)
		}
		ttl = time.Duration(minutes) * time.Minute
	}

	h := &api.Handler{
		Store:    store,
		Sessions: auth.NewSessions(ttl),
		Tracker:  presence.NewTracker(),
		Backend:  backend,
	}
	router := server.New(h)

	port := envOr("LOVIRTUAL_HTTP_PORT", "7100")
	srv := &http.Server{Addr: ":" + port, Handler: router}

	go func() {
		fmt.Printf("HTTP API listening on :%s\n", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	fmt.Println("\nShutdown signal received.")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Shutdown was not clean: %v", err)
	}
	fmt.Println("Bye.")
}
