package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ignite/contacthub/internal/api"
	"github.com/ignite/contacthub/internal/config"
	"github.com/ignite/contacthub/internal/repository/postgres"
	"github.com/ignite/contacthub/internal/service/contact"
	"github.com/ignite/contacthub/internal/service/contactlist"
	"github.com/ignite/contacthub/internal/service/customfield"
	"github.com/ignite/contacthub/internal/service/imports"
	"github.com/ignite/contacthub/internal/service/membership"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/redis/go-redis/v9"
)

// checkPortAvailable verifies that the target port is not already in use.
// This prevents confusion from stale processes occupying the port.
func checkPortAvailable(host string, port int) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("port %d is already in use (addr %s): %v", port, addr, err)
	}
	ln.Close()
	return nil
}

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	cfg, err := config.LoadFromEnv(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if os.Getenv("DATABASE_URL") != "" {
		log.Println("[config] DATABASE_URL env override active")
	}

	if err := checkPortAvailable(cfg.Server.Host, cfg.Server.Port); err != nil {
		log.Fatalf("Pre-flight check FAILED: %v", err)
	}

	// Connect to PostgreSQL
	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)

	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelPing()
	if err := db.PingContext(pingCtx); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}
	log.Println("[main] Connected to PostgreSQL")

	// Redis backs the dashboard stats cache. The server runs without it,
	// every stats request just hits the database.
	var statsCache *contactlist.StatsCache
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Printf("[main] Redis unavailable (%v), stats caching disabled", err)
	} else {
		statsCache = contactlist.NewStatsCache(rdb)
		log.Printf("[main] Connected to Redis at %s", cfg.Redis.Addr)
	}

	// Wire repositories and services
	fieldSvc := customfield.NewService(postgres.NewCustomFieldRepo(db))
	svcs := api.Services{
		Lists:    contactlist.NewService(postgres.NewListRepo(db), statsCache),
		Contacts: contact.NewService(postgres.NewContactRepo(db), fieldSvc),
		Members:  membership.NewService(postgres.NewMembershipRepo(db)),
		Fields:   fieldSvc,
		Imports:  imports.NewService(postgres.NewImportRepo(db)),
	}

	server := api.NewServer(cfg.Server, cfg.CORS, svcs)

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[main] Listening on %s", cfg.Server.Addr())
		errCh <- server.ListenAndServe(cfg.Server.Addr())
	}()

	// Graceful shutdown on SIGINT/SIGTERM
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		log.Fatalf("Server error: %v", err)
	case sig := <-sigCh:
		log.Printf("[main] Received %s, shutting down", sig)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("[main] Shutdown error: %v", err)
	}
	log.Println("[main] Server stopped")
}
