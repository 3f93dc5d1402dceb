package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chepyr/go-board-planner/internal/auth"
	"github.com/chepyr/go-board-planner/internal/config"
	"github.com/chepyr/go-board-planner/internal/db"
	"github.com/chepyr/go-board-planner/internal/handlers"
	"github.com/chepyr/go-board-planner/internal/notify"
	"github.com/chepyr/go-board-planner/internal/planner"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
	}

	dbConn := initDB(cfg)
	defer func() {
		if err := dbConn.Close(); err != nil {
			log.Errorf("Error closing database connection: %v", err)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	handler := initHandlers(ctx, cfg, dbConn)
	defer handler.RateLimiter.Stop()

	server := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: handler.Routes(),
	}
	startServer(server)
}

func initDB(cfg config.Config) *sql.DB {
	dbConn, err := db.Connect(cfg.DBDriver, cfg.DSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := db.Migrate(context.Background(), dbConn, cfg.DBDriver); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	return dbConn
}

func initHandlers(ctx context.Context, cfg config.Config, dbConn *sql.DB) *handlers.Handler {
	store := db.NewStore(dbConn)
	hub := notify.NewHub(nil)
	factories := []planner.ObserverFactory{hub.Observer}

	var relay *notify.RedisRelay
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("invalid REDIS_URL: %v", err)
		}
		relay = notify.NewRedisRelay(redis.NewClient(opts), cfg.RedisChannel, nil)
		factories = append(factories, relay.Observer)
	}
	workspaces := planner.NewWorkspaces(store, factories...)

	if relay != nil {
		// another instance changed this user's data: drop the cached
		// workspace and tell the local sockets
		go relay.Subscribe(ctx, func(userID uuid.UUID) {
			workspaces.Close(userID)
			hub.BroadcastChanged(userID)
		})
		log.WithField("channel", cfg.RedisChannel).Info("relaying changes through redis")
	}

	return &handlers.Handler{
		Accounts:   auth.NewAccounts(store),
		Tokens:     auth.NewTokens(cfg.JWTSecret),
		Workspaces: workspaces,
		Hub:        hub,
		RateLimiter: handlers.NewRateLimiter(handlers.AuthAttempts, handlers.AuthWindow),
	}
}

func startServer(server *http.Server) {
	log.Printf("Starting server on %s", server.Addr)

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}
	log.Println("Server stopped")
}
