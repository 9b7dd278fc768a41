package main

import (
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/danielhkuo/quick-points/cliparse"
	"github.com/danielhkuo/quick-points/coordinator"
	"github.com/danielhkuo/quick-points/db"
	"github.com/danielhkuo/quick-points/middleware"
	"github.com/danielhkuo/quick-points/router"
	"github.com/danielhkuo/quick-points/store"
	"github.com/danielhkuo/quick-points/store/postgres"
	"github.com/danielhkuo/quick-points/store/sqlite"
)

func main() {
	var err error

	// Local development convenience; a missing .env is not an error
	_ = godotenv.Load()

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	var (
		dbConn    *sql.DB
		sessions  store.SessionStore
		estimates store.EstimateStore
		users     store.UserStore
	)

	switch cfg.DatabaseType {
	case "postgres":
		dbConn, err = postgres.Open(cfg.DatabaseURL)
		if err != nil {
			slog.Error("database connection failed", "error", err)
			os.Exit(1)
		}
		sessions = postgres.NewSessionStore(dbConn)
		estimates = postgres.NewEstimateStore(dbConn)
		users = postgres.NewUserStore(dbConn)
	default:
		dbConn, err = sqlite.Open(cfg.DatabaseURL)
		if err != nil {
			slog.Error("database connection failed", "error", err)
			os.Exit(1)
		}
		sessions = sqlite.NewSessionStore(dbConn)
		estimates = sqlite.NewEstimateStore(dbConn)
		users = sqlite.NewUserStore(dbConn)
	}
	defer dbConn.Close()

	// Create schema (tables)
	if err := db.CreateSchema(dbConn, cfg.DatabaseType); err != nil {
		slog.Error("schema creation failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database schema ready", "type", cfg.DatabaseType)

	coord := coordinator.New(sessions, estimates, users, nil, nil)

	// Create router
	mux := router.NewRouter(coord, cfg)

	// Create server
	server := http.Server{
		Handler: middleware.CORS(mux),
		Addr:    ":" + strconv.Itoa(cfg.Port),
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		// Wait for Ctrl-C signal
		<-ctrlc
		server.Close()
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port)
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed", "error", err)
	}
}
