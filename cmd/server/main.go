package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/studyhall/tutormatch/internal/api"
	"github.com/studyhall/tutormatch/internal/config"
	"github.com/studyhall/tutormatch/internal/database"
	"github.com/studyhall/tutormatch/internal/match"
	"github.com/studyhall/tutormatch/internal/queue"
	"github.com/studyhall/tutormatch/internal/stats"
)

const defaultSigningKey = "wT0phFUusHZIrDhL9bUKPUhwaxKhpi/SaI6PtgB+MgU="

type stringSliceFlag []string

func (s *stringSliceFlag) String() string {
	return strings.Join(*s, ",")
}

func (s *stringSliceFlag) Set(value string) error {
	*s = append(*s, strings.Split(value, ",")...)
	return nil
}

var (
	addr           string
	dsn            string
	signingKey     string
	migrationsURL  string
	allowedOrigins stringSliceFlag
)

// envDefault returns the environment value for key, or fallback when unset.
func envDefault(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func main() {
	// .env is optional, flags and real env vars win
	_ = godotenv.Load()

	flag.StringVar(&addr, "addr", envDefault("TUTORMATCH_ADDR", "localhost:8000"), "server address")
	flag.StringVar(&dsn, "dsn", envDefault("TUTORMATCH_DSN", "host=localhost user=postgres password=postgres dbname=postgres sslmode=disable"), "database connection string")
	flag.StringVar(&signingKey, "signing-key", envDefault("TUTORMATCH_SIGNING_KEY", defaultSigningKey), "base64 encoded signing key")
	flag.StringVar(&migrationsURL, "migrations", envDefault("TUTORMATCH_MIGRATIONS", "file://migrations"), "migrations source URL")
	flag.Var(&allowedOrigins, "allowed-origins", "comma-separated list of allowed origins for CORS")
	flag.Parse()

	logger := log.New(os.Stderr, "[tutormatch] ", log.LstdFlags)

	if origins := envDefault("TUTORMATCH_ALLOWED_ORIGINS", ""); origins != "" && len(allowedOrigins) == 0 {
		allowedOrigins = strings.Split(origins, ",")
	}

	cfg, err := config.NewConfig(addr, dsn, signingKey, allowedOrigins)
	if err != nil {
		logger.Fatal("config:", err)
	}
	cfg.MigrationsURL = migrationsURL

	if err := database.Migrate(cfg.MigrationsURL, cfg.DatabaseDSN); err != nil {
		logger.Fatal("migrate:", err)
	}

	dbConn, err := database.NewPgTutorMatchRepository(cfg.DatabaseDSN)
	if err != nil {
		logger.Fatal("db open:", err)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Fatal("db close:", err)
		}
	}()

	mux := http.NewServeMux()

	statsUpdater := stats.NewStatsUpdater(mux)

	tracker := queue.NewTracker(logger, dbConn)

	coordinator, err := match.NewCoordinator(logger, dbConn, tracker, statsUpdater)
	if err != nil {
		logger.Fatal("new coordinator:", err)
	}

	srv := api.NewTutorMatchApp(mux, logger, coordinator, dbConn, tracker, cfg)

	statsUpdater.Run()
	defer statsUpdater.Stop()

	go coordinator.Run()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigs:
		logger.Printf("received signal: %s\n", sig)
	case err := <-errCh:
		logger.Println("server:", err)
	}

	shutDownCtx, cancel := context.WithTimeout(
		context.Background(),
		10*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutDownCtx); err != nil {
		logger.Fatalln("HTTP server shutdown:", err)
	}

	logger.Println("shutting down match coordinator...")
	if err := coordinator.Shutdown(shutDownCtx); err != nil {
		logger.Fatalln("coordinator shutdown:", err)
	}

	logger.Println("shutdown complete")
}
