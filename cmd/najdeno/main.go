package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/erazemk/najdeno/internal/api"
	"github.com/erazemk/najdeno/internal/config"
	"github.com/erazemk/najdeno/internal/db"
	"github.com/erazemk/najdeno/internal/lifecycle"
	"github.com/erazemk/najdeno/internal/matching"
	"github.com/erazemk/najdeno/internal/notify"
	"github.com/erazemk/najdeno/internal/store"
	"github.com/erazemk/najdeno/internal/telemetry"
)

const usage = `Usage: najdeno [flags]

Serves the lost and found API. On first run the database is created,
default categories are added and an admin password is printed.

Flags:
  -c, --config <path>      YAML config file (default: built-in defaults)
  -d, --db <path>          SQLite database path (default: najdeno.sqlite3)
  -a, --addr <host:port>   listen address (default: :8080)
  -u, --user <name>        admin username on first run (default: Admin)
  -l, --log <path>         log file path (default: no file, stdout/stderr only)
  -h, --help               show this help and exit
`

func main() {
	cfg, err := loadConfig(os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		fmt.Fprint(os.Stdout, usage)
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n\n%s", err, usage)
		os.Exit(1)
	}

	if err := run(cfg); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

// loadConfig parses the command line, loads the config file if one is
// named and applies explicitly set flags over it.
func loadConfig(args []string) (*config.Config, error) {
	fs := pflag.NewFlagSet("najdeno", pflag.ContinueOnError)
	fs.Usage = func() {}

	configPath := fs.StringP("config", "c", "", "")
	dbPath := fs.StringP("db", "d", "", "")
	addr := fs.StringP("addr", "a", "", "")
	adminUser := fs.StringP("user", "u", "", "")
	logPath := fs.StringP("log", "l", "", "")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected argument: %s", fs.Arg(0))
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.LoadFile(*configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if fs.Changed("db") {
		cfg.Database = *dbPath
	}
	if fs.Changed("addr") {
		cfg.Listen = *addr
	}
	if fs.Changed("user") {
		cfg.AdminUser = *adminUser
	}
	if fs.Changed("log") {
		cfg.LogFile = *logPath
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func run(cfg *config.Config) error {
	// INFO/WARN go to stdout, ERROR to stderr, everything to the log file.
	logger, closeLog, err := newLogger(os.Stdout, os.Stderr, cfg.LogFile)
	if err != nil {
		return err
	}
	defer closeLog()
	slog.SetDefault(logger)

	ctx := context.Background()

	shutdownTracing, err := telemetry.Setup(ctx, cfg.Telemetry)
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			slog.Warn("flushing traces", "error", err)
		}
	}()

	// Auto-init on first run.
	if _, err := os.Stat(cfg.Database); os.IsNotExist(err) {
		database, password, err := initDatabase(ctx, cfg.Database, cfg.AdminUser)
		if err != nil {
			return fmt.Errorf("initializing database: %w", err)
		}
		database.Close()

		printInitResult(os.Stdout, cfg.Database, cfg.AdminUser, password)
		fmt.Println()
	}

	database, err := db.Open(cfg.Database)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	// Idempotent; brings older databases up to date.
	if err := db.Migrate(database); err != nil {
		return fmt.Errorf("migrating database: %w", err)
	}
	slog.Info("database ready", "path", cfg.Database)

	jwtSecret, err := store.GetJWTSecret(ctx, database)
	if err != nil {
		return fmt.Errorf("loading JWT secret: %w", err)
	}

	sink := notify.Multi{
		notify.OutboxSink{DB: database},
		notify.LogSink{Logger: logger},
	}

	handler := api.NewRouter(api.Config{
		DB:             database,
		JWTSecret:      jwtSecret,
		TokenTTL:       cfg.TokenTTL,
		Matcher:        matching.NewMatcher(store.ItemReader{DB: database}, cfg.Matching),
		Lifecycle:      lifecycle.NewManager(database, sink, logger),
		LoginEvery:     cfg.LoginRate.Every,
		LoginBurst:     cfg.LoginRate.Burst,
		RequestTimeout: cfg.RequestTimeout,
		Logger:         logger,
	})

	server := &http.Server{
		Addr:              cfg.Listen,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-quit
		slog.Info("shutdown signal received", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
	}()

	slog.Info("server started", "addr", cfg.Listen, "match_threshold", cfg.Matching.Threshold)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serving: %w", err)
	}

	slog.Info("server stopped, closing database")
	return nil
}
