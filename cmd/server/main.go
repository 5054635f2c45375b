package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"yomu/internal/config"
	"yomu/internal/daemon"
	"yomu/internal/delivery"
	"yomu/internal/feed"
	"yomu/internal/newsletter"
	"yomu/internal/state"
)

const version = "0.1.0"

func main() {
	configPath := flag.String("config", "config.yaml", "Path to YAML configuration file")
	dbPath := flag.String("db-path", "", "Path to SQLite database file (overrides store.path)")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn, error")
	initDB := flag.Bool("init-db", false, "Create the database schema and exit")
	once := flag.Bool("once", false, "Run one delivery pass immediately and exit")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version)
		return
	}

	// Setup Logger
	var level slog.LevelVar
	if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
		fmt.Fprintf(os.Stderr, "invalid log level %q\n", *logLevel)
		os.Exit(2)
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: &level}))
	slog.SetDefault(logger)

	if *initDB {
		path := *dbPath
		if path == "" {
			path = config.Default().Store.Path
		}
		s, err := state.NewSQLiteStore(path)
		if err != nil {
			logger.Error("Failed to initialize database", "error", err)
			os.Exit(1)
		}
		s.Close()
		logger.Info("Database tables created", "path", path)
		return
	}

	// Load Config
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	if *dbPath != "" {
		cfg.Store.Path = *dbPath
	}

	// Init Store
	store, closer, err := openStore(cfg.Store)
	if err != nil {
		logger.Error("Failed to initialize store", "type", cfg.Store.Type, "error", err)
		os.Exit(1)
	}
	defer closer.Close()

	// Init Components
	seen, err := feed.NewRecencyCache(cfg.RecencyCacheSize)
	if err != nil {
		logger.Error("Invalid recency cache", "error", err)
		os.Exit(1)
	}
	processor := feed.NewProcessor(feed.NewFeedExtractor(), store, seen, cfg.RequestTimeout)

	renderer, err := newsletter.NewRenderer(cfg.MaxDescriptionLength)
	if err != nil {
		logger.Error("Failed to load newsletter template", "error", err)
		os.Exit(1)
	}
	service := newsletter.NewService(processor, renderer, newDeliverer(cfg), cfg.MaxArticlesPerSource)

	d, err := daemon.New(cfg.Frequencies, cfg.RecipientEmail, cfg.Sources, service)
	if err != nil {
		logger.Error("Invalid schedule", "error", err)
		os.Exit(1)
	}

	// Context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if *once {
		d.Dispatch(ctx)
		return
	}

	// Metrics Server
	if cfg.MetricsAddr != "" {
		go func() {
			http.Handle("/metrics", promhttp.Handler())
			logger.Info("Starting metrics server", "address", cfg.MetricsAddr)
			if err := http.ListenAndServe(cfg.MetricsAddr, nil); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("Metrics server failed", "error", err)
			}
		}()
	}

	logger.Info("Starting Yomu",
		"frequencies", cfg.Frequencies,
		"sources", len(cfg.Sources),
		"store", cfg.Store.Type,
		"delivery", cfg.Delivery.Type)

	if err := d.Run(ctx); err != nil {
		logger.Error("Daemon stopped", "error", err)
		os.Exit(1)
	}
	logger.Info("Shutdown complete")
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func openStore(cfg config.StoreConfig) (state.Store, io.Closer, error) {
	switch cfg.Type {
	case "valkey":
		slog.Info("Using Valkey Store", "address", cfg.Address)
		s, err := state.NewValkeyStore(cfg.Address, cfg.Password)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	case "memory":
		slog.Info("Using Memory Store")
		return state.NewMemoryStore(), nopCloser{}, nil
	default:
		s, err := state.NewSQLiteStore(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	}
}

func newDeliverer(cfg *config.Config) delivery.Deliverer {
	if cfg.Delivery.Type == "webhook" {
		return delivery.NewWebhookClient(cfg.Delivery.Webhook)
	}
	return delivery.NewMailer(delivery.SMTPConfig{
		Server:   cfg.SMTPServer,
		Port:     cfg.SMTPPort,
		Password: cfg.SenderPassword,
		From:     cfg.SenderEmail,
	})
}
