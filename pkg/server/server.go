package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"payhook/pkg/core"
	"payhook/pkg/storage"
	recordstore "payhook/pkg/storage/records"
	rowstore "payhook/pkg/storage/rows"
	"payhook/pkg/webhook"
)

// Middleware wraps an http.Handler.
type Middleware func(http.Handler) http.Handler

// RunConfig loads config from a path and starts the server with signal handling.
func RunConfig(configPath string) error {
	logger := core.NewLogger("server")
	config, err := core.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	return Run(ctx, config, logger)
}

// Run starts the server until the context is canceled.
func Run(ctx context.Context, config core.Config, logger *log.Logger) error {
	if logger == nil {
		logger = core.NewLogger("server")
	}

	ruleEngine, err := core.NewRuleEngine(config.Rules, logger)
	if err != nil {
		return fmt.Errorf("compile rules: %w", err)
	}

	var (
		records storage.RecordStore
		rows    storage.RowSink
	)
	if config.Storage.Driver != "" && config.Storage.DSN != "" {
		pool := storage.PoolConfig{
			MaxOpenConns:      config.Storage.Pool.MaxOpenConns,
			MaxIdleConns:      config.Storage.Pool.MaxIdleConns,
			ConnMaxLifetimeMS: config.Storage.Pool.ConnMaxLifetimeMS,
			ConnMaxIdleTimeMS: config.Storage.Pool.ConnMaxIdleTimeMS,
		}
		recStore, err := recordstore.Open(recordstore.Config{
			Driver:      config.Storage.Driver,
			DSN:         config.Storage.DSN,
			Dialect:     config.Storage.Dialect,
			AutoMigrate: config.Storage.AutoMigrate,
			Pool:        pool,
		})
		if err != nil {
			return fmt.Errorf("records storage: %w", err)
		}
		records = recStore
		defer recStore.Close()
		logger.Printf("records enabled driver=%s dialect=%s table=payhook_records", config.Storage.Driver, config.Storage.Dialect)

		rwStore, err := rowstore.Open(rowstore.Config{
			Driver:      config.Storage.Driver,
			DSN:         config.Storage.DSN,
			Dialect:     config.Storage.Dialect,
			AutoMigrate: config.Storage.AutoMigrate,
			Pool:        pool,
		})
		if err != nil {
			return fmt.Errorf("rows storage: %w", err)
		}
		rows = rwStore
		defer rwStore.Close()
		logger.Printf("rows enabled driver=%s dialect=%s table=payhook_rows range=%s", config.Storage.Driver, config.Storage.Dialect, config.Sheet.Range)
	} else {
		logger.Printf("storage disabled (missing storage.driver or storage.dsn)")
	}

	var publisher core.Publisher
	if config.Watermill.Driver != "" {
		publisher, err = core.NewPublisher(config.Watermill)
		if err != nil {
			return fmt.Errorf("publisher: %w", err)
		}
		defer publisher.Close()
		logger.Printf("publisher enabled driver=%s rules=%d", config.Watermill.Driver, len(config.Rules))
	} else {
		logger.Printf("publisher disabled (missing watermill.driver)")
	}

	handler := webhook.NewPayPalHandler(webhook.HandlerOptions{
		Records:      records,
		Rows:         rows,
		SheetRange:   config.Sheet.Range,
		Rules:        ruleEngine,
		Publisher:    publisher,
		Logger:       logger,
		MaxBodyBytes: config.Server.MaxBodyBytes,
		DebugEvents:  config.Server.DebugEvents,
	})

	mux := http.NewServeMux()
	mux.Handle(config.Webhook.Path, handler)
	mux.Handle("/healthz", healthHandler())

	var root http.Handler = mux
	root = requestLogMiddleware(logger)(root)
	root = cors.AllowAll().Handler(root)
	root = h2c.NewHandler(root, &http2.Server{})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", config.Server.Port),
		Handler:      root,
		ReadTimeout:  time.Duration(config.Server.ReadTimeoutMS) * time.Millisecond,
		WriteTimeout: time.Duration(config.Server.WriteTimeoutMS) * time.Millisecond,
		IdleTimeout:  time.Duration(config.Server.IdleTimeoutMS) * time.Millisecond,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Printf("listening addr=%s webhook_path=%s", srv.Addr, config.Webhook.Path)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
