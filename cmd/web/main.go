package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"shopfront/api/handlers"
	"shopfront/internal/backend"
	"shopfront/internal/cache"
	"shopfront/internal/cart"
	"shopfront/internal/catalog"
	"shopfront/internal/config"
	"shopfront/internal/session"
	"shopfront/internal/storage"
)

var version = "dev"

func main() {
	var configPath string
	var debug bool

	root := &cobra.Command{
		Use:     "shopfront",
		Short:   "Clothing Shop storefront gateway",
		Version: version,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file")
	root.PersistentFlags().BoolVar(&debug, "debug", false, "debug logging")

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the storefront HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(configPath, debug)
		},
	}
	root.AddCommand(serve)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath string, debug bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.Production, debug)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	// Durable session state, watched for external clears.
	store, err := storage.OpenFileStore(cfg.StateFile(), logger)
	if err != nil {
		return fmt.Errorf("open state store: %w", err)
	}
	defer store.Close()

	client := backend.New(cfg.BackendURL, logger)

	sessionStore := session.New(client, store, logger)
	defer sessionStore.Close()

	var catalogCache cache.Cache = cache.NewMemory()
	if cfg.RedisAddr != "" {
		logger.Info("using redis catalog cache", zap.String("addr", cfg.RedisAddr))
		catalogCache = cache.NewRedis(cfg.RedisAddr, logger)
	}
	catalogStore := catalog.New(client, catalogCache, logger, time.Duration(cfg.CatalogTTL))
	cartStore := cart.New(client, logger)

	router := handlers.Router(
		handlers.NewCatalogHandler(catalogStore),
		handlers.NewCartHandler(cartStore),
		handlers.NewAuthHandler(sessionStore, cartStore),
		handlers.NewUserHandler(client, sessionStore, cartStore),
		sessionStore,
		logger,
	)

	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			zap.String("addr", cfg.Addr),
			zap.String("backend", cfg.BackendURL))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}

func newLogger(production, debug bool) (*zap.Logger, error) {
	if production {
		cfg := zap.NewProductionConfig()
		if debug {
			cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
		}
		return cfg.Build()
	}
	cfg := zap.NewDevelopmentConfig()
	if !debug {
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	return cfg.Build()
}
