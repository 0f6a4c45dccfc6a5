package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/user/price-scraper/internal/adapter/http_scraper"
	"github.com/user/price-scraper/internal/adapter/postgres"
	"github.com/user/price-scraper/internal/delivery/http/handler"
	"github.com/user/price-scraper/internal/delivery/http/router"
	"github.com/user/price-scraper/internal/usecase"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(ctx context.Context) error {
	cfg, log, err := bootstrap(os.Stdout)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	pool, err := openDatabase(ctx, cfg, cfg.AutoMigrate, log)
	if err != nil {
		return err
	}
	defer pool.Close()

	deps, err := newScrapeDeps(ctx, cfg, http_scraper.DefaultItemMarkers(), log)
	if err != nil {
		return err
	}
	defer deps.close()

	// --- Use Cases ---
	productRepo := postgres.NewProductRepo(pool)
	productManager := usecase.NewProductManager(productRepo)
	populator := usecase.NewPopulator(deps.scraper, deps.catalog, deps.robots, productRepo,
		usecase.PopulatorConfig{
			RespectRobots:  cfg.RespectRobots,
			FallbackToDemo: cfg.FallbackToDemo,
		}, log)

	// --- HTTP Server ---
	apiHandler := handler.NewHandler(productManager, populator, log)
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router.New(apiHandler, log, cfg.CORSAllowedOrigins),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 70 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("Starting server", zap.String("port", cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-serverErr:
		if err != nil {
			log.Error("Could not listen on port", zap.String("port", cfg.ServerPort), zap.Error(err))
		}
		return err
	case <-quit:
	}

	log.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
		return err
	}
	log.Info("Server exiting")
	return nil
}
