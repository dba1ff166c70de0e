package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/brentkao/roomcoord/internal/api"
	"github.com/brentkao/roomcoord/internal/config"
	"github.com/brentkao/roomcoord/internal/factory"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	configPath := pflag.StringP("config", "c", "", "path to a YAML config file (default $"+config.EnvConfigPath+")")
	pflag.Parse()

	cfg, err := config.Load(config.ResolvePath(*configPath))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	level, _ := cfg.Log.SlogLevel()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	app, err := factory.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("create application: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go app.TicketBroker.Run(ctx)

	server := api.NewServer(app.Handler(), cfg.Server, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			_ = app.Shutdown(context.Background())
			return err
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	// Stop accepting new connections before closing the live ones
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", slog.String("error", err.Error()))
	}
	if err := app.Shutdown(shutdownCtx); err != nil {
		logger.Error("application shutdown error", slog.String("error", err.Error()))
	}

	logger.Info("server stopped")
	return nil
}
