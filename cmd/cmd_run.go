package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	telegram "returns-desk/internal/api"
	"returns-desk/internal/api/httpapi"
	"returns-desk/internal/container"
)

// botCmd запускает Telegram-бота
var botCmd = &cobra.Command{
	Use:   "bot",
	Short: "Run the Telegram bot",
	Args:  cobra.NoArgs,
	RunE:  runBot,
}

// serveCmd запускает HTTP API дашборда
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP dashboard API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runBot(cmd *cobra.Command, args []string) error {
	if cfg.Telegram.Token == "" {
		return errors.New("TELEGRAM_TOKEN is required")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := container.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer deps.Close()

	bot, err := telegram.NewBot(cfg.Telegram.Token, deps, cfg.App.MaxUploadSize, logger.Named("bot"))
	if err != nil {
		return err
	}

	logger.Info("bot is running")
	return bot.Run(ctx)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := container.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer deps.Close()

	srv := httpapi.New(cfg, deps, logger.Named("http"))

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Run()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
		return err
	}

	logger.Info("server exited")
	return <-errCh
}
