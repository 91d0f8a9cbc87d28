// Command chatgate runs the chat gateway HTTP server.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"chatgate/config"
	"chatgate/core/chat"
	"chatgate/core/dispatch"
	"chatgate/extract"
	"chatgate/server"
	"chatgate/store"
)

const shutdownGrace = 10 * time.Second

func main() {
	configPath := flag.String("config", "chatgate.toml", "path to the server config file")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	if err := run(*configPath, logger); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(configPath string, logger *slog.Logger) error {
	cfg, err := config.LoadServerConfig(configPath)
	if err != nil {
		return err
	}

	settings, err := config.NewSettingsStore(cfg.DataDir)
	if err != nil {
		return err
	}
	agents, err := store.NewAgentStore(cfg.DataDir)
	if err != nil {
		return err
	}
	instructions, err := store.NewInstructionStore(cfg.DataDir)
	if err != nil {
		return err
	}
	sessions, err := store.NewSessionStore(cfg.DataDir, logger)
	if err != nil {
		return err
	}

	registry := dispatch.NewRegistry().WithTimeout(cfg.RequestTimeout())
	chatService := chat.NewService(registry, settings, agents, instructions, extract.New(logger), sessions, logger)

	httpServer := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: server.New(chatService, settings, agents, instructions, sessions, logger).Handler(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.ListenAddr, "data_dir", cfg.DataDir)
		serveErr <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-serveErr; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
