// Package internal provides the main application initialization and runtime logic.
package internal

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

	"golang.org/x/sync/errgroup"

	"github.com/starford/vaultmcp/internal/api"
	"github.com/starford/vaultmcp/internal/mcpserver"
	"github.com/starford/vaultmcp/internal/noteservice"
	"github.com/starford/vaultmcp/internal/storage"
	"github.com/starford/vaultmcp/internal/vault"
	"github.com/starford/vaultmcp/internal/watcher"
)

const shutdownTimeout = 10 * time.Second

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{
		stdin:     os.Stdin,
		stdout:    os.Stdout,
		logOutput: os.Stderr,
	}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Stdout belongs to the stdio transport, so logs always go elsewhere.
	logger := slog.New(slog.NewJSONHandler(app.logOutput, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("vault_path", cfg.Vault.Path),
		slog.String("transport", cfg.Transport.Mode),
		slog.Bool("watch", cfg.Vault.Watch),
		slog.String("log_level", cfg.App.LogLevel.String()))

	v, err := vault.Open(cfg.Vault.Path)
	if err != nil {
		return fmt.Errorf("open vault: %w", err)
	}

	svc := noteservice.NewService(v, storage.NewFS())
	srv := mcpserver.New(svc, logger)

	if err := srv.SyncResources(ctx); err != nil {
		logger.Warn("initial resource sync failed", slog.String("error", err.Error()))
	}

	g, gCtx := errgroup.WithContext(ctx)
	serveCtx, stop := context.WithCancel(gCtx)
	defer stop()

	var httpServer *http.Server

	switch cfg.Transport.Mode {
	case TransportHTTP:
		router := api.NewRouter(srv.HTTPHandler(), vaultReady(v), cfg.Auth.AuthEnabled(), cfg.Auth.Token)
		httpServer = &http.Server{
			Addr:              cfg.App.HTTP.Address(),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		}

		g.Go(func() error {
			logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("HTTP server error: %w", err)
			}
			return nil
		})
	default:
		g.Go(func() error {
			defer stop()
			logger.Info("Serving MCP over stdio", slog.String("vault", v.Root()))
			if err := srv.ServeStdio(serveCtx, app.stdin, app.stdout); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("stdio server error: %w", err)
			}
			logger.Info("stdio input closed")
			return nil
		})
	}

	if cfg.Vault.Watch {
		g.Go(func() error {
			err := watcher.Watch(serveCtx, v.Root(), logger, func() {
				if err := srv.SyncResources(serveCtx); err != nil {
					logger.Warn("resource sync failed", slog.String("error", err.Error()))
				}
			})
			if err != nil {
				// Serving continues without live resource updates.
				logger.Warn("watcher stopped", slog.String("error", err.Error()))
			}
			return nil
		})
	}

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-serveCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}
		stop()

		if httpServer != nil {
			logger.Info("Shutting down server...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
			}
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

func vaultReady(v *vault.Vault) api.ReadyFunc {
	return func() error {
		info, err := os.Stat(v.Root())
		if err != nil {
			return fmt.Errorf("vault unavailable: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("vault unavailable: %s is not a directory", v.Root())
		}
		return nil
	}
}
