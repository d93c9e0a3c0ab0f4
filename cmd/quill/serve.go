package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/aretw0/quill"
	"github.com/spf13/cobra"
)

const (
	shutdownTimeout = 5 * time.Second
	replaceTimeout  = 3 * time.Second
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Starts the render worker and the HTTP server. The server stops on SIGINT, SIGTERM or
GET /admin/shutdown; queued renders are drained before the process exits.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("port") {
			cfg.Server.Port, _ = cmd.Flags().GetInt("port")
		}
		if cmd.Flags().Changed("dev") {
			cfg.Templates.Dev, _ = cmd.Flags().GetBool("dev")
		}
		if cmd.Flags().Changed("dir") {
			cfg.Templates.Dir, _ = cmd.Flags().GetString("dir")
		}
		if cmd.Flags().Changed("engine") {
			cfg.Engine, _ = cmd.Flags().GetString("engine")
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		logger, err := newLogger(cfg)
		if err != nil {
			return err
		}

		if replace, _ := cmd.Flags().GetBool("replace"); replace {
			replaceRunning(logger, cfg.Server.Port)
		}

		// Closed by /admin/shutdown.
		remote := make(chan struct{})
		var once sync.Once
		app, err := quill.New(cfg,
			quill.WithLogger(logger),
			quill.WithShutdown(func() {
				once.Do(func() { close(remote) })
			}),
		)
		if err != nil {
			return fmt.Errorf("initializing quill: %w", err)
		}

		srv := &http.Server{
			Addr:              cfg.Addr(),
			Handler:           app.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			logger.Info("starting quill server", "addr", srv.Addr, "engine", cfg.Engine, "dev", cfg.Templates.Dev)
			serverErrors <- srv.ListenAndServe()
		}()

		// Channel to listen for interrupt or terminate signals.
		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(shutdown)

		// Blocking main and waiting for shutdown.
		select {
		case err := <-serverErrors:
			closeApp(logger, app)
			return fmt.Errorf("server error: %w", err)

		case sig := <-shutdown:
			logger.Info("start shutdown", "signal", sig.String())

		case <-remote:
			logger.Info("start shutdown", "signal", "admin")
		}

		// Give outstanding requests a deadline for completion.
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		// Asking listener to shut down and shed load.
		if err := srv.Shutdown(ctx); err != nil {
			logger.Warn("graceful shutdown did not complete", "timeout", shutdownTimeout, "err", err)
			if err := srv.Close(); err != nil {
				logger.Error("error killing server", "err", err)
			}
		}
		closeApp(logger, app)
		logger.Info("quill server stopped gracefully")
		return nil
	},
}

func closeApp(logger *slog.Logger, app *quill.App) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := app.Close(ctx); err != nil {
		logger.Error("closing app", "err", err)
	}
}

// replaceRunning asks an instance already bound to port to shut down and waits for the port to free up.
func replaceRunning(logger *slog.Logger, port int) {
	addr := fmt.Sprintf("127.0.0.1:%d", port)
	client := &http.Client{Timeout: replaceTimeout}

	resp, err := client.Get("http://" + addr + "/admin/shutdown")
	if err != nil {
		var opErr *net.OpError
		if errors.As(err, &opErr) {
			logger.Debug("no running instance to replace", "addr", addr)
			return
		}
		logger.Warn("replace request failed", "addr", addr, "err", err)
		return
	}
	resp.Body.Close()
	logger.Info("asked running instance to shut down", "addr", addr, "status", resp.StatusCode)

	deadline := time.Now().Add(shutdownTimeout + replaceTimeout)
	for time.Now().Before(deadline) {
		ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
		if err == nil {
			ln.Close()
			return
		}
		time.Sleep(100 * time.Millisecond)
	}
	logger.Warn("port still in use after replace", "port", port)
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on (overrides config)")
	serveCmd.Flags().Bool("dev", false, "Re-read templates from --dir on every request")
	serveCmd.Flags().String("dir", "templates", "Template directory used in dev mode")
	serveCmd.Flags().String("engine", "lua", "Render engine: lua or fake")
	serveCmd.Flags().Bool("replace", false, "Shut down an instance already listening on the port before starting")
}
