package cmd

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"

	httpapi "todo-manager.com/todo-manager/internal/http"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long:  "Starts the task HTTP API on APP_HOST:APP_PORT",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.close()

			ctx := cmd.Context()

			e := echo.New()
			e.HideBanner = true
			e.HidePort = true
			httpapi.Register(e, httpapi.NewHandler(a.store), a.cfg.RateLimit, a.logger)

			errCh := make(chan error, 1)
			go func() {
				a.logger.Info("HTTP server listening", "addr", a.cfg.AppURL())
				if err := e.Start(a.cfg.AppURL()); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case <-ctx.Done():
			case err, ok := <-errCh:
				if ok {
					return err
				}
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(a.cfg.ShutdownTimeoutSeconds)*time.Second)
			defer cancel()
			if err := e.Shutdown(shutdownCtx); err != nil {
				a.logger.Error("server shutdown", "err", err)
			}

			if err := a.store.Persist(shutdownCtx); err != nil {
				a.logger.Error("final save failed", "err", err)
			}

			a.logger.Info("HTTP server shut down gracefully")
			return nil
		},
	}
}
