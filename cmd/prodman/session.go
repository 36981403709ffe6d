package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"prodman/internal/bootstrap"
	"prodman/internal/ui/format"
)

func newRunCmd(dataDir *string) *cobra.Command {
	var src deploySource
	var record bool
	var name string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a session in the foreground, reading commands from stdin",
		Long: "Starts a session and reads one command per line from stdin:\n" +
			"okay, pause, unpause, next, finish. Ctrl-C finishes the session.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*dataDir)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if err := src.apply(ctx, app); err != nil {
				return err
			}
			started, err := app.TrackerCLI.Start(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "session %s started at %s\n", started.RunID, started.StartedAt.Local().Format(time.TimeOnly))

			go func() {
				_ = app.TrackerCLI.PumpCommands(ctx, cmd.InOrStdin(), func(token string, err error) {
					if err != nil {
						_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", token, err)
					}
				})
			}()

			if err := watchSession(ctx, app, out); err != nil {
				return err
			}
			progress, err := app.TrackerCLI.Progress(context.Background())
			if err != nil {
				return err
			}
			format.Progress(out, progress, format.Width(out))

			if !record {
				return nil
			}
			key, err := app.TrackerCLI.Record(context.Background(), name)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(out, "recorded %s#%d\n", key.Date, key.ID)
			return nil
		},
	}
	src.bind(cmd)
	cmd.Flags().BoolVar(&record, "record", false, "record the session in history when it ends")
	cmd.Flags().StringVar(&name, "name", "", "name to record the session under")
	return cmd
}

// watchSession blocks until the session completes. On a terminal it
// redraws a status line every tick. Cancelling ctx finishes the session.
func watchSession(ctx context.Context, app *bootstrap.App, out io.Writer) error {
	done := make(chan error, 1)
	go func() { done <- app.TrackerCLI.Wait(ctx) }()

	var tick <-chan time.Time
	interactive := format.IsTerminal(out)
	if interactive {
		ticker := time.NewTicker(app.Config.TickInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case err := <-done:
			if interactive {
				_, _ = fmt.Fprintln(out)
			}
			if err == nil {
				return nil
			}
			return finishNow(app)
		case <-tick:
			p, err := app.TrackerCLI.Progress(context.Background())
			if err == nil {
				_, _ = fmt.Fprintf(out, "\r\033[K%s", format.Headline(p))
			}
		}
	}
}

func finishNow(app *bootstrap.App) error {
	_ = app.TrackerCLI.Submit(context.Background(), "finish")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := app.TrackerCLI.Wait(ctx); err != nil {
		return fmt.Errorf("finish session: %w", err)
	}
	return nil
}

func newTUICmd(dataDir *string) *cobra.Command {
	var src deploySource
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Run the tracker dashboard",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*dataDir)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()
			if err := src.apply(cmd.Context(), app); err != nil {
				return err
			}
			return bootstrap.RunTUI(app)
		},
	}
	src.bind(cmd)
	return cmd
}

func newServeCmd(dataDir *string) *cobra.Command {
	var src deploySource
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP control API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*dataDir)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()
			if err := src.apply(cmd.Context(), app); err != nil {
				return err
			}
			if addr == "" {
				addr = app.Config.HTTPAddr
			}

			srv := &http.Server{
				Addr:         addr,
				Handler:      app.Router,
				ReadTimeout:  30 * time.Second,
				WriteTimeout: 60 * time.Second,
				IdleTimeout:  120 * time.Second,
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			serveErr := make(chan error, 1)
			go func() {
				app.Logger.Info("control api starting", "addr", addr)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serveErr <- err
				}
				close(serveErr)
			}()

			select {
			case err := <-serveErr:
				if err != nil {
					return fmt.Errorf("serve: %w", err)
				}
				return nil
			case <-ctx.Done():
			}
			app.Logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				app.Logger.Error("shutdown error", "error", err)
			}
			app.Logger.Info("control api stopped")
			return nil
		},
	}
	src.bind(cmd)
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return cmd
}
