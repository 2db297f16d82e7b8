package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"pkt.systems/pslog"

	"github.com/wxmohd/walaa-dev/internal/config"
	"github.com/wxmohd/walaa-dev/internal/mail"
	"github.com/wxmohd/walaa-dev/internal/site"
	"github.com/wxmohd/walaa-dev/internal/store"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	var port string
	var noStore bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := pslog.Ctx(ctx)

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if port != "" {
				cfg.Port = port
			}
			gin.SetMode(cfg.GinMode)

			opts := site.Options{
				Config: cfg,
				Sender: newSender(cfg),
				Logger: logger,
			}
			if !noStore {
				st, err := store.Open(ctx, cfg.DatabasePath)
				if err != nil {
					return err
				}
				defer st.Close()
				opts.Store = st
				logger.Info("database ready", "path", cfg.DatabasePath)
			}

			srv, err := site.New(opts)
			if err != nil {
				return err
			}
			go srv.Maintain(ctx)

			addr := ":" + cfg.Port
			logger.Info("server starting", "addr", addr, "mail_provider", cfg.MailProvider)
			return listenAndServe(ctx, addr, srv.Handler())
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "listen port (overrides PORT)")
	cmd.Flags().BoolVar(&noStore, "no-store", false, "run without the database (disables admin area and visitor tracking)")
	return cmd
}

func newSender(cfg *config.Config) mail.Sender {
	if cfg.MailProvider == config.ProviderSMTP {
		return mail.NewSMTP(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass)
	}
	return mail.NewSendGrid(cfg.SendGridAPIKey, cfg.SendGridHost)
}

// listenAndServe runs the server until ctx ends, then shuts it down.
func listenAndServe(ctx context.Context, addr string, handler http.Handler) error {
	logger := pslog.Ctx(ctx)
	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          pslog.LogLoggerWithLevel(logger, pslog.ErrorLevel),
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down: %w", err)
		}
		logger.Info("server stopped")
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
