package commands

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rentbook-dev/rentbook/internal/identity"
	"github.com/rentbook-dev/rentbook/internal/server"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(g *globals) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API",
		Args:  cobra.NoArgs,
		RunE: withProject(g, func(cmd *cobra.Command, p *project, _ []string) error {
			if p.cfg.Auth.JWTSecret == "" {
				return errors.New("no JWT secret configured (set RENTBOOK_JWT_SECRET in .env)")
			}
			if addr == "" {
				addr = p.cfg.Server.Addr
			}

			srv := server.New(server.Options{
				Backend:        p.backend,
				Resolver:       identity.NewJWTResolver([]byte(p.cfg.Auth.JWTSecret)),
				Log:            p.log,
				Classifier:     p.classifier(),
				AuditDir:       p.dir,
				AllowedOrigins: p.cfg.Server.AllowedOrigins,
				Now:            p.now,
			})
			httpServer := &http.Server{
				Addr:              addr,
				Handler:           srv.Handler(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errc := make(chan error, 1)
			go func() {
				p.log.WithField("addr", addr).Info("Listening")
				errc <- httpServer.ListenAndServe()
			}()

			select {
			case err := <-errc:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}

			p.log.Info("Shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return httpServer.Shutdown(shutdownCtx)
		}),
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from rentbook.yaml)")
	return cmd
}
