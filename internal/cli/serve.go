package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/BenDol/GithubWiki-sub000/internal/server"
	"github.com/BenDol/GithubWiki-sub000/pkg/wiki"
)

// serveCommand creates the HTTP API server command.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Long: `Run the HTTP API server.

Each request authenticates with a bearer token. The server keeps one
cache partition per token; tokens never see each other's cached data.
Idle partitions are evicted after the configured session timeout.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}

			factory := func(ctx context.Context, token string) (*wiki.Service, error) {
				sess, err := c.newSessionWithToken(ctx, cfg, token)
				if err != nil {
					return nil, err
				}
				return sess.svc, nil
			}

			srv := server.New(factory, cfg.Server.SessionIdleTimeout.Duration, c.Logger)
			defer srv.Close()

			httpSrv := &http.Server{
				Addr:              cfg.Server.Addr,
				Handler:           srv,
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				errCh <- httpSrv.ListenAndServe()
			}()

			printInfo("Listening on %s", cfg.Server.Addr)
			c.Logger.Info("server started", "addr", cfg.Server.Addr)

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return fmt.Errorf("serve: %w", err)
			case <-ctx.Done():
				c.Logger.Info("shutting down")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return httpSrv.Shutdown(shutdownCtx)
			}
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")

	return cmd
}
