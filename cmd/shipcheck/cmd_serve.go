package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/AhmedKamal-41/ShipCheck-repo-analyzer/internal/logging"
	"github.com/AhmedKamal-41/ShipCheck-repo-analyzer/internal/web"
)

func newServeCmd(rt *runtime) *cobra.Command {
	var listen string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the web front end",
		Long: `Serves the landing page, live report pages, comparisons and the JSON
view API. Report pages poll the backend through a websocket per open tab.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := rt.session()
			if err != nil {
				return err
			}
			defer s.close()

			if listen != "" {
				s.cfg.ListenAddr = listen
			}
			srv, err := web.NewServer(s.cfg.WebConfig(), s.api, s.history, s.logger)
			if err != nil {
				return fmt.Errorf("create web server: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if _, err := s.api.Health(ctx); err != nil {
				s.logger.Warn("backend not reachable yet",
					logging.Field{Key: "api_base", Value: s.cfg.APIBase},
					logging.Field{Key: "error", Value: err.Error()})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ShipCheck listening on %s (backend %s)\n", s.cfg.ListenAddr, s.cfg.APIBase)
			if err := srv.Run(ctx); err != nil {
				return fmt.Errorf("serve: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "Listen address (default from config, :3000)")
	return cmd
}
