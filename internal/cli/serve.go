package cli

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/justestif/moodmuse/internal/devserver"
	"github.com/justestif/moodmuse/internal/logging"
	"github.com/justestif/moodmuse/internal/store"
)

func newServeDevCmd(o *options) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve-dev",
		Short: "Run the development backend",
		Long:  "Run a local backend with the MoodMuse HTTP API, a seed catalog and memory, SQLite or PostgreSQL storage.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := o.cfg.DevServer
			if addr != "" {
				cfg.Addr = addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			st, err := store.Open(ctx, cfg.Store, cfg.DSN)
			if err != nil {
				return fmt.Errorf("opening %s store: %w", cfg.Store, err)
			}
			defer st.Close()

			srv, err := devserver.NewServer(devserver.Config{
				Addr:      cfg.Addr,
				Store:     st,
				JWTSecret: cfg.JWTSecret,
				TokenTTL:  cfg.TokenTTL,
			})
			if err != nil {
				return fmt.Errorf("creating server: %w", err)
			}

			logging.Info().Str("store", cfg.Store).Msg("starting development backend")
			fmt.Fprintf(cmd.ErrOrStderr(), "Serving MoodMuse API at http://%s\n", srv.Addr())
			return srv.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides devserver.addr)")
	return cmd
}
