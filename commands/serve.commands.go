package commands

import (
	"context"

	"github.com/spf13/cobra"

	"pianoroll/apiserver"
)

func (a *app) serve(ctx context.Context, addr string) error {
	srv, err := apiserver.New(a.cfg.Layout, a.logger)
	if err != nil {
		return err
	}
	return srv.Run(ctx, addr)
}

func (a *app) serveCommand() *cobra.Command {
	var listen string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve roll rendering over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			addr := a.cfg.Listen
			if cmd.Flags().Changed("listen") {
				addr = listen
			}
			return a.serve(cmd.Context(), addr)
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "listen address (default from config, :8888)")
	return cmd
}
