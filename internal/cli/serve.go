package cli

import (
	"github.com/spf13/cobra"

	"github.com/kbukum/multimongo/server"
)

func newServeCommand(o *rootOptions) *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the connections and serve the operational endpoints",
		Long: `serve starts every configured connection and an HTTP server exposing
/health, /ready, /alive, /version, /conditions, /beans and /mongo/connections
until SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("port") {
				o.cfg.Server.Port = port
			}
			app, err := o.newApp()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if err := app.Prepare(ctx); err != nil {
				_ = app.Shutdown(ctx)
				return err
			}

			srv := server.New(app.Cfg.Server, app.Logger)
			srv.RegisterEndpoints(server.Sources{
				Service:   app.Name,
				Version:   app.Version,
				Health:    app.Components.HealthAll,
				Container: app.Container,
				Report:    app.Engine.Report,
			})
			if err := app.RegisterComponent(server.NewComponent(srv)); err != nil {
				_ = app.Shutdown(ctx)
				return err
			}
			return app.Run(ctx)
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (default from server.port)")
	return cmd
}
