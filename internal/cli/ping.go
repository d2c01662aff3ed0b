package cli

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/kbukum/multimongo/component"
	"github.com/kbukum/multimongo/errors"
)

func newPingCommand(o *rootOptions) *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "ping",
		Short: "Ping every configured connection concurrently",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := o.newApp()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			defer func() { _ = app.Shutdown(ctx) }()
			if err := app.Prepare(ctx); err != nil {
				return err
			}

			comps := app.Components.All()
			if len(comps) == 0 {
				return errors.InvalidConfig("multimongo", "no connection is configured")
			}

			results := make([]pingResult, len(comps))
			var g errgroup.Group
			for i, c := range comps {
				g.Go(func() error {
					results[i] = ping(ctx, c, timeout)
					return nil
				})
			}
			_ = g.Wait()

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "CONNECTION\tTARGET\tSTATUS\tTIME\tMESSAGE")
			failed := 0
			for _, r := range results {
				if r.health.Status != component.StatusHealthy {
					failed++
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", r.name, r.target, r.health.Status,
					r.elapsed.Round(time.Millisecond), dash(r.health.Message))
			}
			if err := w.Flush(); err != nil {
				return err
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d connections unreachable", failed, len(comps))
			}
			return nil
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "timeout of each ping")
	return cmd
}

type pingResult struct {
	name    string
	target  string
	health  component.Health
	elapsed time.Duration
}

func ping(ctx context.Context, c component.Component, timeout time.Duration) pingResult {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	r := pingResult{name: c.Name(), target: "-"}
	if d, ok := c.(component.Describable); ok {
		r.target = d.Describe().Details
	}
	start := time.Now()
	r.health = c.Health(ctx)
	r.elapsed = time.Since(start)
	return r
}
