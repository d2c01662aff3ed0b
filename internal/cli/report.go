package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kbukum/multimongo/condition"
)

func newReportCommand(o *rootOptions) *cobra.Command {
	var (
		output   string
		match    string
		showBean bool
	)
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show which configurations and beans the properties activate",
		Long: `report refreshes the auto-configuration without contacting any server and
prints the condition evaluation report.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkOutput(output); err != nil {
				return err
			}
			app, err := o.newApp()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			defer func() { _ = app.Shutdown(ctx) }()
			if err := app.Prepare(ctx); err != nil {
				return err
			}

			report := app.Engine.Report()
			var entries []condition.Entry
			switch match {
			case "all":
				entries = report.Entries()
			case "positive":
				entries = report.Positive()
			case "negative":
				entries = report.Negative()
			default:
				return fmt.Errorf("--match %q: expected all, positive or negative", match)
			}
			if !showBean {
				entries = onlyConfigurations(entries)
			}

			if output != outputText {
				return encode(cmd.OutOrStdout(), output, entries)
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "CONFIGURATION\tBEAN\tMATCH\tREASON")
			for _, e := range entries {
				fmt.Fprintf(w, "%s\t%s\t%t\t%s\n", e.Configuration, dash(e.Bean), e.Match, reason(e))
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", outputText, "output format: text, json or yaml")
	cmd.Flags().StringVar(&match, "match", "all", "entries to show: all, positive or negative")
	cmd.Flags().BoolVar(&showBean, "beans", false, "include bean entries")
	return cmd
}

func onlyConfigurations(entries []condition.Entry) []condition.Entry {
	out := make([]condition.Entry, 0, len(entries))
	for _, e := range entries {
		if e.Kind == condition.KindConfiguration {
			out = append(out, e)
		}
	}
	return out
}

// reason is the message of the first failed condition, or of the last one
// when every condition matched.
func reason(e condition.Entry) string {
	for _, oc := range e.Outcomes {
		if !oc.Match {
			return oc.Message
		}
	}
	if n := len(e.Outcomes); n > 0 {
		return e.Outcomes[n-1].Message
	}
	return strings.Join(e.Conditions, ", ")
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
