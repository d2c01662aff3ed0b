package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kbukum/multimongo/version"
)

func newVersionCommand() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkOutput(output); err != nil {
				return err
			}
			info := version.Get()
			if output == outputText {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), info.String())
				return err
			}
			return encode(cmd.OutOrStdout(), output, info)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", outputText, "output format: text, json or yaml")
	return cmd
}
