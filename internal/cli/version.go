package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bbejeck/confluent-cli-plugins/internal/config"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s version %s\n", cmd.Root().Name(), cmd.Root().Version)
			fmt.Fprintln(out, "\nRequires:")
			fmt.Fprintln(out, "  confluent CLI:     v3.0.0 or greater")
		},
	}
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show the resolved configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := config.Display()
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), text)
			return nil
		},
	}
}
