// Command dayplan plans a day from a YAML file, without the API server.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	dayFile  string
	logLevel string
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "dayplan",
		Short: "Plan flexible tasks of a day around fixed commitments.",
		Long: `dayplan reads today's tasks and planning settings from a YAML day file,
places flexible tasks around fixed ones, lunch and dinner, and prints the plan.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&dayFile, "file", "f", "day.yaml", "day file to read")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	root.AddCommand(newPlanCmd(), newValidateCmd(), newTokenCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
