// Package cli implements the aftermarket command line.
package cli

import (
	"github.com/spf13/cobra"
)

// Version is set at build time
var Version = "dev"

var envFile string

var rootCmd = &cobra.Command{
	Use:   "aftermarket",
	Short: "After Market sales analysis report",
	Long: `Query the ERP for a client's purchase history across every store of a
plant, pivoted so each store becomes a column group.

Selected rows can be appended to the shared After Market workbook and the
report can be emailed with the selection attached.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Environment file loaded before reading settings")

	rootCmd.AddCommand(newReportCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newRunsCmd())
	rootCmd.AddCommand(newVersionCmd())
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("aftermarket version %s\n", Version)
		},
	}
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
