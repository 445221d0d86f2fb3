package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"aftermarket-report/internal/model"
	"aftermarket-report/internal/store"
)

func newRunsCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs [run-id]",
		Short: "List recorded report runs, or the errors of one run",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _ := loadConfig(envFile)

			history, err := store.Open(cfg.HistoryDB)
			if err != nil {
				return fmt.Errorf("failed to open run history: %w", err)
			}
			defer history.Close()

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			if len(args) == 1 {
				run, err := history.GetRun(ctx, args[0])
				if err != nil {
					return err
				}
				runErrors, err := history.GetRunErrors(ctx, args[0])
				if err != nil {
					return err
				}
				printRunErrors(cmd.OutOrStdout(), run, runErrors)
				return nil
			}

			runs, err := history.ListRuns(ctx, limit)
			if err != nil {
				return err
			}
			printRuns(cmd.OutOrStdout(), runs)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum runs listed")
	return cmd
}

func printRuns(w io.Writer, runs []model.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tROWS\tPLANT\tSTORE\tCREATED")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%s\n",
			r.ID, r.Status, r.RowCount, r.Filters.Plant, r.Filters.PrimaryStore,
			r.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	}
	tw.Flush()
}

func printRunErrors(w io.Writer, run model.Run, runErrors []model.RunError) {
	fmt.Fprintf(w, "Run %s: %s, %d rows\n", run.ID, run.Status, run.RowCount)
	if len(runErrors) == 0 {
		fmt.Fprintln(w, "No errors recorded.")
		return
	}
	for _, e := range runErrors {
		fmt.Fprintf(w, "  %s  %s\n", e.CreatedAt.Local().Format("2006-01-02 15:04:05"), e.Message)
	}
}
