package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"aftermarket-report/internal/aftermarket"
	"aftermarket-report/internal/export"
	"aftermarket-report/internal/mailer"
	"aftermarket-report/internal/model"
	"aftermarket-report/pkg/utils"
)

func newReportCmd() *cobra.Command {
	var (
		filters     model.FilterSet
		out         string
		save        bool
		selection   string
		selectStore string
		email       string
		user        string
		timeout     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Run the After Market report",
		Long: `Runs the report for a plant and primary store and prints it, or writes it
to a file when --out is given (.xlsx, .csv or .json).

Examples:
  # Print the report
  aftermarket report --plant 000123 --store 01

  # Narrow by vendor part and save as a workbook
  aftermarket report --plant 000123 --store 01 --vendor-pn ABC --out report.xlsx

  # Keep a copy under the export directory, named after the run
  aftermarket report --plant 000123 --store 01 --save

  # Log rows 0 and 2 for store 02 and email the report
  aftermarket report --plant 000123 --store 01 --select 0,2 --select-store 02 --email boss@example.com`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !filters.HasRequired() {
				return fmt.Errorf("--plant and --store are required")
			}
			indexes, err := utils.SplitIndexes(selection)
			if err != nil {
				return fmt.Errorf("invalid --select: %w", err)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			a, err := newApp(envFile)
			if err != nil {
				return err
			}
			defer a.close()

			runID, rows, err := a.service.RunReport(ctx, filters)
			if err != nil {
				return err
			}

			if save && out == "" {
				if out, err = export.DefaultPath(a.cfg.ExportDir, runID, time.Now()); err != nil {
					return err
				}
			}

			if out != "" {
				res, err := export.ToFile(out, runID, rows)
				if err != nil {
					return err
				}
				cmd.Printf("Exported %d rows to %s\n", res.RecordCount, res.Path)
			} else {
				printRows(cmd.OutOrStdout(), rows)
			}

			picked, err := pick(rows, indexes)
			if err != nil {
				return err
			}

			if user == "" {
				user = aftermarket.ResolveUser(nil, os.Getenv)
			}

			if len(picked) > 0 {
				storeCode := selectStore
				if storeCode == "" {
					storeCode = filters.PrimaryStore
				}
				n, err := a.service.AppendSelection(ctx, user, storeCode, picked)
				if err != nil {
					return err
				}
				cmd.Printf("Logged %d rows for store %s\n", n, strings.TrimSpace(storeCode))
			}

			if email != "" {
				err := a.service.SendEmail(ctx, mailer.Request{
					Recipient: email,
					User:      user,
					Main:      rows,
					Selection: picked,
				})
				if err != nil {
					return err
				}
				cmd.Printf("Report emailed to %s\n", email)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&filters.Plant, "plant", "", "Plant code (required)")
	cmd.Flags().StringVar(&filters.PrimaryStore, "store", "", "Primary store (required)")
	cmd.Flags().StringVar(&filters.ClientName, "client", "", "Client name contains")
	cmd.Flags().StringVar(&filters.ClientPartNumber, "client-pn", "", "Client part number contains")
	cmd.Flags().StringVar(&filters.VendorPartNumber, "vendor-pn", "", "Vendor part number contains")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Write the report to a file instead of printing it")
	cmd.Flags().BoolVar(&save, "save", false, "Write the report as xlsx under EXPORT_DIR/<run-id>/")
	cmd.Flags().StringVar(&selection, "select", "", "Comma separated row indexes to log")
	cmd.Flags().StringVar(&selectStore, "select-store", "", "Store whose columns are logged (defaults to --store)")
	cmd.Flags().StringVar(&email, "email", "", "Email the report to this address")
	cmd.Flags().StringVar(&user, "user", "", "User recorded in the log (defaults to the OS user)")
	cmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "Time limit for the whole command")

	return cmd
}

func pick(rows []model.Row, indexes []int) ([]model.Row, error) {
	picked := make([]model.Row, 0, len(indexes))
	for _, i := range indexes {
		if i >= len(rows) {
			return nil, fmt.Errorf("row %d out of range (report has %d rows)", i, len(rows))
		}
		picked = append(picked, rows[i])
	}
	return picked, nil
}

func printRows(w io.Writer, rows []model.Row) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "No rows found.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	header := export.Header(rows)
	fmt.Fprintf(tw, "#\t%s\n", strings.Join(header, "\t"))
	for i, row := range rows {
		values := make([]string, len(header))
		for j, col := range header {
			v, _ := row.Get(col)
			values[j] = utils.FormatValue(v)
		}
		fmt.Fprintf(tw, "%d\t%s\n", i, strings.Join(values, "\t"))
	}
	tw.Flush()
	fmt.Fprintf(w, "\n%d rows\n", len(rows))
}
