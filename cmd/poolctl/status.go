package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/qa-platform/fixturepool/internal/maintenance"
)

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show available and claimed items per pool",
		// Never fails: connectivity problems are printed as guidance.
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()

			if !a.store.Available(cmd.Context()) {
				fmt.Fprintf(out, "Cannot connect to store at %s.\n%s\n", a.cfg.RedisAddr(), startRedisHint)
				return nil
			}

			report, err := maintenance.Collect(cmd.Context(), a.store)
			if err != nil {
				fmt.Fprintf(out, "Could not read pool status: %v\n", err)
				return nil
			}
			renderStatus(out, report)
			return nil
		},
	}
}

func renderStatus(out io.Writer, report maintenance.Report) {
	for _, key := range report.Skipped {
		fmt.Fprintf(out, "warning: skipped %s: not a list\n", key)
	}
	if len(report.Pools) == 0 {
		fmt.Fprintln(out, "No pools found. Run `poolctl seed` to create pools.")
		return
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "POOL\tAVAILABLE\tPROCESSING\tWORKERS\tUTILIZATION")
	for _, p := range report.Pools {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%.1f%%\n", p.Pool, p.Available, p.Processing, p.Workers, p.Utilization)
	}
	_ = tw.Flush()
}
