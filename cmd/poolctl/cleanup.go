package main

import (
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/qa-platform/fixturepool/internal/maintenance"
	"github.com/qa-platform/fixturepool/internal/worker"
)

func newCleanupCmd(a *app) *cobra.Command {
	var every time.Duration

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Recover stale claims and delete empty processing lists",
		Long: "Processing lists without an expiry are moved back into their pool; " +
			"lists with an active expiry are left alone. With --every the pass " +
			"repeats until interrupted.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			cleaner := maintenance.NewCleaner(a.store, a.logger)

			if every > 0 {
				ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
				defer stop()

				worker.NewReconciler(cleaner, every, a.logger, nil).Run(ctx)
				return nil
			}

			if !a.store.Available(cmd.Context()) {
				fmt.Fprintf(out, "Cannot connect to store at %s.\n%s\n", a.cfg.RedisAddr(), startRedisHint)
				return nil
			}

			res, err := cleaner.Cleanup(cmd.Context())
			if err != nil {
				fmt.Fprintf(out, "Cleanup failed: %v\n", err)
				return nil
			}
			renderCleanup(out, res)
			return nil
		},
	}

	cmd.Flags().DurationVar(&every, "every", 0, "repeat cleanup on this interval until interrupted")
	return cmd
}

func renderCleanup(out io.Writer, res maintenance.CleanupResult) {
	if len(res.Entries) == 0 {
		fmt.Fprintln(out, "No processing lists found.")
	}
	for _, e := range res.Entries {
		switch e.Action {
		case maintenance.ActionDeletedEmpty:
			fmt.Fprintf(out, "deleted empty   %s\n", e.Key)
		case maintenance.ActionRecovered:
			fmt.Fprintf(out, "recovered %-5d %s\n", e.Recovered, e.Key)
		case maintenance.ActionActive:
			fmt.Fprintf(out, "active    %-5d %s (expires in %s)\n", e.Items, e.Key, e.TTL)
		case maintenance.ActionFailed:
			fmt.Fprintf(out, "failed          %s: %v\n", e.Key, e.Err)
		}
	}

	fmt.Fprintln(out, "\nAvailability after cleanup:")
	renderStatus(out, res.After)
}
