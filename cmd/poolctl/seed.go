package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/qa-platform/fixturepool/domain"
	"github.com/qa-platform/fixturepool/internal/backend"
	"github.com/qa-platform/fixturepool/internal/factory"
	"github.com/qa-platform/fixturepool/internal/fallback"
	"github.com/qa-platform/fixturepool/internal/maintenance"
	"github.com/qa-platform/fixturepool/internal/ratelimiter"
)

const startRedisHint = "Start Redis with: docker-compose up -d redis"

func newSeedCmd(a *app) *cobra.Command {
	var opts maintenance.SeedOptions

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Top up the pools to their configured targets",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()

			api := backend.NewClient(a.cfg.APIBaseURL, a.cfg.APITimeout, ratelimiter.New(a.cfg.ProvisionRateLimit))
			gen := fallback.New(factory.NewUserFactory(0), api, a.logger)
			seeder := maintenance.NewSeeder(a.store, gen, a.cfg.Seeds, a.cfg.ProvisionConcurrency, a.logger)

			results, err := seeder.Run(cmd.Context(), opts)
			if errors.Is(err, domain.ErrStoreUnavailable) {
				return fmt.Errorf("Cannot connect to store at %s. %s", a.cfg.RedisAddr(), startRedisHint)
			}
			if err != nil {
				return err
			}

			for _, r := range results {
				switch {
				case r.Skipped:
					fmt.Fprintf(out, "%s: %d available, skipped (use --force to top up)\n", r.Pool, r.Before)
				case r.Failed > 0:
					fmt.Fprintf(out, "%s: added %d, %d failed\n", r.Pool, r.Added, r.Failed)
				default:
					fmt.Fprintf(out, "%s: added %d\n", r.Pool, r.Added)
				}
			}

			fmt.Fprintln(out, "\nFinal availability:")
			for _, r := range results {
				fmt.Fprintf(out, "  %s: %d\n", r.Pool, r.After)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.Force, "force", false, "seed even when a pool is above its minimum")
	cmd.Flags().StringSliceVar(&opts.Pools, "pool", nil, "only seed these pools (repeatable)")
	return cmd
}
