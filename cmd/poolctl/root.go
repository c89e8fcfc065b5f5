package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/qa-platform/fixturepool/internal/config"
	"github.com/qa-platform/fixturepool/internal/store"
)

// app carries what every subcommand needs. It is filled in by the root
// command's PersistentPreRunE and torn down in PersistentPostRun.
type app struct {
	verbose bool

	cfg    *config.Config
	logger *zap.Logger
	store  *store.Store
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "poolctl",
		Short:         "Manage the shared test fixture pools",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			a.close()
		},
	}
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "development logging at debug level")

	root.AddCommand(
		newSeedCmd(a),
		newStatusCmd(a),
		newCleanupCmd(a),
		newServeCmd(a),
	)
	return root
}

func (a *app) init() error {
	var err error
	if a.verbose {
		a.logger, err = zap.NewDevelopment()
	} else {
		a.logger, err = zap.NewProduction()
	}
	if err != nil {
		return err
	}

	a.cfg, err = config.Load()
	if err != nil {
		return err
	}
	a.store = store.NewFromConfig(a.cfg, a.logger)
	return nil
}

func (a *app) close() {
	if a.store != nil {
		_ = a.store.Close()
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}
