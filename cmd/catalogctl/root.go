package main

import (
	"github.com/spf13/cobra"

	"github.com/rise-and-shine/catalog/cfgloader"
)

type rootFlags struct {
	configDir   string
	environment string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	var a *app

	cmd := &cobra.Command{
		Use:           "catalogctl",
		Short:         "Manage and query the housing catalog",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := cfgloader.Load[Config](
				cfgloader.WithDir(flags.configDir),
				cfgloader.WithEnvironment(flags.environment),
			)
			if err != nil {
				printError(cmd.ErrOrStderr(), err)
				return err
			}

			a, err = newApp(cmd.Context(), cfg)
			if err != nil {
				printError(cmd.ErrOrStderr(), err)
				return err
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if a != nil {
				a.close(cmd.Context())
			}
		},
	}

	cmd.PersistentFlags().StringVar(&flags.configDir, "config-dir", "./config", "directory holding ${ENVIRONMENT}.yaml")
	cmd.PersistentFlags().StringVar(&flags.environment, "env", "", "environment to load, overrides ENVIRONMENT")

	current := func() *app { return a }
	cmd.AddCommand(
		newSeedCmd(current),
		newHousingsCmd(current),
		newRegionsCmd(current),
		newAmenitiesCmd(current),
	)
	return cmd
}
