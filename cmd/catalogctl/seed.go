package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rise-and-shine/catalog/catalog"
)

func newSeedCmd(current func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Fill the catalog with demo regions, amenities and housings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := current()
			if a.cfg.Storage == storageMemory {
				fmt.Fprintln(cmd.OutOrStdout(), "memory storage is seeded on start, nothing to do")
				return nil
			}
			if err := a.seeder.Execute(cmd.Context(), catalog.DemoData()); err != nil {
				printError(cmd.ErrOrStderr(), err)
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "catalog seeded")
			return nil
		},
	}
}
