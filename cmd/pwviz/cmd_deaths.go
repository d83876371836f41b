package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDeathsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deaths [run-dir]",
		Short: "Print the time-of-death index of a run",
		Args:  usageArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			runDir := a.runDir(args)
			deaths, err := a.deathIndex(cmd.Context(), runDir)
			if err != nil {
				return err
			}
			for _, id := range deaths.SortedAgents() {
				fmt.Fprintf(a.out, "%d\t%d\n", id, deaths[id])
			}
			a.logger.Info("death index", "run_dir", runDir, "agents", len(deaths))
			return nil
		},
	}
	cmd.Flags().String("run", "", "run directory (default ../run/)")
	return cmd
}
