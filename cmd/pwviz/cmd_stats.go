package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"pwviz/internal/stats"
)

func newStatsCmd(a *app) *cobra.Command {
	var statsFlags struct {
		key     string
		jsonOut bool
		csvPath string
	}
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "List or print stored group statistics",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if statsFlags.key == "" {
				keys, err := a.store.ListGroupStats(ctx)
				if err != nil {
					return err
				}
				if len(keys) == 0 {
					fmt.Fprintln(a.out, "no stored statistics")
					return nil
				}
				for _, key := range keys {
					fmt.Fprintln(a.out, key)
				}
				return nil
			}

			record, ok, err := a.store.GetGroupStats(ctx, statsFlags.key)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("no statistics stored under %q", statsFlags.key)
			}
			if statsFlags.csvPath != "" {
				if err := stats.WriteGroupStatsCSV(statsFlags.csvPath, record); err != nil {
					return err
				}
				fmt.Fprintln(a.out, statsFlags.csvPath)
				return nil
			}
			if statsFlags.jsonOut {
				enc := json.NewEncoder(a.out)
				enc.SetIndent("", "  ")
				return enc.Encode(record)
			}
			fmt.Fprintf(a.out, "key:    %s\n", record.Key)
			fmt.Fprintf(a.out, "source: %s\n", record.Source)
			fmt.Fprintf(a.out, "series\t%s\n", strings.Join(record.Labels, "\t"))
			for _, row := range record.Series {
				cells := make([]string, len(row.Mean))
				for i := range row.Mean {
					cells[i] = fmt.Sprintf("%.4f±%.4f", row.Mean[i], row.StdErr[i])
				}
				fmt.Fprintf(a.out, "%s\t%s\n", row.Label, strings.Join(cells, "\t"))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&statsFlags.key, "key", "", "statistics key to print")
	cmd.Flags().BoolVar(&statsFlags.jsonOut, "json", false, "print the record as JSON")
	cmd.Flags().StringVar(&statsFlags.csvPath, "csv", "", "export the record to this CSV file instead of printing it")
	return cmd
}
