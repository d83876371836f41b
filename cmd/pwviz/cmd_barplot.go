package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"pwviz/internal/cluster"
	"pwviz/internal/model"
	"pwviz/internal/render"
	"pwviz/internal/run"
	"pwviz/internal/stats"
	"pwviz/internal/storage"
)

type barplotOptions struct {
	runDir     string
	minSize    int
	genes      []int
	complexity string
	population bool
	order      string
	seed       int64
	title      string
	output     string
	csvPath    string
}

func newBarplotCmd(a *app) *cobra.Command {
	var opts barplotOptions
	cmd := &cobra.Command{
		Use:   "barplot <cluster-file>",
		Short: "Gene values and complexity by cluster",
		Long:  "Plots the mean normalised gene values and complexity of every cluster\nlarger than --min-size, with standard error bars.",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.runDir = a.cfg.RunDir.Value
			return a.runBarplot(cmd, args[0], opts)
		},
	}
	f := cmd.Flags()
	f.String("run", "", "run directory (default ../run/)")
	f.IntVar(&opts.minSize, "min-size", cluster.DefaultMinSize, "plot clusters with more members than this")
	f.IntSliceVar(&opts.genes, "genes", []int{model.GeneStrength, model.GeneSize, model.GeneMateEnergy, model.GeneInternalNeuralGroups}, "gene indexes to plot")
	f.StringVar(&opts.complexity, "complexity", "P", "complexity type to plot; empty to skip")
	f.BoolVar(&opts.population, "population", false, "add each cluster's share of all clustered agents")
	f.StringVar(&opts.order, "order", cluster.OrderFile, "cluster order: file|size|random")
	f.Int64Var(&opts.seed, "seed", 1, "seed for --order random")
	f.StringVar(&opts.title, "title", "Representative Gene Values and Complexity by Cluster", "chart title")
	f.StringVarP(&opts.output, "output", "o", "fingerprints.png", "output file (.png or .svg)")
	f.StringVar(&opts.csvPath, "csv", "", "also write the plotted statistics to this CSV file")
	return cmd
}

func (a *app) runBarplot(cmd *cobra.Command, clusterFile string, opts barplotOptions) error {
	if opts.minSize < 0 {
		return usageError("--min-size must be >= 0")
	}
	if len(opts.genes) == 0 && opts.complexity == "" && !opts.population {
		return usageError("nothing to plot: set --genes, --complexity or --population")
	}
	if _, err := render.FormatFor(opts.output); err != nil {
		return usageError(err.Error())
	}

	clusters, err := cluster.LoadFile(clusterFile, cluster.LoadOptions{Order: opts.order, Seed: opts.seed})
	if err != nil {
		return err
	}
	if _, err := cluster.AgentIndex(clusters); err != nil {
		return fmt.Errorf("%s: %w", clusterFile, err)
	}
	large := cluster.FilterLarger(clusters, opts.minSize)
	if len(large) == 0 {
		return fmt.Errorf("no cluster in %s has more than %d members", clusterFile, opts.minSize)
	}
	a.logger.Info("clusters loaded", "file", clusterFile, "clusters", len(clusters), "plotted", len(large))

	agents, err := run.LoadAgents(opts.runDir, run.LoadOptions{
		ComplexityType: opts.complexity,
		SkipGenomes:    len(opts.genes) == 0,
	})
	if err != nil {
		return err
	}
	members := make([]model.Cluster, len(large))
	labels := make([]string, len(large))
	indexes := make([]int, len(large))
	for i, c := range large {
		members[i] = c.Members
		labels[i] = strconv.Itoa(c.Index)
		indexes[i] = c.Index
	}
	groups, err := run.Resolve(members, run.IndexAgents(agents))
	if err != nil {
		return err
	}

	record := model.GroupStatsRecord{
		VersionedRecord: storage.Versioned(),
		Key:             "barplot:" + absPath(clusterFile),
		Source:          clusterFile,
		Labels:          labels,
		Groups:          indexes,
	}
	for _, gene := range opts.genes {
		rowStats, err := stats.Aggregate(groups,
			func(ag model.Agent) float64 {
				v, _ := ag.GeneValue(gene)
				return v
			},
			func(ag model.Agent) bool {
				_, ok := ag.GeneValue(gene)
				return ok
			})
		if err != nil {
			return fmt.Errorf("gene %d: %w", gene, err)
		}
		record.Series = append(record.Series, statsRow(model.GeneLabel(gene), rowStats))
	}
	if opts.complexity != "" {
		rowStats, err := stats.Aggregate(groups,
			func(ag model.Agent) float64 { return ag.Complexity },
			func(ag model.Agent) bool { return ag.HasComplexity })
		if err != nil {
			return fmt.Errorf("complexity %s: %w", opts.complexity, err)
		}
		record.Series = append(record.Series, statsRow("Complexity", rowStats))
	}
	if opts.population {
		total := float64(model.CountAgents(clusters))
		row := model.GroupStatsRow{Label: "population"}
		for _, c := range members {
			row.Mean = append(row.Mean, float64(len(c))/total)
			row.StdErr = append(row.StdErr, 0)
			row.N = append(row.N, len(c))
		}
		record.Series = append(record.Series, row)
	}

	if err := a.store.SaveGroupStats(cmd.Context(), record); err != nil {
		return fmt.Errorf("save stats: %w", err)
	}
	if opts.csvPath != "" {
		if err := stats.WriteGroupStatsCSV(opts.csvPath, record); err != nil {
			return fmt.Errorf("write %s: %w", opts.csvPath, err)
		}
	}

	bars := render.BarChart{
		Title:         opts.title,
		XLabel:        "Cluster",
		YLabel:        "Normalized Value",
		ClusterLabels: labels,
		YMin:          0,
		YMax:          1,
	}
	for _, row := range record.Series {
		bars.Groups = append(bars.Groups, render.BarGroup{Label: row.Label, Means: row.Mean, StdErr: row.StdErr})
	}
	c, err := bars.Chart()
	if err != nil {
		return err
	}
	if err := render.Save(opts.output, c); err != nil {
		return err
	}
	a.logger.Info("barplot written", "output", opts.output, "key", record.Key)
	fmt.Fprintln(a.out, opts.output)
	return nil
}

func statsRow(label string, groups []stats.GroupStat) model.GroupStatsRow {
	row := model.GroupStatsRow{Label: label}
	for _, g := range groups {
		row.Mean = append(row.Mean, g.Mean)
		row.StdErr = append(row.StdErr, g.StdErr)
		row.N = append(row.N, g.N)
	}
	return row
}
