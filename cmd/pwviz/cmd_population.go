package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"pwviz/internal/cluster"
	"pwviz/internal/lifespan"
	"pwviz/internal/model"
	"pwviz/internal/render"
)

type populationOptions struct {
	minSize  int
	stride   int
	fraction bool
	output   string
}

func newPopulationCmd(a *app) *cobra.Command {
	var opts populationOptions
	cmd := &cobra.Command{
		Use:   "population <cluster-file>",
		Short: "Living agents per cluster over time",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runPopulation(a.cfg.RunDir.Value, args[0], opts)
		},
	}
	f := cmd.Flags()
	f.String("run", "", "run directory (default ../run/)")
	f.IntVar(&opts.minSize, "min-size", cluster.DefaultMinSize, "fold clusters smaller than this into misc")
	f.IntVar(&opts.stride, "stride", 1, "sample every n-th step")
	f.BoolVar(&opts.fraction, "fraction", false, "plot each cluster's share of the living clustered agents")
	f.StringVarP(&opts.output, "output", "o", "population.png", "output file (.png or .svg)")
	return cmd
}

// clusterLabels names compressed clusters by position with the trailing
// cluster called misc.
func clusterLabels(clusters []model.Cluster) []string {
	labels := make([]string, len(clusters))
	for i := range clusters {
		labels[i] = strconv.Itoa(i)
	}
	if len(labels) > 0 {
		labels[len(labels)-1] = "misc"
	}
	return labels
}

func (a *app) runPopulation(runDir, clusterFile string, opts populationOptions) error {
	if opts.stride <= 0 {
		return usageError("--stride must be > 0")
	}
	if _, err := render.FormatFor(opts.output); err != nil {
		return usageError(err.Error())
	}

	clusters, err := cluster.LoadFile(clusterFile, cluster.LoadOptions{Order: cluster.OrderFile})
	if err != nil {
		return err
	}
	compressed := cluster.Compress(clusters, opts.minSize)
	index, err := cluster.AgentIndex(compressed)
	if err != nil {
		return fmt.Errorf("%s: %w", clusterFile, err)
	}

	spans, err := lifespan.LoadLifespans(runDir)
	if err != nil {
		return err
	}
	stop := spans.LastStep()
	spans = spans.Close(stop)
	if stop <= 0 {
		return fmt.Errorf("%s: no lifecycle events", runDir)
	}
	counts := lifespan.CountByGroup(spans, index, len(compressed), 0, stop)

	var totals []float64
	if opts.fraction {
		totals = make([]float64, stop)
		for _, row := range counts {
			for step, n := range row {
				totals[step] += n
			}
		}
	}

	labels := clusterLabels(compressed)
	lc := render.LineChart{
		Title:  "Cluster Population",
		XLabel: "Time",
		YLabel: "Living Agents",
	}
	if opts.fraction {
		lc.YLabel = "Population Share"
		lc.YMin, lc.YMax = 0, 1
	}
	for g, row := range counts {
		line := render.Line{Label: labels[g]}
		for step := 0; step < stop; step += opts.stride {
			v := row[step]
			if opts.fraction {
				if totals[step] == 0 {
					continue
				}
				v /= totals[step]
			}
			line.Steps = append(line.Steps, float64(step))
			line.Values = append(line.Values, v)
		}
		lc.Lines = append(lc.Lines, line)
	}

	c, err := lc.Chart()
	if err != nil {
		return err
	}
	if err := render.Save(opts.output, c); err != nil {
		return err
	}
	a.logger.Info("population plot written", "output", opts.output, "clusters", len(compressed), "steps", stop)
	fmt.Fprintln(a.out, opts.output)
	return nil
}
