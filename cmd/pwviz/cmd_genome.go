package main

import (
	"errors"
	"fmt"
	"math"

	"github.com/spf13/cobra"

	"pwviz/internal/lifespan"
	"pwviz/internal/model"
	"pwviz/internal/render"
	"pwviz/internal/run"
	"pwviz/internal/stats"
)

type genomeOptions struct {
	genes  []int
	stop   int
	stride int
	title  string
	output string
}

func newGenomeCmd(a *app) *cobra.Command {
	var opts genomeOptions
	cmd := &cobra.Command{
		Use:   "genome",
		Short: "Mean raw gene value over time with a +-std band",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runGenome(a.cfg.RunDir.Value, opts)
		},
	}
	f := cmd.Flags()
	f.String("run", "", "run directory (default ../run/)")
	f.IntSliceVar(&opts.genes, "genes", []int{model.GeneSize, model.GeneInternalNeuralGroups}, "gene indexes to plot")
	f.IntVar(&opts.stop, "stop", 0, "last step (exclusive); 0 uses the end of the run")
	f.IntVar(&opts.stride, "stride", 5, "sample every n-th step")
	f.StringVar(&opts.title, "title", "Size and Internal Neural Group Count (INGC)", "chart title")
	f.StringVarP(&opts.output, "output", "o", "genome.png", "output file (.png or .svg)")
	return cmd
}

func (a *app) runGenome(runDir string, opts genomeOptions) error {
	if len(opts.genes) == 0 {
		return usageError("--genes must name at least one gene")
	}
	if opts.stride <= 0 {
		return usageError("--stride must be > 0")
	}
	if opts.stop < 0 {
		return usageError("--stop must be >= 0")
	}
	if _, err := render.FormatFor(opts.output); err != nil {
		return usageError(err.Error())
	}

	agents, err := run.LoadAgents(runDir, run.LoadOptions{})
	if err != nil {
		return err
	}
	stop := opts.stop
	if stop == 0 {
		for _, ag := range agents {
			stop = max(stop, ag.Death)
		}
	}
	if stop == 0 {
		return fmt.Errorf("%s: no agents in %s", runDir, lifespan.LogFileName)
	}
	pops := lifespan.Populations(agents, 0, stop)

	chart := render.BandChart{
		Title:  opts.title,
		XLabel: "Time",
		YLabel: "Raw Gene Value",
		YMin:   0,
		YMax:   model.MaxGeneValue,
	}
	for gi, gene := range opts.genes {
		band := render.Band{
			Label: model.GeneLabel(gene),
			Color: render.Jet(float64(gi) / float64(len(opts.genes))),
		}
		gaps := 0
		for step := 0; step < stop; step += opts.stride {
			stat, err := stats.AggregateGroup(pops[step],
				func(ag model.Agent) float64 { return float64(ag.Genome[gene]) },
				func(ag model.Agent) bool { return gene >= 0 && gene < len(ag.Genome) })
			band.Steps = append(band.Steps, float64(step))
			if errors.Is(err, stats.ErrEmptyGroup) {
				gaps++
				band.Mean = append(band.Mean, math.NaN())
				band.Spread = append(band.Spread, 0)
				continue
			}
			if err != nil {
				return fmt.Errorf("gene %d step %d: %w", gene, step, err)
			}
			band.Mean = append(band.Mean, stat.Mean)
			band.Spread = append(band.Spread, stat.Std)
		}
		if gaps > 0 {
			a.logger.Debug("steps without agents", "gene", gene, "gaps", gaps)
		}
		chart.Bands = append(chart.Bands, band)
	}

	c, err := chart.Chart()
	if err != nil {
		return err
	}
	if err := render.Save(opts.output, c); err != nil {
		return err
	}
	a.logger.Info("genome plot written", "output", opts.output, "steps", stop)
	fmt.Fprintln(a.out, opts.output)
	return nil
}
