package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pwviz/internal/metric"
	"pwviz/internal/render"
	"pwviz/internal/run"
	"pwviz/internal/series"
)

type scatterOptions struct {
	xType   string
	yType   string
	driven  bool
	passive bool
	both    bool
	limitX  float64
	limitY  float64
	noHF    bool
	output  string
}

func newScatterCmd(a *app) *cobra.Command {
	var opts scatterOptions
	cmd := &cobra.Command{
		Use:   "scatter [run-dir]",
		Short: "Scatter one metric against another over every timestep",
		Args:  usageArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runScatter(cmd, a.runDir(args), opts)
		},
	}
	f := cmd.Flags()
	f.String("run", "", "run directory (default ../run/)")
	f.StringVarP(&opts.xType, "x-data-type", "x", metric.TimeType, "x axis data type")
	f.StringVarP(&opts.yType, "y-data-type", "y", "P", "y axis data type")
	f.BoolVarP(&opts.driven, "driven", "d", false, "plot the driven run")
	f.BoolVarP(&opts.passive, "passive", "p", false, "plot the passive run (default)")
	f.BoolVarP(&opts.both, "both", "b", false, "plot the passive run and its driven sibling")
	f.Float64Var(&opts.limitX, "limit-x", 0, "clamp x Mean values to this limit when > 0")
	f.Float64Var(&opts.limitY, "limit-y", 0, "clamp y Mean values to this limit when > 0")
	f.BoolVar(&opts.noHF, "no-hf", false, "colour by time instead of heuristic fitness")
	f.StringVarP(&opts.output, "output", "o", "scatter.png", "output file (.png or .svg)")
	return cmd
}

type scatterTarget struct {
	dir   string
	group string
}

func scatterTargets(runDir string, opts scatterOptions) ([]scatterTarget, error) {
	selected := 0
	for _, set := range []bool{opts.driven, opts.passive, opts.both} {
		if set {
			selected++
		}
	}
	if selected > 1 {
		return nil, usageError("use only one of --driven, --passive, --both")
	}
	switch {
	case opts.driven:
		return []scatterTarget{{dir: runDir, group: run.GroupDriven}}, nil
	case opts.both:
		passive, err := run.SiblingDir(runDir, run.GroupPassive)
		if err != nil {
			return nil, err
		}
		driven, err := run.SiblingDir(runDir, run.GroupDriven)
		if err != nil {
			return nil, err
		}
		return []scatterTarget{{dir: passive, group: run.GroupPassive}, {dir: driven, group: run.GroupDriven}}, nil
	default:
		return []scatterTarget{{dir: runDir, group: run.GroupPassive}}, nil
	}
}

func (a *app) runScatter(cmd *cobra.Command, runDir string, opts scatterOptions) error {
	if _, err := render.FormatFor(opts.output); err != nil {
		return usageError(err.Error())
	}
	targets, err := scatterTargets(runDir, opts)
	if err != nil {
		return err
	}

	usesTime := opts.xType == metric.TimeType || opts.yType == metric.TimeType
	var layers []render.ScatterLayer
	for _, target := range targets {
		pairOpts := series.PairOptions{LimitX: opts.limitX, LimitY: opts.limitY, UseHF: !opts.noHF}
		if usesTime {
			pairOpts.Deaths, err = a.deathIndex(cmd.Context(), target.dir)
			if err != nil {
				return err
			}
		}
		pairs, maxStep, err := series.Collect(target.dir, opts.xType, opts.yType, pairOpts, a.logger)
		if err != nil {
			return err
		}
		layer := render.ScatterLayer{Label: target.group}
		for _, sp := range pairs {
			frac := 0.0
			if maxStep > 0 {
				frac = float64(sp.Step) / float64(maxStep)
			}
			for i := range sp.Pair.X.Values {
				color := render.TimeColor(frac, target.group)
				if sp.Pair.HF != nil {
					color = render.HFColor(sp.Pair.HF[i])
				}
				layer.Points = append(layer.Points, render.ScatterPoint{
					X:     sp.Pair.X.Values[i],
					Y:     sp.Pair.Y.Values[i],
					Color: color,
				})
			}
		}
		a.logger.Info("timesteps collected", "run_dir", target.dir, "group", target.group, "timesteps", len(pairs), "points", len(layer.Points))
		layers = append(layers, layer)
	}

	xLabel, yLabel := metric.AxisLabel(opts.xType), metric.AxisLabel(opts.yType)
	c, err := render.ScatterChart{
		Title:    yLabel + " vs. " + xLabel + " - Scatter Plot",
		XLabel:   xLabel,
		YLabel:   yLabel,
		Layers:   layers,
		DotWidth: 3,
		Width:    1100,
		Height:   850,
	}.Chart()
	if err != nil {
		return fmt.Errorf("scatter %s vs %s: %w", opts.yType, opts.xType, err)
	}
	if err := render.Save(opts.output, c); err != nil {
		return err
	}
	a.logger.Info("scatter written", "output", opts.output)
	fmt.Fprintln(a.out, opts.output)
	return nil
}
