package main

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"pwviz/internal/datalib"
	"pwviz/internal/metric"
	"pwviz/internal/render"
	"pwviz/internal/stats"
)

type avrOptions struct {
	recent   string
	metrics  []string
	column   string
	interval int
	output   string
	csvPath  string
}

func newAvrCmd(a *app) *cobra.Command {
	var opts avrOptions
	cmd := &cobra.Command{
		Use:   "avr <run-dir|AvrMetric.plt>...",
		Short: "Average AvrMetric values across runs per timestep",
		Long: "Averages each metric of brain/<recent>/AvrMetric.plt across runs at every\n" +
			"timestep. With --legacy-interval the arguments are instead legacy files of\n" +
			"one value per line, sampled every interval steps.",
		Args: usageArgs(cobra.MinimumNArgs(1)),
		RunE: func(_ *cobra.Command, args []string) error {
			if opts.interval > 0 {
				return a.runLegacyAvr(args, opts)
			}
			return a.runAvr(args, opts)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.recent, "recent", "Recent", "brain recent directory type")
	f.StringSliceVar(&opts.metrics, "metric", metric.MetricTypes, "metric tables to plot")
	f.StringVar(&opts.column, "column", "mean", "value column of each metric table")
	f.IntVar(&opts.interval, "legacy-interval", 0, "read legacy metric files sampled every n steps")
	f.StringVarP(&opts.output, "output", "o", "avr.png", "output file (.png or .svg)")
	f.StringVar(&opts.csvPath, "csv", "", "also write the averaged points to this CSV file")
	return cmd
}

// avrFile accepts a run directory or the AvrMetric.plt inside one.
func avrFile(arg, recent string) (string, error) {
	if filepath.Base(arg) != metric.AvrFileName {
		return metric.AvrPath(arg, recent), nil
	}
	if _, err := metric.RunDirFromAvr(arg, recent); err != nil {
		return "", usageError(err.Error())
	}
	return arg, nil
}

func (a *app) runAvr(args []string, opts avrOptions) error {
	if len(opts.metrics) == 0 {
		return usageError("--metric must name at least one metric")
	}
	if _, err := render.FormatFor(opts.output); err != nil {
		return usageError(err.Error())
	}
	paths := make([]string, len(args))
	for i, arg := range args {
		path, err := avrFile(arg, opts.recent)
		if err != nil {
			return err
		}
		paths[i] = path
	}
	avrs, err := datalib.ParseAll(paths, opts.metrics, true)
	if err != nil {
		return err
	}

	averaged := make(map[string][]stats.PlotPoint, len(opts.metrics))
	for _, m := range opts.metrics {
		perRun := make([]map[int]float64, 0, len(paths))
		for _, path := range paths {
			keyed, err := avrs[path][m].KeyedColumn("Timestep", opts.column)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			perRun = append(perRun, keyed)
		}
		averaged[m] = stats.AverageAcross(perRun)
	}
	if err := a.writeAvr(opts, opts.metrics, averaged); err != nil {
		return err
	}
	a.logger.Info("avr plot written", "output", opts.output, "runs", len(paths), "metrics", len(opts.metrics))
	return nil
}

func (a *app) runLegacyAvr(paths []string, opts avrOptions) error {
	if _, err := render.FormatFor(opts.output); err != nil {
		return usageError(err.Error())
	}
	lists := make([][]float64, len(paths))
	for i, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		values, err := datalib.ParseLegacyMetrics(f)
		_ = f.Close()
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		lists[i] = values
	}
	name := "legacy"
	if len(opts.metrics) == 1 {
		name = opts.metrics[0]
	}
	averaged := map[string][]stats.PlotPoint{
		name: stats.AveragePositional(lists, opts.interval, opts.interval),
	}
	if err := a.writeAvr(opts, []string{name}, averaged); err != nil {
		return err
	}
	a.logger.Info("legacy avr plot written", "output", opts.output, "files", len(paths))
	return nil
}

// writeAvr prints, exports and plots averaged series as mean lines with
// standard error bands.
func (a *app) writeAvr(opts avrOptions, names []string, averaged map[string][]stats.PlotPoint) error {
	chart := render.BandChart{Title: "Average Metrics", XLabel: "Timestep", YLabel: "Metric"}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, m := range names {
		label := m
		if name, err := metric.Name(m); err == nil {
			label = name
		}
		band := render.Band{Label: label}
		for _, p := range averaged[m] {
			band.Steps = append(band.Steps, float64(p.Index))
			band.Mean = append(band.Mean, p.Value)
			band.Spread = append(band.Spread, p.StdErr)
			lo = math.Min(lo, p.Value-p.StdErr)
			hi = math.Max(hi, p.Value+p.StdErr)
			fmt.Fprintf(a.out, "%s\t%d\t%g\t%g\t%d\n", m, p.Index, p.Value, p.StdErr, p.N)
		}
		chart.Bands = append(chart.Bands, band)
	}
	if math.IsInf(lo, 0) {
		return fmt.Errorf("no metric rows to average")
	}
	pad := math.Max((hi-lo)*0.05, 0.01)
	chart.YMin, chart.YMax = lo-pad, hi+pad

	if opts.csvPath != "" {
		if err := stats.WritePlotPointsCSV(opts.csvPath, names, averaged); err != nil {
			return fmt.Errorf("write %s: %w", opts.csvPath, err)
		}
	}
	c, err := chart.Chart()
	if err != nil {
		return err
	}
	return render.Save(opts.output, c)
}
