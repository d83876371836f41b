package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"pwviz/internal/datalib"
	"pwviz/internal/metric"
	"pwviz/internal/render"
	"pwviz/internal/stats"
)

type histOptions struct {
	dataType string
	legacy   bool
	bins     int
	output   string
}

func newHistCmd(a *app) *cobra.Command {
	var opts histOptions
	cmd := &cobra.Command{
		Use:   "hist <metric-file>...",
		Short: "Distribution of a per-agent metric, one bar group per file",
		Long: "Reads per-agent values from complexity_<type>.plt or metric_<type>.plt\n" +
			"files (or legacy one-value-per-line files with --legacy), drops zero\n" +
			"entries and plots the share of agents in each bin.",
		Args: usageArgs(cobra.MinimumNArgs(1)),
		RunE: func(_ *cobra.Command, args []string) error {
			return a.runHist(args, opts)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.dataType, "type", "", "table to read (default from the file name)")
	f.BoolVar(&opts.legacy, "legacy", false, "files hold one value per line")
	f.IntVar(&opts.bins, "bins", stats.DefaultBins, "number of bins")
	f.StringVarP(&opts.output, "output", "o", "hist.png", "output file (.png or .svg)")
	return cmd
}

// loadMetricValues returns the normalized values of one file and the data
// type they were read as.
func loadMetricValues(path string, opts histOptions) ([]float64, string, error) {
	if opts.legacy {
		f, err := os.Open(path)
		if err != nil {
			return nil, "", err
		}
		defer f.Close()
		values, err := datalib.ParseLegacyMetrics(f)
		if err != nil {
			return nil, "", fmt.Errorf("%s: %w", path, err)
		}
		return metric.Normalize(values), opts.dataType, nil
	}

	dataType := opts.dataType
	if dataType == "" {
		t, ok := metric.TypeFromFileName(path)
		if !ok {
			return nil, "", usageError(fmt.Sprintf("cannot tell the data type of %s; set --type", path))
		}
		dataType = t
	}
	table, err := datalib.ParseTable(path, dataType)
	if err != nil {
		return nil, "", err
	}
	values, _, err := table.FirstColumn("Mean", "Complexity")
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", path, err)
	}
	return metric.Normalize(values), dataType, nil
}

func (a *app) runHist(paths []string, opts histOptions) error {
	if opts.bins <= 0 {
		return usageError("--bins must be > 0")
	}
	if _, err := render.FormatFor(opts.output); err != nil {
		return usageError(err.Error())
	}

	lists := make([][]float64, len(paths))
	dataType := opts.dataType
	for i, path := range paths {
		values, t, err := loadMetricValues(path, opts)
		if err != nil {
			return err
		}
		if len(values) == 0 {
			return fmt.Errorf("%s: no non-zero values", path)
		}
		if dataType == "" {
			dataType = t
		}
		lists[i] = values
		a.logger.Debug("metric values loaded", "file", path, "values", len(values))
	}

	lo, hi := lists[0][0], lists[0][len(lists[0])-1]
	for _, values := range lists[1:] {
		lo = min(lo, values[0])
		hi = max(hi, values[len(values)-1])
	}

	bars := render.BarChart{
		Title:  "Distribution",
		XLabel: "Bin",
		YLabel: "Fraction of Agents",
		YMin:   0,
		YMax:   1,
	}
	if dataType != "" {
		bars.Title = metric.AxisLabel(dataType) + " Distribution"
		bars.XLabel = metric.AxisLabel(dataType)
	}
	for i, values := range lists {
		bins, err := stats.Histogram(values, lo, hi, opts.bins)
		if err != nil {
			return fmt.Errorf("%s: %w", paths[i], err)
		}
		if bars.ClusterLabels == nil {
			for _, b := range bins {
				bars.ClusterLabels = append(bars.ClusterLabels, strconv.FormatFloat((b.Lo+b.Hi)/2, 'g', 3, 64))
			}
		}
		group := render.BarGroup{Label: histLabel(paths, i)}
		for _, b := range bins {
			group.Means = append(group.Means, float64(b.Count)/float64(len(values)))
			group.StdErr = append(group.StdErr, 0)
			fmt.Fprintf(a.out, "%s\t%g\t%g\t%d\n", paths[i], b.Lo, b.Hi, b.Count)
		}
		bars.Groups = append(bars.Groups, group)
	}

	c, err := bars.Chart()
	if err != nil {
		return err
	}
	if err := render.Save(opts.output, c); err != nil {
		return err
	}
	a.logger.Info("histogram written", "output", opts.output, "files", len(paths), "bins", opts.bins)
	return nil
}

// histLabel names a file by its base name, or by its parent directory when
// every file shares the same base name (one metric across timesteps).
func histLabel(paths []string, i int) string {
	base := filepath.Base(paths[i])
	for _, p := range paths {
		if filepath.Base(p) != base {
			return base
		}
	}
	if len(paths) == 1 {
		return base
	}
	return filepath.Base(filepath.Dir(paths[i]))
}
