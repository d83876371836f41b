package stats

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"pwviz/internal/model"
)

var groupStatsHeader = []string{"series", "group", "label", "mean", "std_err", "n"}

var plotPointsHeader = []string{"series", "index", "value", "std_err", "n"}

// WriteGroupStatsCSV exports a record as one row per series and group, the
// data behind a bar chart.
func WriteGroupStatsCSV(path string, record model.GroupStatsRecord) error {
	return writeCSV(path, func(writer *csv.Writer) error {
		if err := writer.Write(groupStatsHeader); err != nil {
			return err
		}
		for _, row := range record.Series {
			if len(row.Mean) != len(record.Labels) || len(row.StdErr) != len(row.Mean) || len(row.N) != len(row.Mean) {
				return fmt.Errorf("series %s: %d values for %d groups", row.Label, len(row.Mean), len(record.Labels))
			}
			for i, label := range record.Labels {
				group := i
				if i < len(record.Groups) {
					group = record.Groups[i]
				}
				if err := writer.Write([]string{
					row.Label,
					strconv.Itoa(group),
					label,
					formatFloat(row.Mean[i]),
					formatFloat(row.StdErr[i]),
					strconv.Itoa(row.N[i]),
				}); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// ReadGroupStatsCSV inverts WriteGroupStatsCSV for checking an export. Series
// and groups come back in file order.
func ReadGroupStatsCSV(path string) (model.GroupStatsRecord, error) {
	rows, err := readCSV(path, len(groupStatsHeader))
	if err != nil {
		return model.GroupStatsRecord{}, err
	}
	record := model.GroupStatsRecord{Source: path}
	seenGroup := make(map[int]bool)
	bySeries := make(map[string]int)
	for _, fields := range rows {
		group, err := strconv.Atoi(fields[1])
		if err != nil {
			return model.GroupStatsRecord{}, fmt.Errorf("%s: group %q: %w", path, fields[1], err)
		}
		mean, err := strconv.ParseFloat(fields[3], 64)
		if err != nil {
			return model.GroupStatsRecord{}, fmt.Errorf("%s: mean %q: %w", path, fields[3], err)
		}
		stdErr, err := strconv.ParseFloat(fields[4], 64)
		if err != nil {
			return model.GroupStatsRecord{}, fmt.Errorf("%s: std_err %q: %w", path, fields[4], err)
		}
		n, err := strconv.Atoi(fields[5])
		if err != nil {
			return model.GroupStatsRecord{}, fmt.Errorf("%s: n %q: %w", path, fields[5], err)
		}
		if !seenGroup[group] {
			seenGroup[group] = true
			record.Groups = append(record.Groups, group)
			record.Labels = append(record.Labels, fields[2])
		}
		idx, ok := bySeries[fields[0]]
		if !ok {
			idx = len(record.Series)
			bySeries[fields[0]] = idx
			record.Series = append(record.Series, model.GroupStatsRow{Label: fields[0]})
		}
		row := &record.Series[idx]
		row.Mean = append(row.Mean, mean)
		row.StdErr = append(row.StdErr, stdErr)
		row.N = append(row.N, n)
	}
	return record, nil
}

// WritePlotPointsCSV exports averaged series keyed by name, in the order of
// names.
func WritePlotPointsCSV(path string, names []string, series map[string][]PlotPoint) error {
	return writeCSV(path, func(writer *csv.Writer) error {
		if err := writer.Write(plotPointsHeader); err != nil {
			return err
		}
		for _, name := range names {
			for _, p := range series[name] {
				if err := writer.Write([]string{
					name,
					strconv.Itoa(p.Index),
					formatFloat(p.Value),
					formatFloat(p.StdErr),
					strconv.Itoa(p.N),
				}); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// ReadPlotPointsCSV is the inverse of WritePlotPointsCSV, used to check
// exports.
func ReadPlotPointsCSV(path string) (map[string][]PlotPoint, error) {
	rows, err := readCSV(path, len(plotPointsHeader))
	if err != nil {
		return nil, err
	}
	out := make(map[string][]PlotPoint)
	for _, fields := range rows {
		var p PlotPoint
		if p.Index, err = strconv.Atoi(fields[1]); err != nil {
			return nil, fmt.Errorf("%s: index %q: %w", path, fields[1], err)
		}
		if p.Value, err = strconv.ParseFloat(fields[2], 64); err != nil {
			return nil, fmt.Errorf("%s: value %q: %w", path, fields[2], err)
		}
		if p.StdErr, err = strconv.ParseFloat(fields[3], 64); err != nil {
			return nil, fmt.Errorf("%s: std_err %q: %w", path, fields[3], err)
		}
		if p.N, err = strconv.Atoi(fields[4]); err != nil {
			return nil, fmt.Errorf("%s: n %q: %w", path, fields[4], err)
		}
		out[fields[0]] = append(out[fields[0]], p)
	}
	return out, nil
}

func writeCSV(path string, write func(*csv.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := write(writer); err != nil {
		return err
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}
	return file.Close()
}

// readCSV returns the data rows after checking the header width.
func readCSV(path string, columns int) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = columns
	if _, err := reader.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%s: missing header", path)
		}
		return nil, err
	}
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rows, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
