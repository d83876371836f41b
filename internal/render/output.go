package render

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/wcharczuk/go-chart/v2"
)

const (
	FormatPNG = "png"
	FormatSVG = "svg"
)

// FormatFor picks the output format from a file extension.
func FormatFor(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return FormatPNG, nil
	case ".svg":
		return FormatSVG, nil
	default:
		return "", fmt.Errorf("unsupported output format %q (want .png or .svg)", filepath.Ext(path))
	}
}

func Encode(w io.Writer, format string, c chart.Chart) error {
	var provider chart.RendererProvider
	switch format {
	case FormatPNG:
		provider = chart.PNG
	case FormatSVG:
		provider = chart.SVG
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
	return c.Render(provider, w)
}

// Save renders c into path. The file is only written once rendering succeeds.
func Save(path string, c chart.Chart) error {
	format, err := FormatFor(path)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := Encode(&buf, format, c); err != nil {
		return fmt.Errorf("render %s: %w", path, err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// paddedRange spans values with a margin so single-valued data still has a
// non-zero delta.
func paddedRange(values ...[]float64) *chart.ContinuousRange {
	lo, hi := 0.0, 0.0
	seen := false
	for _, vs := range values {
		for _, v := range vs {
			if !seen {
				lo, hi = v, v
				seen = true
				continue
			}
			lo = min(lo, v)
			hi = max(hi, v)
		}
	}
	if !seen {
		return &chart.ContinuousRange{Min: 0, Max: 1}
	}
	pad := (hi - lo) * 0.05
	if pad == 0 {
		pad = max(abs(hi)*0.05, 0.5)
	}
	return &chart.ContinuousRange{Min: lo - pad, Max: hi + pad}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func defaultSize(w, h int) (int, int) {
	if w <= 0 {
		w = 1024
	}
	if h <= 0 {
		h = 720
	}
	return w, h
}

func background() chart.Style {
	return chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}}
}

// legend lists only named series.
func legend(series []chart.Series) chart.Renderable {
	named := &chart.Chart{}
	for _, s := range series {
		if s.GetName() != "" {
			named.Series = append(named.Series, s)
		}
	}
	return chart.Legend(named)
}
