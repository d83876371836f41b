package movie

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/wcharczuk/go-chart/v2"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/sync/errgroup"

	"pwviz/internal/logging"
	"pwviz/internal/render"
)

const (
	DefaultStart = 1
	DefaultStop  = 300
	DefaultStep  = 3

	// DefaultEncoder assembles 600x800 frames at 30 fps into an x264 avi.
	DefaultEncoder = "mencoder mf://{frames}/*.png -o {out} -mf type=png:w=600:h=800:fps=30 -ovc x264 -x264encopts qp=20"

	FrameWidth  = 600
	FrameHeight = 800
)

// FrameFunc builds the chart for one timestep.
type FrameFunc func(ctx context.Context, step int) (chart.Chart, error)

type Options struct {
	Start, Stop, Step int
	Workers           int
	FrameDir          string
	Output            string
	Encoder           string
	NoEncode          bool
	Logger            *slog.Logger
}

type Result struct {
	Frames []string
	Output string
}

// Steps lists start, start+step, ... below stop.
func Steps(start, stop, step int) ([]int, error) {
	if step <= 0 {
		return nil, fmt.Errorf("step must be positive, got %d", step)
	}
	if stop <= start {
		return nil, fmt.Errorf("empty step range [%d, %d)", start, stop)
	}
	out := make([]int, 0, (stop-start+step-1)/step)
	for s := start; s < stop; s += step {
		out = append(out, s)
	}
	return out, nil
}

func FramePath(dir string, step int) string {
	return filepath.Join(dir, fmt.Sprintf("frame_%06d.png", step))
}

// Make renders every frame and then runs the encoder. The encoder is not
// started when any frame fails.
func Make(ctx context.Context, opts Options, frame FrameFunc) (Result, error) {
	if frame == nil {
		return Result{}, errors.New("frame function is required")
	}
	if opts.FrameDir == "" {
		return Result{}, errors.New("frame directory is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.New("movie")
	}
	steps, err := Steps(opts.Start, opts.Stop, opts.Step)
	if err != nil {
		return Result{}, err
	}
	if err := os.MkdirAll(opts.FrameDir, 0o755); err != nil {
		return Result{}, err
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = 1
	}

	logger.Info("rendering frames", "frames", len(steps), "workers", workers, "dir", opts.FrameDir)
	paths := make([]string, len(steps))
	var done atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, step := range steps {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			path := FramePath(opts.FrameDir, step)
			if err := renderFrame(gctx, frame, step, path); err != nil {
				return fmt.Errorf("frame %d: %w", step, err)
			}
			paths[i] = path
			logger.Debug("frame written", "step", step, "done", done.Add(1), "total", len(steps))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	result := Result{Frames: paths}
	if opts.NoEncode {
		return result, nil
	}
	out := opts.Output
	if out == "" {
		out = filepath.Join(filepath.Dir(filepath.Clean(opts.FrameDir)), "output.avi")
	}
	if err := Encode(ctx, opts.Encoder, opts.FrameDir, out, logger); err != nil {
		return result, err
	}
	result.Output = out
	return result, nil
}

func renderFrame(ctx context.Context, frame FrameFunc, step int, path string) error {
	c, err := frame(ctx, step)
	if err != nil {
		return err
	}
	if c.Width == 0 {
		c.Width = FrameWidth
	}
	if c.Height == 0 {
		c.Height = FrameHeight
	}
	var buf bytes.Buffer
	if err := render.Encode(&buf, render.FormatPNG, c); err != nil {
		return err
	}
	img, err := png.Decode(&buf)
	if err != nil {
		return err
	}
	captioned := Caption(img, fmt.Sprintf("step %d", step))

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, captioned); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// Caption stamps text onto the bottom-left corner over a dark backdrop.
func Caption(img image.Image, text string) image.Image {
	if img == nil || strings.TrimSpace(text) == "" {
		return img
	}
	b := img.Bounds()
	rgba := image.NewRGBA(b)
	draw.Draw(rgba, b, img, b.Min, draw.Src)

	face := basicfont.Face7x13
	dr := &font.Drawer{Dst: rgba, Src: image.NewUniform(color.White), Face: face}
	tw := dr.MeasureString(text).Ceil()
	pad := 4
	x := b.Min.X + 8
	y := b.Max.Y - 6
	bg := image.NewUniform(color.RGBA{A: 200})
	rect := image.Rect(x-pad, y-face.Metrics().Ascent.Ceil()-pad, x+tw+pad, y+pad/2)
	draw.Draw(rgba, rect, bg, image.Point{}, draw.Over)
	dr.Dot = fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)}
	dr.DrawString(text)
	return rgba
}

// EncoderArgs expands {frames} and {out} in the template and splits it into
// an argv.
func EncoderArgs(template, frameDir, out string) []string {
	if strings.TrimSpace(template) == "" {
		template = DefaultEncoder
	}
	fields := strings.Fields(template)
	args := make([]string, len(fields))
	for i, field := range fields {
		field = strings.ReplaceAll(field, "{frames}", frameDir)
		args[i] = strings.ReplaceAll(field, "{out}", out)
	}
	return args
}

func Encode(ctx context.Context, template, frameDir, out string, logger *slog.Logger) error {
	args := EncoderArgs(template, frameDir, out)
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return err
	}
	logger.Info("encoding movie", "cmd", args[0], "out", out)
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return fmt.Errorf("encoder %s: %w: %s", args[0], err, msg)
		}
		return fmt.Errorf("encoder %s: %w", args[0], err)
	}
	return nil
}
