package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"pwviz/internal/cluster"
	"pwviz/internal/config"
	"pwviz/internal/model"
	"pwviz/internal/movie"
	"pwviz/internal/run"
)

type movieOptions struct {
	animDir  string
	frameDir string
	minSize  int
	order    string
	seed     int64
	start    int
	stop     int
	step     int
	noEncode bool
}

func newMovieCmd(a *app) *cobra.Command {
	var opts movieOptions
	cmd := &cobra.Command{
		Use:   "movie <cluster-file>",
		Short: "Render agent positions coloured by cluster into a movie",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runMovie(cmd, a.cfg.RunDir.Value, args[0], opts)
		},
	}
	f := cmd.Flags()
	f.String("run", "", "run directory (default ../run/)")
	f.StringVar(&opts.animDir, "anim", "", "animation directory (default anim_<cluster-file>)")
	f.StringVar(&opts.frameDir, "frames", "", "frame directory (default <anim>/frames)")
	f.IntVar(&opts.minSize, "min-size", 0, "fold clusters smaller than this into misc; 0 keeps every cluster")
	f.StringVar(&opts.order, "order", cluster.OrderRandom, "cluster order: file|size|random")
	f.Int64Var(&opts.seed, "seed", 1, "seed for --order random")
	f.IntVar(&opts.start, "start", movie.DefaultStart, "first step")
	f.IntVar(&opts.stop, "stop", movie.DefaultStop, "stop before this step")
	f.IntVar(&opts.step, "step", movie.DefaultStep, "steps between frames")
	f.Int("workers", config.DefaultWorkers, "frames rendered in parallel")
	f.String("encoder", "", "encoder command template with {frames} and {out}")
	f.BoolVar(&opts.noEncode, "no-encode", false, "only write frames")
	return cmd
}

func (a *app) runMovie(cmd *cobra.Command, runDir, clusterFile string, opts movieOptions) error {
	if opts.minSize < 0 {
		return usageError("--min-size must be >= 0")
	}
	if _, err := movie.Steps(opts.start, opts.stop, opts.step); err != nil {
		return usageError(err.Error())
	}
	workers, err := a.cfg.WorkerCount()
	if err != nil {
		return usageError(err.Error())
	}

	animDir := opts.animDir
	if animDir == "" {
		base := filepath.Base(clusterFile)
		animDir = "anim_" + strings.TrimSuffix(base, filepath.Ext(base))
	}
	frameDir := opts.frameDir
	if frameDir == "" {
		frameDir = filepath.Join(animDir, "frames")
	}

	clusters, err := cluster.LoadFile(clusterFile, cluster.LoadOptions{Order: opts.order, Seed: opts.seed})
	if err != nil {
		return err
	}
	var labels []string
	if opts.minSize > 0 {
		clusters = cluster.Compress(clusters, opts.minSize)
		labels = clusterLabels(clusters)
	} else {
		labels = make([]string, len(clusters))
		for i := range clusters {
			labels[i] = strconv.Itoa(i)
		}
	}
	if _, err := cluster.AgentIndex(clusters); err != nil {
		return fmt.Errorf("%s: %w", clusterFile, err)
	}

	ids := make([]int, 0, model.CountAgents(clusters))
	for _, c := range clusters {
		ids = append(ids, c...)
	}
	tracks, err := run.LoadTracks(runDir, ids)
	if err != nil {
		return err
	}
	a.logger.Info("tracks loaded", "agents", len(ids), "tracked", len(tracks), "clusters", len(clusters))

	scene, err := movie.NewScene(clusters, labels, tracks)
	if err != nil {
		return fmt.Errorf("%s: %w", runDir, err)
	}
	res, err := movie.Make(cmd.Context(), movie.Options{
		Start:    opts.start,
		Stop:     opts.stop,
		Step:     opts.step,
		Workers:  workers,
		FrameDir: frameDir,
		Output:   filepath.Join(animDir, "output.avi"),
		Encoder:  a.cfg.Encoder.Value,
		NoEncode: opts.noEncode,
		Logger:   a.logger,
	}, scene.Frame)
	if err != nil {
		return err
	}
	a.logger.Info("frames written", "frames", len(res.Frames), "dir", frameDir)
	if res.Output != "" {
		fmt.Fprintln(a.out, res.Output)
	} else {
		fmt.Fprintln(a.out, frameDir)
	}
	return nil
}
