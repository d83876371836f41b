package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"pwviz/internal/config"
	"pwviz/internal/lifespan"
	"pwviz/internal/logging"
	"pwviz/internal/model"
	"pwviz/internal/storage"
)

// version is set at build time via -ldflags.
var version = "dev"

type globalFlags struct {
	configPath string
	logLevel   string
	logFormat  string
	store      string
	dbPath     string
}

// app carries the state shared by one invocation.
type app struct {
	out    io.Writer
	errOut io.Writer
	flags  globalFlags

	cfg    config.ResolvedConfig
	store  storage.Store
	logger *slog.Logger
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "pwviz",
		Short: "Offline analysis and plots for Polyworld runs",
		Long:  "pwviz loads Polyworld run directories and cluster files, aggregates\nper-group statistics and renders charts or movies.",
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		SilenceErrors:     true,
		SilenceUsage:      true,
		Version:           version,
		PersistentPreRunE: a.setup,
		RunE: func(*cobra.Command, []string) error {
			return usageError("missing command")
		},
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError(err.Error())
	})

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.configPath, "config", "", "config file (default ~/.pwviz/config.yaml)")
	pf.StringVar(&a.flags.logLevel, "log-level", "", "log level: debug|info|warn|error")
	pf.StringVar(&a.flags.logFormat, "log-format", "", "log format: text|json")
	pf.StringVar(&a.flags.store, "store", "", "result store backend: memory|sqlite")
	pf.StringVar(&a.flags.dbPath, "db-path", "", "sqlite database path")

	root.AddCommand(
		newBarplotCmd(a),
		newScatterCmd(a),
		newGenomeCmd(a),
		newPopulationCmd(a),
		newMovieCmd(a),
		newAvrCmd(a),
		newHistCmd(a),
		newDeathsCmd(a),
		newStatsCmd(a),
	)
	return root
}

// setup resolves configuration and opens the store before any subcommand.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.ResolveConfig(config.ResolveOptions{
		ConfigPath:   a.flags.configPath,
		CLIRunDir:    changedFlag(cmd, "run"),
		CLIStore:     a.flags.store,
		CLIDBPath:    a.flags.dbPath,
		CLILogLevel:  a.flags.logLevel,
		CLILogFormat: a.flags.logFormat,
		CLIEncoder:   changedFlag(cmd, "encoder"),
		CLIWorkers:   changedFlag(cmd, "workers"),
	})
	if err != nil {
		return err
	}
	a.cfg = cfg

	level, err := logging.ParseLevel(cfg.LogLevel.Value)
	if err != nil {
		return usageError(err.Error())
	}
	logging.Init(level, cfg.LogFormat.Value, a.errOut)
	a.logger = logging.New(cmd.Name())
	a.logger.Debug("config resolved",
		"config", cfg.ConfigPath,
		"run_dir", cfg.RunDir.Value, "run_dir_source", cfg.RunDir.Source,
		"store", cfg.Store.Value, "store_source", cfg.Store.Source)

	store, err := storage.NewStore(cfg.Store.Value, cfg.DBPath.Value)
	if err != nil {
		return err
	}
	if err := store.Init(cmd.Context()); err != nil {
		_ = storage.CloseIfSupported(store)
		return fmt.Errorf("init %s store: %w", cfg.Store.Value, err)
	}
	a.store = store
	return nil
}

func (a *app) close() error {
	if a.store == nil {
		return nil
	}
	err := storage.CloseIfSupported(a.store)
	a.store = nil
	return err
}

// runDir returns the positional run directory when given, else the resolved one.
func (a *app) runDir(args []string) string {
	if len(args) > 0 && strings.TrimSpace(args[0]) != "" {
		return args[0]
	}
	return a.cfg.RunDir.Value
}

// deathIndex returns the stored index for runDir, building and saving it
// when none is stored or the birth/death log changed since it was built.
func (a *app) deathIndex(ctx context.Context, runDir string) (lifespan.DeathIndex, error) {
	runDir = absPath(runDir)
	info, err := os.Stat(lifespan.LogPath(runDir))
	if err != nil {
		return nil, fmt.Errorf("open birth/death log: %w", err)
	}
	size, modTime := info.Size(), info.ModTime().UnixNano()

	record, ok, err := a.store.GetDeathIndex(ctx, runDir)
	if err != nil {
		return nil, err
	}
	if ok && record.LogSize == size && record.LogModTime == modTime {
		a.logger.Debug("death index from store", "run_dir", runDir, "agents", len(record.Deaths))
		return lifespan.DeathIndex(record.Deaths), nil
	}
	if ok {
		a.logger.Debug("stored death index is stale", "run_dir", runDir)
	}
	deaths, err := lifespan.LoadDeathIndex(runDir)
	if err != nil {
		return nil, err
	}
	err = a.store.SaveDeathIndex(ctx, model.DeathIndexRecord{
		VersionedRecord: storage.Versioned(),
		RunDir:          runDir,
		LogSize:         size,
		LogModTime:      modTime,
		Deaths:          deaths,
	})
	if err != nil {
		return nil, err
	}
	return deaths, nil
}

func absPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}

func changedFlag(cmd *cobra.Command, name string) string {
	f := cmd.Flags().Lookup(name)
	if f == nil || !f.Changed {
		return ""
	}
	return f.Value.String()
}

func usageArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return usageError(err.Error())
		}
		return nil
	}
}
