package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type ValueSource string

const (
	SourceUnknown ValueSource = "unknown"
	SourceConfig  ValueSource = "config"
	SourceEnv     ValueSource = "env"
	SourceCLI     ValueSource = "cli"
	SourceDefault ValueSource = "default"
)

const (
	DefaultRunDir    = "../run/"
	DefaultStore     = "memory"
	DefaultDBPath    = "~/.pwviz/results.db"
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
	DefaultWorkers   = 4
)

type ResolvedValue struct {
	Value  string      `json:"value"`
	Source ValueSource `json:"source"`
	From   string      `json:"from,omitempty"`
}

// ResolveOptions carries flag values; empty strings mean the flag was not set.
type ResolveOptions struct {
	ConfigPath   string
	CLIRunDir    string
	CLIStore     string
	CLIDBPath    string
	CLILogLevel  string
	CLILogFormat string
	CLIEncoder   string
	CLIWorkers   string
}

type ResolvedConfig struct {
	ConfigPath string `json:"config_path"`

	RunDir    ResolvedValue `json:"run_dir"`
	Store     ResolvedValue `json:"store"`
	DBPath    ResolvedValue `json:"db_path"`
	LogLevel  ResolvedValue `json:"log_level"`
	LogFormat ResolvedValue `json:"log_format"`
	Encoder   ResolvedValue `json:"encoder"`
	Workers   ResolvedValue `json:"workers"`
}

type fileConfig struct {
	RunDir string `yaml:"run_dir"`
	Store  string `yaml:"store"`
	DBPath string `yaml:"db_path"`
	Log    struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Movie struct {
		Encoder string `yaml:"encoder"`
		Workers int    `yaml:"workers"`
	} `yaml:"movie"`
}

func DefaultConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".pwviz", "config.yaml")
}

// ResolveConfig layers defaults, the config file, PWVIZ_* environment
// variables and CLI flags, later layers winning.
func ResolveConfig(opts ResolveOptions) (ResolvedConfig, error) {
	path := strings.TrimSpace(opts.ConfigPath)
	if path == "" {
		path = DefaultConfigPath()
	}
	path = expandUserPath(path)

	out := ResolvedConfig{ConfigPath: path}
	apply(&out.RunDir, DefaultRunDir, SourceDefault, "built-in default")
	apply(&out.Store, DefaultStore, SourceDefault, "built-in default")
	apply(&out.DBPath, DefaultDBPath, SourceDefault, "built-in default")
	apply(&out.LogLevel, DefaultLogLevel, SourceDefault, "built-in default")
	apply(&out.LogFormat, DefaultLogFormat, SourceDefault, "built-in default")
	apply(&out.Workers, strconv.Itoa(DefaultWorkers), SourceDefault, "built-in default")

	cfg, err := loadConfig(path)
	if err != nil {
		return out, err
	}
	if cfg != nil {
		apply(&out.RunDir, cfg.RunDir, SourceConfig, path)
		apply(&out.Store, cfg.Store, SourceConfig, path)
		apply(&out.DBPath, cfg.DBPath, SourceConfig, path)
		apply(&out.LogLevel, cfg.Log.Level, SourceConfig, path)
		apply(&out.LogFormat, cfg.Log.Format, SourceConfig, path)
		apply(&out.Encoder, cfg.Movie.Encoder, SourceConfig, path)
		if cfg.Movie.Workers != 0 {
			apply(&out.Workers, strconv.Itoa(cfg.Movie.Workers), SourceConfig, path)
		}
	}

	applyEnv(&out.RunDir, "PWVIZ_RUN_DIR")
	applyEnv(&out.Store, "PWVIZ_STORE")
	applyEnv(&out.DBPath, "PWVIZ_DB_PATH")
	applyEnv(&out.LogLevel, "PWVIZ_LOG_LEVEL")
	applyEnv(&out.LogFormat, "PWVIZ_LOG_FORMAT")
	applyEnv(&out.Encoder, "PWVIZ_ENCODER")
	applyEnv(&out.Workers, "PWVIZ_WORKERS")

	apply(&out.RunDir, opts.CLIRunDir, SourceCLI, "--run")
	apply(&out.Store, opts.CLIStore, SourceCLI, "--store")
	apply(&out.DBPath, opts.CLIDBPath, SourceCLI, "--db-path")
	apply(&out.LogLevel, opts.CLILogLevel, SourceCLI, "--log-level")
	apply(&out.LogFormat, opts.CLILogFormat, SourceCLI, "--log-format")
	apply(&out.Encoder, opts.CLIEncoder, SourceCLI, "--encoder")
	apply(&out.Workers, opts.CLIWorkers, SourceCLI, "--workers")

	out.RunDir.Value = expandUserPath(out.RunDir.Value)
	out.DBPath.Value = expandUserPath(out.DBPath.Value)

	if _, err := out.WorkerCount(); err != nil {
		return out, err
	}
	return out, nil
}

// WorkerCount parses the resolved worker count.
func (r ResolvedConfig) WorkerCount() (int, error) {
	n, err := strconv.Atoi(r.Workers.Value)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid workers %q from %s %s", r.Workers.Value, r.Workers.Source, r.Workers.From)
	}
	return n, nil
}

func apply(dst *ResolvedValue, raw string, source ValueSource, from string) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return
	}
	*dst = ResolvedValue{Value: v, Source: source, From: from}
}

func applyEnv(dst *ResolvedValue, envKey string) {
	if v := strings.TrimSpace(os.Getenv(envKey)); v != "" {
		*dst = ResolvedValue{Value: v, Source: SourceEnv, From: envKey}
	}
}

func loadConfig(path string) (*fileConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var cfg fileConfig
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &cfg, nil
}

func expandUserPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
