package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"PWVIZ_RUN_DIR", "PWVIZ_STORE", "PWVIZ_DB_PATH", "PWVIZ_LOG_LEVEL", "PWVIZ_LOG_FORMAT", "PWVIZ_ENCODER", "PWVIZ_WORKERS"} {
		t.Setenv(key, "")
	}
}

func TestResolveConfig_Defaults(t *testing.T) {
	clearEnv(t)
	resolved, err := ResolveConfig(ResolveOptions{ConfigPath: filepath.Join(t.TempDir(), "missing.yaml")})
	if err != nil {
		t.Fatalf("ResolveConfig: %v", err)
	}
	if resolved.RunDir.Value != DefaultRunDir || resolved.RunDir.Source != SourceDefault {
		t.Fatalf("unexpected run dir: %+v", resolved.RunDir)
	}
	if resolved.Store.Value != "memory" {
		t.Fatalf("unexpected store: %+v", resolved.Store)
	}
	if strings.HasPrefix(resolved.DBPath.Value, "~") {
		t.Fatalf("db path not expanded: %s", resolved.DBPath.Value)
	}
	if resolved.Encoder.Value != "" {
		t.Fatalf("expected empty encoder default, got %q", resolved.Encoder.Value)
	}
	n, err := resolved.WorkerCount()
	if err != nil || n != DefaultWorkers {
		t.Fatalf("unexpected workers: %d %v", n, err)
	}
}

func TestResolveConfig_Precedence_ConfigEnvCLI(t *testing.T) {
	clearEnv(t)
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `run_dir: /data/from-config
store: sqlite
log:
  level: debug
  format: json
movie:
  encoder: ffmpeg -i {frames}/frame_%06d.png {out}
  workers: 8
`
	if err := os.WriteFile(cfgPath, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("PWVIZ_RUN_DIR", "/data/from-env")
	t.Setenv("PWVIZ_LOG_LEVEL", "warn")

	resolved, err := ResolveConfig(ResolveOptions{
		ConfigPath:  cfgPath,
		CLIRunDir:   "/data/from-cli",
		CLIDBPath:   "/tmp/cli.db",
		CLILogLevel: "",
	})
	if err != nil {
		t.Fatalf("ResolveConfig: %v", err)
	}

	if resolved.RunDir.Value != "/data/from-cli" || resolved.RunDir.Source != SourceCLI {
		t.Fatalf("expected run dir from cli, got %+v", resolved.RunDir)
	}
	if resolved.LogLevel.Value != "warn" || resolved.LogLevel.Source != SourceEnv {
		t.Fatalf("expected log level from env, got %+v", resolved.LogLevel)
	}
	if resolved.LogFormat.Source != SourceConfig || resolved.LogFormat.From != cfgPath {
		t.Fatalf("expected log format from config, got %+v", resolved.LogFormat)
	}
	if resolved.Store.Value != "sqlite" {
		t.Fatalf("expected sqlite store from config, got %+v", resolved.Store)
	}
	if resolved.DBPath.Source != SourceCLI {
		t.Fatalf("expected db path from cli, got %+v", resolved.DBPath)
	}
	if n, _ := resolved.WorkerCount(); n != 8 {
		t.Fatalf("expected 8 workers from config, got %d", n)
	}
	if !strings.HasPrefix(resolved.Encoder.Value, "ffmpeg") {
		t.Fatalf("unexpected encoder: %+v", resolved.Encoder)
	}
}

func TestResolveConfig_Errors(t *testing.T) {
	clearEnv(t)
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(cfgPath, []byte("run_dir: [unterminated\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := ResolveConfig(ResolveOptions{ConfigPath: cfgPath}); err == nil {
		t.Fatal("expected parse error")
	}

	_, err := ResolveConfig(ResolveOptions{ConfigPath: filepath.Join(t.TempDir(), "none.yaml"), CLIWorkers: "zero"})
	if err == nil {
		t.Fatal("expected invalid workers error")
	}
}
