package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestConfig_GetTestPath(t *testing.T) {
	tests := []struct {
		name     string
		config   *Config
		expected string
	}{
		{
			name: "default path",
			config: &Config{
				ProjectPath: ".",
				TestPath:    ".",
				Flags:       Flags{},
			},
			expected: ".",
		},
		{
			name: "configured test path",
			config: &Config{
				ProjectPath: "/project",
				TestPath:    "build",
			},
			expected: "/project/build",
		},
		{
			name: "with test path flag",
			config: &Config{
				ProjectPath: "/project",
				TestPath:    "build",
				Flags: Flags{
					TestPath: "out/tests",
				},
			},
			expected: "/project/out/tests",
		},
		{
			name: "absolute test path",
			config: &Config{
				ProjectPath: "/project",
				TestPath:    ".",
				Flags: Flags{
					TestPath: "/absolute/path",
				},
			},
			expected: "/absolute/path",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.config.GetTestPath()
			if result != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, result)
			}
		})
	}
}

func TestNew(t *testing.T) {
	cfg := New()

	if cfg.ProjectPath != DefaultProjectPath {
		t.Errorf("expected ProjectPath %s, got %s", DefaultProjectPath, cfg.ProjectPath)
	}

	if cfg.Processors != DefaultProcessors {
		t.Errorf("expected Processors %d, got %d", DefaultProcessors, cfg.Processors)
	}

	if cfg.Store != StoreJSON {
		t.Errorf("expected Store %s, got %s", StoreJSON, cfg.Store)
	}

	if !reflect.DeepEqual(cfg.Masks, DefaultMasks) {
		t.Errorf("expected masks %v, got %v", DefaultMasks, cfg.Masks)
	}

	if len(cfg.PathsToIgnore) != len(DefaultPathsToIgnore) {
		t.Errorf("expected %d paths to ignore, got %d", len(DefaultPathsToIgnore), len(cfg.PathsToIgnore))
	}

	cfg.Masks[0] = "changed"
	if DefaultMasks[0] == "changed" {
		t.Error("New must not share the default masks slice")
	}
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{EnvFiles, EnvProcessors, EnvStore, EnvMySQLDSN} {
		if v, ok := os.LookupEnv(key); ok {
			t.Setenv(key, v)
			os.Unsetenv(key)
		}
	}
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
}

func TestLoadFrom(t *testing.T) {
	t.Run("defaults without files", func(t *testing.T) {
		clearEnv(t)
		cfg, err := LoadFrom(t.TempDir(), Flags{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Processors != DefaultProcessors {
			t.Errorf("expected %d processors, got %d", DefaultProcessors, cfg.Processors)
		}
		if cfg.Store != StoreJSON {
			t.Errorf("expected store %s, got %s", StoreJSON, cfg.Store)
		}
	})

	t.Run("layers override in order", func(t *testing.T) {
		clearEnv(t)
		dir := t.TempDir()
		writeFile(t, dir, DefaultConfigFile, `
test_path: build
files: ["*_unittest"]
processors: 2
ignore: [deps]
output_dir: out
metrics_file: ctp.prom
`)
		writeFile(t, dir, DefaultEnvFile, "CTP_PROCESSORS=6\nCTP_FILES=test_*,*_spec\n")
		t.Setenv(EnvProcessors, "8")

		cfg, err := LoadFrom(dir, Flags{Store: StoreJSON})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.TestPath != "build" {
			t.Errorf("expected test path from file, got %s", cfg.TestPath)
		}
		if !reflect.DeepEqual(cfg.Masks, []string{"test_*", "*_spec"}) {
			t.Errorf("expected masks from .env, got %v", cfg.Masks)
		}
		if cfg.Processors != 8 {
			t.Errorf("expected environment to win over .env, got %d", cfg.Processors)
		}
		if !reflect.DeepEqual(cfg.PathsToIgnore, []string{"deps"}) {
			t.Errorf("expected ignore list from file, got %v", cfg.PathsToIgnore)
		}
		if cfg.MetricsFile != "ctp.prom" {
			t.Errorf("expected metrics file from config, got %s", cfg.MetricsFile)
		}
		if !strings.HasSuffix(filepath.ToSlash(cfg.GetOutputPath()), "/out/"+DefaultOutputJSONFile) {
			t.Errorf("unexpected output path %s", cfg.GetOutputPath())
		}
	})

	t.Run("flags win", func(t *testing.T) {
		clearEnv(t)
		t.Setenv(EnvProcessors, "8")
		cfg, err := LoadFrom(t.TempDir(), Flags{Processors: 3, Files: []string{"unit_*"}})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Processors != 3 {
			t.Errorf("expected 3 processors, got %d", cfg.Processors)
		}
		if !reflect.DeepEqual(cfg.Masks, []string{"unit_*"}) {
			t.Errorf("expected masks from flags, got %v", cfg.Masks)
		}
	})

	t.Run("invalid settings", func(t *testing.T) {
		tests := []struct {
			name  string
			env   map[string]string
			file  string
			flags Flags
		}{
			{name: "bad processors env", env: map[string]string{EnvProcessors: "many"}},
			{name: "mysql without dsn", flags: Flags{Store: StoreMySQL}},
			{name: "unknown store", flags: Flags{Store: "sqlite"}},
			{name: "bad mask", flags: Flags{Files: []string{"test_["}}},
			{name: "malformed yaml", file: "processors: [1\n"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				clearEnv(t)
				for k, v := range tt.env {
					t.Setenv(k, v)
				}
				dir := t.TempDir()
				if tt.file != "" {
					writeFile(t, dir, DefaultConfigFile, tt.file)
				}
				if _, err := LoadFrom(dir, tt.flags); err == nil {
					t.Error("expected an error")
				}
			})
		}
	})

	t.Run("mysql with dsn", func(t *testing.T) {
		clearEnv(t)
		t.Setenv(EnvMySQLDSN, "ctp:secret@tcp(127.0.0.1:3306)/ctp")
		cfg, err := LoadFrom(t.TempDir(), Flags{Store: StoreMySQL})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.MySQLDSN == "" {
			t.Error("expected DSN from environment")
		}
	})
}
