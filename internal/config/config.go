package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	// Project settings
	ProjectPath string
	TestPath    string

	// Output settings
	OutputJSONFile string
	OutputJSONDir  string
	MetricsFile    string

	// Storage settings
	Store    string
	MySQLDSN string

	// Execution settings
	Processors int

	// File name masks of test executables
	Masks []string

	// Paths to ignore when scanning
	PathsToIgnore []string

	// Command flags
	Flags Flags
}

// Flags holds command-line flags
type Flags struct {
	Processors    int
	Filter        string
	TestPath      string
	Files         []string
	FailFast      bool
	Failed        bool
	RerunFailures bool
	OpenFaills    bool
	MetricsFile   string
	Store         string
	Verbose       bool
	TestCases     bool
}

// fileConfig is the shape of ctp.yaml.
type fileConfig struct {
	TestPath    string   `yaml:"test_path"`
	Files       []string `yaml:"files"`
	Processors  int      `yaml:"processors"`
	Ignore      []string `yaml:"ignore"`
	OutputDir   string   `yaml:"output_dir"`
	OutputFile  string   `yaml:"output_file"`
	MetricsFile string   `yaml:"metrics_file"`
	Store       string   `yaml:"store"`
	MySQLDSN    string   `yaml:"mysql_dsn"`
}

// New creates a new Config with defaults
func New() *Config {
	cfg := &Config{
		ProjectPath:    DefaultProjectPath,
		TestPath:       DefaultTestPath,
		OutputJSONFile: DefaultOutputJSONFile,
		OutputJSONDir:  DefaultOutputJSONDir,
		Store:          StoreJSON,
		Processors:     DefaultProcessors,
		Flags:          Flags{Processors: DefaultProcessors},
	}
	// Copy defaults so callers never share the package slices
	cfg.Masks = append([]string(nil), DefaultMasks...)
	cfg.PathsToIgnore = append([]string(nil), DefaultPathsToIgnore...)
	return cfg
}

// Load creates a config for the current directory, see LoadFrom.
func Load(flags Flags) (*Config, error) {
	return LoadFrom(DefaultProjectPath, flags)
}

// LoadFrom creates a config from defaults, the project's ctp.yaml, its .env
// file, the environment and finally flags, each layer overriding the
// previous one.
func LoadFrom(projectPath string, flags Flags) (*Config, error) {
	cfg := New()
	cfg.ProjectPath = projectPath

	if err := cfg.loadFile(filepath.Join(cfg.ProjectPath, DefaultConfigFile)); err != nil {
		return nil, err
	}
	if err := cfg.loadEnv(filepath.Join(cfg.ProjectPath, DefaultEnvFile)); err != nil {
		return nil, err
	}
	cfg.applyFlags(flags)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFile applies a YAML config file. A missing file is not an error.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	if fc.TestPath != "" {
		c.TestPath = fc.TestPath
	}
	if len(fc.Files) > 0 {
		c.Masks = fc.Files
	}
	if fc.Processors > 0 {
		c.Processors = fc.Processors
	}
	if len(fc.Ignore) > 0 {
		c.PathsToIgnore = fc.Ignore
	}
	if fc.OutputDir != "" {
		c.OutputJSONDir = fc.OutputDir
	}
	if fc.OutputFile != "" {
		c.OutputJSONFile = fc.OutputFile
	}
	if fc.MetricsFile != "" {
		c.MetricsFile = fc.MetricsFile
	}
	if fc.Store != "" {
		c.Store = fc.Store
	}
	if fc.MySQLDSN != "" {
		c.MySQLDSN = fc.MySQLDSN
	}
	return nil
}

// loadEnv applies CTP_* variables. Values from the process environment win
// over values from the dotenv file, which is optional.
func (c *Config) loadEnv(path string) error {
	env, err := godotenv.Read(path)
	if errors.Is(err, fs.ErrNotExist) {
		env = map[string]string{}
	} else if err != nil {
		return fmt.Errorf("read env file %s: %w", path, err)
	}
	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := env[key]
		return v, ok
	}

	if v, ok := lookup(EnvFiles); ok && strings.TrimSpace(v) != "" {
		c.Masks = splitList(v)
	}
	if v, ok := lookup(EnvProcessors); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvProcessors, v, err)
		}
		c.Processors = n
	}
	if v, ok := lookup(EnvStore); ok && v != "" {
		c.Store = v
	}
	if v, ok := lookup(EnvMySQLDSN); ok && v != "" {
		c.MySQLDSN = v
	}
	return nil
}

func (c *Config) applyFlags(flags Flags) {
	c.Flags = flags

	if flags.Processors > 0 {
		c.Processors = flags.Processors
	}
	if len(flags.Files) > 0 {
		c.Masks = flags.Files
	}
	if flags.MetricsFile != "" {
		c.MetricsFile = flags.MetricsFile
	}
	if flags.Store != "" {
		c.Store = flags.Store
	}
}

// Validate reports settings no command can work with.
func (c *Config) Validate() error {
	if c.Processors <= 0 {
		return fmt.Errorf("processors must be positive, got %d", c.Processors)
	}
	switch c.Store {
	case StoreJSON:
	case StoreMySQL:
		if c.MySQLDSN == "" {
			return fmt.Errorf("store %q needs %s or mysql_dsn", StoreMySQL, EnvMySQLDSN)
		}
	default:
		return fmt.Errorf("unknown store %q (want %q or %q)", c.Store, StoreJSON, StoreMySQL)
	}
	for _, mask := range c.Masks {
		if _, err := filepath.Match(mask, ""); err != nil {
			return fmt.Errorf("invalid file mask %q: %w", mask, err)
		}
	}
	return nil
}

// GetTestPath returns the test path, using flag if provided
func (c *Config) GetTestPath() string {
	testPath := c.TestPath
	if c.Flags.TestPath != "" {
		testPath = c.Flags.TestPath
	}
	// Relative paths are relative to the project path
	if filepath.IsAbs(testPath) {
		return testPath
	}
	return filepath.Join(c.ProjectPath, testPath)
}

// GetOutputPath returns the full path to the output JSON file (under project so run and faills use the same file).
// Resolves to an absolute path so run and faills always read/write the same file regardless of cwd.
func (c *Config) GetOutputPath() string {
	p := filepath.Join(c.ProjectPath, c.OutputJSONDir, c.OutputJSONFile)
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

func splitList(v string) []string {
	return strings.FieldsFunc(v, func(r rune) bool { return r == ',' || r == ' ' })
}
