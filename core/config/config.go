package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/tristendillon/prefgen/core/logger"
	"gopkg.in/yaml.v3"
)

const FileName = "prefgen.yaml"

const DefaultRuntimeImport = "github.com/tristendillon/prefgen/prefs"

type Config struct {
	Codegen Codegen `yaml:"codegen"`
	Sources Sources `yaml:"sources"`
	Cache   Cache   `yaml:"cache"`

	// Path is the file the config was read from, empty for defaults.
	Path string `yaml:"-"`
}

type Codegen struct {
	Renderer      string `yaml:"renderer"`
	Output        string `yaml:"output"`
	RuntimeImport string `yaml:"runtime_import"`
	GoPackage     string `yaml:"go_package"`
	Adapters      string `yaml:"adapters"`
	Workers       int    `yaml:"workers"`
}

type Sources struct {
	Include []string `yaml:"include"`
	Exclude []string `yaml:"exclude"`
}

type Cache struct {
	MaxEntries int `yaml:"max_entries"`
}

func Default() *Config {
	return &Config{
		Codegen: Codegen{
			Renderer:      "go",
			RuntimeImport: DefaultRuntimeImport,
			Adapters:      "per-entry",
			Workers:       4,
		},
		Sources: Sources{
			Include: []string{"."},
			Exclude: []string{".git", "vendor", "node_modules", "testdata"},
		},
		Cache: Cache{
			MaxEntries: 1000,
		},
	}
}

// Load reads prefgen.yaml from the working directory.
func Load() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("cannot determine working dir: %w", err)
	}
	return LoadFrom(wd)
}

// LoadFrom reads dir/prefgen.yaml and dir/.env, falling back to defaults when
// the config file is absent. Environment variables override file values.
func LoadFrom(dir string) (*Config, error) {
	_ = godotenv.Load(filepath.Join(dir, ".env"))

	cfg := Default()
	filePath := filepath.Join(dir, FileName)

	data, err := os.ReadFile(filePath)
	switch {
	case os.IsNotExist(err):
		logger.Debug("No config file found, using default config")
	case err != nil:
		return nil, fmt.Errorf("failed to read config file %s: %w", filePath, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse yaml: %w", err)
		}
		cfg.Path = filePath
		logger.Debug("Config file found: %s", filePath)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.Normalize()
	cfg.fillDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", filePath, err)
	}

	logger.Debug("Config: %+v", *cfg)
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := strings.TrimSpace(os.Getenv("PREFGEN_RENDERER")); v != "" {
		c.Codegen.Renderer = v
	}
	if v := strings.TrimSpace(os.Getenv("PREFGEN_OUTPUT")); v != "" {
		c.Codegen.Output = v
	}
	if v := strings.TrimSpace(os.Getenv("PREFGEN_RUNTIME_IMPORT")); v != "" {
		c.Codegen.RuntimeImport = v
	}
	if v := strings.TrimSpace(os.Getenv("PREFGEN_ADAPTERS")); v != "" {
		c.Codegen.Adapters = v
	}
	if v := strings.TrimSpace(os.Getenv("PREFGEN_WORKERS")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PREFGEN_WORKERS: %w", err)
		}
		c.Codegen.Workers = n
	}
	return nil
}

// fillDefaults restores defaults for keys a partial config file left empty.
func (c *Config) fillDefaults() {
	def := Default()
	if c.Codegen.Renderer == "" {
		c.Codegen.Renderer = def.Codegen.Renderer
	}
	if c.Codegen.RuntimeImport == "" {
		c.Codegen.RuntimeImport = def.Codegen.RuntimeImport
	}
	if c.Codegen.Adapters == "" {
		c.Codegen.Adapters = def.Codegen.Adapters
	}
	if c.Codegen.Workers <= 0 {
		c.Codegen.Workers = def.Codegen.Workers
	}
	if len(c.Sources.Include) == 0 {
		c.Sources.Include = def.Sources.Include
	}
	if c.Cache.MaxEntries <= 0 {
		c.Cache.MaxEntries = def.Cache.MaxEntries
	}
}

// Normalize lowercases the enum-valued keys so "Go" or "DEDUP" are accepted.
func (c *Config) Normalize() {
	c.Codegen.Renderer = strings.ToLower(strings.TrimSpace(c.Codegen.Renderer))
	c.Codegen.Adapters = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(c.Codegen.Adapters)), "_", "-")
}

func (c *Config) Validate() error {
	switch c.Codegen.Renderer {
	case "go", "java":
	default:
		return fmt.Errorf("codegen.renderer must be go or java, got %q", c.Codegen.Renderer)
	}
	switch c.Codegen.Adapters {
	case "per-entry", "dedup":
	default:
		return fmt.Errorf("codegen.adapters must be per-entry or dedup, got %q", c.Codegen.Adapters)
	}
	return nil
}
