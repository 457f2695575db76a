package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. ARCHVIZ_LOG_LEVEL.
const EnvPrefix = "ARCHVIZ"

// FileNames are the project config files Load looks for, in order.
var FileNames = []string{"archviz.yml", "archviz.yaml"}

// Defaults applied to fields left empty by both the file and the environment.
const (
	DefaultDirection = "TB"
	DefaultLogLevel  = "info"
	DefaultOutputDir = "diagrams"
	DefaultGraphPath = ".archviz/graph.kuzu"
	DefaultListen    = "127.0.0.1:8765"
)

// ProjectConfig holds project-level settings loaded from archviz.yml.
type ProjectConfig struct {
	// CatalogDir overrides the embedded catalog with a directory of YAML files.
	CatalogDir string `yaml:"catalogDir,omitempty" envconfig:"CATALOG_DIR"`
	// DetailsPath points at the optional enhancement details JSON.
	DetailsPath string   `yaml:"detailsPath,omitempty" envconfig:"DETAILS_PATH"`
	Direction   string   `yaml:"direction,omitempty" envconfig:"DIRECTION"`
	Layers      []string `yaml:"layers,omitempty" envconfig:"LAYERS"`
	LogLevel    string   `yaml:"logLevel,omitempty" envconfig:"LOG_LEVEL"`
	OutputDir   string   `yaml:"outputDir,omitempty" envconfig:"OUTPUT_DIR"`
	GraphPath   string   `yaml:"graphPath,omitempty" envconfig:"GRAPH_PATH"`
	Listen      string   `yaml:"listen,omitempty" envconfig:"LISTEN"`
}

// Load reads archviz.yml or archviz.yaml from dir, then applies ARCHVIZ_*
// environment overrides and defaults. A missing file is not an error.
func Load(dir string) (*ProjectConfig, error) {
	cfg := &ProjectConfig{}
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		break
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("environment overrides: %w", err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *ProjectConfig) applyDefaults() {
	if c.Direction == "" {
		c.Direction = DefaultDirection
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.OutputDir == "" {
		c.OutputDir = DefaultOutputDir
	}
	if c.GraphPath == "" {
		c.GraphPath = DefaultGraphPath
	}
	if c.Listen == "" {
		c.Listen = DefaultListen
	}
}

// Level maps LogLevel to a slog level. Unknown names yield Info.
func (c *ProjectConfig) Level() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Save writes cfg to dir/archviz.yml. It refuses to overwrite an existing
// file unless force is set.
func Save(dir string, cfg *ProjectConfig, force bool) (string, error) {
	path := filepath.Join(dir, FileNames[0])
	if !force {
		if _, err := os.Stat(path); err == nil {
			return path, fmt.Errorf("%s already exists", path)
		}
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return path, fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return path, fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}
