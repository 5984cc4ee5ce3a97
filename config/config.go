// Package config loads the scan configuration. Settings come from an
// optional flowlens.yaml at the scan root, with CLI flags layered on
// top by the command layer.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/flowlens/flowlens/scanner"
)

// DefaultFileName is looked up at the scan root when no explicit
// config path is given
const DefaultFileName = "flowlens.yaml"

// Output configures rendering defaults
type Output struct {
	Format   string `yaml:"format"`
	MaxNodes int    `yaml:"max_nodes"`
	Path     string `yaml:"path"`
}

// Config is the full scan configuration
type Config struct {
	IncludeExtensions []string            `yaml:"include_extensions"`
	ExcludeDirs       []string            `yaml:"exclude_dirs"`
	ExcludePatterns   []string            `yaml:"exclude_patterns"`
	Detect            scanner.DetectFlags `yaml:"detect"`
	ProximityWindow   int                 `yaml:"proximity_window"`
	UIWindow          int                 `yaml:"ui_window"`
	Output            Output              `yaml:"output"`
	DBPath            string              `yaml:"db_path"`
}

// Default returns the configuration used when no file is present
func Default() *Config {
	return &Config{
		Detect: scanner.DefaultDetectFlags(),
		Output: Output{
			Format: "mermaid",
		},
		DBPath: ".flowlens.db",
	}
}

// Load reads a config file, overlaying it on the defaults. A missing
// file is not an error; the defaults are returned as-is.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadFromRoot loads the default config file from a scan root
func LoadFromRoot(root string) (*Config, error) {
	return Load(filepath.Join(root, DefaultFileName))
}

// ScanOptions converts the configuration into engine options
func (c *Config) ScanOptions(root string) scanner.Options {
	return scanner.Options{
		Root:              root,
		IncludeExtensions: c.IncludeExtensions,
		ExcludeDirs:       c.ExcludeDirs,
		ExcludePatterns:   c.ExcludePatterns,
		Detect:            c.Detect,
		ProximityWindow:   c.ProximityWindow,
		UIWindow:          c.UIWindow,
	}
}
