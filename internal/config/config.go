package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"
)

// Config represents the complete configuration for jsonlens
type Config struct {
	Format    FormatConfig    `yaml:"format"`
	Export    ExportConfig    `yaml:"export"`
	Tree      TreeConfig      `yaml:"tree"`
	Clipboard ClipboardConfig `yaml:"clipboard"`
	Watch     WatchConfig     `yaml:"watch"`
	Dev       DevConfig       `yaml:"dev"`
}

// FormatConfig controls pretty-printing
type FormatConfig struct {
	Indent string `yaml:"indent"`
}

// ExportConfig controls tab-aligned export
type ExportConfig struct {
	Mode             string `yaml:"mode"`
	ContainerSummary bool   `yaml:"container_summary"`
	KeyCase          string `yaml:"key_case"`
}

// TreeConfig controls the initial tree view. InitialDepth 0 means fully expanded.
type TreeConfig struct {
	InitialDepth int `yaml:"initial_depth"`
}

// ClipboardConfig controls copying export output to the system clipboard
type ClipboardConfig struct {
	Enabled bool `yaml:"enabled"`
}

// WatchConfig controls reloading the input file when it changes
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
}

// DevConfig contains development/debug options
type DevConfig struct {
	Debug bool `yaml:"debug"`
}

var indentPattern = regexp.MustCompile(`^[ \t]*$`)

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		Format: FormatConfig{
			Indent: "  ",
		},
		Export: ExportConfig{
			Mode:             "row",
			ContainerSummary: true,
			KeyCase:          "",
		},
		Tree: TreeConfig{
			InitialDepth: 0,
		},
		Clipboard: ClipboardConfig{
			Enabled: true,
		},
		Watch: WatchConfig{
			Debounce: 250 * time.Millisecond,
		},
		Dev: DevConfig{
			Debug: false,
		},
	}
}

// Validate checks every section of the configuration
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Format),
		validation.Field(&c.Export),
		validation.Field(&c.Tree),
		validation.Field(&c.Watch),
	)
}

// Validate checks the format section
func (f FormatConfig) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Indent,
			validation.Length(0, 8),
			validation.Match(indentPattern).Error("must contain only spaces or tabs"),
		),
	)
}

// Validate checks the export section
func (e ExportConfig) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.Mode, validation.In("row", "key", "value")),
		validation.Field(&e.KeyCase, validation.In("snake", "camel", "lower_camel", "kebab")),
	)
}

// Validate checks the tree section
func (t TreeConfig) Validate() error {
	return validation.ValidateStruct(&t,
		validation.Field(&t.InitialDepth, validation.Min(0)),
	)
}

// Validate checks the watch section
func (w WatchConfig) Validate() error {
	return validation.ValidateStruct(&w,
		validation.Field(&w.Debounce, validation.Min(0)),
	)
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults
	cfg := NewConfig()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file '%s': %w", path, err)
	}

	return cfg, nil
}

// FindConfigFile searches for a config file in current directory and parents
func FindConfigFile() string {
	configNames := []string{".jsonlens.yml", ".jsonlens.yaml", "jsonlens.yml", "jsonlens.yaml"}

	currentDir, err := os.Getwd()
	if err != nil {
		return ""
	}

	// Search up the directory tree
	for {
		for _, name := range configNames {
			configPath := filepath.Join(currentDir, name)
			if _, err := os.Stat(configPath); err == nil {
				return configPath
			}
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root directory
			break
		}
		currentDir = parentDir
	}

	return ""
}

// Overrides holds values given on the command line. Zero values mean
// "not set" so that the config file keeps precedence; Depth uses -1.
type Overrides struct {
	Indent      string
	ExportMode  string
	KeyCase     string
	NoSummary   bool
	Depth       int
	NoClipboard bool
	Debug       bool
}

// Apply merges o into a copy of base and returns it.
func (o Overrides) Apply(base *Config) *Config {
	merged := *base

	if o.Indent != "" {
		merged.Format.Indent = o.Indent
	}
	if o.ExportMode != "" {
		merged.Export.Mode = o.ExportMode
	}
	if o.KeyCase != "" {
		merged.Export.KeyCase = o.KeyCase
	}
	if o.NoSummary {
		merged.Export.ContainerSummary = false
	}
	if o.Depth >= 0 {
		merged.Tree.InitialDepth = o.Depth
	}
	if o.NoClipboard {
		merged.Clipboard.Enabled = false
	}
	if o.Debug {
		merged.Dev.Debug = true
	}

	return &merged
}

// LoadConfigWithCLI loads the config file, if any, and applies CLI overrides on top
func LoadConfigWithCLI(configPath string, overrides Overrides) (*Config, error) {
	cfg := NewConfig()

	if configPath != "" {
		fileConfig, err := LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = fileConfig
	}

	cfg = overrides.Apply(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	return cfg, nil
}
