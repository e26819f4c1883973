package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/harrison/joinai/internal/classify"
	"github.com/harrison/joinai/internal/logger"
	"github.com/harrison/joinai/internal/models"
	"github.com/harrison/joinai/internal/output"
)

// FileName is the per-project configuration file looked up in the input folder.
const FileName = ".joinai.yaml"

// Config represents joinai configuration options
type Config struct {
	// Output is the path of the concatenated artifact
	Output string `yaml:"output"`

	// Patterns are include globs; empty selects every file
	Patterns []string `yaml:"patterns"`

	// Exclude are globs that always win over Patterns
	Exclude []string `yaml:"exclude"`

	// ExcludeDirs are directory names or relative paths pruned during traversal
	ExcludeDirs []string `yaml:"exclude_dirs"`

	// ExcludeExtensions are file extensions skipped without reading
	ExcludeExtensions []string `yaml:"exclude_extensions"`

	// MaxDepth bounds how deep the walk goes (nil = unlimited)
	MaxDepth *int `yaml:"max_depth"`

	// Hidden includes dot files and dot directories
	Hidden bool `yaml:"hidden"`

	// FollowSymlinks descends into symlinked directories
	FollowSymlinks bool `yaml:"follow_symlinks"`

	// Workers is the classification concurrency (0 = number of CPUs)
	Workers int `yaml:"workers"`

	// PrefixSize is the number of bytes inspected by the binary heuristic
	PrefixSize int `yaml:"prefix_size"`

	// BinaryThreshold is the control-byte ratio above which a file is binary
	BinaryThreshold float64 `yaml:"binary_threshold"`

	// Classifier selects the binary detection strategy (heuristic, mime)
	Classifier string `yaml:"classifier"`

	// Format selects the output style (plain, markdown)
	Format string `yaml:"format"`

	// WithSize adds the byte count to each file header
	WithSize bool `yaml:"with_size"`

	// Footer writes an END FILE marker after each plain entry
	Footer bool `yaml:"footer"`

	// Append adds to an existing output file instead of replacing it
	Append bool `yaml:"append"`

	// LogLevel sets the logging verbosity (trace, debug, info, warn, error)
	LogLevel string `yaml:"log_level"`
}

// DefaultConfig returns a Config with sensible default values
func DefaultConfig() *Config {
	return &Config{
		Output:          output.DefaultPath,
		Workers:         0, // NumCPU
		PrefixSize:      classify.DefaultPrefixSize,
		BinaryThreshold: classify.DefaultControlThreshold,
		Classifier:      classify.NameHeuristic,
		Format:          output.StylePlain,
		LogLevel:        "info",
	}
}

// yamlConfig mirrors Config with pointers so keys present in the file are
// applied even when they carry a zero value.
type yamlConfig struct {
	Output            *string  `yaml:"output"`
	Patterns          []string `yaml:"patterns"`
	Exclude           []string `yaml:"exclude"`
	ExcludeDirs       []string `yaml:"exclude_dirs"`
	ExcludeExtensions []string `yaml:"exclude_extensions"`
	MaxDepth          *int     `yaml:"max_depth"`
	Hidden            *bool    `yaml:"hidden"`
	FollowSymlinks    *bool    `yaml:"follow_symlinks"`
	Workers           *int     `yaml:"workers"`
	PrefixSize        *int     `yaml:"prefix_size"`
	BinaryThreshold   *float64 `yaml:"binary_threshold"`
	Classifier        *string  `yaml:"classifier"`
	Format            *string  `yaml:"format"`
	WithSize          *bool    `yaml:"with_size"`
	Footer            *bool    `yaml:"footer"`
	Append            *bool    `yaml:"append"`
	LogLevel          *string  `yaml:"log_level"`
}

// LoadConfig loads configuration from the specified file path
// If the file doesn't exist, returns default configuration without error
// If the file exists but is malformed, returns a *models.ConfigError
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, models.NewConfigError("config", path, fmt.Errorf("failed to read config file: %w", err))
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, models.NewConfigError("config", path, fmt.Errorf("failed to parse config file: %w", err))
	}

	cfg.apply(yamlCfg)
	return cfg, nil
}

func (c *Config) apply(y yamlConfig) {
	if y.Output != nil {
		c.Output = *y.Output
	}
	if y.Patterns != nil {
		c.Patterns = y.Patterns
	}
	if y.Exclude != nil {
		c.Exclude = y.Exclude
	}
	if y.ExcludeDirs != nil {
		c.ExcludeDirs = y.ExcludeDirs
	}
	if y.ExcludeExtensions != nil {
		c.ExcludeExtensions = y.ExcludeExtensions
	}
	if y.MaxDepth != nil {
		depth := *y.MaxDepth
		c.MaxDepth = &depth
	}
	if y.Hidden != nil {
		c.Hidden = *y.Hidden
	}
	if y.FollowSymlinks != nil {
		c.FollowSymlinks = *y.FollowSymlinks
	}
	if y.Workers != nil {
		c.Workers = *y.Workers
	}
	if y.PrefixSize != nil {
		c.PrefixSize = *y.PrefixSize
	}
	if y.BinaryThreshold != nil {
		c.BinaryThreshold = *y.BinaryThreshold
	}
	if y.Classifier != nil {
		c.Classifier = *y.Classifier
	}
	if y.Format != nil {
		c.Format = *y.Format
	}
	if y.WithSize != nil {
		c.WithSize = *y.WithSize
	}
	if y.Footer != nil {
		c.Footer = *y.Footer
	}
	if y.Append != nil {
		c.Append = *y.Append
	}
	if y.LogLevel != nil {
		c.LogLevel = *y.LogLevel
	}
}

// LoadConfigFromDir loads configuration from .joinai.yaml in the specified directory
// If the directory or file doesn't exist, returns default configuration without error
func LoadConfigFromDir(dir string) (*Config, error) {
	return LoadConfig(filepath.Join(dir, FileName))
}

// FlagOverrides carries CLI flag values. A nil field means the flag was not set.
type FlagOverrides struct {
	Output            *string
	Patterns          []string
	Exclude           []string
	ExcludeDirs       []string
	ExcludeExtensions []string
	MaxDepth          *int
	Hidden            *bool
	FollowSymlinks    *bool
	Workers           *int
	PrefixSize        *int
	BinaryThreshold   *float64
	Classifier        *string
	Format            *string
	WithSize          *bool
	Footer            *bool
	Append            *bool
	LogLevel          *string
}

// MergeWithFlags merges CLI flags into the configuration
// Non-nil flag values override configuration values
// This allows CLI flags to take precedence over config file settings
func (c *Config) MergeWithFlags(f FlagOverrides) {
	c.apply(yamlConfig(f))
}

// Validate validates the configuration values
// Returns a *models.ConfigError if any values are invalid
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Output) == "" {
		return models.NewConfigError("output", c.Output, models.ErrInvalidOption)
	}

	if c.MaxDepth != nil && *c.MaxDepth < 0 {
		return models.NewConfigError("max_depth", fmt.Sprint(*c.MaxDepth), models.ErrInvalidOption)
	}

	if c.Workers < 0 {
		return models.NewConfigError("workers", fmt.Sprint(c.Workers), models.ErrInvalidOption)
	}

	if err := c.ClassifyOptions().Validate(); err != nil {
		return err
	}
	if _, err := classify.New(c.Classifier, c.ClassifyOptions()); err != nil {
		return err
	}

	if _, err := output.ParseStyle(c.Format); err != nil {
		return err
	}

	if !logger.IsValidLogLevel(strings.ToLower(c.LogLevel)) {
		return models.NewConfigError("log_level", c.LogLevel,
			fmt.Errorf("%w: must be one of: trace, debug, info, warn, error", models.ErrInvalidOption))
	}

	return nil
}

// Traversal builds the walk policy for root.
func (c *Config) Traversal(root string) models.TraversalConfig {
	var depth *int
	if c.MaxDepth != nil {
		d := *c.MaxDepth
		depth = &d
	}
	return models.TraversalConfig{
		Root:           root,
		MaxDepth:       depth,
		FollowSymlinks: c.FollowSymlinks,
		IncludeHidden:  c.Hidden,
	}
}

// Rules builds the selection rules. List values may hold several
// space-separated items, as in "*.rs *.md".
func (c *Config) Rules() models.FilterRules {
	return models.FilterRules{
		Include:           splitList(c.Patterns),
		Exclude:           splitList(c.Exclude),
		ExcludeDirs:       splitList(c.ExcludeDirs),
		ExcludeExtensions: splitList(c.ExcludeExtensions),
	}
}

// ClassifyOptions returns the heuristic parameters.
func (c *Config) ClassifyOptions() classify.Options {
	return classify.Options{
		PrefixSize:       c.PrefixSize,
		ControlThreshold: classify.Threshold(c.BinaryThreshold),
	}
}

// OutputFormat returns the rendering options. Validate must have succeeded.
func (c *Config) OutputFormat() output.Format {
	style, _ := output.ParseStyle(c.Format)
	return output.Format{Style: style, WithSize: c.WithSize, Footer: c.Footer}
}

func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		out = append(out, strings.Fields(v)...)
	}
	return out
}
