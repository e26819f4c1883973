package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/harrison/joinai/internal/config"
	"github.com/harrison/joinai/internal/models"
)

// addSelectionFlags registers the flags shared by join and list.
func addSelectionFlags(flags *pflag.FlagSet) {
	flags.String("config", "", "Path to config file (default: <input-folder>/.joinai.yaml)")
	flags.StringArrayP("patterns", "p", nil, `Include globs, repeatable or space separated (e.g. "*.rs *.md")`)
	flags.StringArrayP("exclude", "x", nil, "Exclude globs; always win over --patterns")
	flags.StringArrayP("exclude-folders", "e", nil, "Folder names or relative paths to skip entirely")
	flags.StringArray("exclude-extensions", nil, `File extensions to skip (e.g. "log png")`)
	flags.Int("max-depth", 0, "Maximum search depth (children of the input folder are depth 1)")
	flags.Bool("hidden", false, "Include hidden files and folders")
	flags.Bool("follow-symlinks", false, "Follow symlinked folders and files")
	flags.Int("workers", 0, "Concurrent file classifiers (0 = number of CPUs)")
	flags.Int("prefix-size", 0, "Bytes inspected when detecting binary files (default 8192, max 1048576)")
	flags.Float64("binary-threshold", 0, "Control-byte ratio above which a file is binary (0-1, default 0.30; 0 rejects any control byte)")
	flags.String("classifier", "", "Binary detection strategy: heuristic or mime")
	flags.String("log-level", "", "Logging verbosity: trace, debug, info, warn, error")
}

// addOutputFlags registers the flags that only affect the written artifact.
func addOutputFlags(flags *pflag.FlagSet) {
	flags.StringP("output", "o", "", "Output file (default: concatenated.txt)")
	flags.Bool("append", false, "Append to the output file instead of replacing it")
	flags.Bool("with-size", false, "Add the byte count to each file header")
	flags.Bool("footer", false, "Close each entry with an END FILE marker (plain only)")
	flags.String("format", "", "Output format: plain or markdown")
}

// loadConfig reads the config file for root and merges the changed flags over it.
// The result has been validated.
func loadConfig(cmd *cobra.Command, root string) (*config.Config, error) {
	flags := cmd.Flags()

	configPath, _ := flags.GetString("config")
	var cfg *config.Config
	var err error
	if configPath != "" {
		if _, statErr := os.Stat(configPath); statErr != nil {
			return nil, models.NewConfigError("config", configPath, fmt.Errorf("failed to read config file: %w", statErr))
		}
		cfg, err = config.LoadConfig(configPath)
	} else {
		cfg, err = config.LoadConfigFromDir(root)
	}
	if err != nil {
		return nil, err
	}

	cfg.MergeWithFlags(config.FlagOverrides{
		Output:            changedString(flags, "output"),
		Patterns:          changedArray(flags, "patterns"),
		Exclude:           changedArray(flags, "exclude"),
		ExcludeDirs:       changedArray(flags, "exclude-folders"),
		ExcludeExtensions: changedArray(flags, "exclude-extensions"),
		MaxDepth:          changedInt(flags, "max-depth"),
		Hidden:            changedBool(flags, "hidden"),
		FollowSymlinks:    changedBool(flags, "follow-symlinks"),
		Workers:           changedInt(flags, "workers"),
		PrefixSize:        changedInt(flags, "prefix-size"),
		BinaryThreshold:   changedFloat(flags, "binary-threshold"),
		Classifier:        changedString(flags, "classifier"),
		Format:            changedString(flags, "format"),
		WithSize:          changedBool(flags, "with-size"),
		Footer:            changedBool(flags, "footer"),
		Append:            changedBool(flags, "append"),
		LogLevel:          changedString(flags, "log-level"),
	})

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// The changedXxx helpers return nil unless the flag is defined and was set on
// the command line.

func changedString(flags *pflag.FlagSet, name string) *string {
	if flags.Lookup(name) == nil || !flags.Changed(name) {
		return nil
	}
	v, _ := flags.GetString(name)
	return &v
}

func changedArray(flags *pflag.FlagSet, name string) []string {
	if flags.Lookup(name) == nil || !flags.Changed(name) {
		return nil
	}
	v, _ := flags.GetStringArray(name)
	return v
}

func changedInt(flags *pflag.FlagSet, name string) *int {
	if flags.Lookup(name) == nil || !flags.Changed(name) {
		return nil
	}
	v, _ := flags.GetInt(name)
	return &v
}

func changedBool(flags *pflag.FlagSet, name string) *bool {
	if flags.Lookup(name) == nil || !flags.Changed(name) {
		return nil
	}
	v, _ := flags.GetBool(name)
	return &v
}

func changedFloat(flags *pflag.FlagSet, name string) *float64 {
	if flags.Lookup(name) == nil || !flags.Changed(name) {
		return nil
	}
	v, _ := flags.GetFloat64(name)
	return &v
}
