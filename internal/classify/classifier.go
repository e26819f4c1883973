// Package classify decides whether an accepted file is text that can be
// concatenated or binary content that must be skipped.
//
// Two classifiers are provided. The heuristic classifier inspects a bounded
// prefix for NUL bytes, the ratio of control bytes and UTF-8 validity. The
// MIME classifier sniffs magic numbers with h2non/filetype and defers to a
// fallback (normally the heuristic) for anything it does not recognise.
// Content that cannot be decided is treated as binary.
package classify

import (
	"fmt"
	"strings"

	"github.com/harrison/joinai/internal/fsys"
	"github.com/harrison/joinai/internal/models"
)

// Default heuristic parameters
const (
	DefaultPrefixSize       = 8192
	DefaultControlThreshold = 0.30

	// MaxPrefixSize bounds the prefix buffer held per worker
	MaxPrefixSize = 1 << 20
)

// Classifier names accepted by New
const (
	NameHeuristic = "heuristic"
	NameMIME      = "mime"
)

// Classifier inspects a file's content.
// Implementations must be safe for concurrent use.
type Classifier interface {
	Classify(filesystem fsys.FS, path string) models.Classification
}

// Options tunes the heuristic. A zero PrefixSize and a nil ControlThreshold
// select the defaults.
type Options struct {
	PrefixSize       int      // Bytes inspected before the full read
	ControlThreshold *float64 // Control-byte ratio above which content is binary
}

// Threshold returns a ControlThreshold value. Threshold(0) marks any
// control byte as binary.
func Threshold(ratio float64) *float64 {
	return &ratio
}

// DefaultOptions returns the documented defaults.
func DefaultOptions() Options {
	return Options{
		PrefixSize:       DefaultPrefixSize,
		ControlThreshold: Threshold(DefaultControlThreshold),
	}
}

func (o Options) withDefaults() Options {
	if o.PrefixSize <= 0 {
		o.PrefixSize = DefaultPrefixSize
	}
	if o.PrefixSize > MaxPrefixSize {
		o.PrefixSize = MaxPrefixSize
	}
	if o.ControlThreshold == nil {
		o.ControlThreshold = Threshold(DefaultControlThreshold)
	}
	return o
}

// Validate rejects out-of-range options.
func (o Options) Validate() error {
	if o.PrefixSize < 0 || o.PrefixSize > MaxPrefixSize {
		return models.NewConfigError("prefix_size", fmt.Sprint(o.PrefixSize), models.ErrInvalidOption)
	}
	if t := o.ControlThreshold; t != nil && (*t < 0 || *t > 1) {
		return models.NewConfigError("binary_threshold", fmt.Sprint(*t), models.ErrInvalidOption)
	}
	return nil
}

// New builds a classifier by name. An empty name selects the heuristic.
func New(name string, opts Options) (Classifier, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", NameHeuristic:
		return NewHeuristic(opts), nil
	case NameMIME:
		return NewMIME(NewHeuristic(opts), opts.withDefaults().PrefixSize), nil
	default:
		return nil, models.NewConfigError("classifier", name, models.ErrInvalidOption)
	}
}
