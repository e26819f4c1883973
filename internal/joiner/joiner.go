// Package joiner runs the discovery pipeline: walk, filter, classify.
//
// The walk is sequential and lazy. Accepted files are classified on a bounded
// worker pool and the results are collected into a map keyed by relative
// path, so the set of entries never depends on scheduling. A single sorting
// pass at the end fixes the order handed to the concatenator.
package joiner

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/harrison/joinai/internal/classify"
	"github.com/harrison/joinai/internal/filter"
	"github.com/harrison/joinai/internal/fsys"
	"github.com/harrison/joinai/internal/models"
	"github.com/harrison/joinai/internal/walker"
)

// Logger receives pipeline progress. *logger.ConsoleLogger satisfies it.
type Logger interface {
	LogTrace(message string)
	LogDebug(message string)
	LogDiagnostic(d models.Diagnostic)
}

// Options configures one pipeline run.
type Options struct {
	FS          fsys.FS                // Defaults to fsys.NewOS()
	Traversal   models.TraversalConfig // Root and walk policies
	Rules       models.FilterRules     // Selection rules
	Classifier  classify.Classifier    // Defaults to the heuristic classifier
	Workers     int                    // Classification concurrency (<=0 uses runtime.NumCPU)
	SkipPaths   []string               // Paths never emitted, e.g. the output file
	IncludeDirs bool                   // List only: report traversed directories too
	Logger      Logger                 // Optional
}

func (o Options) withDefaults() Options {
	if o.FS == nil {
		o.FS = fsys.NewOS()
	}
	if o.Classifier == nil {
		o.Classifier = classify.NewHeuristic(classify.DefaultOptions())
	}
	if o.Workers <= 0 {
		o.Workers = runtime.NumCPU()
	}
	return o
}

func (o Options) debug(format string, args ...interface{}) {
	if o.Logger != nil {
		o.Logger.LogDebug(fmt.Sprintf(format, args...))
	}
}

// trace logs one per-path decision.
func (o Options) trace(format string, args ...interface{}) {
	if o.Logger != nil {
		o.Logger.LogTrace(fmt.Sprintf(format, args...))
	}
}

// outcome pairs an accepted record with its classification.
type outcome struct {
	rec models.PathRecord
	cls models.Classification
}

// prepare compiles the rules and opens the walker. Errors are *models.ConfigError.
func prepare(opts Options, extra ...walker.Option) (*filter.Matcher, *walker.Walker, error) {
	matcher, err := filter.Compile(opts.Rules)
	if err != nil {
		return nil, nil, err
	}
	walkOpts := append([]walker.Option{walker.WithPrune(matcher.PruneDir)}, extra...)
	w, err := walker.New(opts.FS, opts.Traversal, walkOpts...)
	if err != nil {
		return nil, nil, err
	}
	return matcher, w, nil
}

// skipSet resolves paths to absolute form. Unresolvable entries are dropped.
func skipSet(paths []string) map[string]bool {
	set := make(map[string]bool, len(paths))
	for _, p := range paths {
		if p == "" {
			continue
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			continue
		}
		set[filepath.Clean(abs)] = true
	}
	return set
}

// Collect walks the tree and returns the sorted entries, diagnostics and stats.
// Only configuration problems and context cancellation are returned as errors.
func Collect(ctx context.Context, opts Options) (*models.Result, error) {
	opts = opts.withDefaults()

	matcher, w, err := prepare(opts)
	if err != nil {
		return nil, err
	}
	skip := skipSet(opts.SkipPaths)

	result := &models.Result{}

	var mu sync.Mutex
	outcomes := make(map[string]outcome)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)

	opts.debug("walking %s with %d workers", w.Root(), opts.Workers)
	if !matcher.HasIncludes() {
		opts.debug("no include patterns, every file is a candidate")
	}

	for rec, walkErr := range w.Walk() {
		if ctx.Err() != nil {
			break
		}
		if walkErr != nil {
			result.Diagnostics = append(result.Diagnostics, walkDiagnostic(rec, walkErr))
			continue
		}
		if rec.IsDir || skip[rec.AbsPath] {
			continue
		}

		result.Stats.Discovered++
		if !matcher.Accept(rec) {
			result.Stats.Rejected++
			opts.trace("reject %s", rec.RelPath)
			continue
		}
		opts.trace("accept %s", rec.RelPath)

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			cls := opts.Classifier.Classify(opts.FS, rec.AbsPath)

			mu.Lock()
			outcomes[rec.RelPath] = outcome{rec: rec, cls: cls}
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for relPath, o := range outcomes {
		switch o.cls.Kind {
		case models.KindText:
			result.Entries = append(result.Entries, models.Entry{
				RelPath: relPath,
				AbsPath: o.rec.AbsPath,
				Size:    int64(len(o.cls.Content)),
				Content: o.cls.Content,
			})
		case models.KindBinary:
			result.Stats.Binary++
			result.Diagnostics = append(result.Diagnostics, models.Diagnostic{
				Kind:    models.DiagBinarySkipped,
				Path:    relPath,
				Message: o.cls.Reason,
			})
		default:
			result.Stats.ReadErrors++
			result.Diagnostics = append(result.Diagnostics, models.Diagnostic{
				Kind: models.DiagRead,
				Path: relPath,
				Err:  o.cls.Err,
			})
		}
	}
	result.Stats.Written = len(result.Entries)
	result.Sort()

	if opts.Logger != nil {
		for _, d := range result.Diagnostics {
			opts.Logger.LogDiagnostic(d)
		}
	}
	opts.debug("collected %d entries (%d discovered, %d rejected, %d binary, %d unreadable)",
		result.Stats.Written, result.Stats.Discovered, result.Stats.Rejected,
		result.Stats.Binary, result.Stats.ReadErrors)

	return result, nil
}

// walkDiagnostic maps a walker error onto a diagnostic.
func walkDiagnostic(rec models.PathRecord, err error) models.Diagnostic {
	relPath := rec.RelPath
	var we *walker.WalkError
	if errors.As(err, &we) {
		relPath = we.Path
		err = we.Err
	}

	switch {
	case errors.Is(err, walker.ErrSymlinkCycle):
		return models.Diagnostic{
			Kind:    models.DiagSymlinkCycle,
			Path:    relPath,
			Message: "link resolves to one of its own ancestors",
		}
	case errors.Is(err, walker.ErrDuplicateDir):
		return models.Diagnostic{
			Kind:    models.DiagDuplicateDir,
			Path:    relPath,
			Message: "link resolves to a directory already listed",
		}
	}
	return models.Diagnostic{Kind: models.DiagTraversal, Path: relPath, Err: err}
}

// Listing is the result of List.
type Listing struct {
	Records     []models.PathRecord
	Diagnostics []models.Diagnostic
}

// List walks and filters without reading file content. Accepted files are
// returned sorted by relative path, with traversed directories when
// Options.IncludeDirs is set.
func List(ctx context.Context, opts Options) (*Listing, error) {
	opts = opts.withDefaults()

	var extra []walker.Option
	if opts.IncludeDirs {
		extra = append(extra, walker.WithDirectories())
	}
	matcher, w, err := prepare(opts, extra...)
	if err != nil {
		return nil, err
	}
	skip := skipSet(opts.SkipPaths)

	listing := &Listing{}
	for rec, walkErr := range w.Walk() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if walkErr != nil {
			listing.Diagnostics = append(listing.Diagnostics, walkDiagnostic(rec, walkErr))
			continue
		}
		if skip[rec.AbsPath] {
			continue
		}
		if rec.IsDir {
			if opts.IncludeDirs {
				listing.Records = append(listing.Records, rec)
			}
			continue
		}
		if matcher.Accept(rec) {
			listing.Records = append(listing.Records, rec)
		}
	}

	sort.Slice(listing.Records, func(i, j int) bool {
		return listing.Records[i].RelPath < listing.Records[j].RelPath
	})
	return listing, nil
}
