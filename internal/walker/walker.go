package walker

import (
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/harrison/joinai/internal/fsys"
	"github.com/harrison/joinai/internal/models"
)

// ErrSymlinkCycle marks a followed symlink that resolves to one of its own
// ancestor directories.
var ErrSymlinkCycle = errors.New("symlink cycle")

// ErrDuplicateDir marks a followed symlink to a directory that was already
// listed at the same or a shallower depth through another path.
var ErrDuplicateDir = errors.New("directory already listed through another path")

// WalkError is a non-fatal traversal problem. The walk continues with siblings.
type WalkError struct {
	Path string // Relative path of the entry
	Err  error
}

// Error implements the error interface for WalkError.
func (e *WalkError) Error() string {
	return fmt.Sprintf("walk %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *WalkError) Unwrap() error {
	return e.Err
}

// Option configures a Walker.
type Option func(*Walker)

// WithPrune installs a predicate consulted before descending into a directory.
// Returning true skips the directory and its whole subtree.
func WithPrune(prune func(models.PathRecord) bool) Option {
	return func(w *Walker) {
		w.prune = prune
	}
}

// WithDirectories makes the walker yield directory records as well as files.
func WithDirectories() Option {
	return func(w *Walker) {
		w.emitDirs = true
	}
}

// Walker enumerates files under a root directory.
// A Walker holds no per-walk state and may be walked repeatedly.
type Walker struct {
	fs       fsys.FS
	cfg      models.TraversalConfig
	root     string
	prune    func(models.PathRecord) bool
	emitDirs bool
}

// New validates the root and creates a Walker.
// A missing root or a root that is not a directory is a *models.ConfigError.
func New(filesystem fsys.FS, cfg models.TraversalConfig, opts ...Option) (*Walker, error) {
	if cfg.Root == "" {
		return nil, models.NewConfigError("root", "", models.ErrRootNotFound)
	}
	if cfg.MaxDepth != nil && *cfg.MaxDepth < 0 {
		return nil, models.NewConfigError("max_depth", fmt.Sprint(*cfg.MaxDepth), models.ErrInvalidOption)
	}

	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, models.NewConfigError("root", cfg.Root, err)
	}

	info, err := filesystem.Stat(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, models.NewConfigError("root", cfg.Root, models.ErrRootNotFound)
		}
		return nil, models.NewConfigError("root", cfg.Root, err)
	}
	if !info.IsDir() {
		return nil, models.NewConfigError("root", cfg.Root, models.ErrRootNotDir)
	}

	w := &Walker{
		fs:   filesystem,
		cfg:  cfg,
		root: root,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Root returns the absolute traversal root.
func (w *Walker) Root() string {
	return w.root
}

// walkState is the per-invocation state of one Walk call. The real-path maps
// are only populated when symlinks are followed.
type walkState struct {
	listed    map[string]int  // Real directory -> shallowest depth it was listed at
	ancestors map[string]bool // Real directories on the current descent path
	files     map[string]bool // Real files already emitted
	yield     func(models.PathRecord, error) bool
	stopped   bool
}

func (s *walkState) emit(rec models.PathRecord, err error) bool {
	if s.stopped {
		return false
	}
	if !s.yield(rec, err) {
		s.stopped = true
	}
	return !s.stopped
}

// Walk returns a lazy sequence of records in deterministic depth-first order,
// lexicographic by name within each directory. A non-nil error in the sequence
// is a *WalkError; the record then describes the entry that failed.
func (w *Walker) Walk() iter.Seq2[models.PathRecord, error] {
	return func(yield func(models.PathRecord, error) bool) {
		st := &walkState{
			listed:    make(map[string]int),
			ancestors: make(map[string]bool),
			files:     make(map[string]bool),
			yield:     yield,
		}
		if w.cfg.FollowSymlinks {
			if resolved, err := w.fs.RealPath(w.root); err == nil {
				st.listed[resolved] = 0
				st.ancestors[resolved] = true
			}
		}
		w.walkDir(st, w.root, "", 0)
	}
}

// listable reports whether the children of a directory at depth are within
// the depth limit.
func (w *Walker) listable(depth int) bool {
	limit := w.cfg.DepthLimit()
	return limit < 0 || depth+1 <= limit
}

func (w *Walker) walkDir(st *walkState, absDir, relDir string, depth int) {
	if !w.listable(depth) {
		return
	}
	childDepth := depth + 1

	entries, err := w.fs.ReadDir(absDir)
	if err != nil {
		rec := models.PathRecord{AbsPath: absDir, RelPath: relDir, IsDir: true, Depth: depth}
		if relDir == "" {
			rec.RelPath = "."
		}
		st.emit(rec, &WalkError{Path: rec.RelPath, Err: err})
		return
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if st.stopped {
			return
		}

		name := entry.Name()
		if !w.cfg.IncludeHidden && isHidden(name) {
			continue
		}

		rec := models.PathRecord{
			AbsPath: filepath.Join(absDir, name),
			RelPath: path.Join(relDir, name),
			Depth:   childDepth,
		}

		if entry.Type()&fs.ModeSymlink != 0 {
			w.visitSymlink(st, rec)
			continue
		}

		switch {
		case entry.IsDir():
			rec.IsDir = true
			w.visitDir(st, rec, "")
		case entry.Type().IsRegular():
			info, err := entry.Info()
			if err != nil {
				// Vanished between listing and stat
				st.emit(rec, &WalkError{Path: rec.RelPath, Err: err})
				continue
			}
			rec.Size = info.Size()
			w.visitFile(st, rec)
		default:
			// Pipes, sockets and devices are never concatenated
		}
	}
}

func (w *Walker) visitSymlink(st *walkState, rec models.PathRecord) {
	rec.IsSymlink = true

	target, err := w.fs.Stat(rec.AbsPath)
	if err != nil {
		st.emit(rec, &WalkError{Path: rec.RelPath, Err: fmt.Errorf("broken symlink: %w", err)})
		return
	}

	if target.IsDir() {
		if !w.cfg.FollowSymlinks {
			return
		}
		resolved, err := w.fs.RealPath(rec.AbsPath)
		if err != nil {
			st.emit(rec, &WalkError{Path: rec.RelPath, Err: err})
			return
		}
		rec.IsDir = true
		w.visitDir(st, rec, resolved)
		return
	}

	if !target.Mode().IsRegular() {
		return
	}

	rec.Size = target.Size()
	if !w.cfg.FollowSymlinks {
		// Leaf: emitted under its own path, never resolved for dedup
		st.emit(rec, nil)
		return
	}
	w.visitFile(st, rec)
}

// visitDir emits and descends into a directory. realPath is the resolved path
// when already known (followed symlinks).
//
// With FollowSymlinks a link to an ancestor is a cycle. A directory already
// listed is descended again only from a shallower depth, where the depth
// limit may reach entries the first listing could not.
func (w *Walker) visitDir(st *walkState, rec models.PathRecord, realPath string) {
	if w.prune != nil && w.prune(rec) {
		return
	}

	if w.cfg.FollowSymlinks {
		if realPath == "" {
			resolved, err := w.fs.RealPath(rec.AbsPath)
			if err != nil {
				st.emit(rec, &WalkError{Path: rec.RelPath, Err: err})
				return
			}
			realPath = resolved
		}
		if st.ancestors[realPath] {
			if rec.IsSymlink {
				st.emit(rec, &WalkError{Path: rec.RelPath, Err: ErrSymlinkCycle})
			}
			return
		}
		if depth, seen := st.listed[realPath]; seen && depth <= rec.Depth {
			if rec.IsSymlink {
				st.emit(rec, &WalkError{Path: rec.RelPath, Err: ErrDuplicateDir})
			}
			return
		}
	}

	if w.emitDirs && !st.emit(rec, nil) {
		return
	}
	if !w.listable(rec.Depth) {
		return
	}

	if w.cfg.FollowSymlinks {
		st.listed[realPath] = rec.Depth
		st.ancestors[realPath] = true
		defer delete(st.ancestors, realPath)
	}
	w.walkDir(st, rec.AbsPath, rec.RelPath, rec.Depth)
}

func (w *Walker) visitFile(st *walkState, rec models.PathRecord) {
	if w.cfg.FollowSymlinks {
		resolved, err := w.fs.RealPath(rec.AbsPath)
		if err != nil {
			st.emit(rec, &WalkError{Path: rec.RelPath, Err: err})
			return
		}
		if st.files[resolved] {
			// Same real file reached through another path
			return
		}
		st.files[resolved] = true
	}
	st.emit(rec, nil)
}

// isHidden reports whether a base name uses the dot-file convention.
func isHidden(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}
