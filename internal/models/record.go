package models

// TraversalConfig controls how the walker enumerates a tree.
// It must not be modified once a walk has started.
type TraversalConfig struct {
	Root           string // Directory to traverse
	MaxDepth       *int   // Deepest record depth to emit (nil = unlimited)
	FollowSymlinks bool   // Descend into symlinked directories and read symlinked files
	IncludeHidden  bool   // Emit and descend into entries whose name starts with "."
}

// HasDepthLimit reports whether a maximum depth was configured.
func (c TraversalConfig) HasDepthLimit() bool {
	return c.MaxDepth != nil
}

// DepthLimit returns the configured maximum depth, or -1 when unlimited.
func (c TraversalConfig) DepthLimit() int {
	if c.MaxDepth == nil {
		return -1
	}
	return *c.MaxDepth
}

// FilterRules holds the user supplied selection rules.
type FilterRules struct {
	Include           []string // Glob patterns; empty means "everything"
	Exclude           []string // Glob patterns; always win over Include
	ExcludeDirs       []string // Directory names or relative paths pruned during traversal
	ExcludeExtensions []string // Extensions (with or without leading dot)
}

// PathRecord describes one entry produced by the walker.
type PathRecord struct {
	AbsPath   string // Absolute path on the filesystem
	RelPath   string // Slash-separated path relative to the traversal root
	IsDir     bool   // Entry is a directory (or a followed symlink to one)
	IsSymlink bool   // Entry itself is a symbolic link
	Depth     int    // Number of path segments between root and entry
	Size      int64  // Size in bytes of the (resolved) file
}

// Name returns the last segment of the relative path.
func (r PathRecord) Name() string {
	for i := len(r.RelPath) - 1; i >= 0; i-- {
		if r.RelPath[i] == '/' {
			return r.RelPath[i+1:]
		}
	}
	return r.RelPath
}
