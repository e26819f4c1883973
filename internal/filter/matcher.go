// Package filter implements the ordered selection rules applied to walker records.
//
// Rules are evaluated in a fixed order: excluded extensions, then exclude
// globs, then include globs. An excluded path is never brought back by an
// include pattern. Directory exclusion is not part of Accept; the walker calls
// PruneDir before descending so excluded subtrees are never listed.
//
// Globs are case-sensitive. A pattern without a "/" matches the base name of
// the record, a pattern with a "/" matches the slash-separated path relative to
// the root and may use "**" to span segments. Extensions compare
// case-insensitively.
package filter

import (
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/harrison/joinai/internal/models"
)

// pattern is a normalized glob and whether it applies to the full relative path.
type pattern struct {
	glob     string
	fullPath bool
}

func (p pattern) match(rel, name string) bool {
	target := name
	if p.fullPath {
		target = rel
	}
	// The pattern was validated at compile time, so the error is always nil.
	ok, _ := doublestar.Match(p.glob, target)
	return ok
}

// Matcher is a compiled, immutable FilterRules.
type Matcher struct {
	include     []pattern
	exclude     []pattern
	excludeDirs []pattern
	extensions  map[string]bool
}

// Compile validates and normalizes rules.
// An invalid glob in any list is reported as a *models.ConfigError.
func Compile(rules models.FilterRules) (*Matcher, error) {
	m := &Matcher{
		extensions: make(map[string]bool),
	}

	var err error
	if m.include, err = compilePatterns("include", rules.Include); err != nil {
		return nil, err
	}
	if m.exclude, err = compilePatterns("exclude", rules.Exclude); err != nil {
		return nil, err
	}
	if m.excludeDirs, err = compilePatterns("exclude_dirs", rules.ExcludeDirs); err != nil {
		return nil, err
	}

	for _, ext := range rules.ExcludeExtensions {
		if normalized := NormalizeExtension(ext); normalized != "" {
			m.extensions[normalized] = true
		}
	}

	return m, nil
}

func compilePatterns(field string, raw []string) ([]pattern, error) {
	patterns := make([]pattern, 0, len(raw))
	for _, r := range raw {
		glob := normalizePattern(r)
		if glob == "" {
			continue
		}
		if !doublestar.ValidatePattern(glob) {
			return nil, models.NewConfigError(field, r, models.ErrInvalidPattern)
		}
		patterns = append(patterns, pattern{
			glob:     glob,
			fullPath: strings.Contains(glob, "/"),
		})
	}
	return patterns, nil
}

// normalizePattern strips "./", leading separators and a trailing "/".
func normalizePattern(p string) string {
	p = strings.TrimSpace(p)
	p = strings.ReplaceAll(p, "\\", "/")
	for strings.HasPrefix(p, "./") {
		p = strings.TrimPrefix(p, "./")
	}
	p = strings.TrimLeft(p, "/")
	p = strings.TrimRight(p, "/")
	return p
}

// NormalizeExtension lower-cases ext and strips a leading dot.
func NormalizeExtension(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}

// Accept reports whether a file record survives the rules.
// It has no side effects and performs no I/O.
func (m *Matcher) Accept(rec models.PathRecord) bool {
	if rec.IsDir {
		return false
	}

	name := rec.Name()

	// 1. Extension exclusion
	if len(m.extensions) > 0 {
		ext := NormalizeExtension(path.Ext(name))
		if ext != "" && m.extensions[ext] {
			return false
		}
	}

	// 2. Exclude globs take precedence over include globs
	for _, p := range m.exclude {
		if p.match(rec.RelPath, name) {
			return false
		}
	}

	// 3. Include globs (empty = accept everything left)
	if len(m.include) == 0 {
		return true
	}
	for _, p := range m.include {
		if p.match(rec.RelPath, name) {
			return true
		}
	}
	return false
}

// PruneDir reports whether a directory record must not be descended into.
func (m *Matcher) PruneDir(rec models.PathRecord) bool {
	name := rec.Name()
	for _, p := range m.excludeDirs {
		if p.match(rec.RelPath, name) {
			return true
		}
	}
	return false
}

// HasIncludes reports whether any include pattern is configured.
func (m *Matcher) HasIncludes() bool {
	return len(m.include) > 0
}
