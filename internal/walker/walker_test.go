package walker

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/joinai/internal/fsys"
	"github.com/harrison/joinai/internal/models"
)

// spyFS records ReadDir calls and fails listing for chosen directories.
type spyFS struct {
	fsys.FS

	mu       sync.Mutex
	readDirs []string
	failDirs map[string]error
}

func newSpy(inner fsys.FS) *spyFS {
	return &spyFS{
		FS:       inner,
		failDirs: make(map[string]error),
	}
}

func (s *spyFS) ReadDir(name string) ([]fs.DirEntry, error) {
	s.mu.Lock()
	s.readDirs = append(s.readDirs, name)
	err := s.failDirs[name]
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return s.FS.ReadDir(name)
}

func (s *spyFS) listed() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.readDirs...)
}

// memTree builds the shared fixture:
//
//	/project/
//	  .env
//	  .git/HEAD
//	  a.rs
//	  b.toml
//	  src/lib/x.go
//	  target/c.rs
//	  target/deep/d.rs
func memTree(t *testing.T) afero.Fs {
	t.Helper()
	mem := afero.NewMemMapFs()
	files := map[string]string{
		"/project/.env":             "SECRET=1",
		"/project/.git/HEAD":        "ref: refs/heads/main",
		"/project/a.rs":             "fn main() {}",
		"/project/b.toml":           "[package]",
		"/project/src/lib/x.go":     "package lib",
		"/project/target/c.rs":      "// built",
		"/project/target/deep/d.rs": "// deeper",
	}
	for name, content := range files {
		require.NoError(t, mem.MkdirAll(filepath.Dir(name), 0755))
		require.NoError(t, afero.WriteFile(mem, name, []byte(content), 0644))
	}
	return mem
}

func intPtr(v int) *int { return &v }

type walked struct {
	paths []string
	errs  []*WalkError
	recs  []models.PathRecord
}

func collect(t *testing.T, w *Walker) walked {
	t.Helper()
	var out walked
	for rec, err := range w.Walk() {
		if err != nil {
			var we *WalkError
			require.True(t, errors.As(err, &we), "walk errors must be *WalkError, got %T", err)
			out.errs = append(out.errs, we)
			continue
		}
		out.paths = append(out.paths, rec.RelPath)
		out.recs = append(out.recs, rec)
	}
	return out
}

func TestWalkDefaultOrderAndHidden(t *testing.T) {
	w, err := New(fsys.NewAfero(memTree(t)), models.TraversalConfig{Root: "/project"})
	require.NoError(t, err)

	got := collect(t, w)
	assert.Empty(t, got.errs)
	assert.Equal(t, []string{
		"a.rs",
		"b.toml",
		"src/lib/x.go",
		"target/c.rs",
		"target/deep/d.rs",
	}, got.paths)
}

func TestWalkIncludeHidden(t *testing.T) {
	w, err := New(fsys.NewAfero(memTree(t)), models.TraversalConfig{Root: "/project", IncludeHidden: true})
	require.NoError(t, err)

	got := collect(t, w)
	assert.Equal(t, []string{
		".env",
		".git/HEAD",
		"a.rs",
		"b.toml",
		"src/lib/x.go",
		"target/c.rs",
		"target/deep/d.rs",
	}, got.paths)
}

func TestWalkRecordFields(t *testing.T) {
	w, err := New(fsys.NewAfero(memTree(t)), models.TraversalConfig{Root: "/project"})
	require.NoError(t, err)

	got := collect(t, w)
	byPath := make(map[string]models.PathRecord)
	for _, rec := range got.recs {
		byPath[rec.RelPath] = rec
	}

	rec := byPath["src/lib/x.go"]
	assert.Equal(t, 3, rec.Depth)
	assert.Equal(t, filepath.Join("/project", "src", "lib", "x.go"), rec.AbsPath)
	assert.Equal(t, int64(len("package lib")), rec.Size)
	assert.False(t, rec.IsDir)
	assert.False(t, rec.IsSymlink)
	assert.Equal(t, 1, byPath["a.rs"].Depth)
}

func TestWalkPruneNeverListsSubtree(t *testing.T) {
	spy := newSpy(fsys.NewAfero(memTree(t)))
	prune := func(rec models.PathRecord) bool { return rec.Name() == "target" }

	w, err := New(spy, models.TraversalConfig{Root: "/project"}, WithPrune(prune))
	require.NoError(t, err)

	got := collect(t, w)
	assert.Equal(t, []string{"a.rs", "b.toml", "src/lib/x.go"}, got.paths)

	for _, dir := range spy.listed() {
		assert.NotContains(t, dir, "target", "pruned directory %s was listed", dir)
	}
	assert.Contains(t, spy.listed(), filepath.Join("/project", "src", "lib"))
}

func TestWalkMaxDepth(t *testing.T) {
	tests := []struct {
		name     string
		depth    int
		want     []string
		wantList []string
	}{
		{
			name:     "zero yields nothing",
			depth:    0,
			want:     nil,
			wantList: nil,
		},
		{
			name:     "one yields root files only",
			depth:    1,
			want:     []string{"a.rs", "b.toml"},
			wantList: []string{"/project"},
		},
		{
			name:  "two stops above leaf directories",
			depth: 2,
			want:  []string{"a.rs", "b.toml", "target/c.rs"},
			wantList: []string{
				"/project",
				filepath.Join("/project", "src"),
				filepath.Join("/project", "target"),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spy := newSpy(fsys.NewAfero(memTree(t)))
			w, err := New(spy, models.TraversalConfig{Root: "/project", MaxDepth: intPtr(tt.depth)})
			require.NoError(t, err)

			got := collect(t, w)
			assert.Equal(t, tt.want, got.paths)
			assert.Equal(t, tt.wantList, spy.listed())
			for _, rec := range got.recs {
				assert.LessOrEqual(t, rec.Depth, tt.depth)
			}
		})
	}
}

func TestWalkDeterministic(t *testing.T) {
	w, err := New(fsys.NewAfero(memTree(t)), models.TraversalConfig{Root: "/project", IncludeHidden: true})
	require.NoError(t, err)

	first := collect(t, w)
	second := collect(t, w)
	assert.Equal(t, first.paths, second.paths)
}

func TestWalkReadDirErrorContinues(t *testing.T) {
	spy := newSpy(fsys.NewAfero(memTree(t)))
	spy.failDirs[filepath.Join("/project", "src")] = fs.ErrPermission

	w, err := New(spy, models.TraversalConfig{Root: "/project"})
	require.NoError(t, err)

	got := collect(t, w)
	assert.Equal(t, []string{"a.rs", "b.toml", "target/c.rs", "target/deep/d.rs"}, got.paths)
	require.Len(t, got.errs, 1)
	assert.Equal(t, "src", got.errs[0].Path)
	assert.ErrorIs(t, got.errs[0], fs.ErrPermission)
}

func TestWalkRootReadDirError(t *testing.T) {
	spy := newSpy(fsys.NewAfero(memTree(t)))
	spy.failDirs["/project"] = fs.ErrPermission

	w, err := New(spy, models.TraversalConfig{Root: "/project"})
	require.NoError(t, err)

	got := collect(t, w)
	assert.Empty(t, got.paths)
	require.Len(t, got.errs, 1)
	assert.Equal(t, ".", got.errs[0].Path)
}

func TestWalkWithDirectories(t *testing.T) {
	w, err := New(fsys.NewAfero(memTree(t)), models.TraversalConfig{Root: "/project"}, WithDirectories())
	require.NoError(t, err)

	got := collect(t, w)
	assert.Equal(t, []string{
		"a.rs",
		"b.toml",
		"src",
		"src/lib",
		"src/lib/x.go",
		"target",
		"target/c.rs",
		"target/deep",
		"target/deep/d.rs",
	}, got.paths)

	for _, rec := range got.recs {
		if rec.RelPath == "src/lib" {
			assert.True(t, rec.IsDir)
			assert.Equal(t, 2, rec.Depth)
		}
	}
}

func TestWalkEarlyStop(t *testing.T) {
	w, err := New(fsys.NewAfero(memTree(t)), models.TraversalConfig{Root: "/project"}, WithDirectories())
	require.NoError(t, err)

	var seen []string
	for rec, err := range w.Walk() {
		require.NoError(t, err)
		seen = append(seen, rec.RelPath)
		if rec.RelPath == "src" {
			break
		}
	}
	assert.Equal(t, []string{"a.rs", "b.toml", "src"}, seen)
}

func TestNewRootValidation(t *testing.T) {
	mem := memTree(t)

	tests := []struct {
		name    string
		cfg     models.TraversalConfig
		wantErr error
	}{
		{"empty root", models.TraversalConfig{}, models.ErrRootNotFound},
		{"missing root", models.TraversalConfig{Root: "/nope"}, models.ErrRootNotFound},
		{"file root", models.TraversalConfig{Root: "/project/a.rs"}, models.ErrRootNotDir},
		{"negative depth", models.TraversalConfig{Root: "/project", MaxDepth: intPtr(-1)}, models.ErrInvalidOption},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := New(fsys.NewAfero(mem), tt.cfg)
			assert.Nil(t, w)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.True(t, models.IsConfigError(err))
		})
	}
}

func TestNewRootIsAbsolute(t *testing.T) {
	t.Chdir(t.TempDir())

	w, err := New(fsys.NewOS(), models.TraversalConfig{Root: "."})
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(w.Root()))
}

// symlinkTree builds:
//
//	tmp/
//	  broken -> missing
//	  link_dir -> real
//	  link_file -> real/a.txt
//	  real/a.txt
func symlinkTree(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("symlinks require privileges on windows")
	}
	tmpDir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(tmpDir, "real"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "real", "a.txt"), []byte("alpha"), 0644))
	require.NoError(t, os.Symlink(filepath.Join(tmpDir, "missing"), filepath.Join(tmpDir, "broken")))
	require.NoError(t, os.Symlink(filepath.Join(tmpDir, "real"), filepath.Join(tmpDir, "link_dir")))
	require.NoError(t, os.Symlink(filepath.Join(tmpDir, "real", "a.txt"), filepath.Join(tmpDir, "link_file")))
	return tmpDir
}

func TestWalkSymlinksAsLeaves(t *testing.T) {
	root := symlinkTree(t)

	w, err := New(fsys.NewOS(), models.TraversalConfig{Root: root})
	require.NoError(t, err)

	got := collect(t, w)
	assert.Equal(t, []string{"link_file", "real/a.txt"}, got.paths)
	assert.True(t, got.recs[0].IsSymlink)
	assert.Equal(t, int64(5), got.recs[0].Size)

	require.Len(t, got.errs, 1)
	assert.Equal(t, "broken", got.errs[0].Path)
	assert.ErrorIs(t, got.errs[0], fs.ErrNotExist)
}

func TestWalkFollowSymlinksDedupesRealFiles(t *testing.T) {
	root := symlinkTree(t)

	w, err := New(fsys.NewOS(), models.TraversalConfig{Root: root, FollowSymlinks: true})
	require.NoError(t, err)

	got := collect(t, w)
	// real/a.txt is first reached through link_dir; the other two paths to
	// the same file are dropped.
	assert.Equal(t, []string{"link_dir/a.txt"}, got.paths)
	require.Len(t, got.errs, 1)
	assert.Equal(t, "broken", got.errs[0].Path)
}

func TestWalkFollowSymlinksCycle(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks require privileges on windows")
	}
	tmpDir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(tmpDir, "a"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "a", "b.txt"), []byte("b"), 0644))
	require.NoError(t, os.Symlink(tmpDir, filepath.Join(tmpDir, "a", "loop")))
	require.NoError(t, os.Symlink(filepath.Join(tmpDir, "a"), filepath.Join(tmpDir, "a", "self")))

	w, err := New(fsys.NewOS(), models.TraversalConfig{Root: tmpDir, FollowSymlinks: true})
	require.NoError(t, err)

	got := collect(t, w)
	assert.Equal(t, []string{"a/b.txt"}, got.paths)

	require.Len(t, got.errs, 2)
	assert.Equal(t, "a/loop", got.errs[0].Path)
	assert.Equal(t, "a/self", got.errs[1].Path)
	for _, we := range got.errs {
		assert.ErrorIs(t, we, ErrSymlinkCycle)
	}
}

// mkTree creates files and then symlinks (link name -> target, both relative
// to the returned root).
func mkTree(t *testing.T, files []string, links map[string]string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("symlinks require privileges on windows")
	}
	tmpDir := t.TempDir()
	for _, rel := range files {
		full := filepath.Join(tmpDir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
		require.NoError(t, os.WriteFile(full, []byte(rel), 0644))
	}
	for link, target := range links {
		require.NoError(t, os.Symlink(filepath.Join(tmpDir, filepath.FromSlash(target)), filepath.Join(tmpDir, link)))
	}
	return tmpDir
}

func TestWalkFollowSymlinksDuplicateIsNotCycle(t *testing.T) {
	root := mkTree(t, []string{"a/f.txt"}, map[string]string{"z_dup": "a"})

	w, err := New(fsys.NewOS(), models.TraversalConfig{Root: root, FollowSymlinks: true})
	require.NoError(t, err)

	got := collect(t, w)
	assert.Equal(t, []string{"a/f.txt"}, got.paths)
	require.Len(t, got.errs, 1)
	assert.Equal(t, "z_dup", got.errs[0].Path)
	assert.ErrorIs(t, got.errs[0], ErrDuplicateDir)
	assert.NotErrorIs(t, got.errs[0], ErrSymlinkCycle)
}

func TestWalkFollowSymlinksBelowDepthLimit(t *testing.T) {
	// b/sub sits at the depth limit and is never listed through b, so the
	// shallower link c still reaches its file.
	root := mkTree(t, []string{"b/sub/f.txt"}, map[string]string{"c": "b/sub"})

	w, err := New(fsys.NewOS(), models.TraversalConfig{Root: root, FollowSymlinks: true, MaxDepth: intPtr(2)})
	require.NoError(t, err)

	got := collect(t, w)
	assert.Empty(t, got.errs)
	assert.Equal(t, []string{"c/f.txt"}, got.paths)
	for _, rec := range got.recs {
		assert.LessOrEqual(t, rec.Depth, 2)
	}
}

func TestWalkFollowSymlinksRelistsFromShallowerDepth(t *testing.T) {
	// b/x/sub is listed at depth 3, which cannot reach deep/f.txt under a
	// limit of 4. The link c lists it again from depth 1; g.txt is not
	// yielded twice.
	root := mkTree(t,
		[]string{"b/x/sub/g.txt", "b/x/sub/deep/f.txt"},
		map[string]string{"c": "b/x/sub"},
	)

	w, err := New(fsys.NewOS(), models.TraversalConfig{Root: root, FollowSymlinks: true, MaxDepth: intPtr(4)})
	require.NoError(t, err)

	got := collect(t, w)
	assert.Empty(t, got.errs)
	assert.Equal(t, []string{"b/x/sub/g.txt", "c/deep/f.txt"}, got.paths)
}

func TestWalkFollowSymlinksCycleAtDepthLimit(t *testing.T) {
	root := mkTree(t, []string{"a/b.txt"}, map[string]string{"a/loop": "."})

	w, err := New(fsys.NewOS(), models.TraversalConfig{Root: root, FollowSymlinks: true, MaxDepth: intPtr(2)})
	require.NoError(t, err)

	got := collect(t, w)
	assert.Equal(t, []string{"a/b.txt"}, got.paths)
	require.Len(t, got.errs, 1)
	assert.Equal(t, "a/loop", got.errs[0].Path)
	assert.ErrorIs(t, got.errs[0], ErrSymlinkCycle)
}

func TestWalkSymlinkDirNotFollowed(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks require privileges on windows")
	}
	tmpDir := t.TempDir()
	require.NoError(t, os.Symlink(tmpDir, filepath.Join(tmpDir, "loop")))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "z.txt"), []byte("z"), 0644))

	w, err := New(fsys.NewOS(), models.TraversalConfig{Root: tmpDir})
	require.NoError(t, err)

	got := collect(t, w)
	assert.Equal(t, []string{"z.txt"}, got.paths)
	assert.Empty(t, got.errs)
}
