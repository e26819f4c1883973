// Package walker enumerates the files of a directory tree for concatenation.
//
// The walk is a lazy, depth-first sequence (iter.Seq2) in a deterministic
// order: entries of each directory are visited lexicographically by name,
// and a directory's subtree is complete before its next sibling starts.
//
// # Policies
//
//   - Hidden entries (name starting with ".") are skipped unless
//     TraversalConfig.IncludeHidden is set. The root itself is never hidden.
//   - A depth limit bounds the number of relative path segments. Directories
//     whose children would exceed the limit are not listed at all.
//   - Symlinks are emitted as leaves by default. With FollowSymlinks the
//     walker descends into linked directories and tracks real paths. A link
//     to an ancestor yields a WalkError wrapping ErrSymlinkCycle. A link to a
//     directory already listed at the same or a shallower depth yields
//     ErrDuplicateDir. Every real file is yielded once.
//   - A prune predicate (WithPrune) is consulted before descending, so an
//     excluded subtree is never read.
//
// Per-entry failures (unreadable directories, broken links) are yielded as
// *WalkError values and the walk continues with the next sibling. Only an
// invalid root, reported by New, is fatal.
//
// # Usage
//
//	w, err := walker.New(fsys.NewOS(), cfg, walker.WithPrune(m.PruneDir))
//	if err != nil {
//	    return err
//	}
//	for rec, err := range w.Walk() {
//	    if err != nil {
//	        log.Printf("skip: %v", err)
//	        continue
//	    }
//	    fmt.Println(rec.RelPath)
//	}
package walker
