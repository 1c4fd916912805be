// Package gitctx asks git which files in a working tree have changed.
//
// [Changed] lists files that differ from HEAD together with untracked files
// that are not ignored, and [Filter] narrows a scanned candidate list to
// those files. Both shell out to git in the directory being reviewed.
package gitctx
