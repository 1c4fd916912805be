// Package scan discovers candidate files for review.
//
// A directory root is walked depth-first. Directories named on the fixed
// deny-list (node_modules, .git, vendor, ...) are pruned at any depth, and
// only files whose extension is on the fixed allow-list are returned.
// Unreadable subdirectories and entries that disappear mid-walk are skipped
// without failing the scan. A root that is a single file bypasses both
// lists.
package scan
