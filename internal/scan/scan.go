package scan

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Extensions is the allow-list of source and config file extensions that are
// eligible for review. Matching is case-sensitive.
var Extensions = []string{
	".html", ".css", ".scss", ".sass",
	".js", ".jsx", ".ts", ".tsx",
	".py",
	".c", ".cpp", ".h", ".hpp",
	".java",
	".cs",
	".go",
	".rs",
	".php",
	".rb",
	".json", ".yaml", ".yml",
	".xml",
	".sql",
	".sh",
	".env",
}

// SkipDirs is the deny-list of directory names that are never descended into.
var SkipDirs = []string{
	"node_modules",
	"dist",
	"build",
	"out",
	".next",
	".nuxt",
	".vercel",
	".turbo",
	".cache",
	".git",
	".github",
	".vscode",
	"coverage",
	"vendor",
	"target",
	"bin",
	"obj",
}

// Root failure reasons.
var (
	ErrRootNotFound   = errors.New("not found")
	ErrRootPermission = errors.New("permission denied")
)

// RootError reports why the scan root could not be listed.
type RootError struct {
	Path string
	Err  error
}

func (e *RootError) Error() string {
	switch {
	case errors.Is(e.Err, ErrRootNotFound):
		return fmt.Sprintf("directory not found: %s", e.Path)
	case errors.Is(e.Err, ErrRootPermission):
		return fmt.Sprintf("permission denied: %s", e.Path)
	default:
		return fmt.Sprintf("failed to read directory %s: %v", e.Path, e.Err)
	}
}

func (e *RootError) Unwrap() error { return e.Err }

// Options tunes a scan. The zero value uses Extensions and SkipDirs.
type Options struct {
	// Exclude holds additional glob patterns matched against the path
	// relative to the root and against the base name.
	Exclude []string
}

// Scan enumerates candidate files under root. A root that is itself a file
// is returned as the only candidate regardless of its extension. When root
// cannot be listed the result is empty and the error is a *RootError.
func Scan(root string, opts Options) ([]string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return []string{}, &RootError{Path: root, Err: err}
	}

	info, err := os.Stat(abs)
	if err != nil {
		return []string{}, &RootError{Path: abs, Err: rootReason(err)}
	}
	if !info.IsDir() {
		return []string{abs}, nil
	}

	entries, err := os.ReadDir(abs)
	if err != nil {
		return []string{}, &RootError{Path: abs, Err: rootReason(err)}
	}

	s := &scanner{
		root:    abs,
		exts:    toSet(Extensions),
		skip:    toSet(SkipDirs),
		exclude: opts.Exclude,
		files:   []string{},
	}
	s.walkEntries(abs, entries)
	return s.files, nil
}

type scanner struct {
	root    string
	exts    map[string]bool
	skip    map[string]bool
	exclude []string
	files   []string
}

func (s *scanner) walk(dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	s.walkEntries(dir, entries)
}

func (s *scanner) walkEntries(dir string, entries []fs.DirEntry) {
	for _, e := range entries {
		name := e.Name()
		full := filepath.Join(dir, name)

		// Follow symlinked files; symlinked directories are not descended
		// into so that link cycles cannot recurse forever.
		mode := e.Type()
		if mode&fs.ModeSymlink != 0 {
			info, err := os.Stat(full)
			if err != nil || info.IsDir() {
				continue
			}
			mode = info.Mode().Type()
		}

		switch {
		case mode.IsDir():
			if s.skip[name] || s.excluded(full) {
				continue
			}
			s.walk(full)
		case mode.IsRegular():
			if !s.exts[filepath.Ext(name)] || s.excluded(full) {
				continue
			}
			s.files = append(s.files, full)
		}
	}
}

func (s *scanner) excluded(path string) bool {
	if len(s.exclude) == 0 {
		return false
	}
	rel, err := filepath.Rel(s.root, path)
	if err != nil {
		rel = path
	}
	return MatchAny(filepath.ToSlash(rel), s.exclude)
}

// MatchAny reports whether path matches any of the glob patterns. A pattern
// with a leading "**/" also matches the base name alone, and a trailing
// "/**" matches everything below that prefix.
func MatchAny(path string, patterns []string) bool {
	base := filepath.Base(path)
	for _, pattern := range patterns {
		if ok, err := filepath.Match(pattern, path); err == nil && ok {
			return true
		}
		if prefix, found := strings.CutSuffix(pattern, "/**"); found {
			if path == prefix || strings.HasPrefix(path, prefix+"/") {
				return true
			}
		}
		if clean, found := strings.CutPrefix(pattern, "**/"); found {
			if ok, err := filepath.Match(clean, base); err == nil && ok {
				return true
			}
		}
	}
	return false
}

func rootReason(err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return ErrRootNotFound
	case errors.Is(err, fs.ErrPermission):
		return ErrRootPermission
	default:
		return err
	}
}

func toSet(items []string) map[string]bool {
	m := make(map[string]bool, len(items))
	for _, it := range items {
		m[it] = true
	}
	return m
}
