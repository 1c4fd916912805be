package gitctx

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bluekeyes/go-gitdiff/gitdiff"
)

// RepoMeta contains git repository metadata.
type RepoMeta struct {
	Root   string
	Head   string
	Branch string
}

// GetRepoMeta collects metadata for the repository containing dir.
func GetRepoMeta(dir string) (RepoMeta, error) {
	dir = workDir(dir)
	root, err := gitOutput(dir, "rev-parse", "--show-toplevel")
	if err != nil {
		return RepoMeta{}, fmt.Errorf("not a git repository: %w", err)
	}
	head, err := gitOutput(dir, "rev-parse", "HEAD")
	if err != nil {
		head = "" // no commits yet
	}
	branch, err := gitOutput(dir, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		branch = ""
	}
	return RepoMeta{
		Root:   strings.TrimSpace(root),
		Head:   strings.TrimSpace(head),
		Branch: strings.TrimSpace(branch),
	}, nil
}

// Changed returns the absolute paths of files in the repository containing
// dir that differ from HEAD, plus untracked files that are not ignored.
// Deleted files are left out. In a repository without commits every
// tracked file counts as changed.
func Changed(dir string) ([]string, error) {
	dir = workDir(dir)
	meta, err := GetRepoMeta(dir)
	if err != nil {
		return nil, err
	}

	var rel []string
	if meta.Head == "" {
		out, err := gitOutput(dir, "ls-files", "-z", "--full-name")
		if err != nil {
			return nil, fmt.Errorf("git ls-files: %w", err)
		}
		rel = append(rel, splitNUL(out)...)
	} else {
		out, err := gitOutput(dir, "diff", "--no-color", "--no-ext-diff", "--src-prefix=a/", "--dst-prefix=b/", "HEAD", "--")
		if err != nil {
			return nil, fmt.Errorf("git diff HEAD: %w", err)
		}
		names, err := diffFiles(out)
		if err != nil {
			return nil, err
		}
		rel = append(rel, names...)
	}

	out, err := gitOutput(dir, "ls-files", "-z", "--others", "--exclude-standard", "--full-name")
	if err != nil {
		return nil, fmt.Errorf("git ls-files --others: %w", err)
	}
	rel = append(rel, splitNUL(out)...)

	seen := make(map[string]bool, len(rel))
	var files []string
	for _, r := range rel {
		abs := filepath.Join(meta.Root, filepath.FromSlash(r))
		if !seen[abs] {
			seen[abs] = true
			files = append(files, abs)
		}
	}
	sort.Strings(files)
	return files, nil
}

// diffFiles lists the post-image names of a unified git diff, skipping
// deletions.
func diffFiles(diff string) ([]string, error) {
	parsed, _, err := gitdiff.Parse(strings.NewReader(diff))
	if err != nil {
		return nil, fmt.Errorf("parsing git diff: %w", err)
	}
	var names []string
	for _, f := range parsed {
		if f.IsDelete || f.NewName == "" {
			continue
		}
		names = append(names, f.NewName)
	}
	return names, nil
}

// Filter keeps the candidates that appear in changed, preserving candidate
// order. Paths are compared after resolving symlinks so a temp dir reached
// through a link still matches the path git reports.
func Filter(candidates, changed []string) []string {
	set := make(map[string]bool, len(changed))
	for _, c := range changed {
		set[resolve(c)] = true
	}
	kept := []string{}
	for _, c := range candidates {
		if set[resolve(c)] {
			kept = append(kept, c)
		}
	}
	return kept
}

func resolve(path string) string {
	if r, err := filepath.EvalSymlinks(path); err == nil {
		return r
	}
	return filepath.Clean(path)
}

// workDir returns dir, or its parent when dir names a file.
func workDir(dir string) string {
	if fi, err := os.Stat(dir); err == nil && !fi.IsDir() {
		return filepath.Dir(dir)
	}
	return dir
}

func splitNUL(out string) []string {
	var names []string
	for _, name := range strings.Split(out, "\x00") {
		if name != "" {
			names = append(names, name)
		}
	}
	return names
}

func gitOutput(dir string, args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return string(out), fmt.Errorf("%s: %s", err, string(exitErr.Stderr))
		}
		return "", err
	}
	return string(out), nil
}
