// Package walker discovers source files under a directory for batch analysis.
package walker

import (
	"bufio"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// IgnoreFile is read from the walk root when present. Each non-blank line not
// starting with # is an exact name, a relative path prefix or a glob.
const IgnoreFile = ".codeintelignore"

// FileInfo holds metadata about a discovered source file.
type FileInfo struct {
	Path    string
	RelPath string
	Size    int64
}

// Skipped is a file the walker saw but will not emit, with the reason.
type Skipped struct {
	RelPath string
	Reason  string
}

// Options controls which files are emitted.
type Options struct {
	// Extensions without the dot. Nil accepts every extension.
	Extensions map[string]bool
	// MaxFileSize skips larger files when positive.
	MaxFileSize int64
}

// DefaultIgnores are used when the root has no ignore file.
var DefaultIgnores = []string{
	".git",
	".svn",
	".hg",
	"node_modules",
	"vendor",
	"__pycache__",
	".venv",
	".idea",
	".vscode",
	".codeintel",
	"dist",
	"build",
}

// Walk traverses the directory tree rooted at root and sends matching files
// on the first channel. Oversized files are reported on the second channel;
// empty files are emitted since they are valid input. The error channel
// carries at most one error and every channel is closed when the walk ends.
func Walk(root string, opts Options) (<-chan FileInfo, <-chan Skipped, <-chan error) {
	files := make(chan FileInfo, 64)
	skipped := make(chan Skipped, 64)
	errs := make(chan error, 1)

	go func() {
		defer close(files)
		defer close(skipped)
		defer close(errs)

		absRoot, err := filepath.Abs(root)
		if err != nil {
			errs <- err
			return
		}

		ignores := LoadIgnorePatterns(absRoot)

		err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if path == absRoot {
					return err
				}
				return nil // skip unreadable entries, keep walking
			}

			rel, _ := filepath.Rel(absRoot, path)
			rel = filepath.ToSlash(rel)

			if d.IsDir() {
				if path == absRoot {
					return nil
				}
				if matchesIgnore(d.Name(), rel, ignores) {
					return filepath.SkipDir
				}
				return nil
			}

			// Symlinks, sockets and devices are never analyzed.
			if !d.Type().IsRegular() {
				return nil
			}
			if d.Name() == IgnoreFile || matchesIgnore(d.Name(), rel, ignores) {
				return nil
			}

			ext := strings.TrimPrefix(filepath.Ext(path), ".")
			if opts.Extensions != nil && !opts.Extensions[ext] {
				return nil
			}

			info, err := d.Info()
			if err != nil {
				skipped <- Skipped{RelPath: rel, Reason: err.Error()}
				return nil
			}
			if opts.MaxFileSize > 0 && info.Size() > opts.MaxFileSize {
				skipped <- Skipped{RelPath: rel, Reason: "file too large"}
				return nil
			}

			files <- FileInfo{Path: path, RelPath: rel, Size: info.Size()}
			return nil
		})
		if err != nil {
			errs <- err
		}
	}()

	return files, skipped, errs
}

// LoadIgnorePatterns reads the ignore file from root, falling back to
// DefaultIgnores when it is missing or has no patterns.
func LoadIgnorePatterns(root string) []string {
	f, err := os.Open(filepath.Join(root, IgnoreFile))
	if err != nil {
		return DefaultIgnores
	}
	defer f.Close()

	var patterns []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}
	if len(patterns) == 0 {
		return DefaultIgnores
	}
	return patterns
}

// matchesIgnore checks if a name or relative path matches any ignore pattern.
func matchesIgnore(name, relPath string, patterns []string) bool {
	for _, p := range patterns {
		// Exact name match (e.g. "node_modules", ".git").
		if name == p {
			return true
		}
		// Path prefix match on whole segments (e.g. "third_party/vendor").
		if relPath == p || strings.HasPrefix(relPath, strings.TrimSuffix(p, "/")+"/") {
			return true
		}
		// Glob match against the relative path or the name.
		if matched, _ := filepath.Match(p, relPath); matched {
			return true
		}
		if matched, _ := filepath.Match(p, name); matched {
			return true
		}
	}
	return false
}
