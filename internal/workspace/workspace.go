package workspace

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"

	"kitenav/internal/lang"
)

// Workspace is the host's file surface: enumerate source files and read one
// of them. ReadFile reports the concrete path it read, since relative paths
// resolve against the importing document's directory or the workspace root.
// A false return means "unavailable" and is never an error — one missing
// file must not abort a cross-file search.
type Workspace interface {
	ListFiles() []string
	ReadFile(path, fromURI string) (text string, resolved string, ok bool)
}

// DirWorkspace serves Kite sources from a root directory, filtered by
// extension and exclude globs.
type DirWorkspace struct {
	root     string
	ext      string
	excludes []string
	log      zerolog.Logger
}

type Option func(*DirWorkspace)

// WithExcludes sets doublestar glob patterns, matched against root-relative
// paths, that ListFiles skips.
func WithExcludes(patterns []string) Option {
	return func(w *DirWorkspace) {
		w.excludes = patterns
	}
}

// WithExtension overrides the source file extension (dot included).
func WithExtension(ext string) Option {
	return func(w *DirWorkspace) {
		w.ext = ext
	}
}

func NewDir(root string, log zerolog.Logger, opts ...Option) *DirWorkspace {
	w := &DirWorkspace{
		root: root,
		ext:  lang.Extension,
		log:  log,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Root returns the workspace root directory.
func (w *DirWorkspace) Root() string {
	return w.root
}

// ListFiles walks the root and returns every source file path, excludes
// applied. Walk errors skip the offending subtree and keep the rest.
func (w *DirWorkspace) ListFiles() []string {
	var files []string
	filepath.WalkDir(w.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fs.SkipDir
		}
		rel, relErr := filepath.Rel(w.root, path)
		if relErr != nil {
			rel = path
		}
		if d.IsDir() {
			if w.excluded(rel) && rel != "." {
				return fs.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, w.ext) || w.excluded(rel) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	return files
}

func (w *DirWorkspace) excluded(rel string) bool {
	rel = filepath.ToSlash(rel)
	for _, pattern := range w.excludes {
		if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
			return true
		}
	}
	return false
}

// ReadFile reads a source file. Relative paths are tried against the
// importing document's directory first, then the workspace root; the second
// return is the candidate that was actually read.
func (w *DirWorkspace) ReadFile(path, fromURI string) (string, string, bool) {
	candidates := []string{path}
	if !filepath.IsAbs(path) {
		if from := URIToPath(fromURI); from != "" {
			candidates = append([]string{filepath.Join(filepath.Dir(from), path)}, candidates...)
		}
		candidates = append(candidates, filepath.Join(w.root, path))
	}

	for _, candidate := range candidates {
		data, err := os.ReadFile(candidate)
		if err == nil {
			return string(data), candidate, true
		}
	}
	w.log.Debug().Str("path", path).Msg("file unavailable")
	return "", "", false
}

// ResolveImport maps an import path string to a readable file, trying in
// order: explicit relative (./ or ../), a bare filename with the source
// extension, then dot-separated package style (a.B.C -> a/B/C<ext>).
// Returns the resolved path and its content.
func ResolveImport(ws Workspace, importPath, fromURI string) (string, string, bool) {
	ext := lang.Extension

	var candidates []string
	withExt := func(p string) string {
		if strings.HasSuffix(p, ext) {
			return p
		}
		return p + ext
	}

	if strings.HasPrefix(importPath, "./") || strings.HasPrefix(importPath, "../") {
		candidates = append(candidates, withExt(importPath))
	} else {
		candidates = append(candidates, withExt(importPath))
		if strings.Contains(importPath, ".") && !strings.HasSuffix(importPath, ext) {
			candidates = append(candidates, strings.ReplaceAll(importPath, ".", "/")+ext)
		}
	}

	for _, candidate := range candidates {
		if text, resolved, ok := ws.ReadFile(candidate, fromURI); ok {
			return resolved, text, true
		}
	}
	return "", "", false
}

// URIToPath strips a file:// scheme, leaving a filesystem path. Paths
// without a scheme pass through untouched.
func URIToPath(uri string) string {
	return strings.TrimPrefix(uri, "file://")
}

// PathToURI makes a file:// URI from a filesystem path, passing through
// strings that already carry a scheme.
func PathToURI(path string) string {
	if strings.Contains(path, "://") {
		return path
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return "file://" + filepath.ToSlash(path)
}
