package workspace

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestListFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.kite", "var x = 1")
	writeFile(t, root, "network/vpc.kite", "var y = 2")
	writeFile(t, root, "README.md", "not a source file")

	ws := NewDir(root, zerolog.Nop())
	files := ws.ListFiles()

	require.Len(t, files, 2)
	for _, f := range files {
		assert.Equal(t, ".kite", filepath.Ext(f))
	}
}

func TestListFilesExcludes(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.kite", "var x = 1")
	writeFile(t, root, "vendor/dep.kite", "var y = 2")

	ws := NewDir(root, zerolog.Nop(), WithExcludes([]string{"vendor/**"}))
	files := ws.ListFiles()

	require.Len(t, files, 1)
	assert.Contains(t, files[0], "main.kite")
}

func TestReadFileRelativeToImporter(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "network/vpc.kite", "var vpc = 1")
	from := writeFile(t, root, "network/subnet.kite", "import * from \"./vpc.kite\"")

	ws := NewDir(root, zerolog.Nop())

	text, resolved, ok := ws.ReadFile("./vpc.kite", PathToURI(from))
	require.True(t, ok)
	assert.Equal(t, "var vpc = 1", text)
	assert.Equal(t, filepath.Join(root, "network", "vpc.kite"), resolved)
}

func TestReadFileUnavailable(t *testing.T) {
	ws := NewDir(t.TempDir(), zerolog.Nop())

	_, _, ok := ws.ReadFile("missing.kite", "")
	assert.False(t, ok)
}

func TestResolveImport(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "network/vpc.kite", "vpc")
	writeFile(t, root, "shared.kite", "shared")
	writeFile(t, root, "pkg/types/Common.kite", "common")
	from := writeFile(t, root, "main.kite", "")
	fromURI := PathToURI(from)

	ws := NewDir(root, zerolog.Nop())

	tests := []struct {
		name       string
		importPath string
		wantText   string
		wantPath   string
		wantOK     bool
	}{
		{"explicit relative", "./network/vpc.kite", "vpc", "network/vpc.kite", true},
		{"relative without extension", "./shared", "shared", "shared.kite", true},
		{"bare filename", "shared", "shared", "shared.kite", true},
		{"bare filename with extension", "shared.kite", "shared", "shared.kite", true},
		{"package style", "pkg.types.Common", "common", "pkg/types/Common.kite", true},
		{"unresolvable", "no.such.Thing", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolved, text, ok := ResolveImport(ws, tt.importPath, fromURI)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantText, text)
				assert.Equal(t, filepath.Join(root, tt.wantPath), resolved)
			}
		})
	}
}

func TestResolveImportFromSubdirectory(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "shared.kite", "shared")
	from := writeFile(t, root, "sub/main.kite", "import * from \"shared\"")

	ws := NewDir(root, zerolog.Nop())

	// A bare-filename import only resolvable at the workspace root must
	// report the root path, not a phantom sibling of the importer.
	resolved, text, ok := ResolveImport(ws, "shared", PathToURI(from))
	require.True(t, ok)
	assert.Equal(t, "shared", text)
	assert.Equal(t, filepath.Join(root, "shared.kite"), resolved)

	_, err := os.Stat(resolved)
	assert.NoError(t, err)
}

func TestURIConversion(t *testing.T) {
	assert.Equal(t, "/a/b.kite", URIToPath("file:///a/b.kite"))
	assert.Equal(t, "/a/b.kite", URIToPath("/a/b.kite"))
	assert.Equal(t, "file:///a/b.kite", PathToURI("/a/b.kite"))
	assert.Equal(t, "file:///a/b.kite", PathToURI("file:///a/b.kite"))
}

func TestDeclCache(t *testing.T) {
	cache := NewDeclCache()

	_, ok := cache.Get("file:///a.kite")
	assert.False(t, ok)

	cache.Put("file:///a.kite", nil)
	_, ok = cache.Get("file:///a.kite")
	assert.True(t, ok)

	cache.Invalidate("file:///a.kite")
	_, ok = cache.Get("file:///a.kite")
	assert.False(t, ok)

	stats := cache.Stats()
	assert.Equal(t, 0, stats["documents"])
}
