package env

import (
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const modulePath = "github.com/Cubiaa/oculus-check"

// imports returns every import reached from the non-test files of dir,
// following packages of this module.
func imports(t *testing.T, root, dir string, seen map[string]bool) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	fset := token.NewFileSet()
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
			continue
		}
		f, err := parser.ParseFile(fset, filepath.Join(dir, name), nil, parser.ImportsOnly)
		require.NoError(t, err)

		for _, spec := range f.Imports {
			path, err := strconv.Unquote(spec.Path.Value)
			require.NoError(t, err)
			if seen[path] {
				continue
			}
			seen[path] = true
			if rel, ok := strings.CutPrefix(path, modulePath+"/"); ok {
				imports(t, root, filepath.Join(root, filepath.FromSlash(rel)), seen)
			}
		}
	}
}

func TestCommandDoesNotLinkOpenCVOrFyne(t *testing.T) {
	root := filepath.Join("..", "..")
	seen := map[string]bool{}
	imports(t, root, filepath.Join(root, "cmd", "envcheck"), seen)

	assert.True(t, seen[modulePath+"/probe/env"])
	for path := range seen {
		assert.NotEqual(t, modulePath+"/camera", path)
		assert.NotEqual(t, modulePath+"/probe", path)
		assert.False(t, strings.HasPrefix(path, "gocv.io/"), path)
		assert.False(t, strings.HasPrefix(path, "fyne.io/"), path)
	}
}
