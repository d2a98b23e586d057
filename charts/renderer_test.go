package charts

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRendererRequiresDir(t *testing.T) {
	_, err := NewRenderer("")
	assert.Error(t, err)
}

func TestNewRendererCreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")
	r, err := NewRenderer(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, r.OutDir())

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestRenderWritesHTML(t *testing.T) {
	r, err := NewRenderer(t.TempDir())
	require.NoError(t, err)

	for _, typ := range []Type{TypeBar, TypeLine, TypePie} {
		t.Run(string(typ), func(t *testing.T) {
			spec := validBar()
			spec.Type = typ
			if typ == TypePie {
				spec.Series = spec.Series[:1]
			}

			path, err := r.Render(&spec)
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(path, r.OutDir()))
			assert.True(t, strings.HasSuffix(path, ".html"))

			html, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Contains(t, string(html), spec.Title)
		})
	}
}

func TestRenderDistinctPathsForSameTitle(t *testing.T) {
	r, err := NewRenderer(t.TempDir())
	require.NoError(t, err)

	spec := validBar()
	first, err := r.Render(&spec)
	require.NoError(t, err)
	second, err := r.Render(&spec)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestFileNameSlug(t *testing.T) {
	name := fileName("Quarterly Revenue: 2025!")
	assert.True(t, strings.HasPrefix(name, "quarterly-revenue-2025-"))
	assert.True(t, strings.HasSuffix(name, ".html"))

	fallback := fileName("!!!")
	assert.True(t, strings.HasPrefix(fallback, "chart-"))
}
