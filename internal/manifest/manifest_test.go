package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bunderr "github.com/bundlegen/bundlegen/internal/errors"
)

const sample = `
js:
  - https://cdn.example.com/lib.js
  - src/app.ts
  - // inline comment block
css:
  - src/style.scss
  - file: vendor/theme.css
    variables:
      primary-color: red
    scope: "#app"
config:
  minify: true
  output-js: dist/bundle.js
  scss_variables:
    font-size: 16
`

func TestParse(t *testing.T) {
	m, err := Parse([]byte(sample), "bundle.yaml")
	require.NoError(t, err)

	t.Run("order preserved", func(t *testing.T) {
		require.Len(t, m.JS, 3)
		assert.Equal(t, "https://cdn.example.com/lib.js", m.JS[0].File)
		assert.Equal(t, "src/app.ts", m.JS[1].File)
		assert.Equal(t, "// inline comment block", m.JS[2].File)
	})

	t.Run("block entry", func(t *testing.T) {
		require.Len(t, m.CSS, 2)
		entry := m.CSS[1]
		assert.Equal(t, "vendor/theme.css", entry.File)
		assert.Equal(t, "#app", entry.Scope)
		assert.Equal(t, "red", entry.Variables["primary_color"])
		assert.True(t, entry.IsBlock())
		assert.False(t, m.CSS[0].IsBlock())
	})

	t.Run("config keys normalized", func(t *testing.T) {
		assert.Equal(t, true, m.Config["minify"])
		assert.Equal(t, "dist/bundle.js", m.Config["output_js"])
		nested, ok := m.Config["scss_variables"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, 16, nested["font_size"])
	})
}

func TestParse_BlockWithoutFile(t *testing.T) {
	_, err := Parse([]byte("css:\n  - scope: body\n"), "bundle.yaml")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "file")
}

func TestLoad_Missing(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "absent.yaml")

	m, err := Load(missing, false)
	require.NoError(t, err)
	assert.Empty(t, m.JS)
	assert.Empty(t, m.CSS)

	_, err = Load(missing, true)
	assert.True(t, bunderr.IsKind(err, bunderr.KindNotFound))
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bundle.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))

	m, err := Load(path, true)
	require.NoError(t, err)
	assert.Len(t, m.CSS, 2)
	assert.Equal(t, m.JS, m.Entries("js"))
	assert.Equal(t, m.CSS, m.Entries("css"))
}

func TestFromStrings(t *testing.T) {
	entries := FromStrings([]string{"a.js", "b.ts"})
	require.Len(t, entries, 2)
	assert.Equal(t, "a.js", entries[0].File)
	assert.Equal(t, "b.ts", entries[1].File)
}
