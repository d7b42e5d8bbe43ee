package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bunderr "github.com/bundlegen/bundlegen/internal/errors"
	"github.com/bundlegen/bundlegen/internal/manifest"
	"github.com/bundlegen/bundlegen/internal/scss"
)

// newSCSSPipeline builds a pipeline with a live dart-sass compiler,
// skipping when the binary is unavailable on the host.
func newSCSSPipeline(t *testing.T, minify bool, variables map[string]any) *Pipeline {
	t.Helper()
	compiler, err := scss.NewCompiler("", nil)
	if err != nil {
		t.Skipf("dart-sass unavailable: %v", err)
	}
	t.Cleanup(func() { _ = compiler.Close() })
	return New(Options{SCSS: compiler, Minify: minify, Variables: variables})
}

func TestCSS_PlainLocalFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "style.css", "body {\n  color: red;\n}\n")

	t.Run("unminified passes through", func(t *testing.T) {
		p := New(Options{})
		out, err := p.CSS(NewContext(), manifest.Entry{File: path})
		require.NoError(t, err)
		assert.Equal(t, "body {\n  color: red;\n}\n", out)
	})

	t.Run("minified strips whitespace", func(t *testing.T) {
		p := New(Options{Minify: true})
		out, err := p.CSS(NewContext(), manifest.Entry{File: path})
		require.NoError(t, err)
		assert.Equal(t, "body{color:red}", out)
	})
}

func TestCSS_MinifyPreservesQuotedStrings(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "style.css", "div::after {\n  content: \"a  b\";\n}\n")

	p := New(Options{Minify: true})
	out, err := p.CSS(NewContext(), manifest.Entry{File: path})
	require.NoError(t, err)
	assert.Contains(t, out, `"a  b"`)
}

func TestCSS_InlineBlocks(t *testing.T) {
	p := New(Options{})

	out, err := p.CSS(NewContext(), manifest.Entry{File: "/* banner */ body { color: red }"})
	require.NoError(t, err)
	assert.Equal(t, "/* banner */ body { color: red }", out)
}

func TestCSS_UnrecognizedEntry(t *testing.T) {
	p := New(Options{})
	_, err := p.CSS(NewContext(), manifest.Entry{File: "body { color: red }"})
	require.Error(t, err)
	assert.True(t, bunderr.IsKind(err, bunderr.KindUnrecognized))
}

func TestCSS_MissingLocalFile(t *testing.T) {
	p := New(Options{})
	_, err := p.CSS(NewContext(), manifest.Entry{File: "nope/absent.css"})
	assert.True(t, bunderr.IsKind(err, bunderr.KindNotFound))
}

func TestCSS_SCSSFile(t *testing.T) {
	p := newSCSSPipeline(t, false, nil)
	dir := t.TempDir()
	path := writeFile(t, dir, "style.scss", "h1 { .nested { color: red; } }")

	out, err := p.CSS(NewContext(), manifest.Entry{File: path})
	require.NoError(t, err)
	assert.Contains(t, out, "h1 .nested")
}

func TestCSS_InlineSCSSBlock(t *testing.T) {
	p := newSCSSPipeline(t, false, map[string]any{"accent": "blue"})

	out, err := p.CSS(NewContext(), manifest.Entry{File: "// scss block\nh1 { color: $accent; }"})
	require.NoError(t, err)
	assert.Contains(t, out, "color: blue")
}

func TestCSS_BlockEntryForcesSCSS(t *testing.T) {
	p := newSCSSPipeline(t, false, map[string]any{"accent": "blue"})
	dir := t.TempDir()
	// plain .css extension, but the block's variables force the scss path
	path := writeFile(t, dir, "theme.css", "h1 { color: $accent; }")

	out, err := p.CSS(NewContext(), manifest.Entry{
		File:      path,
		Variables: map[string]any{"accent": "green"},
	})
	require.NoError(t, err)
	// entry-level variables override the global set
	assert.Contains(t, out, "color: green")
}

func TestCSS_ScopeWrapsContent(t *testing.T) {
	p := newSCSSPipeline(t, false, nil)
	dir := t.TempDir()
	path := writeFile(t, dir, "widget.css", "h1 { color: red; }")

	out, err := p.CSS(NewContext(), manifest.Entry{File: path, Scope: "#app"})
	require.NoError(t, err)
	assert.Contains(t, out, "#app h1")
}

func TestBuild_OrderPreserved(t *testing.T) {
	p := New(Options{})
	entries := []manifest.Entry{
		{File: "/* one */"},
		{File: "/* two */"},
		{File: "/* three */"},
	}

	fragments, err := p.Build(NewContext(), FamilyCSS, entries)
	require.NoError(t, err)
	assert.Equal(t, []string{"/* one */", "/* two */", "/* three */"}, fragments)
}

func TestBuild_FailingEntryAborts(t *testing.T) {
	p := New(Options{})
	entries := []manifest.Entry{
		{File: "/* fine */"},
		{File: "unclassifiable"},
	}

	fragments, err := p.Build(NewContext(), FamilyCSS, entries)
	assert.Error(t, err)
	assert.Nil(t, fragments)
}
