package pipeline

import (
	"path/filepath"
	"strings"

	bunderr "github.com/bundlegen/bundlegen/internal/errors"
	"github.com/bundlegen/bundlegen/internal/loader"
	"github.com/bundlegen/bundlegen/internal/manifest"
	"github.com/bundlegen/bundlegen/internal/scss"
)

// cssInlinePrefixes mark raw inline blocks in the CSS family: // for
// SCSS-flavored blocks, /* for plain CSS.
var cssInlinePrefixes = []string{"//", "/*"}

// CSS transforms one CSS-family entry. Structured entries carrying
// variables or a scope are forced through the SCSS path even when the
// extension is plain .css; entry-level variables override the global
// set, and a scope wraps the content as `scope { content }` before
// compilation.
func (p *Pipeline) CSS(ctx *Context, entry manifest.Entry) (string, error) {
	file := entry.File
	variables := scss.MergeVariables(p.variables, entry.Variables)
	forceSCSS := entry.IsBlock()

	contents, err := p.loadCSS(file)
	if err != nil {
		return "", err
	}

	base := baseName(file)
	switch {
	case forceSCSS || hasAnySuffix(base, ".scss", ".sass") || strings.HasPrefix(file, "//"):
		if entry.Scope != "" {
			contents = entry.Scope + "{" + contents + "}"
		}
		if p.scss == nil {
			return "", bunderr.Compile(headline(file), nil, "scss compiler is not available")
		}
		compiled, err := p.scss.Compile(contents, p.minify, includePaths(base), variables)
		if err != nil {
			return "", bunderr.Compile(headline(file), err, "could not compile styles")
		}
		contents = compiled
	case p.minify:
		minified, err := minifyCSS(contents, base)
		if err != nil {
			return "", err
		}
		contents = minified
	}

	return contents, nil
}

// loadCSS classifies the identifier and loads its raw content.
func (p *Pipeline) loadCSS(file string) (string, error) {
	switch {
	case loader.IsRemote(file):
		return p.loader.Remote(file)
	case isLocalFile(file):
		return p.loader.Local(file)
	case hasAnyPrefix(file, cssInlinePrefixes...):
		return file, nil
	default:
		return "", bunderr.UnrecognizedEntry(headline(file))
	}
}

// includePaths resolves relative @import statements against the source
// file's directory. Inline blocks resolve against the working
// directory.
func includePaths(base string) []string {
	dir := filepath.Dir(base)
	if dir == "" {
		dir = "."
	}
	return []string{dir}
}
