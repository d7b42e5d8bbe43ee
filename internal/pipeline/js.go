package pipeline

import (
	"regexp"
	"strings"

	bunderr "github.com/bundlegen/bundlegen/internal/errors"
	"github.com/bundlegen/bundlegen/internal/loader"
	"github.com/bundlegen/bundlegen/internal/manifest"
	"github.com/bundlegen/bundlegen/internal/typescript"
)

// jsInlinePrefixes mark raw inline blocks in the JS family: a comment,
// or a recognized hyperscript call.
var jsInlinePrefixes = []string{"//", "/*", "_(", "_hyperscript("}

// JS transforms one JS-family entry: download or read the content,
// then post-process by kind. Unsupported identifiers fail with a
// classification error naming the entry.
func (p *Pipeline) JS(ctx *Context, entry manifest.Entry) (string, error) {
	file := entry.File

	var contents string
	switch {
	case loader.IsRemote(file):
		fetched, err := p.loader.Remote(file)
		if err != nil {
			return "", err
		}
		contents = fetched
	case strings.HasSuffix(baseName(file), ".ts"):
		inlined, err := p.inlineTypescript(ctx, baseName(file))
		if err != nil {
			return "", err
		}
		contents = inlined
	case hasAnySuffix(baseName(file), ".scss", ".sass"):
		// a stylesheet source has no JS rendition; it belongs in the
		// css list
		return "", bunderr.UnrecognizedEntry(headline(file))
	case isLocalFile(file):
		read, err := p.loader.Local(file)
		if err != nil {
			return "", err
		}
		contents = read
	case hasAnyPrefix(file, jsInlinePrefixes...):
		// raw code; the leading comment (or hyperscript call) is what
		// identifies it as inline
		contents = file
	default:
		return "", bunderr.UnrecognizedEntry(headline(file))
	}

	base := baseName(file)
	switch {
	case strings.HasSuffix(base, "._hs"):
		if p.minify {
			contents = MinifyHyperscript(contents)
		}
		contents = includeHyperscript(contents)
	case strings.HasSuffix(base, ".html"), strings.HasSuffix(base, ".htm"):
		contents = appendToDOM(contents)
	case strings.HasSuffix(base, ".js") && p.minify:
		minified, err := minifyJS(contents, base)
		if err != nil {
			return "", err
		}
		contents = minified
	case strings.HasSuffix(base, ".css"):
		// CSS micro-snippet inside a JS bundle: inject into the head
		if p.minify {
			minified, err := minifyCSS(contents, base)
			if err != nil {
				return "", err
			}
			contents = minified
		}
		contents = appendToHead(contents)
	}

	return contents, nil
}

// inlineTypescript runs the dependency inliner, injecting the module
// loader runtime exactly once per bundle ahead of the first .ts entry.
func (p *Pipeline) inlineTypescript(ctx *Context, path string) (string, error) {
	code, err := p.ts.Inline(path, ctx.Inlined)
	if err != nil {
		return "", err
	}
	if !ctx.LoaderInjected {
		ctx.LoaderInjected = true
		code = typescript.LoaderRuntime() + "\n" + code
	}
	return code, nil
}

func hasAnyPrefix(s string, prefixes ...string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(s, prefix) {
			return true
		}
	}
	return false
}

// escapeTemplate escapes content embedded into a generated template
// literal: backslash, backtick, and the $/{ sequences that would
// otherwise open an interpolation.
func escapeTemplate(s string) string {
	return strings.NewReplacer(
		`\`, `\\`,
		"`", "\\`",
		`$`, `\$`,
		`{`, `\{`,
	).Replace(s)
}

// includeHyperscript wraps hyperscript source in an escaped call to the
// hyperscript evaluator.
func includeHyperscript(contents string) string {
	return "_hyperscript(`" + escapeTemplate(contents) + "`)"
}

// appendToDOM wraps an HTML fragment as an expression appending it to
// the end of the page.
func appendToDOM(html string) string {
	return "document.body.innerHTML += `" + strings.ReplaceAll(html, "`", "\\`") + "`"
}

// appendToHead wraps a CSS fragment as an expression appending a style
// tag to the document head.
func appendToHead(css string) string {
	return "document.head.innerHTML += `<style>" + escapeTemplate(css) + "</style>`"
}

var (
	hsCommentRe   = regexp.MustCompile(`\s--[^\n]*`)
	doubleSpaceRe = regexp.MustCompile(`\s{2,}`)
)

// MinifyHyperscript strips -- comments and collapses whitespace runs to
// a single space. The leading newline catches a comment on the first
// line.
func MinifyHyperscript(contents string) string {
	contents = hsCommentRe.ReplaceAllString("\n"+contents, " ")
	contents = strings.ReplaceAll(contents, "\n", " ")
	return strings.TrimSpace(doubleSpaceRe.ReplaceAllString(contents, " "))
}
