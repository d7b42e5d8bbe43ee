package pipeline

import (
	"strings"

	"github.com/evanw/esbuild/pkg/api"

	bunderr "github.com/bundlegen/bundlegen/internal/errors"
)

// minifyJS minifies JavaScript through esbuild. A syntax error in the
// source surfaces as a compile error naming the entry.
func minifyJS(source, name string) (string, error) {
	return esbuildMinify(source, name, api.TransformOptions{
		Loader:            api.LoaderJS,
		MinifyWhitespace:  true,
		MinifyIdentifiers: true,
		MinifySyntax:      true,
	})
}

// minifyCSS strips redundant whitespace from plain CSS without
// touching quoted strings or escape sequences.
func minifyCSS(source, name string) (string, error) {
	return esbuildMinify(source, name, api.TransformOptions{
		Loader:           api.LoaderCSS,
		MinifyWhitespace: true,
	})
}

func esbuildMinify(source, name string, opts api.TransformOptions) (string, error) {
	opts.Sourcefile = name
	result := api.Transform(source, opts)
	if len(result.Errors) > 0 {
		return "", bunderr.Compile(name, nil, "minification failed: %s", result.Errors[0].Text)
	}
	return strings.TrimSuffix(string(result.Code), "\n"), nil
}
