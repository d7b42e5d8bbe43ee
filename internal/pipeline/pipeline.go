// Package pipeline dispatches manifest entries by file kind and
// produces each entry's fully transformed JS or CSS text. Entries are
// processed strictly sequentially in manifest order; the concatenated
// fragment order is the bundle's byte order.
package pipeline

import (
	"strings"

	"github.com/bundlegen/bundlegen/internal/loader"
	"github.com/bundlegen/bundlegen/internal/logging"
	"github.com/bundlegen/bundlegen/internal/manifest"
	"github.com/bundlegen/bundlegen/internal/scss"
	"github.com/bundlegen/bundlegen/internal/typescript"
)

// Family selects which bundle a dispatch belongs to.
type Family string

const (
	// FamilyJS is the JavaScript bundle family.
	FamilyJS Family = "js"
	// FamilyCSS is the CSS bundle family.
	FamilyCSS Family = "css"
)

// localSuffixes are the known local-file suffixes for classification.
var localSuffixes = []string{".js", ".css", ".scss", ".sass", ".ts", "._hs", ".html", ".htm"}

// Pipeline transforms manifest entries into bundle fragments.
type Pipeline struct {
	loader *loader.Loader
	scss   *scss.Compiler
	ts     *typescript.Inliner

	minify    bool
	variables map[string]any // global scss variable set
	log       logging.Logger
}

// Options configures a Pipeline.
type Options struct {
	Loader    *loader.Loader
	SCSS      *scss.Compiler
	Inliner   *typescript.Inliner
	Minify    bool
	Variables map[string]any
	Logger    logging.Logger
}

// New creates a Pipeline.
func New(opts Options) *Pipeline {
	log := opts.Logger
	if log == nil {
		log = logging.Discard()
	}
	ld := opts.Loader
	if ld == nil {
		ld = loader.New(loader.Options{})
	}
	inliner := opts.Inliner
	if inliner == nil {
		inliner = typescript.NewInliner(log)
	}
	return &Pipeline{
		loader:    ld,
		scss:      opts.SCSS,
		ts:        inliner,
		minify:    opts.Minify,
		variables: opts.Variables,
		log:       log.WithComponent("pipeline"),
	}
}

// Build transforms all entries of one family, in order. A failing entry
// aborts the whole bundle build; no partial fragment list is returned.
func (p *Pipeline) Build(ctx *Context, family Family, entries []manifest.Entry) ([]string, error) {
	fragments := make([]string, 0, len(entries))
	for _, entry := range entries {
		var (
			fragment string
			err      error
		)
		switch family {
		case FamilyCSS:
			fragment, err = p.CSS(ctx, entry)
		default:
			fragment, err = p.JS(ctx, entry)
		}
		if err != nil {
			return nil, err
		}
		p.log.Debug("handled entry", "file", headline(entry.File))
		fragments = append(fragments, fragment)
	}
	return fragments, nil
}

// baseName strips a query string from an identifier; suffix decisions
// ignore cache-busting parameters like lib.js?v=2.
func baseName(file string) string {
	base, _, _ := strings.Cut(file, "?")
	return strings.TrimSpace(base)
}

func hasAnySuffix(s string, suffixes ...string) bool {
	for _, suffix := range suffixes {
		if strings.HasSuffix(s, suffix) {
			return true
		}
	}
	return false
}

func isLocalFile(file string) bool {
	return hasAnySuffix(baseName(file), localSuffixes...)
}

// headline trims an identifier for log output; inline blocks would
// otherwise dump whole stylesheets into the log.
func headline(file string) string {
	if line, _, found := strings.Cut(file, "\n"); found {
		return line + "..."
	}
	return file
}
