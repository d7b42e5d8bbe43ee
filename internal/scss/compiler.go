package scss

import (
	"strings"

	"github.com/bep/godartsass/v2"

	bunderr "github.com/bundlegen/bundlegen/internal/errors"
	"github.com/bundlegen/bundlegen/internal/logging"
)

// Compiler adapts the embedded dart-sass compiler. Because file
// extensions are not authoritative for raw inline blocks, each compile
// tries three syntactic variants in order: SCSS, indented SASS, and
// indented SASS after removing common leading indentation.
type Compiler struct {
	transpiler *godartsass.Transpiler
	log        logging.Logger
}

// NewCompiler starts the dart-sass transpiler process. The binary name
// is resolved from PATH when empty.
func NewCompiler(dartSassBinary string, log logging.Logger) (*Compiler, error) {
	if log == nil {
		log = logging.Discard()
	}
	transpiler, err := godartsass.Start(godartsass.Options{
		DartSassEmbeddedFilename: dartSassBinary,
	})
	if err != nil {
		return nil, bunderr.Wrap(bunderr.KindCompile, "", err, "could not start dart-sass")
	}
	return &Compiler{transpiler: transpiler, log: log.WithComponent("scss")}, nil
}

// Close shuts the transpiler process down.
func (c *Compiler) Close() error {
	return c.transpiler.Close()
}

// attempt is one syntactic variant to try, in fixed order.
type attempt struct {
	syntax Syntax
	source func(contents string) string
}

var attempts = []attempt{
	{SyntaxSCSS, func(s string) string { return s }},
	{SyntaxSASS, func(s string) string { return s }},
	{SyntaxSASS, Dedent},
}

// Compile converts SCSS/SASS text to CSS. Variables are injected as a
// synthesized preamble; includePaths resolves relative imports (the
// source file's directory); minify selects compressed output.
//
// Attempts that fail are swallowed silently unless the logger runs in
// verbose mode, where each failure is logged and the final failure
// additionally logs the preamble and original content for diagnosis.
func (c *Compiler) Compile(contents string, minify bool, includePaths []string, variables map[string]any) (string, error) {
	outputStyle := godartsass.OutputStyleExpanded
	if minify {
		outputStyle = godartsass.OutputStyleCompressed
	}

	var lastErr error
	for _, att := range attempts {
		preamble, err := Preamble(variables, att.syntax)
		if err != nil {
			// unrenderable variables are fatal, not a syntax fallback case
			return "", err
		}

		sourceSyntax := godartsass.SourceSyntaxSCSS
		if att.syntax == SyntaxSASS {
			sourceSyntax = godartsass.SourceSyntaxSASS
		}
		result, err := c.transpiler.Execute(godartsass.Args{
			Source:       preamble + att.source(contents),
			SourceSyntax: sourceSyntax,
			OutputStyle:  outputStyle,
			IncludePaths: includePaths,
		})
		if err == nil {
			return result.CSS, nil
		}
		lastErr = err
		if c.log.Verbose() {
			c.log.Debug("compile attempt failed", "syntax", string(att.syntax), "error", err.Error())
		}
	}

	if c.log.Verbose() {
		preamble, _ := Preamble(variables, SyntaxSCSS)
		c.log.Debug("all compile attempts failed", "variables", preamble, "contents", contents)
	}
	return "", bunderr.Compile("", lastErr,
		"styles did not compile as scss or sass; check the syntax")
}

// Dedent strips the longest common leading whitespace from every
// non-blank line, so indented-syntax blocks embedded in YAML compile.
func Dedent(s string) string {
	lines := strings.Split(s, "\n")

	margin := ""
	first := true
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		indent := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
		if first {
			margin = indent
			first = false
			continue
		}
		for !strings.HasPrefix(indent, margin) {
			margin = margin[:len(margin)-1]
		}
	}
	if margin == "" {
		return s
	}

	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines[i] = strings.TrimPrefix(line, margin)
	}
	return strings.Join(lines, "\n")
}
