// Package scss compiles SCSS/SASS text to CSS through dart-sass and
// renders manifest-supplied variables as a synthesized preamble of
// $name: value declarations.
package scss

import (
	"sort"
	"strconv"
	"strings"

	bunderr "github.com/bundlegen/bundlegen/internal/errors"
)

// Syntax selects the stylesheet syntax for a compile attempt.
type Syntax string

const (
	// SyntaxSCSS is brace-delimited SCSS.
	SyntaxSCSS Syntax = "scss"
	// SyntaxSASS is the indented syntax.
	SyntaxSASS Syntax = "sass"
)

// RenderKey renders a variable name. Top-level names get the $ sigil;
// underscores become hyphens everywhere, matching SCSS convention.
func RenderKey(key string, level int) string {
	prefix := ""
	if level == 0 {
		prefix = "$"
	}
	return prefix + strings.ReplaceAll(key, "_", "-")
}

// RenderValue renders one variable value. The accepted variants are
// closed: string, list, map, bool, nil, and numbers; anything else is
// an UnsupportedVariableType error.
//
// Strings pass through verbatim minus a trailing semicolon. Lists
// render comma-joined, parenthesized when nested below the top level.
// Maps render as SCSS map literals with hyphenated keys. nil renders as
// the null keyword.
func RenderValue(value any, level int) (string, error) {
	level++
	switch t := value.(type) {
	case nil:
		return "null", nil
	case bool:
		return strconv.FormatBool(t), nil
	case string:
		return strings.TrimSuffix(t, ";"), nil
	case int:
		return strconv.Itoa(t), nil
	case int64:
		return strconv.FormatInt(t, 10), nil
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), nil
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			rendered, err := RenderValue(item, level)
			if err != nil {
				return "", err
			}
			parts = append(parts, rendered)
		}
		joined := strings.Join(parts, ", ")
		if level > 1 {
			joined = "(" + joined + ")"
		}
		return joined, nil
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			rendered, err := RenderValue(t[k], level+1)
			if err != nil {
				return "", err
			}
			parts = append(parts, RenderKey(k, level)+": "+rendered)
		}
		return "(" + strings.Join(parts, ", ") + ")", nil
	default:
		return "", bunderr.Variable("", "unsupported scss variable type %T", value)
	}
}

// Preamble renders a variable map as a block of declarations suitable
// for prefixing onto stylesheet source. SCSS declarations end with a
// semicolon; the indented syntax is newline-terminated and unscoped.
// Keys render in sorted order so output is deterministic.
func Preamble(variables map[string]any, syntax Syntax) (string, error) {
	if len(variables) == 0 {
		return "", nil
	}
	eol := ";\n"
	if syntax == SyntaxSASS {
		eol = "\n"
	}

	keys := make([]string, 0, len(variables))
	for k := range variables {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		value, err := RenderValue(variables[k], 0)
		if err != nil {
			return "", bunderr.Variable(k, "cannot render scss variable $%s: %v", k, err)
		}
		b.WriteString(RenderKey(k, 0))
		b.WriteString(": ")
		b.WriteString(value)
		b.WriteString(eol)
	}
	return b.String(), nil
}

// MergeVariables overlays entry-level variables onto the global set;
// entry keys win. Inputs are not mutated.
func MergeVariables(global, entry map[string]any) map[string]any {
	merged := make(map[string]any, len(global)+len(entry))
	for k, v := range global {
		merged[k] = v
	}
	for k, v := range entry {
		merged[k] = v
	}
	return merged
}
