package settings

import (
	"os"
	"regexp"
	"sort"
	"strings"
)

// Variables is a compiled table of $name substitution patterns built
// from the manifest config. Substitution is textual: occurrences of
// $name inside string-valued settings and file entries are replaced by
// the variable's rendered value; unmatched tokens pass through
// verbatim.
type Variables struct {
	names    []string
	patterns map[string]*regexp.Regexp
	values   map[string]string
}

// NewVariables compiles a substitution table from the config map.
// Patterns carry a word boundary and apply longest name first, so
// $font can never clobber $font_size. Non-string values render to
// their plain text form.
func NewVariables(config map[string]any) *Variables {
	v := &Variables{
		patterns: make(map[string]*regexp.Regexp, len(config)),
		values:   make(map[string]string, len(config)),
	}
	for name, value := range config {
		v.names = append(v.names, name)
		v.patterns[name] = regexp.MustCompile(`\$` + regexp.QuoteMeta(name) + `\b`)
		v.values[name] = stringValue(value)
	}
	sort.Slice(v.names, func(i, j int) bool {
		if len(v.names[i]) != len(v.names[j]) {
			return len(v.names[i]) > len(v.names[j])
		}
		return v.names[i] < v.names[j]
	})
	return v
}

// SubstituteString fills $variables in a single string.
func (v *Variables) SubstituteString(s string) string {
	if !strings.Contains(s, "$") {
		return s
	}
	for _, name := range v.names {
		// literal replacement: a value containing $ must land as-is,
		// not be parsed as a group reference
		s = v.patterns[name].ReplaceAllLiteralString(s, v.values[name])
	}
	return s
}

// Substitute fills $variables in a dynamic setting. Maps are walked
// recursively (keys untouched); strings are substituted; anything else
// is returned unchanged.
func (v *Variables) Substitute(value any) any {
	switch t := value.(type) {
	case string:
		return v.SubstituteString(t)
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, nested := range t {
			out[k] = v.Substitute(nested)
		}
		return out
	default:
		return value
	}
}

// placeholderRe matches ${NAME}, ${NAME:-default}, ${NAME-default} and
// bare $NAME tokens.
var placeholderRe = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(:?-([^}]*))?\}|\$([A-Za-z_][A-Za-z0-9_]*)`)

// ExpandPlaceholders substitutes environment-style placeholders in s
// using lookup. Set names are replaced with their value; unset names
// with a `:-` or `-` default expand to the default; unset names without
// one stay verbatim, which keeps JS template literals like `${x}`
// intact.
func ExpandPlaceholders(s string, lookup func(string) (string, bool)) string {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	return placeholderRe.ReplaceAllStringFunc(s, func(match string) string {
		groups := placeholderRe.FindStringSubmatch(match)
		name := groups[1]
		if name == "" {
			name = groups[4] // bare $NAME form
		}
		if value, ok := lookup(name); ok {
			return value
		}
		if groups[2] != "" {
			return groups[3]
		}
		return match
	})
}
