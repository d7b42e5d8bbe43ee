//go:build property
// +build property

package settings

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestSubstitutionProperties checks invariants of $variable substitution
// across generated inputs.
func TestSubstitutionProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	identifier := gen.RegexMatch(`[a-z][a-z0-9_]{0,10}`)

	// Property: strings without a dollar sign are returned unchanged.
	properties.Property("no dollar means identity", prop.ForAll(
		func(s string, name, value string) bool {
			if strings.Contains(s, "$") {
				return true // only plain strings are in scope here
			}
			vars := NewVariables(map[string]any{name: value})
			return vars.SubstituteString(s) == s
		},
		gen.AnyString(), identifier, gen.AlphaString(),
	))

	// Property: a lone known token is replaced by exactly its value.
	properties.Property("known token replaced", prop.ForAll(
		func(name, value string) bool {
			vars := NewVariables(map[string]any{name: value})
			return vars.SubstituteString("$"+name) == value
		},
		identifier, gen.AlphaString(),
	))

	// Property: substitution with an empty table is the identity.
	properties.Property("empty table identity", prop.ForAll(
		func(s string) bool {
			vars := NewVariables(map[string]any{})
			return vars.SubstituteString(s) == s
		},
		gen.AnyString(),
	))

	// Property: substitution is idempotent when values contain no
	// further tokens.
	properties.Property("idempotent for token-free values", prop.ForAll(
		func(s string, name, value string) bool {
			if strings.Contains(value, "$") {
				return true
			}
			vars := NewVariables(map[string]any{name: value})
			once := vars.SubstituteString(s)
			return vars.SubstituteString(once) == once
		},
		gen.AlphaString(), identifier, gen.AlphaString(),
	))

	properties.TestingRun(t)
}
