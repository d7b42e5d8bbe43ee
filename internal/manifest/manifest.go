// Package manifest loads the declarative bundle manifest: an ordered
// list of JS entries, an ordered list of CSS entries, and a free-form
// config map. Entry order determines final concatenation order and is
// preserved exactly.
package manifest

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	bunderr "github.com/bundlegen/bundlegen/internal/errors"
)

// DefaultInput is the default manifest file for regular builds.
const DefaultInput = "bundle.yaml"

// DefaultInputLTS is the default manifest file for LTS publish builds.
const DefaultInputLTS = "bundle-lts.yaml"

// Entry is one unit of input to the pipeline: a local path, remote URL
// or inline raw block, optionally carrying entry-scoped SCSS variables
// and a wrapping selector.
type Entry struct {
	File      string
	Variables map[string]any
	Scope     string
}

// UnmarshalYAML accepts either a bare string or a block with a `file`
// key plus optional `variables` and `scope`.
func (e *Entry) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		return value.Decode(&e.File)
	}

	var block struct {
		File      string         `yaml:"file"`
		Variables map[string]any `yaml:"variables"`
		Scope     string         `yaml:"scope"`
	}
	if err := value.Decode(&block); err != nil {
		return err
	}
	if block.File == "" {
		return fmt.Errorf("manifest entry block is missing the 'file' key (line %d)", value.Line)
	}
	e.File = block.File
	e.Variables = NormalizeKeys(block.Variables)
	e.Scope = block.Scope
	return nil
}

// IsBlock reports whether the entry came in as a structured block with
// variables or a scope attached.
func (e *Entry) IsBlock() bool {
	return len(e.Variables) > 0 || e.Scope != ""
}

// Manifest is the parsed bundle manifest.
type Manifest struct {
	JS     []Entry        `yaml:"js"`
	CSS    []Entry        `yaml:"css"`
	Config map[string]any `yaml:"config"`
}

// Load reads and parses a manifest file. A missing file yields an empty
// manifest unless strict is set, in which case it is a not-found error.
func Load(path string, strict bool) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			if strict {
				return nil, bunderr.NotFound(path, err)
			}
			return &Manifest{Config: map[string]any{}}, nil
		}
		return nil, bunderr.Wrap(bunderr.KindIO, path, err, "could not read manifest")
	}
	return Parse(data, path)
}

// Parse decodes manifest bytes. The name is only used in error messages.
func Parse(data []byte, name string) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, bunderr.Wrap(bunderr.KindConfig, name, err, "invalid manifest")
	}
	m.Config = NormalizeKeys(m.Config)
	if m.Config == nil {
		m.Config = map[string]any{}
	}
	return &m, nil
}

// NormalizeKeys rewrites hyphenated keys to underscores, recursing into
// nested maps, so `output-js` and `output_js` address the same setting.
func NormalizeKeys(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		if nested, ok := v.(map[string]any); ok {
			v = NormalizeKeys(nested)
		}
		out[strings.ReplaceAll(k, "-", "_")] = v
	}
	return out
}

// Entries returns the entry list for the given file family ("js" or
// "css").
func (m *Manifest) Entries(family string) []Entry {
	if family == "css" {
		return m.CSS
	}
	return m.JS
}

// FromStrings converts bare identifiers (e.g. --files flags) into
// entries.
func FromStrings(files []string) []Entry {
	entries := make([]Entry, 0, len(files))
	for _, f := range files {
		entries = append(entries, Entry{File: f})
	}
	return entries
}
