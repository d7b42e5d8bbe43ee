// Package settings merges CLI-supplied values, manifest config values
// and hard defaults, and performs $variable substitution through
// configuration values and file entries. Resolution is a pure function
// of its inputs: CLI (when set) wins over config, which wins over the
// default.
package settings

import (
	"fmt"
	"strconv"
	"strings"

	bunderr "github.com/bundlegen/bundlegen/internal/errors"
)

// Truthy parses human boolean input the way the CLI accepts it
// (--cache y, --minify true, ...).
func Truthy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "y", "yes", "t", "true", "1", "on":
		return true
	default:
		return false
	}
}

// Bool resolves a boolean setting. cli is nil when the flag was not
// given; a set flag is parsed with Truthy so `--cache n` works.
func Bool(cli *string, config map[string]any, key string, def bool) bool {
	if cli != nil {
		return Truthy(*cli)
	}
	if v, ok := config[key]; ok {
		return truthyValue(v)
	}
	return def
}

// String resolves a string setting with cli > config > default
// precedence. An empty resolved value falls through to the default.
func String(cli *string, config map[string]any, key, def string) string {
	if cli != nil && *cli != "" {
		return *cli
	}
	if v, ok := config[key]; ok {
		if s := stringValue(v); s != "" {
			return s
		}
	}
	return def
}

// RequireString resolves like String but fails with a config error when
// neither source yields a value and no default exists.
func RequireString(cli *string, config map[string]any, key string) (string, error) {
	v := String(cli, config, key, "")
	if v == "" {
		return "", bunderr.Config("missing required setting %q (pass a flag or set config.%s in the manifest)", key, key)
	}
	return v, nil
}

func truthyValue(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return Truthy(t)
	case int:
		return t != 0
	case float64:
		return t != 0
	default:
		return v != nil
	}
}

func stringValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return ""
	case int:
		return strconv.Itoa(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(v)
	}
}

// ScssVariables extracts the global SCSS variable map from the merged
// config, tolerating its absence.
func ScssVariables(config map[string]any) map[string]any {
	if v, ok := config["scss_variables"].(map[string]any); ok {
		return v
	}
	return map[string]any{}
}
