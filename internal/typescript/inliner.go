// Package typescript compiles .ts entries to plain JS and recursively
// inlines their module dependencies into one flat program.
//
// Compilation goes through esbuild's transform API (TypeScript in,
// CommonJS out). The compiled module's static dependency list is
// extracted by evaluating it in a goja sandbox whose require stub only
// records specifiers; the sandbox has no I/O capability, so no
// application behavior escapes it. Dependencies resolve to sibling .ts
// files and are inlined exactly once per bundle, ahead of their
// dependents.
package typescript

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dop251/goja"
	"github.com/evanw/esbuild/pkg/api"

	bunderr "github.com/bundlegen/bundlegen/internal/errors"
	"github.com/bundlegen/bundlegen/internal/logging"
)

// EntryPrefix namespaces entry-module registrations. Each .ts entry
// registers under EntryPrefix plus its own path so that a bundle with
// several .ts entries keeps them apart in the loader registry;
// dependency modules register under their import specifier instead.
const EntryPrefix = "__main__:"

// EntryName returns the registration name for an entry module.
func EntryName(path string) string {
	return EntryPrefix + filepath.ToSlash(path)
}

//go:embed loader.js
var loaderRuntime string

// LoaderRuntime returns the module-loader snippet that must precede the
// first inlined module in a bundle. It is injected exactly once per
// bundle regardless of how many .ts entries exist; the dispatcher owns
// that bookkeeping.
func LoaderRuntime() string {
	return loaderRuntime
}

// Inliner compiles and inlines TypeScript entries.
type Inliner struct {
	log logging.Logger
}

// NewInliner creates an Inliner.
func NewInliner(log logging.Logger) *Inliner {
	if log == nil {
		log = logging.Discard()
	}
	return &Inliner{log: log.WithComponent("typescript")}
}

// Inline compiles the entry file and all of its transitive dependencies
// into one program. inlined is the bundle-wide set of already inlined
// dependency names: names are marked before recursing, so a dependency
// shared by two modules appears exactly once and a cycle short-circuits
// as already satisfied. The entry executes after all registrations.
func (in *Inliner) Inline(path string, inlined map[string]bool) (string, error) {
	name := EntryName(path)
	code, err := in.inline(path, name, inlined)
	if err != nil {
		return "", err
	}
	return code + fmt.Sprintf("\n__bundle_require__(%q);", name), nil
}

func (in *Inliner) inline(path, name string, inlined map[string]bool) (string, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", bunderr.NotFound(path, err)
		}
		return "", bunderr.Wrap(bunderr.KindIO, path, err, "could not read typescript source")
	}

	compiled, err := Compile(string(source), path)
	if err != nil {
		return "", err
	}

	deps, err := Dependencies(compiled)
	if err != nil {
		return "", bunderr.Compile(path, err, "could not extract dependency list")
	}

	code := register(name, compiled)
	for _, dep := range deps {
		if inlined[dep] {
			continue
		}
		inlined[dep] = true
		in.log.Debug("inlining dependency", "module", dep, "from", path)

		depCode, err := in.inline(resolveSibling(path, dep), dep, inlined)
		if err != nil {
			return "", err
		}
		// dependencies come before dependents in the final order
		code = depCode + "\n" + code
	}
	return code, nil
}

// Compile transforms TypeScript source into CommonJS-shaped JavaScript.
func Compile(source, path string) (string, error) {
	result := api.Transform(source, api.TransformOptions{
		Loader:     api.LoaderTS,
		Format:     api.FormatCommonJS,
		Target:     api.ES2017,
		Sourcefile: path,
	})
	if len(result.Errors) > 0 {
		msg := result.Errors[0]
		return "", bunderr.Compile(path, nil, "typescript rejected: %s", formatMessage(msg))
	}
	return string(result.Code), nil
}

// Dependencies evaluates compiled CommonJS in a goja sandbox and
// returns the module specifiers it requires, in first-use order. The
// require calls sit at the top of esbuild's output (import statements
// are hoisted), so the full list is collected even when the module body
// fails later. A body touching the DOM is expected to throw here and
// that failure is discarded.
func Dependencies(compiled string) ([]string, error) {
	vm := goja.New()
	deps := make([]string, 0, 4)
	seen := make(map[string]bool)

	err := vm.Set("require", func(name string) map[string]any {
		if !seen[name] {
			seen[name] = true
			deps = append(deps, name)
		}
		return map[string]any{}
	})
	if err != nil {
		return nil, err
	}
	_ = vm.Set("exports", map[string]any{})
	_ = vm.Set("module", map[string]any{"exports": map[string]any{}})

	_, _ = vm.RunString(compiled)
	return deps, nil
}

// register wraps a compiled module body in a loader registration tagged
// with its module name.
func register(name, body string) string {
	return fmt.Sprintf("__bundle_register__(%q, function (require, module, exports) {\n%s});", name, body)
}

// resolveSibling maps a dependency specifier to a .ts file next to the
// importing module.
func resolveSibling(importerPath, dep string) string {
	name := strings.TrimSuffix(dep, ".ts")
	return filepath.Join(filepath.Dir(importerPath), name+".ts")
}

func formatMessage(msg api.Message) string {
	if msg.Location == nil {
		return msg.Text
	}
	return fmt.Sprintf("%s (line %d)", msg.Text, msg.Location.Line)
}
