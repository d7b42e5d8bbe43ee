package typescript

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dop251/goja"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bunderr "github.com/bundlegen/bundlegen/internal/errors"
)

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func TestCompile(t *testing.T) {
	js, err := Compile("const x: number = 1;\nexport { x };", "a.ts")
	require.NoError(t, err)
	assert.Contains(t, js, "var x = 1")
	assert.NotContains(t, js, ": number")
}

func TestCompile_Rejects(t *testing.T) {
	_, err := Compile("const x: = ;", "broken.ts")
	require.Error(t, err)
	assert.True(t, bunderr.IsKind(err, bunderr.KindCompile))
	assert.Contains(t, err.Error(), "broken.ts")
}

func TestDependencies(t *testing.T) {
	compiled, err := Compile(`
import { a } from "./first";
import { b } from "./second";
export const c = a + b;
`, "entry.ts")
	require.NoError(t, err)

	deps, err := Dependencies(compiled)
	require.NoError(t, err)
	assert.Equal(t, []string{"./first", "./second"}, deps)
}

func TestDependencies_NoImports(t *testing.T) {
	compiled, err := Compile("export const x = 1;", "entry.ts")
	require.NoError(t, err)

	deps, err := Dependencies(compiled)
	require.NoError(t, err)
	assert.Empty(t, deps)
}

func TestInline_SharedDependencyAppearsOnce(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"c.ts": "export const y: number = 2;",
		"b.ts": "import { y } from \"./c\";\nexport const x = y + 1;",
		"a.ts": "import { x } from \"./b\";\nimport { y } from \"./c\";\n(globalThis as any).result = x + y;",
	})

	in := NewInliner(nil)
	code, err := in.Inline(filepath.Join(dir, "a.ts"), map[string]bool{})
	require.NoError(t, err)

	// c is imported by both a and b but registers exactly once
	assert.Equal(t, 1, strings.Count(code, `__bundle_register__("./c"`))

	// dependencies precede their dependents
	posC := strings.Index(code, `__bundle_register__("./c"`)
	posB := strings.Index(code, `__bundle_register__("./b"`)
	posMain := strings.Index(code, `__bundle_register__("`+EntryName(filepath.Join(dir, "a.ts"))+`"`)
	require.GreaterOrEqual(t, posC, 0)
	require.Greater(t, posB, posC)
	require.Greater(t, posMain, posB)
}

func TestInline_BundleExecutes(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"c.ts": "export const y: number = 2;",
		"b.ts": "import { y } from \"./c\";\nexport const x = y + 1;",
		"a.ts": "import { x } from \"./b\";\nimport { y } from \"./c\";\n(globalThis as any).result = x + y;",
	})

	in := NewInliner(nil)
	code, err := in.Inline(filepath.Join(dir, "a.ts"), map[string]bool{})
	require.NoError(t, err)

	vm := goja.New()
	_, err = vm.RunString(LoaderRuntime() + "\n" + code)
	require.NoError(t, err)

	result := vm.Get("result")
	require.NotNil(t, result)
	assert.Equal(t, int64(5), result.ToInteger())
}

func TestInline_TwoEntriesBothExecute(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"one.ts": "(globalThis as any).one = 1;",
		"two.ts": "(globalThis as any).two = 2;",
	})

	in := NewInliner(nil)
	inlined := map[string]bool{}
	first, err := in.Inline(filepath.Join(dir, "one.ts"), inlined)
	require.NoError(t, err)
	second, err := in.Inline(filepath.Join(dir, "two.ts"), inlined)
	require.NoError(t, err)

	vm := goja.New()
	_, err = vm.RunString(LoaderRuntime() + "\n" + first + "\n" + second)
	require.NoError(t, err)

	assert.Equal(t, int64(1), vm.Get("one").ToInteger(), "first entry runs")
	assert.Equal(t, int64(2), vm.Get("two").ToInteger(), "second entry runs too")
}

func TestInline_TwoEntriesShareDependencies(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"shared.ts": "export const base: number = 10;",
		"one.ts":    "import { base } from \"./shared\";\n(globalThis as any).one = base + 1;",
		"two.ts":    "import { base } from \"./shared\";\n(globalThis as any).two = base + 2;",
	})

	in := NewInliner(nil)
	inlined := map[string]bool{}
	first, err := in.Inline(filepath.Join(dir, "one.ts"), inlined)
	require.NoError(t, err)
	second, err := in.Inline(filepath.Join(dir, "two.ts"), inlined)
	require.NoError(t, err)

	code := first + "\n" + second
	assert.Equal(t, 1, strings.Count(code, `__bundle_register__("./shared"`),
		"a dependency shared across entries registers once per bundle")

	vm := goja.New()
	_, err = vm.RunString(LoaderRuntime() + "\n" + code)
	require.NoError(t, err)
	assert.Equal(t, int64(11), vm.Get("one").ToInteger())
	assert.Equal(t, int64(12), vm.Get("two").ToInteger())
}

func TestInline_CycleTreatedAsSatisfied(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"a.ts": "import { b } from \"./b\";\nexport const a = 1;",
		"b.ts": "import { a } from \"./a\";\nexport const b = 2;",
	})

	in := NewInliner(nil)
	code, err := in.Inline(filepath.Join(dir, "a.ts"), map[string]bool{})
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(code, `__bundle_register__("./b"`))
}

func TestInline_MissingDependency(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"a.ts": "import { x } from \"./gone\";\nexport const a = x;",
	})

	in := NewInliner(nil)
	_, err := in.Inline(filepath.Join(dir, "a.ts"), map[string]bool{})
	require.Error(t, err)
	assert.True(t, bunderr.IsKind(err, bunderr.KindNotFound))
}

func TestLoaderRuntime_Idempotent(t *testing.T) {
	vm := goja.New()
	// injecting the runtime twice must not reset the registry
	_, err := vm.RunString(LoaderRuntime() + "\n__bundle_register__(\"m\", function (require, module, exports) { module.exports = 7; });\n" + LoaderRuntime() + "\nvar got = __bundle_require__(\"m\");")
	require.NoError(t, err)
	assert.Equal(t, int64(7), vm.Get("got").ToInteger())
}
