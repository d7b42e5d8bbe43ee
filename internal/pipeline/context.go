package pipeline

// Context carries per-build state through the dispatch call chain: the
// set of TypeScript dependency names already inlined for this bundle,
// and whether the module-loader runtime has been injected. One Context
// exists per bundle build; it is never shared across builds.
type Context struct {
	Inlined        map[string]bool
	LoaderInjected bool
}

// NewContext creates a fresh per-build context.
func NewContext() *Context {
	return &Context{Inlined: make(map[string]bool)}
}
