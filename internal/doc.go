// Package internal contains the core implementation packages for
// bundlegen.
//
// This package follows Go's internal package convention, making these
// packages unavailable for import by external modules while providing
// all the core functionality for the bundlegen CLI tool.
//
// # Package Organization
//
// The internal packages are organized by functional domain:
//
//   - manifest: Bundle manifest parsing and entry normalization
//   - settings: Configuration precedence and $variable substitution
//   - pipeline: Per-entry classification and transformation dispatch
//   - typescript: TypeScript compilation and dependency inlining
//   - scss: SCSS/SASS compilation with variable preamble injection
//   - loader: Remote fetching with on-disk caching, local reads
//   - writer: Atomic bundle output with staging redirects
//   - ledger: Published-version store with mirrored SQL dumps
//   - watcher: File system monitoring with debouncing
//   - console: Interactive confirmation and input prompts
//   - errors: Classified error taxonomy shared by all packages
//   - logging: Structured logging with component scoping
//
// # Control Flow
//
// A build runs strictly sequentially: the manifest feeds the settings
// resolver, each entry passes through the pipeline in manifest order
// (using the loader, SCSS compiler and TypeScript inliner as needed),
// and the writer lands the concatenated result atomically. The publish
// workflow redirects the writer to a staging area and records the
// artifact in the ledger.
//
// For detailed documentation, see the individual package documentation.
package internal
