package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	bunderr "github.com/bundlegen/bundlegen/internal/errors"
	"github.com/bundlegen/bundlegen/internal/loader"
	"github.com/bundlegen/bundlegen/internal/logging"
	"github.com/bundlegen/bundlegen/internal/manifest"
	"github.com/bundlegen/bundlegen/internal/pipeline"
	"github.com/bundlegen/bundlegen/internal/scss"
	"github.com/bundlegen/bundlegen/internal/settings"
	"github.com/bundlegen/bundlegen/internal/typescript"
	"github.com/bundlegen/bundlegen/internal/writer"
)

// Default output paths, overridable per family through the manifest
// config (output_js / output_css) or the --output flags.
const (
	DefaultOutputJS  = "bundle.js"
	DefaultOutputCSS = "bundle.css"
)

var buildCmd = &cobra.Command{
	Use:     "build",
	Aliases: []string{"b"},
	Short:   "Build the JS and CSS bundles from the manifest",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := runBuild(cmd, log, []pipeline.Family{pipeline.FamilyJS, pipeline.FamilyCSS}, nil)
		return err
	},
}

var buildJSCmd = &cobra.Command{
	Use:   "js",
	Short: "Build only the JS bundle",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		files, _ := cmd.Flags().GetStringArray("files")
		_, err := runBuild(cmd, log, []pipeline.Family{pipeline.FamilyJS}, files)
		return err
	},
}

var buildCSSCmd = &cobra.Command{
	Use:   "css",
	Short: "Build only the CSS bundle",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		files, _ := cmd.Flags().GetStringArray("files")
		_, err := runBuild(cmd, log, []pipeline.Family{pipeline.FamilyCSS}, files)
		return err
	},
}

func init() {
	rootCmd.AddCommand(buildCmd)
	buildCmd.AddCommand(buildJSCmd)
	buildCmd.AddCommand(buildCSSCmd)

	addBuildFlags(buildCmd)
	for _, sub := range []*cobra.Command{buildJSCmd, buildCSSCmd} {
		addBuildFlags(sub)
		// --files is only meaningful for a single family; the plain
		// build command cannot tell whether overrides are JS or CSS.
		sub.Flags().StringArray("files", nil, "entries to bundle, overriding the manifest list")
	}
}

func addBuildFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("input", "i", manifest.DefaultInput, "bundle manifest path")
	cmd.Flags().String("output-js", "", "JS bundle destination (default from manifest, else "+DefaultOutputJS+")")
	cmd.Flags().String("output-css", "", "CSS bundle destination (default from manifest, else "+DefaultOutputCSS+")")
	cmd.Flags().BoolP("minify", "m", false, "minify bundle contents")
	cmd.Flags().Bool("cache", true, "reuse downloaded remote entries")
	cmd.Flags().String("version-tag", "", "value substituted for $version in outputs and entries (default latest)")
	cmd.Flags().Bool("stdout", false, "write the bundle to standard output instead of a file")
	cmd.Flags().Bool("hash", false, "write a <output>.hash sidecar with the bundle's content hash")
}

// buildRequest carries one resolved build invocation. Pointer fields
// are nil when the flag was not given, so manifest config can take
// over.
type buildRequest struct {
	Input     string
	Files     []string
	OutputJS  *string
	OutputCSS *string
	Minify    *string
	Cache     *string
	Version   *string
	Stdout    bool
	Hash      bool
}

// buildResult reports the final destination per family; empty for a
// family that was not built or went to a stream.
type buildResult struct {
	JS  string
	CSS string
}

// runBuild reads the request from the command's flags and executes it.
func runBuild(cmd *cobra.Command, log logging.Logger, families []pipeline.Family, files []string) (*buildResult, error) {
	input, _ := cmd.Flags().GetString("input")
	stdout, _ := cmd.Flags().GetBool("stdout")
	hash, _ := cmd.Flags().GetBool("hash")
	req := buildRequest{
		Input:     input,
		Files:     files,
		OutputJS:  stringFlag(cmd.Flags(), "output-js"),
		OutputCSS: stringFlag(cmd.Flags(), "output-css"),
		Minify:    boolFlag(cmd.Flags(), "minify"),
		Cache:     boolFlag(cmd.Flags(), "cache"),
		Version:   stringFlag(cmd.Flags(), "version-tag"),
		Stdout:    stdout,
		Hash:      hash,
	}
	return executeBuild(req, log, families)
}

// executeBuild runs the full bundle pipeline for each requested family:
// manifest load, settings resolution, variable substitution, per-entry
// transformation in manifest order, atomic write.
func executeBuild(req buildRequest, log logging.Logger, families []pipeline.Family) (*buildResult, error) {
	m, err := manifest.Load(req.Input, false)
	if err != nil {
		return nil, err
	}
	config := m.Config

	minify := settings.Bool(req.Minify, config, "minify", false)
	cache := settings.Bool(req.Cache, config, "cache", true)
	// The version tag participates in $version substitution inside
	// output paths and entry identifiers.
	config["version"] = settings.String(req.Version, config, "version", "latest")
	vars := settings.NewVariables(config)

	scssVariables, _ := vars.Substitute(settings.ScssVariables(config)).(map[string]any)

	ld := loader.New(loader.Options{
		CacheDir:    cacheDir(),
		Cache:       cache,
		InsecureTLS: viper.GetBool("insecure-tls"),
		Logger:      log,
	})

	var compiler *scss.Compiler
	if familiesInclude(families, pipeline.FamilyCSS) {
		compiler, err = scss.NewCompiler(viper.GetString("dart-sass-binary"), log)
		if err != nil {
			return nil, err
		}
		defer compiler.Close()
	}

	pipe := pipeline.New(pipeline.Options{
		Loader:    ld,
		SCSS:      compiler,
		Inliner:   typescript.NewInliner(log),
		Minify:    minify,
		Variables: scssVariables,
		Logger:    log,
	})

	result := &buildResult{}
	for _, family := range families {
		entries := manifest.FromStrings(req.Files)
		if len(entries) == 0 {
			entries = m.Entries(string(family))
		}
		if len(entries) == 0 {
			return nil, bunderr.Config(
				"specify either --files or the %s key in a manifest yaml (e.g. %s)",
				family, manifest.DefaultInput)
		}
		entries = substituteEntries(vars, entries)

		sink, err := familySink(req, config, family, vars)
		if err != nil {
			return nil, err
		}

		log.Debug("building bundle",
			"family", string(family), "entries", len(entries),
			"minify", minify, "cache", cache, "output", sink.Path)

		fragments, err := pipe.Build(pipeline.NewContext(), family, entries)
		if err != nil {
			return nil, err
		}
		written, err := writer.Write(sink, fragments, req.Hash)
		if err != nil {
			return nil, err
		}
		if written.Path != "" {
			log.Info("bundle written", "family", string(family), "path", written.Path)
		}
		switch family {
		case pipeline.FamilyJS:
			result.JS = written.Path
		case pipeline.FamilyCSS:
			result.CSS = written.Path
		}
	}
	return result, nil
}

// familySink resolves the output destination for one family. --stdout
// overrides everything; otherwise flag > manifest config > default,
// with $variables and ${ENV} placeholders expanded in path sinks.
func familySink(req buildRequest, config map[string]any, family pipeline.Family, vars *settings.Variables) (writer.Sink, error) {
	if req.Stdout {
		return writer.Sink{Stream: os.Stdout}, nil
	}
	var cli *string
	key, def := "output_js", DefaultOutputJS
	if family == pipeline.FamilyCSS {
		cli, key, def = req.OutputCSS, "output_css", DefaultOutputCSS
	} else {
		cli = req.OutputJS
	}
	path := settings.String(cli, config, key, def)
	path = expand(vars, path)
	return writer.Sink{Path: path}, nil
}

// substituteEntries applies $variable substitution and environment
// placeholder expansion to entry identifiers and block values.
func substituteEntries(vars *settings.Variables, entries []manifest.Entry) []manifest.Entry {
	out := make([]manifest.Entry, len(entries))
	for i, e := range entries {
		e.File = expand(vars, e.File)
		e.Scope = vars.SubstituteString(e.Scope)
		if e.Variables != nil {
			e.Variables, _ = vars.Substitute(e.Variables).(map[string]any)
		}
		out[i] = e
	}
	return out
}

func expand(vars *settings.Variables, s string) string {
	return settings.ExpandPlaceholders(vars.SubstituteString(s), os.LookupEnv)
}

func familiesInclude(families []pipeline.Family, family pipeline.Family) bool {
	for _, f := range families {
		if f == family {
			return true
		}
	}
	return false
}

func cacheDir() string {
	if dir := viper.GetString("cache-dir"); dir != "" {
		return dir
	}
	return loader.DefaultCacheDir()
}

// stringFlag returns the flag value when it was explicitly set, else
// nil so lower-priority sources apply.
func stringFlag(fs *pflag.FlagSet, name string) *string {
	if !fs.Changed(name) {
		return nil
	}
	v, _ := fs.GetString(name)
	return &v
}

// boolFlag is stringFlag for booleans, rendered through the truthy
// parser used by the settings resolver.
func boolFlag(fs *pflag.FlagSet, name string) *string {
	if !fs.Changed(name) {
		return nil
	}
	v, _ := fs.GetBool(name)
	s := "false"
	if v {
		s = "true"
	}
	return &s
}
