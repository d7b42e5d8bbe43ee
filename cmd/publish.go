package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/bundlegen/bundlegen/internal/console"
	"github.com/bundlegen/bundlegen/internal/ledger"
	"github.com/bundlegen/bundlegen/internal/logging"
	"github.com/bundlegen/bundlegen/internal/manifest"
	"github.com/bundlegen/bundlegen/internal/pipeline"
	"github.com/bundlegen/bundlegen/internal/settings"
	"github.com/bundlegen/bundlegen/internal/writer"
)

// Ledger storage defaults, overridable through the LTS manifest config
// (output_db / output_sql).
const (
	DefaultAssetsDB  = "lts_assets.db"
	DefaultAssetsSQL = "lts_assets.sql"
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Build and record an LTS release in the version ledger",
	Long: `Publish builds the LTS bundles and records them in the version
ledger. Exactly one of --version, --major, --minor or --patch selects
the new version; with none given the previous version is shown and an
explicit version is prompted for.

Republishing an existing version, or content identical to the previous
release, asks for confirmation first; --force confirms both
automatically.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPublish(cmd, log)
	},
}

func init() {
	rootCmd.AddCommand(publishCmd)

	publishCmd.Flags().StringP("input", "i", manifest.DefaultInputLTS, "LTS manifest path")
	publishCmd.Flags().String("version", "", "explicit version to publish (major.minor.patch)")
	publishCmd.Flags().Bool("major", false, "bump the major version")
	publishCmd.Flags().Bool("minor", false, "bump the minor version")
	publishCmd.Flags().Bool("patch", false, "bump the patch version")
	publishCmd.Flags().Bool("js", true, "publish the JS bundle")
	publishCmd.Flags().Bool("css", true, "publish the CSS bundle")
	publishCmd.Flags().BoolP("force", "f", false, "skip overwrite and duplicate-content confirmations")
}

func runPublish(cmd *cobra.Command, log logging.Logger) error {
	// .env may carry HOSTINGDOMAIN for the changelog URL.
	_ = godotenv.Load()

	input, _ := cmd.Flags().GetString("input")
	force, _ := cmd.Flags().GetBool("force")
	doJS, _ := cmd.Flags().GetBool("js")
	doCSS, _ := cmd.Flags().GetBool("css")

	store, err := openLedger(input, log)
	if err != nil {
		return err
	}
	defer store.Close()

	previous, err := store.Latest("js")
	if err != nil {
		return err
	}
	var prevVersion ledger.Version
	if previous != nil {
		prevVersion = ledger.Version{Major: previous.Major, Minor: previous.Minor, Patch: previous.Patch}
	}

	explicit, _ := cmd.Flags().GetString("version")
	major, _ := cmd.Flags().GetBool("major")
	minor, _ := cmd.Flags().GetBool("minor")
	patch, _ := cmd.Flags().GetBool("patch")
	sel := ledger.Selection{Explicit: explicit, Major: major, Minor: minor, Patch: patch}

	version, err := sel.Resolve(prevVersion, func(prev ledger.Version) (string, error) {
		fmt.Printf("Previous version is: %s\n", prev)
		return console.Ask(os.Stdin, os.Stdout, "Which version would you like to publish?")
	})
	if err != nil {
		return err
	}

	// Overwrite guard per filetype: declining cancels that filetype's
	// publish only.
	if doJS {
		doJS, err = confirmOverwrite(store, "js", version, force)
		if err != nil {
			return err
		}
	}
	if doCSS {
		doCSS, err = confirmOverwrite(store, "css", version, force)
		if err != nil {
			return err
		}
	}
	if !doJS && !doCSS {
		log.Info("nothing to publish")
		return nil
	}

	var families []pipeline.Family
	if doJS {
		families = append(families, pipeline.FamilyJS)
	}
	if doCSS {
		families = append(families, pipeline.FamilyCSS)
	}

	versionTag := version.String()
	built, err := executeBuild(buildRequest{Input: input, Version: &versionTag}, log, families)
	if err != nil {
		return err
	}
	defer os.RemoveAll(writer.StagingRoot)

	if built.JS != "" {
		if err := recordArtifact(store, "js", version, built.JS, force); err != nil {
			return err
		}
	}
	if built.CSS != "" {
		if err := recordArtifact(store, "css", version, built.CSS, force); err != nil {
			return err
		}
	}
	return nil
}

// openLedger resolves the ledger paths from the LTS manifest config and
// opens the store.
func openLedger(input string, log logging.Logger) (*ledger.Store, error) {
	m, err := manifest.Load(input, false)
	if err != nil {
		return nil, err
	}
	vars := settings.NewVariables(m.Config)
	dbPath := expand(vars, settings.String(nil, m.Config, "output_db", DefaultAssetsDB))
	sqlPath := expand(vars, settings.String(nil, m.Config, "output_sql", DefaultAssetsSQL))
	return ledger.Open(dbPath, sqlPath, log)
}

func confirmOverwrite(store *ledger.Store, filetype string, version ledger.Version, force bool) (bool, error) {
	exists, err := store.Exists(filetype, version.String())
	if err != nil {
		return false, err
	}
	if !exists {
		return true, nil
	}
	fmt.Printf("%s version %s already exists!\n", filetype, version)
	if force {
		return true, nil
	}
	return console.Confirm(os.Stdin, os.Stdout, "Are you sure you want to overwrite it?")
}

// recordArtifact inserts one built bundle into the ledger, guarding
// against no-op republishes whose content hash matches the previous
// latest release.
func recordArtifact(store *ledger.Store, filetype string, version ledger.Version, path string, force bool) error {
	contents, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	hash, err := writer.HashFile(path)
	if err != nil {
		return err
	}

	previous, err := store.Latest(filetype)
	if err != nil {
		return err
	}
	if previous != nil && previous.Hash == hash && !force {
		fmt.Printf("%s hash matches previous version.\n", filetype)
		proceed, err := console.Confirm(os.Stdin, os.Stdout, "Are you sure you want to release a new version?")
		if err != nil {
			return err
		}
		if !proceed {
			return nil
		}
	}

	err = store.Insert(&ledger.Record{
		Filetype:  filetype,
		Version:   version.String(),
		Filename:  filepath.Base(path),
		Major:     version.Major,
		Minor:     version.Minor,
		Patch:     version.Patch,
		Hash:      hash,
		CreatedAt: time.Now().UTC(),
		Changelog: "",
		Contents:  string(contents),
	})
	if err != nil {
		return err
	}
	fmt.Printf("%s version %s published.\n", filetype, version)
	return printChangelogURL(store, filetype, version.String())
}

// printChangelogURL prints where the changelog for a published version
// can be filled in or updated.
func printChangelogURL(store *ledger.Store, filetype, version string) error {
	id, changelog, err := store.Changelog(filetype, version)
	if err != nil {
		return err
	}
	if changelog != "" {
		fmt.Println("Changelog already filled in! It can be updated at:")
	} else {
		fmt.Printf("Please fill in a changelog for this %s publication at:\n", filetype)
	}
	domain := os.Getenv("HOSTINGDOMAIN")
	if domain == "" {
		domain = "your.domain"
	}
	fmt.Printf("https://%s/lts/manage_versions/edit/%d\n", domain, id)
	return nil
}
