package cmd

import (
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/bundlegen/bundlegen/internal/pipeline"
	"github.com/bundlegen/bundlegen/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:     "watch",
	Aliases: []string{"w"},
	Short:   "Rebuild the bundles whenever a source file changes",
	Long: `Watch runs an initial build and then rebuilds both bundles whenever
the manifest or a source file under the watched directory changes.
Rebuilds are full, not incremental, and run one at a time.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWatch(cmd)
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
	addBuildFlags(watchCmd)
	watchCmd.Flags().String("dir", ".", "directory tree to watch")
	watchCmd.Flags().Duration("debounce", 300*time.Millisecond, "quiet period before a rebuild")
}

func runWatch(cmd *cobra.Command) error {
	families := []pipeline.Family{pipeline.FamilyJS, pipeline.FamilyCSS}

	// Track the build's own outputs so writing a bundle into the
	// watched tree does not trigger the next rebuild.
	var mu sync.Mutex
	outputs := map[string]bool{}
	record := func(paths ...string) {
		mu.Lock()
		defer mu.Unlock()
		for _, p := range paths {
			if p == "" {
				continue
			}
			if abs, err := filepath.Abs(p); err == nil {
				p = abs
			}
			outputs[p] = true
		}
	}
	isOutput := func(path string) bool {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
		mu.Lock()
		defer mu.Unlock()
		return outputs[path]
	}

	rebuild := func() {
		res, err := runBuild(cmd, log, families, nil)
		if err != nil {
			// A broken intermediate state is normal while editing;
			// keep watching.
			log.Error(err, "build failed")
			return
		}
		record(res.JS, res.CSS)
	}
	rebuild()

	dir, _ := cmd.Flags().GetString("dir")
	debounce, _ := cmd.Flags().GetDuration("debounce")

	fw, err := watcher.New(debounce, log)
	if err != nil {
		return err
	}
	defer fw.Stop()

	fw.AddFilter(watcher.AssetFilter)
	fw.AddFilter(watcher.NoHiddenFilter)
	fw.AddFilter(watcher.NoOutputFilter)
	fw.AddFilter(func(path string) bool { return !isOutput(path) })
	fw.AddHandler(func(events []watcher.ChangeEvent) error {
		for _, e := range events {
			log.Debug("change detected", "path", e.Path, "type", e.Type.String())
		}
		rebuild()
		return nil
	})

	if err := fw.AddRecursive(dir); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	fw.Start(ctx)

	log.Info("watching for changes", "dir", dir)
	<-ctx.Done()
	return nil
}
