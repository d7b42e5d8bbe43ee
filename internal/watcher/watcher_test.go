package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bundlegen/bundlegen/internal/logging"
)

func TestAssetFilter(t *testing.T) {
	assert.True(t, AssetFilter("src/app.ts"))
	assert.True(t, AssetFilter("src/behavior._hs"))
	assert.True(t, AssetFilter("styles/main.SCSS"))
	assert.True(t, AssetFilter("bundle.yaml"))
	assert.False(t, AssetFilter("README.md"))
	assert.False(t, AssetFilter("binary.png"))
	assert.False(t, AssetFilter("noextension"))
}

func TestNoHiddenFilter(t *testing.T) {
	assert.True(t, NoHiddenFilter("src/app.js"))
	assert.False(t, NoHiddenFilter(".git/index"))
	assert.False(t, NoHiddenFilter("src/.idea/workspace.xml"))
	assert.True(t, NoHiddenFilter("./src/app.js"), "a bare dot component is not a hidden directory")
}

func TestNoOutputFilter(t *testing.T) {
	assert.False(t, NoOutputFilter("dist/.bundle_tmp"))
	assert.False(t, NoOutputFilter("dist/bundle.js.hash"))
	assert.True(t, NoOutputFilter("dist/bundle.js"))
}

func TestEventTypeString(t *testing.T) {
	assert.Equal(t, "created", EventTypeCreated.String())
	assert.Equal(t, "modified", EventTypeModified.String())
	assert.Equal(t, "deleted", EventTypeDeleted.String())
	assert.Equal(t, "renamed", EventTypeRenamed.String())
	assert.Equal(t, "unknown", EventType(99).String())
}

func TestWatcherDebouncesBurst(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "app.js")
	require.NoError(t, os.WriteFile(target, []byte("// v0"), 0o644))

	fw, err := New(100*time.Millisecond, logging.Discard())
	require.NoError(t, err)
	defer fw.Stop()

	fw.AddFilter(AssetFilter)

	var mu sync.Mutex
	var batches [][]ChangeEvent
	done := make(chan struct{}, 1)
	fw.AddHandler(func(events []ChangeEvent) error {
		mu.Lock()
		batches = append(batches, events)
		mu.Unlock()
		select {
		case done <- struct{}{}:
		default:
		}
		return nil
	})

	require.NoError(t, fw.AddPath(dir))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	fw.Start(ctx)

	// A burst of writes within the debounce window.
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(target, []byte("// change"), 0o644))
		time.Sleep(10 * time.Millisecond)
	}

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("no debounced batch arrived")
	}

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, batches)
	assert.Len(t, batches[0], 1, "burst on one path collapses to one event")
	assert.Equal(t, target, batches[0][0].Path)
}

func TestWatcherAppliesFilters(t *testing.T) {
	dir := t.TempDir()

	fw, err := New(50*time.Millisecond, logging.Discard())
	require.NoError(t, err)
	defer fw.Stop()

	fw.AddFilter(AssetFilter)

	seen := make(chan string, 10)
	fw.AddHandler(func(events []ChangeEvent) error {
		for _, e := range events {
			seen <- e.Path
		}
		return nil
	})

	require.NoError(t, fw.AddPath(dir))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	fw.Start(ctx)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.css"), []byte("body{}"), 0o644))

	select {
	case path := <-seen:
		assert.Equal(t, filepath.Join(dir, "main.css"), path)
	case <-time.After(3 * time.Second):
		t.Fatal("filtered watch produced no events")
	}
}

func TestAddRecursive(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "nested", "deeper")
	require.NoError(t, os.MkdirAll(sub, 0o755))

	fw, err := New(50*time.Millisecond, logging.Discard())
	require.NoError(t, err)
	defer fw.Stop()

	require.NoError(t, fw.AddRecursive(dir))

	seen := make(chan string, 10)
	fw.AddHandler(func(events []ChangeEvent) error {
		for _, e := range events {
			seen <- e.Path
		}
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	fw.Start(ctx)

	require.NoError(t, os.WriteFile(filepath.Join(sub, "deep.scss"), []byte("$a: 1;"), 0o644))

	select {
	case path := <-seen:
		assert.Equal(t, filepath.Join(sub, "deep.scss"), path)
	case <-time.After(3 * time.Second):
		t.Fatal("nested directory change was not observed")
	}
}
