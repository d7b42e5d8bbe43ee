// Package writer accumulates transformed bundle fragments into a
// single output sink: a filesystem path, an already-open stream, or a
// sqlite:// pseudo-path redirected to a staging directory. Path sinks
// are written atomically: the destination either receives the complete
// bundle or is left untouched.
package writer

import (
	"crypto/sha1"
	"encoding/hex"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	bunderr "github.com/bundlegen/bundlegen/internal/errors"
)

// TempName is the buffer artifact written next to the destination
// before the final rename.
const TempName = ".bundle_tmp"

// SQLitePrefix marks a pseudo-sink whose contents are staged for the
// publish workflow instead of being written in place.
const SQLitePrefix = "sqlite://"

// StagingRoot is the fixed temp root for sqlite:// staging
// subdirectories.
var StagingRoot = filepath.Join(os.TempDir(), "bundle-build")

// Sink describes where a bundle goes. Stream takes precedence over
// Path when both are set; a stream is used as-is with no temp-file
// dance.
type Sink struct {
	Path   string
	Stream io.Writer
}

// Result reports where the bundle ended up.
type Result struct {
	// Path is the final output path; empty for stream sinks.
	Path string
	// HashPath is the sidecar hash file, when requested.
	HashPath string
}

// Write writes fragments to the sink in order, each followed by a
// newline. For path sinks the write is atomic: a temp buffer in the
// destination directory collects every fragment and is renamed into
// place only after all writes succeed, so partial failure leaves any
// previous output byte-identical and no half-written file at the final
// path. When sidecarHash is set, a `<output>.hash` file with the
// bundle's content hash is written after the rename completes.
func Write(sink Sink, fragments []string, sidecarHash bool) (*Result, error) {
	if sink.Stream != nil {
		for _, fragment := range fragments {
			if _, err := io.WriteString(sink.Stream, fragment+"\n"); err != nil {
				return nil, bunderr.Wrap(bunderr.KindIO, "", err, "could not write bundle to stream")
			}
		}
		return &Result{}, nil
	}

	dest := sink.Path
	if strings.HasPrefix(dest, SQLitePrefix) {
		staged, err := stagingPath(dest)
		if err != nil {
			return nil, err
		}
		dest = staged
	}

	if err := writeAtomic(dest, fragments); err != nil {
		return nil, err
	}

	result := &Result{Path: dest}
	if sidecarHash {
		hashPath, err := writeHashSidecar(dest)
		if err != nil {
			return nil, err
		}
		result.HashPath = hashPath
	}
	return result, nil
}

func writeAtomic(dest string, fragments []string) (err error) {
	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return bunderr.Wrap(bunderr.KindIO, dest, err, "could not create output directory")
	}

	tmp := filepath.Join(dir, TempName)
	// a stale buffer from an aborted build must not leak into this one
	if err := os.Remove(tmp); err != nil && !os.IsNotExist(err) {
		return bunderr.Wrap(bunderr.KindIO, tmp, err, "could not remove stale temp buffer")
	}

	f, err := os.OpenFile(tmp, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return bunderr.Wrap(bunderr.KindIO, tmp, err, "could not open temp buffer")
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(tmp)
		}
	}()

	for _, fragment := range fragments {
		if _, err = io.WriteString(f, fragment+"\n"); err != nil {
			return bunderr.Wrap(bunderr.KindIO, tmp, err, "could not write fragment")
		}
	}
	if err = f.Close(); err != nil {
		return bunderr.Wrap(bunderr.KindIO, tmp, err, "could not flush temp buffer")
	}

	if err = os.Rename(tmp, dest); err != nil {
		return bunderr.Wrap(bunderr.KindIO, dest, err, "could not move bundle into place")
	}
	return nil
}

// stagingPath maps sqlite://<name> to a uniquely-timestamped staging
// subdirectory under StagingRoot, preserving the basename for the
// publish workflow to pick up.
func stagingPath(pseudo string) (string, error) {
	name := path.Base(strings.TrimPrefix(pseudo, SQLitePrefix))
	ts := strings.ReplaceAll(time.Now().Format("2006-01-02 15:04:05.000000"), " ", "_")
	dir := filepath.Join(StagingRoot, ts)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", bunderr.Wrap(bunderr.KindIO, pseudo, err, "could not create staging directory")
	}
	return filepath.Join(dir, name), nil
}

func writeHashSidecar(dest string) (string, error) {
	sum, err := HashFile(dest)
	if err != nil {
		return "", err
	}
	hashPath := dest + ".hash"
	if err := os.WriteFile(hashPath, []byte(sum+"\n"), 0o644); err != nil {
		return "", bunderr.Wrap(bunderr.KindIO, hashPath, err, "could not write hash sidecar")
	}
	return hashPath, nil
}

// HashFile computes the stable content hash (sha1 hex, sha1sum
// compatible) used for sidecar files and publish-duplicate detection.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", bunderr.Wrap(bunderr.KindIO, path, err, "could not hash file")
	}
	defer f.Close()

	h := sha1.New() // #nosec G401 -- duplicate detection, not security
	if _, err := io.Copy(h, f); err != nil {
		return "", bunderr.Wrap(bunderr.KindIO, path, err, "could not hash file")
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// HashBytes computes the same content hash over an in-memory bundle.
func HashBytes(data []byte) string {
	sum := sha1.Sum(data) // #nosec G401 -- duplicate detection, not security
	return hex.EncodeToString(sum[:])
}
