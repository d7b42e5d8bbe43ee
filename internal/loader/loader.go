// Package loader fetches entry contents: remote URLs over HTTP(S) with
// an optional on-disk cache, and local files. Inline raw blocks are
// classified by the dispatcher; this package only moves bytes.
package loader

import (
	"crypto/sha1"
	"crypto/tls"
	"encoding/hex"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/go-resty/resty/v2"

	bunderr "github.com/bundlegen/bundlegen/internal/errors"
	"github.com/bundlegen/bundlegen/internal/logging"
)

// Options configures a Loader.
type Options struct {
	// CacheDir is where remote responses are persisted. Empty disables
	// persistence even when Cache is true.
	CacheDir string
	// Cache enables reuse of previously fetched remote content. Entries
	// never expire; concurrent builds sharing a cache dir race
	// undetected (known limitation).
	Cache bool
	// InsecureTLS skips certificate verification for local development
	// environments. The opt-in also silences the client's own warning
	// output.
	InsecureTLS bool

	Logger logging.Logger
}

// Loader reads remote and local entry contents.
type Loader struct {
	client   *resty.Client
	cacheDir string
	cache    bool
	log      logging.Logger
}

// DefaultCacheDir returns the default on-disk cache location.
func DefaultCacheDir() string {
	return filepath.Join(os.TempDir(), "bundlegen-cache")
}

// New creates a Loader.
func New(opts Options) *Loader {
	log := opts.Logger
	if log == nil {
		log = logging.Discard()
	}
	client := resty.New()
	if opts.InsecureTLS {
		client.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true}) // #nosec G402 -- explicit local-dev opt-in
		client.SetDisableWarn(true)
	}
	cacheDir := opts.CacheDir
	if opts.Cache && cacheDir == "" {
		cacheDir = DefaultCacheDir()
	}
	return &Loader{
		client:   client,
		cacheDir: cacheDir,
		cache:    opts.Cache,
		log:      log.WithComponent("loader"),
	}
}

// IsRemote reports whether the identifier is an http(s) URL.
func IsRemote(file string) bool {
	return strings.HasPrefix(file, "http://") || strings.HasPrefix(file, "https://")
}

// Remote GETs the URL, reusing the on-disk cache when enabled. The
// cache key is derived deterministically from the URL, so the same URL
// maps to the same artifact on every build.
func (l *Loader) Remote(rawURL string) (string, error) {
	var cachePath string
	if l.cache {
		cachePath = filepath.Join(l.cacheDir, cacheKey(rawURL))
		if data, err := os.ReadFile(cachePath); err == nil {
			l.log.Debug("cache hit", "url", rawURL, "path", cachePath)
			return string(data), nil
		}
	}

	resp, err := l.client.R().Get(rawURL)
	if err != nil {
		return "", bunderr.Wrap(bunderr.KindIO, rawURL, err, "could not fetch remote content")
	}
	if resp.IsError() {
		return "", bunderr.New(bunderr.KindIO, rawURL, "remote fetch failed with status %s", resp.Status())
	}
	body := string(resp.Body())

	if l.cache {
		if err := os.MkdirAll(l.cacheDir, 0o755); err == nil {
			if werr := os.WriteFile(cachePath, []byte(body), 0o644); werr != nil {
				l.log.Warn("could not persist cache entry", "url", rawURL, "error", werr.Error())
			}
		}
	}
	return body, nil
}

// Local reads a file's full text content.
func (l *Loader) Local(file string) (string, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		if os.IsNotExist(err) {
			return "", bunderr.NotFound(file, err)
		}
		return "", bunderr.Wrap(bunderr.KindIO, file, err, "could not read file")
	}
	return string(data), nil
}

// cacheKey derives a stable cache filename from a URL: a short content
// hash of the URL itself plus the URL path's extension, so cached
// artifacts stay recognizable on disk.
func cacheKey(rawURL string) string {
	sum := sha1.Sum([]byte(rawURL)) // #nosec G401 -- cache key, not integrity
	ext := ""
	if u, err := url.Parse(rawURL); err == nil {
		ext = path.Ext(u.Path)
	}
	return fmt.Sprintf("%s%s", hex.EncodeToString(sum[:]), ext)
}
