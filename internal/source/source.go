// Package source turns an input reference into a readable local file.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// ErrNotFound is returned when the input does not exist or cannot be read.
var ErrNotFound = errors.New("input not found")

// tempPattern is shared by every download helper so stale files can be cleaned up.
const tempPattern = "pdfbw-src-*.pdf"

// Options configures remote fetching.
type Options struct {
	HTTPClient *http.Client
	S3         S3Options
	TempDir    string // downloads land here; os.TempDir when empty
}

// Resolver resolves references to local paths.
type Resolver struct {
	http    *http.Client
	s3      S3Options
	tempDir string
}

// New creates a resolver.
func New(opts Options) *Resolver {
	c := opts.HTTPClient
	if c == nil {
		c = &http.Client{Timeout: 60 * time.Second}
	}
	return &Resolver{http: c, s3: opts.S3, tempDir: opts.TempDir}
}

// Resolve returns a local path for ref and a cleanup func that removes any
// temporary download. Supports:
// - file://path or absolute/relative filesystem paths
// - http(s):// URLs (downloads to temp)
// - s3://bucket/key (downloads to temp via AWS SDK v2)
func (r *Resolver) Resolve(ctx context.Context, ref string) (string, func(), error) {
	noop := func() {}
	var (
		localPath string
		err       error
	)
	switch {
	case strings.HasPrefix(ref, "s3://"):
		localPath, err = downloadS3ToTemp(ctx, r.s3, r.tempDir, ref)
	case strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://"):
		localPath, err = r.downloadHTTPToTemp(ctx, ref)
	default:
		path := strings.TrimPrefix(ref, "file://")
		if err := checkLocal(path); err != nil {
			return "", noop, err
		}
		return path, noop, nil
	}
	if err != nil {
		return "", noop, err
	}
	return localPath, func() { _ = os.Remove(localPath) }, nil
}

func checkLocal(path string) error {
	if path == "" {
		return fmt.Errorf("%w: empty path", ErrNotFound)
	}
	fi, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	if fi.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrNotFound, path)
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return f.Close()
}

func (r *Resolver) downloadHTTPToTemp(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	resp, err := r.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: http %d", ErrNotFound, resp.StatusCode)
	}
	f, err := os.CreateTemp(r.tempDir, tempPattern)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := io.Copy(f, resp.Body); err != nil {
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("download %s: %w", url, err)
	}
	log.Debug().Str("url", url).Str("file", f.Name()).Msg("downloaded http pdf to temp")
	return f.Name(), nil
}
