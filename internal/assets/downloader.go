package assets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"github.com/custodia-labs/discussion-export/internal/logger"
)

// DefaultParallelism is the default number of concurrent downloads.
const DefaultParallelism = 4

// fallbackExtension is used when the content type is absent or unknown.
// Extensions are never guessed from content.
const fallbackExtension = ".bin"

// extensionByContentType maps probed content types to file extensions.
var extensionByContentType = map[string]string{
	"image/png":       ".png",
	"image/jpeg":      ".jpg",
	"image/gif":       ".gif",
	"image/webp":      ".webp",
	"image/svg+xml":   ".svg",
	"video/mp4":       ".mp4",
	"video/quicktime": ".mov",
}

// Result is the per-URL outcome of a download.
type Result struct {
	URL      string
	ID       string
	Filename string // resolved local file name, set on success
	Skipped  bool   // destination already existed
	Err      error  // nil on success
}

// Downloader fetches assets into a local directory with bounded concurrency.
// The HTTP client carries the bearer token and is shared read-only across
// workers; each worker owns a distinct destination file keyed by asset
// identifier, so there is no write contention.
type Downloader struct {
	http        *http.Client
	dir         string
	parallelism int

	// OnProgress, when set, is called after each batch completes with the
	// number of URLs processed so far and the total.
	OnProgress func(completed, total int)
}

// NewDownloader creates a downloader writing into dir with at most
// parallelism concurrent requests.
func NewDownloader(httpClient *http.Client, dir string, parallelism int) *Downloader {
	if parallelism <= 0 {
		parallelism = DefaultParallelism
	}
	return &Downloader{
		http:        httpClient,
		dir:         dir,
		parallelism: parallelism,
	}
}

// DownloadAll fetches every URL and reports a per-URL outcome. URLs run in
// fixed-size batches of the configured parallelism; the next batch starts
// only after the whole previous batch finishes. One asset's failure is
// recorded in its Result and never aborts siblings.
func (d *Downloader) DownloadAll(ctx context.Context, urls []string) []Result {
	results := make([]Result, len(urls))

	for start := 0; start < len(urls); start += d.parallelism {
		end := min(start+d.parallelism, len(urls))

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				results[i] = d.download(ctx, urls[i])
			}(i)
		}
		wg.Wait()

		if d.OnProgress != nil {
			d.OnProgress(end, len(urls))
		}
	}

	return results
}

// download fetches a single asset. The whole body is buffered in memory
// before the destination file is created, so a failed transfer never leaves
// truncated output behind.
func (d *Downloader) download(ctx context.Context, url string) Result {
	id, ok := ExtractID(url)
	if !ok {
		return Result{URL: url, Err: fmt.Errorf("assets: unrecognized asset URL %s", url)}
	}
	result := Result{URL: url, ID: id}

	ext, err := d.probeExtension(ctx, url)
	if err != nil {
		result.Err = err
		return result
	}
	result.Filename = id + ext

	dest := filepath.Join(d.dir, result.Filename)
	if _, err := os.Stat(dest); err == nil {
		logger.Debug("asset %s already present, skipping download", result.Filename)
		result.Skipped = true
		return result
	}

	body, err := d.fetch(ctx, url)
	if err != nil {
		result.Err = err
		return result
	}

	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		result.Err = classifyStorageError(err, d.dir)
		return result
	}
	if err := os.WriteFile(dest, body, 0o644); err != nil {
		result.Err = classifyStorageError(err, dest)
		return result
	}

	logger.Debug("downloaded asset %s (%d bytes)", result.Filename, len(body))
	return result
}

// probeExtension issues a HEAD request and maps the content type to a file
// extension. No body is transferred.
func (d *Downloader) probeExtension(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return "", fmt.Errorf("build probe request: %w", err)
	}

	resp, err := d.http.Do(req)
	if err != nil {
		return "", classifyTransportError(err, url)
	}
	defer resp.Body.Close()

	if err := classifyStatus(resp.StatusCode, url); err != nil {
		return "", err
	}

	contentType := resp.Header.Get("Content-Type")
	if mediaType, _, found := strings.Cut(contentType, ";"); found {
		contentType = mediaType
	}
	contentType = strings.TrimSpace(contentType)

	if ext, ok := extensionByContentType[contentType]; ok {
		return ext, nil
	}
	return fallbackExtension, nil
}

// fetch retrieves the asset body fully into memory.
func (d *Downloader) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := d.http.Do(req)
	if err != nil {
		return nil, classifyTransportError(err, url)
	}
	defer resp.Body.Close()

	if err := classifyStatus(resp.StatusCode, url); err != nil {
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classifyTransportError(err, url)
	}
	return body, nil
}

// classifyStatus maps response codes onto the failure taxonomy. A 403 is
// reported as permission-denied; GitHub also uses it for secondary rate
// limits, which callers message the same way.
func classifyStatus(status int, url string) error {
	switch {
	case status == http.StatusUnauthorized:
		return fmt.Errorf("fetch %s: %w", url, ErrAuthentication)
	case status == http.StatusNotFound:
		return fmt.Errorf("fetch %s: %w", url, ErrNotFound)
	case status == http.StatusForbidden:
		return fmt.Errorf("fetch %s: %w", url, ErrPermissionDenied)
	case status < 200 || status > 299:
		return &HTTPError{StatusCode: status, URL: url}
	}
	return nil
}

// classifyTransportError distinguishes timeout and connection-refused
// failures from generic network errors.
func classifyTransportError(err error, url string) error {
	kind := NetworkGeneric

	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		kind = NetworkTimeout
	case errors.As(err, &netErr) && netErr.Timeout():
		kind = NetworkTimeout
	case errors.Is(err, syscall.ECONNREFUSED):
		kind = NetworkConnectionRefused
	}

	return &NetworkError{Kind: kind, URL: url, Err: err}
}

// classifyStorageError distinguishes permission and disk-space failures
// from generic local I/O errors.
func classifyStorageError(err error, path string) error {
	kind := StorageGeneric
	switch {
	case errors.Is(err, os.ErrPermission):
		kind = StoragePermissionDenied
	case errors.Is(err, syscall.ENOSPC):
		kind = StorageExhausted
	}
	return &StorageError{Kind: kind, Path: path, Err: err}
}
