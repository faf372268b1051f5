package assets

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rewriteTransport redirects every request to the test server while keeping
// the original path, so downloader input can use real asset URLs.
type rewriteTransport struct {
	server *httptest.Server
}

func (rt rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	target, err := url.Parse(rt.server.URL)
	if err != nil {
		return nil, err
	}
	req.URL.Scheme = target.Scheme
	req.URL.Host = target.Host
	return http.DefaultTransport.RoundTrip(req)
}

func newTestDownloader(t *testing.T, handler http.HandlerFunc, parallelism int) (*Downloader, string) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	dir := t.TempDir()
	client := &http.Client{Transport: rewriteTransport{server: server}}
	return NewDownloader(client, dir, parallelism), dir
}

func assetURL(id string) string {
	return URLPrefix + id
}

func TestDownloadAll(t *testing.T) {
	ctx := context.Background()

	t.Run("downloads with extension from content type", func(t *testing.T) {
		downloader, dir := newTestDownloader(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "image/png")
			if r.Method == http.MethodGet {
				w.Write([]byte("png bytes"))
			}
		}, 1)

		results := downloader.DownloadAll(ctx, []string{assetURL("pic-1")})
		require.Len(t, results, 1)
		require.NoError(t, results[0].Err)
		assert.Equal(t, "pic-1.png", results[0].Filename)
		assert.False(t, results[0].Skipped)

		data, err := os.ReadFile(filepath.Join(dir, "pic-1.png"))
		require.NoError(t, err)
		assert.Equal(t, "png bytes", string(data))
	})

	t.Run("content type parameters are stripped", func(t *testing.T) {
		downloader, _ := newTestDownloader(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "image/svg+xml; charset=utf-8")
			if r.Method == http.MethodGet {
				w.Write([]byte("<svg/>"))
			}
		}, 1)

		results := downloader.DownloadAll(ctx, []string{assetURL("diagram")})
		require.NoError(t, results[0].Err)
		assert.Equal(t, "diagram.svg", results[0].Filename)
	})

	t.Run("unknown content type falls back to bin", func(t *testing.T) {
		downloader, _ := newTestDownloader(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/x-mystery")
			if r.Method == http.MethodGet {
				w.Write([]byte("???"))
			}
		}, 1)

		results := downloader.DownloadAll(ctx, []string{assetURL("blob")})
		require.NoError(t, results[0].Err)
		assert.Equal(t, "blob.bin", results[0].Filename)
	})

	t.Run("existing file is skipped without refetch", func(t *testing.T) {
		var gets atomic.Int32
		downloader, dir := newTestDownloader(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "image/png")
			if r.Method == http.MethodGet {
				gets.Add(1)
				w.Write([]byte("fresh"))
			}
		}, 1)

		require.NoError(t, os.WriteFile(filepath.Join(dir, "pic-1.png"), []byte("existing"), 0o644))

		results := downloader.DownloadAll(ctx, []string{assetURL("pic-1")})
		require.NoError(t, results[0].Err)
		assert.True(t, results[0].Skipped)
		assert.Equal(t, int32(0), gets.Load())

		data, err := os.ReadFile(filepath.Join(dir, "pic-1.png"))
		require.NoError(t, err)
		assert.Equal(t, "existing", string(data))
	})

	t.Run("one failure does not abort siblings", func(t *testing.T) {
		downloader, _ := newTestDownloader(t, func(w http.ResponseWriter, r *http.Request) {
			if strings.Contains(r.URL.Path, "missing") {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			w.Header().Set("Content-Type", "image/jpeg")
			if r.Method == http.MethodGet {
				w.Write([]byte("jpeg"))
			}
		}, 2)

		results := downloader.DownloadAll(ctx, []string{
			assetURL("ok-1"), assetURL("missing"), assetURL("ok-2"),
		})
		require.Len(t, results, 3)
		assert.NoError(t, results[0].Err)
		assert.True(t, IsNotFound(results[1].Err))
		assert.NoError(t, results[2].Err)
	})

	t.Run("auth failures are classified", func(t *testing.T) {
		downloader, _ := newTestDownloader(t, func(w http.ResponseWriter, r *http.Request) {
			if strings.Contains(r.URL.Path, "secret") {
				w.WriteHeader(http.StatusForbidden)
				return
			}
			w.WriteHeader(http.StatusUnauthorized)
		}, 1)

		results := downloader.DownloadAll(ctx, []string{assetURL("any"), assetURL("secret")})
		assert.True(t, IsUnauthorized(results[0].Err))
		assert.True(t, IsForbidden(results[1].Err))
	})

	t.Run("unrecognized URL fails without a request", func(t *testing.T) {
		var requests atomic.Int32
		downloader, _ := newTestDownloader(t, func(w http.ResponseWriter, _ *http.Request) {
			requests.Add(1)
			w.Write(nil)
		}, 1)

		results := downloader.DownloadAll(ctx, []string{"https://example.com/x.png"})
		require.Error(t, results[0].Err)
		assert.Equal(t, int32(0), requests.Load())
	})

	t.Run("reports batch progress", func(t *testing.T) {
		downloader, _ := newTestDownloader(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "image/gif")
			if r.Method == http.MethodGet {
				w.Write([]byte("gif"))
			}
		}, 2)

		var updates []int
		downloader.OnProgress = func(completed, total int) {
			assert.Equal(t, 3, total)
			updates = append(updates, completed)
		}

		downloader.DownloadAll(ctx, []string{assetURL("a"), assetURL("b"), assetURL("c")})
		assert.Equal(t, []int{2, 3}, updates)
	})
}
