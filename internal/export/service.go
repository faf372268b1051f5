package export

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/custodia-labs/discussion-export/internal/assets"
	"github.com/custodia-labs/discussion-export/internal/github"
	"github.com/custodia-labs/discussion-export/internal/logger"
	"github.com/custodia-labs/discussion-export/internal/transform"
)

// Options configures a single export run.
type Options struct {
	Owner  string
	Repo   string
	Number int

	// OutputPath is the destination Markdown file. Empty selects
	// "<number>-discussion.md" in the working directory.
	OutputPath string

	// AssetsDir is the asset download directory. Empty selects
	// "<number>-discussion-assets" next to the output file.
	AssetsDir string

	// SkipAssets leaves all asset URLs untouched and downloads nothing.
	SkipAssets bool

	// Parallelism bounds concurrent asset downloads.
	Parallelism int
}

// AssetFailure records one asset that could not be downloaded. The rest of
// the export proceeds; the original URL stays in the archive text.
type AssetFailure struct {
	URL string
	Err error
}

// Summary reports what an export run produced.
type Summary struct {
	OutputPath string
	Title      string

	AssetsTotal      int
	AssetsDownloaded int
	AssetsSkipped    int
	AssetFailures    []AssetFailure
}

// Service drives the export pipeline: fetch the discussion, download its
// assets, rewrite references, assemble the archive, and write it out.
type Service struct {
	fetcher *github.Fetcher
	http    *http.Client
}

// NewService creates a service. The HTTP client carries the bearer token
// and is shared between GraphQL requests and asset downloads.
func NewService(fetcher *github.Fetcher, httpClient *http.Client) *Service {
	return &Service{fetcher: fetcher, http: httpClient}
}

// Run executes a full export. Fetch failures abort the run; individual
// asset failures are collected in the summary and never abort it.
func (s *Service) Run(ctx context.Context, opts Options) (*Summary, error) {
	outputPath := opts.OutputPath
	if outputPath == "" {
		outputPath = fmt.Sprintf("%d-discussion.md", opts.Number)
	}
	assetsDir := opts.AssetsDir
	if assetsDir == "" {
		assetsDir = filepath.Join(filepath.Dir(outputPath),
			fmt.Sprintf("%d-discussion-assets", opts.Number))
	}

	discussion, err := s.fetcher.FetchDiscussion(ctx, opts.Owner, opts.Repo, opts.Number)
	if err != nil {
		return nil, fmt.Errorf("fetch discussion %s/%s#%d: %w",
			opts.Owner, opts.Repo, opts.Number, err)
	}

	summary := &Summary{OutputPath: outputPath, Title: discussion.Title}

	assetMap := map[string]string{}
	if !opts.SkipAssets {
		if err := s.downloadAssets(ctx, discussion, assetsDir, outputPath, opts.Parallelism, assetMap, summary); err != nil {
			return nil, err
		}
	}

	rewriteBodies(discussion, assetMap)

	markdown := FormatDiscussion(discussion, opts.Owner, opts.Repo)
	if dir := filepath.Dir(outputPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create output directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(outputPath, []byte(markdown), 0o644); err != nil {
		return nil, fmt.Errorf("write %s: %w", outputPath, err)
	}

	return summary, nil
}

// downloadAssets finds every asset referenced anywhere in the discussion,
// downloads each unique one, and fills assetMap with identifier-to-path
// entries for the successful downloads. Paths are relative to the output
// file and use forward slashes.
func (s *Service) downloadAssets(ctx context.Context, d *github.Discussion, assetsDir, outputPath string, parallelism int, assetMap map[string]string, summary *Summary) error {
	urls := assets.Dedupe(collectAssetURLs(d))
	summary.AssetsTotal = len(urls)
	if len(urls) == 0 {
		return nil
	}

	logger.Info("found %d unique assets to download", len(urls))

	progress := NewProgress(len(urls), "Downloading assets")
	progress.Start()

	downloader := assets.NewDownloader(s.http, assetsDir, parallelism)
	downloader.OnProgress = func(completed, _ int) { progress.Set(completed) }
	results := downloader.DownloadAll(ctx, urls)
	progress.Complete()

	base := relativeAssetBase(assetsDir, outputPath)
	for _, result := range results {
		switch {
		case result.Err != nil:
			summary.AssetFailures = append(summary.AssetFailures,
				AssetFailure{URL: result.URL, Err: result.Err})
			continue
		case result.Skipped:
			summary.AssetsSkipped++
		default:
			summary.AssetsDownloaded++
		}
		assetMap[result.ID] = filepath.ToSlash(filepath.Join(base, result.Filename))
	}

	return nil
}

// relativeAssetBase computes the path prefix embedded in rewritten
// references: the assets directory relative to the output file's
// directory, falling back to the directory as given.
func relativeAssetBase(assetsDir, outputPath string) string {
	rel, err := filepath.Rel(filepath.Dir(outputPath), assetsDir)
	if err != nil {
		return assetsDir
	}
	return rel
}

// collectAssetURLs walks the discussion body, every comment, and every
// reply in order and returns all detected asset URLs.
func collectAssetURLs(d *github.Discussion) []string {
	urls := assets.Detect(d.Body)
	for _, comment := range d.Comments {
		if comment == nil {
			continue
		}
		urls = append(urls, assets.Detect(comment.Body)...)
		for _, reply := range comment.Replies {
			if reply == nil {
				continue
			}
			urls = append(urls, assets.Detect(reply.Body)...)
		}
	}
	return urls
}

// rewriteBodies redirects asset references in every body to their local
// paths. With an empty map every body passes through unchanged.
func rewriteBodies(d *github.Discussion, assetMap map[string]string) {
	if len(assetMap) == 0 {
		return
	}
	d.Body = transform.Rewrite(d.Body, assetMap)
	for _, comment := range d.Comments {
		if comment == nil {
			continue
		}
		comment.Body = transform.Rewrite(comment.Body, assetMap)
		for _, reply := range comment.Replies {
			if reply == nil {
				continue
			}
			reply.Body = transform.Rewrite(reply.Body, assetMap)
		}
	}
}
