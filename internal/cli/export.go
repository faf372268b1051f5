package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/discussion-export/internal/auth"
	"github.com/custodia-labs/discussion-export/internal/config"
	"github.com/custodia-labs/discussion-export/internal/export"
	"github.com/custodia-labs/discussion-export/internal/github"
	"github.com/custodia-labs/discussion-export/internal/logger"
)

var (
	exportOwner       string
	exportRepo        string
	exportNumber      int
	exportOutput      string
	exportAssetsDir   string
	exportSkipAssets  bool
	exportParallelism int
	exportToken       string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a discussion to a Markdown archive",
	Long: `Fetches the discussion with all comments and replies, downloads every
embedded asset, and writes a single Markdown archive.

The token is taken from --token, the GITHUB_TOKEN environment variable,
or the gh CLI, in that order.`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportOwner, "owner", "", "repository owner")
	exportCmd.Flags().StringVar(&exportRepo, "repo", "", "repository name")
	exportCmd.Flags().IntVar(&exportNumber, "number", 0, "discussion number")
	exportCmd.Flags().StringVar(&exportOutput, "output", "", "output file path (default: <number>-discussion.md)")
	exportCmd.Flags().StringVar(&exportAssetsDir, "assets-dir", "", "asset download directory (default: <number>-discussion-assets)")
	exportCmd.Flags().BoolVar(&exportSkipAssets, "skip-assets", false, "do not download assets; keep original URLs")
	exportCmd.Flags().IntVar(&exportParallelism, "parallelism", 0, "concurrent asset downloads")
	exportCmd.Flags().StringVar(&exportToken, "token", "", "GitHub token (overrides GITHUB_TOKEN and gh CLI)")

	_ = exportCmd.MarkFlagRequired("owner")
	_ = exportCmd.MarkFlagRequired("repo")
	_ = exportCmd.MarkFlagRequired("number")

	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	if strings.TrimSpace(exportOwner) == "" || strings.TrimSpace(exportRepo) == "" {
		return errors.New("owner and repo must not be empty")
	}
	if exportNumber <= 0 {
		return errors.New("number must be a positive discussion number")
	}

	opts := export.Options{
		Owner:       exportOwner,
		Repo:        exportRepo,
		Number:      exportNumber,
		OutputPath:  exportOutput,
		AssetsDir:   exportAssetsDir,
		SkipAssets:  exportSkipAssets,
		Parallelism: exportParallelism,
	}
	store := applyConfigDefaults(cmd, &opts)

	token, err := resolveToken()
	if err != nil {
		return describeAuthError(err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	client := github.NewClient(ctx, token)
	if store != nil {
		if seconds := store.GetInt(config.KeyHTTPTimeout, 0); seconds > 0 {
			client.HTTPClient().Timeout = time.Duration(seconds) * time.Second
		}
	}
	service := export.NewService(github.NewFetcher(client), client.HTTPClient())

	cmd.Printf("Exporting %s/%s#%d...\n", opts.Owner, opts.Repo, opts.Number)

	summary, err := service.Run(ctx, opts)
	if err != nil {
		return describeExportError(err)
	}

	printSummary(cmd, summary)
	return nil
}

// applyConfigDefaults fills options the user did not set on the command
// line from the config file and returns the store for later lookups. A
// broken config file is reported and ignored.
func applyConfigDefaults(cmd *cobra.Command, opts *export.Options) *config.Store {
	store, err := config.NewStore("")
	if err != nil {
		logger.Warn("ignoring config file: %v", err)
		return nil
	}

	flags := cmd.Flags()
	if !flags.Changed("assets-dir") {
		opts.AssetsDir = store.GetString(config.KeyAssetsDir, opts.AssetsDir)
	}
	if !flags.Changed("parallelism") {
		opts.Parallelism = store.GetInt(config.KeyParallelism, opts.Parallelism)
	}
	if !flags.Changed("skip-assets") {
		opts.SkipAssets = store.GetBool(config.KeySkipAssets, opts.SkipAssets)
	}
	if !flags.Changed("verbose") && store.GetBool(config.KeyVerbose, false) {
		logger.SetVerbose(true)
	}
	return store
}

// resolveToken picks the first available credential source: the --token
// flag, the GITHUB_TOKEN environment variable, then the gh CLI.
func resolveToken() (string, error) {
	if exportToken != "" {
		return exportToken, nil
	}
	if token := strings.TrimSpace(os.Getenv("GITHUB_TOKEN")); token != "" {
		logger.Debug("using token from GITHUB_TOKEN")
		return token, nil
	}
	logger.Debug("requesting token from gh CLI")
	return auth.Token(auth.ExecRunner{})
}

func describeAuthError(err error) error {
	switch {
	case errors.Is(err, auth.ErrCLINotFound):
		return errors.New("no GitHub token available: install the gh CLI (https://cli.github.com) or pass --token")
	case errors.Is(err, auth.ErrNotAuthenticated):
		return errors.New("no GitHub token available: run 'gh auth login' or pass --token")
	default:
		return fmt.Errorf("resolve GitHub token: %w", err)
	}
}

// describeExportError augments known failures with a recovery hint.
func describeExportError(err error) error {
	var rateLimitErr *github.RateLimitError
	switch {
	case errors.As(err, &rateLimitErr):
		return fmt.Errorf("%w\nWait until %s and retry",
			err, rateLimitErr.ResetAt.Local().Format("15:04:05"))
	case github.IsUnauthorized(err):
		return fmt.Errorf("%w\nThe token was rejected; run 'gh auth login' or pass a valid --token", err)
	case github.IsNotFound(err):
		return fmt.Errorf("%w\nCheck the owner, repository, and discussion number", err)
	default:
		return err
	}
}

func printSummary(cmd *cobra.Command, summary *export.Summary) {
	for _, failure := range summary.AssetFailures {
		cmd.PrintErrf("warning: asset %s not downloaded: %v\n", failure.URL, failure.Err)
	}

	if summary.AssetsTotal > 0 {
		cmd.Printf("Assets: %d downloaded, %d already present, %d failed\n",
			summary.AssetsDownloaded, summary.AssetsSkipped, len(summary.AssetFailures))
	}
	cmd.Printf("Exported %q to %s\n", summary.Title, summary.OutputPath)
}
