package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"job-links/internal/app"
	"job-links/internal/config"
	"job-links/internal/fetcher"
	"job-links/internal/observability"
	"job-links/internal/storage/files"
)

const defaultConfigPath = "configs/config.yaml"

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "job-links [config.yaml]",
		Short: "Collect new job posting links from recruitment sites",
		Long: `job-links crawls the search pages of the configured recruitment sites,
keeps the job links that mention one of the keywords and records the ones
not seen on earlier runs in a dated file and in a per-site master file.`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath := defaultConfigPath
			if len(args) > 0 {
				configPath = args[0]
			}
			return run(cmd.Context(), configPath, cmd.OutOrStdout())
		},
	}
}

func run(ctx context.Context, configPath string, out io.Writer) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return err
	}

	logger, err := observability.NewLogger(cfg.Observability)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := app.GracefulShutdown(ctx, logger)
	defer cancel()

	pageFetcher, closeFetcher, err := newPageFetcher(cfg, logger)
	if err != nil {
		return err
	}
	defer closeFetcher()

	store := files.NewRepository(cfg.Output.Dir, cfg.Output.Basename, logger)
	orch := app.NewOrchestrator(cfg, logger, pageFetcher, store)

	results, runErr := orch.Run(ctx)
	for _, res := range results {
		fmt.Fprintf(out, "Found %d job links on %s (%d new):\n", len(res.Links), res.Site, len(res.New))
		for _, link := range res.Links {
			fmt.Fprintln(out, link)
		}
	}
	if runErr != nil {
		logger.Error("Run failed", "error", runErr.Error())
		return runErr
	}
	return nil
}

func newPageFetcher(cfg *config.Config, logger *observability.Logger) (app.PageFetcher, func(), error) {
	if !cfg.Rod.Enabled {
		return fetcher.NewFetcher(cfg, logger), func() {}, nil
	}

	bf, err := fetcher.NewBrowserFetcher(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return bf, func() {
		if err := bf.Close(); err != nil {
			logger.Warn("Failed to close browser", "error", err.Error())
		}
	}, nil
}
