package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/seekerlab/deepcrawl/internal/config"
	"github.com/seekerlab/deepcrawl/internal/crawler"
	"github.com/seekerlab/deepcrawl/internal/fetcher"
	"github.com/seekerlab/deepcrawl/internal/output"
	"github.com/seekerlab/deepcrawl/internal/relevance"
	"github.com/seekerlab/deepcrawl/internal/search"
	"github.com/seekerlab/deepcrawl/pkg/crawl"
)

func newResearchCmd(cfgPath *string, debug *bool) *cobra.Command {
	var (
		depth       int
		maxPages    int
		concurrency int
		noAI        bool
		outDir      string
	)

	cmd := &cobra.Command{
		Use:   "research <query>",
		Short: "Crawl the web for a research query and write a report",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(*debug)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("depth") {
				cfg.Crawl.MaxDepth = depth
			}
			if cmd.Flags().Changed("max-pages") {
				cfg.Crawl.MaxPagesPerDepth = maxPages
			}
			if cmd.Flags().Changed("concurrency") {
				cfg.Crawl.MaxConcurrentFetches = concurrency
			}
			if cmd.Flags().Changed("out") {
				cfg.Output.Dir = outDir
			}
			if noAI {
				cfg.LLM.Provider = "none"
			}

			return runResearch(cmd.Context(), logger, cfg, strings.Join(args, " "))
		},
	}

	cmd.Flags().IntVar(&depth, "depth", 2, "maximum crawl depth")
	cmd.Flags().IntVar(&maxPages, "max-pages", 10, "maximum pages fetched per depth level")
	cmd.Flags().IntVar(&concurrency, "concurrency", 5, "maximum concurrent fetches")
	cmd.Flags().BoolVar(&noAI, "no-ai", false, "disable all AI assistance")
	cmd.Flags().StringVar(&outDir, "out", ".", "report output directory")
	return cmd
}

func runResearch(ctx context.Context, logger *zap.Logger, cfg config.Config, query string) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fetchClient, err := fetcher.NewClient(fetcher.Config{
		PerPageTimeout: time.Duration(cfg.Crawl.PerPageTimeoutMs) * time.Millisecond,
		UserAgent:      cfg.Browser.UserAgent,
		Headless:       cfg.Browser.Headless,
	}, logger.Named("fetcher"))
	if err != nil {
		return fmt.Errorf("init fetcher: %w", err)
	}
	defer fetchClient.Close()

	filter, err := buildFilter(ctx, cfg.LLM, logger)
	if err != nil {
		return err
	}

	opts := crawler.DefaultOptions()
	opts.Budget = crawl.Budget{
		MaxDepth:               cfg.Crawl.MaxDepth,
		MaxPagesPerDepth:       cfg.Crawl.MaxPagesPerDepth,
		MaxConcurrentFetches:   cfg.Crawl.MaxConcurrentFetches,
		PerPageTimeout:         time.Duration(cfg.Crawl.PerPageTimeoutMs) * time.Millisecond,
		LinkRelevanceThreshold: cfg.Crawl.LinkRelevanceThreshold,
	}
	opts.MinContentLen = cfg.Crawl.MinContentLen
	opts.QualityCriterion = cfg.Crawl.QualityCriterion

	orch := crawler.New(fetchClient, filter, opts, logger.Named("crawler"))

	done := make(chan struct{})
	go func() {
		defer close(done)
		for ev := range orch.Events() {
			logEvent(logger, ev)
		}
	}()

	searcher := search.NewSearxNG(cfg.Search.BaseURL)
	results, err := searcher.Search(ctx, query, cfg.Search.MaxResults)
	if err != nil {
		return fmt.Errorf("seed search: %w", err)
	}
	urls := make([]string, 0, len(results))
	for _, r := range results {
		urls = append(urls, r.URL)
	}
	logger.Info("seeding crawl", zap.String("query", query), zap.Int("results", len(urls)))

	started := time.Now()
	seeds := orch.Seed(ctx, urls)
	pages, err := orch.Run(ctx, query, seeds)
	<-done
	if errors.Is(err, crawler.ErrNoSeeds) {
		return fmt.Errorf("no usable seed pages for %q", query)
	}
	if err != nil {
		return err
	}

	stats := orch.Stats()
	report := output.NewReport(query, pages, stats, started)
	if err := writeReport(report, cfg.Output); err != nil {
		return err
	}

	fmt.Printf("Collected %d pages (%d fetched, %d errors, %d skipped) in %s\n",
		len(pages), stats.PagesFetched, stats.PagesErrored, stats.PagesSkipped,
		time.Since(started).Round(time.Millisecond))
	return nil
}

// buildFilter picks the relevance backend. A nil filter means the crawl
// runs on budget alone.
func buildFilter(ctx context.Context, cfg config.LLMConfig, logger *zap.Logger) (crawl.RelevanceFilter, error) {
	switch cfg.Provider {
	case "", "none":
		logger.Info("crawling without AI assistance")
		return nil, nil
	case "gemini":
		llm, err := relevance.NewGeminiCompleter(ctx, cfg.APIKey, cfg.Model)
		if err != nil {
			return nil, fmt.Errorf("init gemini: %w", err)
		}
		return relevance.NewFilter(llm, logger.Named("relevance")), nil
	case "openai":
		llm, err := relevance.NewOpenAICompleter(cfg.APIKey, cfg.BaseURL, cfg.Model)
		if err != nil {
			return nil, fmt.Errorf("init openai: %w", err)
		}
		return relevance.NewFilter(llm, logger.Named("relevance")), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}

func writeReport(report *output.Report, cfg config.OutputConfig) error {
	format := cfg.Format
	if format == "" {
		format = "markdown"
	}

	if format == "markdown" || format == "both" {
		path := filepath.Join(cfg.Dir, "report-"+report.SessionID+".md")
		if err := output.NewMarkdownWriter(path).Write(report); err != nil {
			return fmt.Errorf("write markdown report: %w", err)
		}
		fmt.Println("Report:", path)
	}
	if format == "json" || format == "both" {
		path := filepath.Join(cfg.Dir, "report-"+report.SessionID+".json")
		if err := output.NewJSONWriter(path).Write(report); err != nil {
			return fmt.Errorf("write json report: %w", err)
		}
		fmt.Println("Session dump:", path)
	}
	return nil
}

func logEvent(logger *zap.Logger, ev crawl.CrawlEvent) {
	switch ev.Type {
	case crawl.EventPageFetched:
		logger.Info("page collected",
			zap.String("url", ev.URL), zap.Int("depth", ev.Depth))
	case crawl.EventPageError:
		class := ""
		if ev.Page != nil {
			class = ev.Page.Error
		}
		logger.Debug("page failed",
			zap.String("url", ev.URL), zap.String("class", class))
	case crawl.EventPageSkipped:
		logger.Debug("page skipped", zap.String("url", ev.URL))
	case crawl.EventDepthDone:
		logger.Info("depth complete", zap.Int("depth", ev.Depth))
	}
}
