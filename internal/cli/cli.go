// Package cli implements the command-line interface for civic-meetings.
//
// The cli package provides the Cobra-based CLI with two subcommands: scrape,
// which extracts structured meeting records from government websites, and
// resolve, which turns webpage URLs into downloadable media/document URLs.
// It coordinates the engine, resolver, and storage packages.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/civic-meetings/internal/config"
	"github.com/pfrederiksen/civic-meetings/internal/engine"
	"github.com/pfrederiksen/civic-meetings/internal/logger"
	"github.com/pfrederiksen/civic-meetings/internal/meeting"
	"github.com/pfrederiksen/civic-meetings/internal/resolver"
	"github.com/pfrederiksen/civic-meetings/internal/sites"
	"github.com/pfrederiksen/civic-meetings/internal/storage"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

var (
	flagInput   string
	flagOutput  string
	flagConfig  string
	flagVerbose bool
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "civic-meetings",
		Short: "Extract structured meeting records from government websites",
		Long: `A CLI tool to extract meeting records (date, title, agenda, minutes,
and video links) from heterogeneous government websites, and to resolve
meeting page URLs into directly downloadable media and document URLs.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&flagInput, "input", "", "Path to JSON input file (required)")
	cmd.PersistentFlags().StringVar(&flagOutput, "output", "", "Path to JSON output file (required)")
	cmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to YAML config file (optional)")
	cmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable debug logging")

	cmd.MarkPersistentFlagRequired("input")
	cmd.MarkPersistentFlagRequired("output")

	cmd.AddCommand(newScrapeCmd())
	cmd.AddCommand(newResolveCmd())

	return cmd
}

func newScrapeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scrape",
		Short: "Scrape meeting records from a list of base URLs",
		RunE:  runScrape,
	}
}

func newResolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve",
		Short: "Resolve webpage URLs into downloadable media/document URLs",
		RunE:  runResolve,
	}
}

// setup loads configuration, configures logging, and opens the output
// writer. Any failure here is fatal: an unwritable output path must stop
// the run before scraping starts, not after.
func setup() (config.Config, *storage.Writer, error) {
	level := logger.LevelInfo
	if flagVerbose {
		level = logger.LevelDebug
	}
	logger.SetDefault(logger.New(level, os.Stderr))

	cfg, err := config.Load(flagConfig)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("loading config: %w", err)
	}

	writer, err := storage.NewWriter(flagOutput)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("opening output: %w", err)
	}
	return cfg, writer, nil
}

func runScrape(cmd *cobra.Command, args []string) error {
	cfg, writer, err := setup()
	if err != nil {
		return err
	}

	var req engine.Request
	if err := readJSONInput(flagInput, &req); err != nil {
		return err
	}
	if err := req.Validate(); err != nil {
		return fmt.Errorf("invalid request: %w", err)
	}

	fetcher := engine.NewHTTPFetcher(cfg.Engine.FetchTimeout)
	eng := engine.New(cfg, fetcher, sites.Default())

	// Persist after every domain so an interrupted run keeps what it
	// finished.
	var done []meeting.DomainResult
	onComplete := func(result meeting.DomainResult, index, total int) {
		done = append(done, result)
		if err := writer.WriteResults(done); err != nil {
			logger.Error("saving results", logger.Fields{"path": writer.Path()}, err)
		}
		logger.Debug("results saved", logger.Fields{
			"path":     writer.Path(),
			"progress": fmt.Sprintf("%d/%d", index, total),
		})
	}

	results, err := eng.ScrapeMeetings(context.Background(), req, onComplete)
	if err != nil {
		return err
	}
	if err := writer.WriteResults(results); err != nil {
		return fmt.Errorf("saving results: %w", err)
	}

	total := 0
	for _, r := range results {
		total += len(r.Medias)
	}
	logger.Info("scrape finished", logger.Fields{
		"domains":  len(results),
		"records":  total,
		"output":   writer.Path(),
		"counters": logger.CounterSnapshot(),
	})
	return nil
}

func runResolve(cmd *cobra.Command, args []string) error {
	cfg, writer, err := setup()
	if err != nil {
		return err
	}

	var items []resolver.Item
	if err := readJSONInput(flagInput, &items); err != nil {
		return err
	}

	verifier := resolver.NewHeadVerifier(cfg.Resolver.VerifyTimeout)
	res := resolver.New(cfg.Resolver, verifier)

	urls := res.ResolveAll(context.Background(), items)
	if err := writer.WriteURLs(urls); err != nil {
		return fmt.Errorf("saving results: %w", err)
	}

	logger.Info("resolve finished", logger.Fields{
		"urls":   len(urls),
		"output": writer.Path(),
	})
	return nil
}

func readJSONInput(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parsing input %s: %w", path, err)
	}
	return nil
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitError
	}
	return ExitSuccess
}
