package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"golang.org/x/sync/errgroup"

	"amazetimes/internal/domain/entity"
	"amazetimes/internal/infra/scraper"
	"amazetimes/internal/resilience/retry"
	"amazetimes/internal/usecase/ingest"

	"github.com/spf13/cobra"
)

// Feed check outcomes.
const (
	feedOK        = "OK"
	feedHTTPError = "HTTP_ERROR"
	feedParseErr  = "PARSE_ERROR"
	feedEmpty     = "EMPTY"
	feedTimeout   = "TIMEOUT"
)

// feedDiagnostic is the result of fetching one active source.
type feedDiagnostic struct {
	Name         string `json:"name"`
	URL          string `json:"url"`
	Status       string `json:"status"`
	HTTPCode     int    `json:"http_code,omitempty"`
	ItemCount    int    `json:"item_count"`
	Latest       string `json:"latest,omitempty"`
	Error        string `json:"error,omitempty"`
	ResponseTime int64  `json:"response_time_ms"`
}

func newFeedsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "feeds",
		Short: "Inspect the RSS sources crawled by the worker",
	}
	cmd.AddCommand(newFeedsListCmd(a), newFeedsCheckCmd(a))
	return cmd
}

func (a *app) activeSources(ctx context.Context) ([]*entity.FeedSource, error) {
	store, err := a.open(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = store.Close() }()
	return store.Sources.ListActive(ctx)
}

func newFeedsListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List active sources",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sources, err := a.activeSources(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tLANG\tLAST FETCHED\tURL")
			for _, s := range sources {
				last := "never"
				if s.LastFetchedAt != nil {
					last = s.LastFetchedAt.Format(time.RFC3339)
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", s.Name, s.Language, last, s.URL)
			}
			return tw.Flush()
		},
	}
}

func newFeedsCheckCmd(a *app) *cobra.Command {
	var (
		timeout  time.Duration
		parallel int
		asJSON   bool
	)
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Fetch every active source once and report its health",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			sources, err := a.activeSources(ctx)
			if err != nil {
				return err
			}

			// one attempt per source; the report is the point
			feeds := scraper.NewRSSFetcher(scraper.NewHTTPClient(timeout), a.logger).
				WithRetry(retry.Config{MaxAttempts: 1})

			results := make([]feedDiagnostic, len(sources))
			g, gctx := errgroup.WithContext(ctx)
			g.SetLimit(parallel)
			for i, s := range sources {
				g.Go(func() error {
					results[i] = diagnose(gctx, feeds, s)
					return nil
				})
			}
			_ = g.Wait()

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(results)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tSTATUS\tITEMS\tLATEST\tTIME\tERROR")
			for _, r := range results {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%dms\t%s\n",
					r.Name, r.Status, r.ItemCount, r.Latest, r.ResponseTime, r.Error)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 15*time.Second, "per-feed timeout")
	cmd.Flags().IntVar(&parallel, "parallel", 5, "feeds fetched at once")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}

func diagnose(ctx context.Context, feeds ingest.FeedFetcher, s *entity.FeedSource) feedDiagnostic {
	d := feedDiagnostic{Name: s.Name, URL: s.URL}
	start := time.Now()
	items, err := feeds.Fetch(ctx, s.URL)
	d.ResponseTime = time.Since(start).Milliseconds()

	var se *retry.StatusError
	switch {
	case errors.As(err, &se):
		d.Status, d.HTTPCode, d.Error = feedHTTPError, se.Code, err.Error()
	case errors.Is(err, context.DeadlineExceeded) || retry.IsRetryable(err):
		d.Status, d.Error = feedTimeout, err.Error()
	case err != nil:
		d.Status, d.Error = feedParseErr, err.Error()
	case len(items) == 0:
		d.Status = feedEmpty
	default:
		d.Status = feedOK
	}

	d.ItemCount = len(items)
	var latest time.Time
	for _, it := range items {
		if it.PublishedAt != nil && it.PublishedAt.After(latest) {
			latest = *it.PublishedAt
		}
	}
	if !latest.IsZero() {
		d.Latest = latest.UTC().Format(time.RFC3339)
	}
	return d
}
