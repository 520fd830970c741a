package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"jobscout-engine/internal/aggregate"
	"jobscout-engine/internal/domain"
	"jobscout-engine/internal/search"
	"jobscout-engine/internal/store"
)

type searchFlags struct {
	query         string
	queries       []string
	random        bool
	category      string
	comprehensive bool
	maxPerQuery   int

	location  string
	maxPages  int
	seniority string
	sources   []string
	strict    bool

	brief      bool
	countsOnly bool
	save       bool
}

func newSearchCmd() *cobra.Command {
	var f searchFlags

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Run one search across the enabled job sources",
		Example: `  jobscout search --query "LLM engineer"
  jobscout search --category rag-vector --brief
  jobscout search --random --counts-only
  jobscout search --queries "RAG engineer","NLP engineer" --save`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd.Context(), f)
		},
	}

	cmd.Flags().StringVarP(&f.query, "query", "q", "", "single query string")
	cmd.Flags().StringSliceVar(&f.queries, "queries", nil, "explicit list of queries, merged into one result")
	cmd.Flags().BoolVar(&f.random, "random", false, "pick one random query from the configured categories")
	cmd.Flags().StringVarP(&f.category, "category", "c", "", "run every query of a named category")
	cmd.Flags().BoolVar(&f.comprehensive, "comprehensive", false, "sweep every category")
	cmd.Flags().IntVar(&f.maxPerQuery, "max-per-query", 0, "cap ranked listings kept per query, or per category with --comprehensive (0 = no cap)")
	cmd.Flags().StringVarP(&f.location, "location", "l", "", "location override")
	cmd.Flags().IntVar(&f.maxPages, "max-pages", 0, "pages per source override")
	cmd.Flags().StringVar(&f.seniority, "seniority", "", "seniority hint folded into each query (e.g. senior, staff)")
	cmd.Flags().StringSliceVar(&f.sources, "sources", nil, "restrict to these sources")
	cmd.Flags().BoolVar(&f.strict, "strict", false, "use the stricter per-source quality thresholds")
	cmd.Flags().BoolVar(&f.brief, "brief", false, "one line per listing")
	cmd.Flags().BoolVar(&f.countsOnly, "counts-only", false, "print only the summary counts")
	cmd.Flags().BoolVar(&f.save, "save", false, "persist results to the local database")

	return cmd
}

func runSearch(ctx context.Context, f searchFlags) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	lock, err := lockDataDir(cfg.App.DataDir)
	if err != nil {
		return err
	}
	defer func() { _ = lock.Unlock() }()

	opts, cleanup, err := scrapeOptions(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	svc, err := search.New(cfg, opts)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := resolveAndRun(ctx, svc, f)
	if err != nil {
		return err
	}

	printResult(res, f)

	if f.save {
		db, err := store.Open(filepath.Join(cfg.App.DataDir, "jobscout.db"))
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()
		saved, err := db.SaveResult(ctx, res)
		if err != nil {
			return err
		}
		fmt.Printf("saved %d listings to %s\n", saved, filepath.Join(cfg.App.DataDir, "jobscout.db"))
	}

	// Blocked or failed sources are reported above but do not fail the
	// command; a completed run exits zero.
	return nil
}

func resolveAndRun(ctx context.Context, svc *search.Service, f searchFlags) (domain.AggregatedResult, error) {
	base := domain.SearchQuery{
		Location:  f.location,
		MaxPages:  f.maxPages,
		Seniority: f.seniority,
		Sources:   f.sources,
		Strict:    f.strict,
	}

	switch {
	case f.comprehensive:
		return svc.SearchComprehensive(ctx, f.maxPerQuery)
	case f.category != "":
		return svc.SearchCategory(ctx, f.category, f.maxPerQuery)
	case len(f.queries) > 0:
		var results []domain.AggregatedResult
		for _, text := range f.queries {
			q := base
			q.Text = text
			res, err := svc.Search(ctx, q)
			if err != nil {
				return domain.AggregatedResult{}, err
			}
			results = append(results, res)
		}
		return combineResults(base, results), nil
	case f.random:
		q := base
		q.Text = svc.RandomQuery()
		if q.Text == "" {
			return domain.AggregatedResult{}, errors.New("no categories configured to pick a random query from")
		}
		fmt.Printf("random query: %q\n", q.Text)
		return svc.Search(ctx, q)
	case f.query != "":
		q := base
		q.Text = f.query
		return svc.Search(ctx, q)
	default:
		return domain.AggregatedResult{}, errors.New("nothing to search: pass --query, --queries, --category, --comprehensive, or --random")
	}
}

func combineResults(q domain.SearchQuery, results []domain.AggregatedResult) domain.AggregatedResult {
	if len(results) == 1 {
		return results[0]
	}
	var outcomes []domain.ScrapeOutcome
	var runID string
	for _, res := range results {
		if runID == "" {
			runID = res.RunID
		}
		outcomes = append(outcomes, domain.ScrapeOutcome{
			Source:   "run:" + res.RunID,
			Listings: res.Listings,
			RawCount: res.RawCount,
			Status:   domain.StatusOK,
		})
	}
	merged := aggregate.Merge(runID, q, outcomes, 0)
	merged.Outcomes = nil
	for _, res := range results {
		merged.Outcomes = append(merged.Outcomes, res.Outcomes...)
		merged.Duration += res.Duration
	}
	return merged
}

func printResult(res domain.AggregatedResult, f searchFlags) {
	fmt.Printf("found %d listings (raw %d, filtered out %d) in %s\n",
		len(res.Listings), res.RawCount, res.FilteredOut, res.Duration.Round(10*time.Millisecond))
	for _, o := range res.Outcomes {
		line := fmt.Sprintf("  %-14s %-8s accepted=%d raw=%d", o.Source, o.Status, len(o.Listings), o.RawCount)
		if o.Err != "" {
			line += " (" + o.Err + ")"
		}
		fmt.Println(line)
	}
	if f.countsOnly {
		return
	}

	fmt.Println()
	for i, l := range res.Listings {
		if f.brief {
			fmt.Printf("%3d. [%.2f] %s @ %s (%s) %s\n", i+1, l.Quality, l.Title, l.Company, l.Source, l.URL)
			continue
		}
		fmt.Printf("%3d. %s\n", i+1, l.Title)
		fmt.Printf("     company:  %s\n", l.Company)
		if l.Location != "" {
			fmt.Printf("     location: %s (%s)\n", l.Location, l.RemoteType)
		}
		if l.HasSalary() {
			fmt.Printf("     salary:   %s\n", formatSalary(l.SalaryMin, l.SalaryMax))
		}
		if len(l.Skills) > 0 {
			fmt.Printf("     skills:   %s\n", strings.Join(l.Skills, ", "))
		}
		sources := l.Source
		if len(l.AlternateSources) > 0 {
			sources += " (also " + strings.Join(l.AlternateSources, ", ") + ")"
		}
		fmt.Printf("     score:    %.2f via %s\n", l.Quality, sources)
		fmt.Printf("     url:      %s\n\n", l.URL)
	}
}

func formatSalary(min, max *int) string {
	switch {
	case min != nil && max != nil && *min != *max:
		return fmt.Sprintf("$%d - $%d", *min, *max)
	case min != nil:
		return fmt.Sprintf("$%d", *min)
	case max != nil:
		return fmt.Sprintf("$%d", *max)
	}
	return ""
}
