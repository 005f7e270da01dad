package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/splicelab/splicematch/internal/duckdb"
	"github.com/splicelab/splicematch/internal/match"
	"github.com/splicelab/splicematch/internal/merge"
	"github.com/splicelab/splicematch/internal/output"
	"github.com/splicelab/splicematch/internal/refdb"
)

func runMatch(args []string) int {
	fs := flag.NewFlagSet("match", flag.ExitOnError)

	var (
		referencePath string
		catalogPath   string
		tolerance     int64
		detailedFile  string
		summaryFile   string
		statsFile     string
		workers       int
		dbPath        string
	)

	fs.StringVar(&referencePath, "reference", "", "Reference event database table (required)")
	fs.StringVar(&catalogPath, "catalog", "", "Merged catalog table (required)")
	fs.Int64Var(&tolerance, "tolerance", -1, "Per-endpoint coordinate tolerance in bp (default: config match.tolerance, 5)")
	fs.StringVar(&detailedFile, "detailed", "", "Write detailed per-candidate table to file")
	fs.StringVar(&summaryFile, "summary", "", "Write per-event match summary to file (default: stdout)")
	fs.StringVar(&statsFile, "stats", "", "Write match statistics table to file")
	fs.IntVar(&workers, "workers", 0, "Worker count (default: number of CPUs)")
	fs.StringVar(&dbPath, "db", "", "Also persist detailed matches to a DuckDB database")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Cross-reference a merged catalog against a reference event database.

Candidates require the same gene, identical (chromosome, strand, type),
and both endpoints within tolerance. Events without any candidate are
reported Unmatched, not errors.

Usage:
  splicematch match [options] --reference ref.tsv --catalog catalog.tsv

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  splicematch match --reference ref.tsv --catalog catalog.tsv
  splicematch match --reference ref.tsv --catalog catalog.tsv \
      --tolerance 10 --detailed matches.tsv --summary summary.tsv --stats stats.tsv
`)
	}

	if err := fs.Parse(args); err != nil {
		return ExitUsage
	}

	if referencePath == "" || catalogPath == "" {
		fmt.Fprintf(os.Stderr, "Error: --reference and --catalog are required\n\n")
		fs.Usage()
		return ExitUsage
	}

	if tolerance < 0 {
		tolerance = configTolerance()
	}

	logger := newLogger()
	defer logger.Sync()

	// Load everything eagerly before matching begins.
	ref, err := refdb.Load(referencePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading reference: %v\n", err)
		return ExitError
	}
	fmt.Fprintf(os.Stderr, "Loaded %d reference events across %d genes\n", ref.Count(), len(ref.Genes()))

	catalog, err := merge.ReadCatalog(catalogPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading catalog: %v\n", err)
		return ExitError
	}
	fmt.Fprintf(os.Stderr, "Loaded %d catalog events\n", catalog.Len())

	matcher := match.NewMatcher(ref, tolerance)
	matcher.SetLogger(logger)

	results, err := matcher.MatchAll(catalog, workers)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitError
	}

	var allCandidates []match.Candidate
	summaries := make([]match.Summary, 0, len(results))
	for _, r := range results {
		allCandidates = append(allCandidates, r.Candidates...)
		summaries = append(summaries, r.Summary)
	}

	if detailedFile != "" {
		if err := writeToFile(detailedFile, func(f *os.File) error {
			mw := output.NewMatchWriter(f)
			if err := mw.WriteHeader(); err != nil {
				return err
			}
			for _, c := range allCandidates {
				if err := mw.Write(c); err != nil {
					return err
				}
			}
			return mw.Flush()
		}); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing detailed matches: %v\n", err)
			return ExitError
		}
	}

	out := os.Stdout
	if summaryFile != "" {
		out, err = os.Create(summaryFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating summary file: %v\n", err)
			return ExitError
		}
		defer out.Close()
	}

	sw := output.NewSummaryWriter(out)
	if err := sw.WriteHeader(); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing summary header: %v\n", err)
		return ExitError
	}
	for _, s := range summaries {
		if err := sw.Write(s); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing summary: %v\n", err)
			return ExitError
		}
	}
	if err := sw.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "Error flushing summary: %v\n", err)
		return ExitError
	}

	stats := match.ComputeStats(summaries)

	if statsFile != "" {
		if err := writeToFile(statsFile, func(f *os.File) error {
			return output.WriteStats(f, stats)
		}); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing statistics: %v\n", err)
			return ExitError
		}
	}

	if dbPath != "" {
		store, err := duckdb.Open(dbPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
			return ExitError
		}
		defer store.Close()

		if err := store.WriteMatchResults(allCandidates); err != nil {
			fmt.Fprintf(os.Stderr, "Error persisting matches: %v\n", err)
			return ExitError
		}
	}

	fmt.Fprintf(os.Stderr, "Matched %d/%d events (high %d, medium %d, low %d, unmatched %d)\n",
		stats.Matched, stats.Total, stats.High, stats.Medium, stats.Low, stats.Unmatched)

	return ExitSuccess
}
