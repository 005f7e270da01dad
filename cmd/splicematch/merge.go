package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/splicelab/splicematch/internal/duckdb"
	"github.com/splicelab/splicematch/internal/merge"
	"github.com/splicelab/splicematch/internal/output"
)

func runMerge(args []string) int {
	fs := flag.NewFlagSet("merge", flag.ExitOnError)

	var (
		outputFile  string
		typeSummary string
		geneSummary string
		onBadRecord string
		dbPath      string
	)

	fs.StringVar(&outputFile, "o", "", "Catalog output file (default: stdout)")
	fs.StringVar(&outputFile, "out", "", "Catalog output file (default: stdout)")
	fs.StringVar(&typeSummary, "type-summary", "", "Write per-event-type summary table to file")
	fs.StringVar(&geneSummary, "gene-summary", "", "Write per-gene coverage table to file")
	fs.StringVar(&onBadRecord, "on-bad-record", "skip", "Malformed record policy: skip or abort")
	fs.StringVar(&dbPath, "db", "", "Also persist the catalog to a DuckDB database")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Merge per-source event tables into one deduplicated catalog.

Sources are read in the order given; duplicate event_ids keep the first
occurrence encountered. A source missing a required column aborts the
whole merge.

Usage:
  splicematch merge [options] <source-table> [<source-table> ...]

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  splicematch merge --out catalog.tsv rmats_events.tsv leafcutter_events.tsv
  splicematch merge --on-bad-record abort --db catalog.duckdb *.tsv
`)
	}

	if err := fs.Parse(args); err != nil {
		return ExitUsage
	}

	if fs.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Error: at least one source table argument required\n\n")
		fs.Usage()
		return ExitUsage
	}

	var policy merge.BadRecordPolicy
	switch onBadRecord {
	case "skip":
		policy = merge.SkipBadRecords
	case "abort":
		policy = merge.AbortOnBadRecord
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown bad-record policy %q (use skip or abort)\n", onBadRecord)
		return ExitUsage
	}

	logger := newLogger()
	defer logger.Sync()

	merger := merge.NewMerger(policy)
	merger.SetLogger(logger)

	catalog, report, err := merger.Merge(fs.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitError
	}

	out := os.Stdout
	if outputFile != "" {
		out, err = os.Create(outputFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating output file: %v\n", err)
			return ExitError
		}
		defer out.Close()
	}

	if err := output.NewCatalogWriter(out).WriteAll(catalog); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing catalog: %v\n", err)
		return ExitError
	}

	if typeSummary != "" {
		if err := writeToFile(typeSummary, func(f *os.File) error {
			return output.WriteTypeSummary(f, catalog.TypeSummary())
		}); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing type summary: %v\n", err)
			return ExitError
		}
	}

	if geneSummary != "" {
		if err := writeToFile(geneSummary, func(f *os.File) error {
			return output.WriteGeneCoverage(f, catalog.GeneCoverage())
		}); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing gene coverage: %v\n", err)
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

		if err := store.WriteEvents(catalog.Events()); err != nil {
			fmt.Fprintf(os.Stderr, "Error persisting catalog: %v\n", err)
			return ExitError
		}
	}

	fmt.Fprintf(os.Stderr, "Merged %d sources: %d events kept, %d duplicates dropped, %d malformed skipped\n",
		report.SourcesRead, catalog.Len(), report.DuplicatesDropped, report.Malformed)

	return ExitSuccess
}

// writeToFile creates path and runs write against it.
func writeToFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
