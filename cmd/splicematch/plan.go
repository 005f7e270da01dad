package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/splicelab/splicematch/internal/output"
	"github.com/splicelab/splicematch/internal/structure"
)

func runPlan(args []string) int {
	fs := flag.NewFlagSet("plan", flag.ExitOnError)

	var (
		summaryFile  string
		isoformsFile string
		outputFile   string
	)

	fs.StringVar(&summaryFile, "summary", "", "Match summary table from a prior match run (required)")
	fs.StringVar(&isoformsFile, "isoforms", "", "Isoform structural annotation table (required)")
	fs.StringVar(&outputFile, "o", "", "Plan output file (default: stdout)")
	fs.StringVar(&outputFile, "out", "", "Plan output file (default: stdout)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Build a protein structure-analysis plan for high-confidence matches.

Joins match summaries to isoform structural annotations; only isoforms
whose gene carries at least one High_Confidence event are planned.

Usage:
  splicematch plan [options] --summary match_summary.tsv --isoforms isoforms.tsv

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  splicematch plan --summary match_summary.tsv --isoforms isoforms.tsv --out plan.tsv
`)
	}

	if err := fs.Parse(args); err != nil {
		return ExitUsage
	}

	if summaryFile == "" || isoformsFile == "" {
		fmt.Fprintf(os.Stderr, "Error: --summary and --isoforms are required\n\n")
		fs.Usage()
		return ExitUsage
	}

	summaries, err := output.LoadSummaries(summaryFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading match summary: %v\n", err)
		return ExitError
	}

	isoforms, err := structure.LoadIsoforms(isoformsFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading isoforms: %v\n", err)
		return ExitError
	}

	plan := structure.BuildPlan(isoforms, summaries)

	out := os.Stdout
	if outputFile != "" {
		out, err = os.Create(outputFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating output file: %v\n", err)
			return ExitError
		}
		defer out.Close()
	}

	if err := structure.WritePlan(out, plan); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing plan: %v\n", err)
		return ExitError
	}

	fmt.Fprintf(os.Stderr, "Planned %d isoforms from %d summaries\n", len(plan), len(summaries))

	return ExitSuccess
}
