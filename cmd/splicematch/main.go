// Package main provides the splicematch command-line tool.
package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"
)

// Exit codes
const (
	ExitSuccess = 0
	ExitError   = 1
	ExitUsage   = 2
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Global flags
	var showVersion bool
	flag.BoolVar(&showVersion, "version", false, "Show version information")

	flag.Parse()

	if showVersion {
		fmt.Printf("splicematch version %s (%s) built %s\n", version, commit, date)
		return ExitSuccess
	}

	initConfig()

	args := flag.Args()
	if len(args) < 1 {
		printUsage()
		return ExitUsage
	}

	switch args[0] {
	case "merge":
		return runMerge(args[1:])
	case "match":
		return runMatch(args[1:])
	case "plan":
		return runPlan(args[1:])
	case "config":
		return runConfig(args[1:])
	case "help":
		printUsage()
		return ExitSuccess
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command %q\n\n", args[0])
		printUsage()
		return ExitUsage
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `splicematch - alternative-splicing event merge and cross-reference tool

Usage:
  splicematch [options] <command> [arguments]

Commands:
  merge       Merge per-source event tables into one deduplicated catalog
  match       Cross-reference a catalog against a reference event database
  plan        Build a structure-analysis plan from match summaries
  config      Manage splicematch configuration
  help        Show this help message

Global Options:
  --version   Show version information

Examples:
  # Merge source tables (input order decides duplicate resolution)
  splicematch merge --out catalog.tsv rmats_events.tsv leafcutter_events.tsv

  # Match the catalog against a reference database
  splicematch match --reference ref_events.tsv --catalog catalog.tsv \
      --summary match_summary.tsv --stats match_stats.tsv

  # Plan structural follow-up for high-confidence matches
  splicematch plan --summary match_summary.tsv --isoforms isoforms.tsv

For more information on a command, use:
  splicematch <command> --help
`)
}

// newLogger builds the CLI logger. Components default to a no-op logger;
// the CLI injects this one.
func newLogger() *zap.Logger {
	logger, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
