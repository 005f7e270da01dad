package output

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/splicelab/splicematch/internal/match"
)

// summaryColumns are the required match summary table columns.
var summaryColumns = []string{
	"event_id", "gene_id", "n_matches", "best_ref_id", "best_match_score", "type_consistent", "match_class",
}

// LoadSummaries reads back a match summary table written by SummaryWriter,
// so downstream commands can consume a prior matching run.
func LoadSummaries(path string) ([]match.Summary, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open match summary: %w", err)
	}
	defer file.Close()
	return ReadSummaries(file, filepath.Base(path))
}

// ReadSummaries reads a match summary table from r. name is used in
// error messages.
func ReadSummaries(r io.Reader, name string) ([]match.Summary, error) {
	scanner := bufio.NewScanner(r)

	cols := make(map[string]int)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		for i, col := range strings.Split(line, "\t") {
			cols[col] = i
		}
		break
	}
	for _, required := range summaryColumns {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("summary %s: required column %q not found in header", name, required)
		}
	}

	var summaries []match.Summary
	for scanner.Scan() {
		lineNumber++
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) < len(summaryColumns) {
			return nil, fmt.Errorf("summary %s:%d: expected %d columns, found %d", name, lineNumber, len(summaryColumns), len(fields))
		}

		nMatches, err := strconv.Atoi(fields[cols["n_matches"]])
		if err != nil {
			return nil, fmt.Errorf("summary %s:%d: invalid n_matches %q", name, lineNumber, fields[cols["n_matches"]])
		}

		s := match.Summary{
			EventID:        fields[cols["event_id"]],
			GeneID:         fields[cols["gene_id"]],
			NMatches:       nMatches,
			TypeConsistent: fields[cols["type_consistent"]] == "yes",
			Class:          match.Class(fields[cols["match_class"]]),
		}

		if ref := fields[cols["best_ref_id"]]; ref != "-" {
			s.BestRefID = ref
		}
		if scoreStr := fields[cols["best_match_score"]]; scoreStr != "-" {
			score, err := strconv.ParseFloat(scoreStr, 64)
			if err != nil {
				return nil, fmt.Errorf("summary %s:%d: invalid best_match_score %q", name, lineNumber, scoreStr)
			}
			s.BestScore = score
			s.HasBest = true
		}

		summaries = append(summaries, s)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read match summary: %w", err)
	}

	return summaries, nil
}
