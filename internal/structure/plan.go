// Package structure builds the protein structure-analysis plan for
// high-confidence matched events, joining match summaries to isoform
// structural annotations.
package structure

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/splicelab/splicematch/internal/match"
)

// Analysis status values for a planned isoform.
const (
	StatusReady   = "ready_for_structural_comparison"
	StatusPending = "pending_structure_prediction"
)

// Isoform is one row of the isoform annotation table: a protein with a
// splicing-derived structural change to analyze.
type Isoform struct {
	GeneID       string
	Protein      string
	PDBID        string // empty when no experimental structure exists
	MutationType string // e.g. "exon_skip_3", "intron_retention"
	Domain       string // affected domain or motif
}

// PlanEntry is one row of the structure-analysis plan.
type PlanEntry struct {
	Protein        string
	GeneID         string
	PDBID          string
	MutationType   string
	DomainAffected string
	HighConfEvents int
	Status         string
}

// BuildPlan joins isoform annotations to match summaries. Only isoforms
// whose gene carries at least one High_Confidence event are planned.
// Isoforms with a known PDB structure are ready for comparison; the rest
// wait on structure prediction. Plan order follows the isoform table.
func BuildPlan(isoforms []Isoform, summaries []match.Summary) []PlanEntry {
	highConf := make(map[string]int)
	for _, s := range summaries {
		if s.Class == match.ClassHigh {
			highConf[s.GeneID]++
		}
	}

	var plan []PlanEntry
	for _, iso := range isoforms {
		n := highConf[iso.GeneID]
		if n == 0 {
			continue
		}

		status := StatusPending
		if iso.PDBID != "" {
			status = StatusReady
		}

		plan = append(plan, PlanEntry{
			Protein:        iso.Protein,
			GeneID:         iso.GeneID,
			PDBID:          iso.PDBID,
			MutationType:   iso.MutationType,
			DomainAffected: iso.Domain,
			HighConfEvents: n,
			Status:         status,
		})
	}
	return plan
}

// Required isoform table column names.
var isoformColumns = []string{"gene_id", "protein", "pdb_id", "mutation_type", "domain"}

// LoadIsoforms reads the isoform annotation table. A pdb_id of "-" or
// empty means no experimental structure.
func LoadIsoforms(path string) ([]Isoform, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open isoform table: %w", err)
	}
	defer file.Close()
	return LoadIsoformsFromReader(file, filepath.Base(path))
}

// LoadIsoformsFromReader reads the isoform annotation table from r.
func LoadIsoformsFromReader(r io.Reader, name string) ([]Isoform, error) {
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
	for _, required := range isoformColumns {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("isoforms %s: required column %q not found in header", name, required)
		}
	}

	var isoforms []Isoform
	for scanner.Scan() {
		lineNumber++
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) < len(isoformColumns) {
			return nil, fmt.Errorf("isoforms %s:%d: expected %d columns, found %d", name, lineNumber, len(isoformColumns), len(fields))
		}

		pdb := fields[cols["pdb_id"]]
		if pdb == "-" {
			pdb = ""
		}

		isoforms = append(isoforms, Isoform{
			GeneID:       fields[cols["gene_id"]],
			Protein:      fields[cols["protein"]],
			PDBID:        pdb,
			MutationType: fields[cols["mutation_type"]],
			Domain:       fields[cols["domain"]],
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read isoform table: %w", err)
	}

	return isoforms, nil
}

// WritePlan writes the structure-analysis plan table.
func WritePlan(w io.Writer, plan []PlanEntry) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString("protein\tgene_id\tpdb_id\tmutation_type\tdomain_affected\thigh_conf_events\tstatus\n"); err != nil {
		return err
	}
	for _, p := range plan {
		pdb := p.PDBID
		if pdb == "" {
			pdb = "-"
		}
		if _, err := fmt.Fprintf(bw, "%s\t%s\t%s\t%s\t%s\t%d\t%s\n",
			p.Protein, p.GeneID, pdb, p.MutationType, p.DomainAffected, p.HighConfEvents, p.Status); err != nil {
			return err
		}
	}
	return bw.Flush()
}
