package structure

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/splicelab/splicematch/internal/match"
)

func TestBuildPlan(t *testing.T) {
	isoforms := []Isoform{
		{GeneID: "CCNB1", Protein: "CCNB1", PDBID: "4Y72", MutationType: "exon_skip_3", Domain: "NES"},
		{GeneID: "LUC7L", Protein: "LUC7L", PDBID: "", MutationType: "exon_skip_2", Domain: "RS_domain"},
		{GeneID: "ENO2", Protein: "ENO2", PDBID: "2AKZ", MutationType: "exon_skip_3", Domain: "active_site"},
	}

	summaries := []match.Summary{
		{EventID: "E1", GeneID: "CCNB1", Class: match.ClassHigh},
		{EventID: "E2", GeneID: "CCNB1", Class: match.ClassHigh},
		{EventID: "E3", GeneID: "LUC7L", Class: match.ClassHigh},
		{EventID: "E4", GeneID: "ENO2", Class: match.ClassMedium}, // below the bar
	}

	plan := BuildPlan(isoforms, summaries)
	require.Len(t, plan, 2)

	assert.Equal(t, "CCNB1", plan[0].Protein)
	assert.Equal(t, 2, plan[0].HighConfEvents)
	assert.Equal(t, StatusReady, plan[0].Status)

	assert.Equal(t, "LUC7L", plan[1].Protein)
	assert.Equal(t, 1, plan[1].HighConfEvents)
	assert.Equal(t, StatusPending, plan[1].Status)
}

func TestBuildPlan_NoHighConfidence(t *testing.T) {
	isoforms := []Isoform{{GeneID: "G1", Protein: "P1", MutationType: "intron_retention", Domain: "LXXLL_motif"}}
	summaries := []match.Summary{{GeneID: "G1", Class: match.ClassLow}}

	assert.Empty(t, BuildPlan(isoforms, summaries))
}

func TestLoadIsoforms(t *testing.T) {
	content := "gene_id\tprotein\tpdb_id\tmutation_type\tdomain\n" +
		"CCNB1\tCCNB1\t4Y72\texon_skip_3\tNES\n" +
		"LUC7L\tLUC7L\t-\texon_skip_2\tRS_domain\n"

	isoforms, err := LoadIsoformsFromReader(strings.NewReader(content), "isoforms.tsv")
	require.NoError(t, err)
	require.Len(t, isoforms, 2)

	assert.Equal(t, "4Y72", isoforms[0].PDBID)
	// "-" means no experimental structure.
	assert.Equal(t, "", isoforms[1].PDBID)
}

func TestLoadIsoforms_MissingColumn(t *testing.T) {
	content := "gene_id\tprotein\tmutation_type\tdomain\n"
	_, err := LoadIsoformsFromReader(strings.NewReader(content), "isoforms.tsv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"pdb_id"`)
}

func TestWritePlan(t *testing.T) {
	plan := []PlanEntry{
		{Protein: "CCNB1", GeneID: "CCNB1", PDBID: "4Y72", MutationType: "exon_skip_3", DomainAffected: "NES", HighConfEvents: 2, Status: StatusReady},
		{Protein: "LUC7L", GeneID: "LUC7L", PDBID: "", MutationType: "exon_skip_2", DomainAffected: "RS_domain", HighConfEvents: 1, Status: StatusPending},
	}

	var buf bytes.Buffer
	require.NoError(t, WritePlan(&buf, plan))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "CCNB1\tCCNB1\t4Y72\texon_skip_3\tNES\t2\tready_for_structural_comparison", lines[1])
	assert.Equal(t, "LUC7L\tLUC7L\t-\texon_skip_2\tRS_domain\t1\tpending_structure_prediction", lines[2])
}
