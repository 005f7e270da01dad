package merge

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const catalogTable = `event_id	gene_id	chrom	start	end	strand	event_type	source_file
chr1:1000:1200:+:SE	G1	chr1	1000	1200	+	SE	rmats.tsv
chr2:50:80:-:RI	G2	chr2	50	80	-	RI	leafcutter.tsv
`

func TestReadCatalog(t *testing.T) {
	catalog, err := ReadCatalogFromReader(strings.NewReader(catalogTable), "catalog.tsv")
	require.NoError(t, err)

	require.Equal(t, 2, catalog.Len())

	ev := catalog.Get("chr1:1000:1200:+:SE")
	require.NotNil(t, ev)
	assert.Equal(t, "G1", ev.GeneID)
	assert.Equal(t, "chr1", ev.Chrom)
	assert.Equal(t, int64(1000), ev.Start)
	assert.Equal(t, int64(1200), ev.End)
	assert.Equal(t, "+", ev.Strand)
	assert.Equal(t, "SE", ev.EventType)
	assert.Equal(t, "rmats.tsv", ev.SourceFile)

	// Row order is preserved.
	events := catalog.Events()
	assert.Equal(t, "chr1:1000:1200:+:SE", events[0].EventID)
	assert.Equal(t, "chr2:50:80:-:RI", events[1].EventID)
}

func TestReadCatalog_MissingColumn(t *testing.T) {
	content := "event_id\tgene_id\tchrom\tstart\tend\tstrand\tevent_type\n"
	_, err := ReadCatalogFromReader(strings.NewReader(content), "catalog.tsv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"source_file"`)
}

func TestReadCatalog_InvalidCoordinate(t *testing.T) {
	content := "event_id\tgene_id\tchrom\tstart\tend\tstrand\tevent_type\tsource_file\nE1\tG1\tchr1\tNaN\t2\t+\tSE\ts.tsv\n"
	_, err := ReadCatalogFromReader(strings.NewReader(content), "catalog.tsv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "catalog.tsv:2")
}
