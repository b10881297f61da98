package report

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"SeqCoverage/pkg/coverage"
	"SeqCoverage/pkg/genome"
)

func sample(t *testing.T) *coverage.Result {
	t.Helper()
	var res, err = coverage.Aggregate(4641652, []coverage.ReadFileStats{
		{Path: "/data/run1/sample_R1.fq.gz", Bases: 150000000, Reads: 1000000},
		{Path: "sample_R2.fq.gz", Bases: 75000000, Reads: 500000},
	})
	require.NoError(t, err)
	res.GenomePath = "/ref/ecoli.gbk.gz"
	res.GenomeFormat = genome.AnnotatedFlat
	return res
}

func TestWriteCoverage(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCoverage(&buf, &coverage.Result{Coverage: 4.5}))
	assert.Equal(t, "4.50\n", buf.String())

	buf.Reset()
	require.NoError(t, WriteCoverage(&buf, sample(t)))
	assert.Equal(t, "48.47\n", buf.String())
}

func TestWriteSummary(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, sample(t)))

	var want = strings.Join([]string{
		"Reference genome: 4,641,652 bp",
		"Total reads:                     1,500,000",
		"  sample_R1.fq.gz                1,000,000",
		"  sample_R2.fq.gz                  500,000",
		"Total bases:                     225,000,000 bp",
		"  sample_R1.fq.gz                150,000,000 bp",
		"  sample_R2.fq.gz                 75,000,000 bp",
		"Average coverage: 48.47x",
		"",
	}, "\n")
	assert.Equal(t, want, buf.String())
}

func TestWriteSummaryLongName(t *testing.T) {
	var res, err = coverage.Aggregate(10, []coverage.ReadFileStats{
		{Path: strings.Repeat("n", 35) + ".fq", Bases: 5, Reads: 1},
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, res))
	assert.Contains(t, buf.String(), "  "+strings.Repeat("n", 35)+".fq 1\n", "long names are not cut")
}

func TestSaveXlsx(t *testing.T) {
	var path = filepath.Join(t.TempDir(), "coverage.xlsx")
	require.NoError(t, SaveXlsx(path, sample(t)))

	var xlsx, err = excelize.OpenFile(path)
	require.NoError(t, err)
	defer xlsx.Close()

	var rows, rerr = xlsx.GetRows(SheetFiles)
	require.NoError(t, rerr)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"File", "Path", "Reads", "Bases", "Coverage"}, rows[0])
	assert.Equal(t, []string{"sample_R1.fq.gz", "/data/run1/sample_R1.fq.gz", "1000000", "150000000"}, rows[1][:4])

	var summary, serr = xlsx.GetRows(SheetSummary)
	require.NoError(t, serr)
	assert.Equal(t, []string{"Reference genome", "/ref/ecoli.gbk.gz"}, summary[0])
	assert.Equal(t, []string{"Format", "GenBank"}, summary[1])
	assert.Equal(t, []string{"Genome length (bp)", "4641652"}, summary[2])
}

func TestRenderHTML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderHTML(&buf, sample(t)))
	var page = buf.String()
	assert.Contains(t, page, "Bases per file")
	assert.Contains(t, page, "sample_R2.fq.gz")
	assert.Contains(t, page, "48.47x")
}

func TestSavePNG(t *testing.T) {
	var path = filepath.Join(t.TempDir(), "coverage.png")
	require.NoError(t, SavePNG(path, sample(t)))

	var data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG")))
}
