// Package report renders a coverage.Result as text, a workbook or a chart.
package report

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/text"

	"SeqCoverage/pkg/coverage"
)

const (
	nameWidth  = 30
	labelWidth = nameWidth + 2
)

// WriteCoverage prints the default output: the depth with two decimals.
func WriteCoverage(w io.Writer, res *coverage.Result) error {
	var _, err = fmt.Fprintf(w, "%.2f\n", res.Coverage)
	return err
}

// WriteSummary prints the verbose table. Counts carry thousands separators and
// are right-aligned to the widest value of their block; files keep input order.
func WriteSummary(w io.Writer, res *coverage.Result) error {
	var (
		totalReads = humanize.Comma(res.TotalReads)
		totalBases = humanize.Comma(res.TotalBases)
		reads      = make([]string, len(res.Files))
		bases      = make([]string, len(res.Files))
		readsWidth = len(totalReads)
		basesWidth = len(totalBases)
	)
	for i, f := range res.Files {
		reads[i] = humanize.Comma(f.Reads)
		bases[i] = humanize.Comma(f.Bases)
		readsWidth = max(readsWidth, len(reads[i]))
		basesWidth = max(basesWidth, len(bases[i]))
	}

	var p = &printer{w: w}
	p.printf("Reference genome: %s bp\n", humanize.Comma(res.GenomeLength))

	p.printf("%s %s\n", text.AlignLeft.Apply("Total reads:", labelWidth), text.AlignRight.Apply(totalReads, readsWidth))
	for i, f := range res.Files {
		p.printf("  %s %s\n", text.AlignLeft.Apply(coverage.Name(f), nameWidth), text.AlignRight.Apply(reads[i], readsWidth))
	}

	p.printf("%s %s bp\n", text.AlignLeft.Apply("Total bases:", labelWidth), text.AlignRight.Apply(totalBases, basesWidth))
	for i, f := range res.Files {
		p.printf("  %s %s bp\n", text.AlignLeft.Apply(coverage.Name(f), nameWidth), text.AlignRight.Apply(bases[i], basesWidth))
	}

	p.printf("Average coverage: %.2fx\n", res.Coverage)
	return p.err
}

// printer keeps the first write error.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, a ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, a...)
}
