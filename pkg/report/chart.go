package report

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/dustin/go-humanize"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"SeqCoverage/pkg/coverage"
)

func names(res *coverage.Result) []string {
	var s = make([]string, len(res.Files))
	for i, f := range res.Files {
		s[i] = coverage.Name(f)
	}
	return s
}

func generateBarItems(vs []int64) []opts.BarData {
	var items = make([]opts.BarData, 0, len(vs))
	for _, v := range vs {
		items = append(items, opts.BarData{Value: v})
	}
	return items
}

// RenderHTML writes an interactive bar chart of bases and reads per file.
func RenderHTML(w io.Writer, res *coverage.Result) error {
	var (
		bar   = charts.NewBar()
		bases = make([]int64, len(res.Files))
		reads = make([]int64, len(res.Files))
	)
	for i, f := range res.Files {
		bases[i] = f.Bases
		reads[i] = f.Reads
	}
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Theme: types.ThemeWesteros}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Bases per file",
			Subtitle: fmt.Sprintf("genome %s bp, average coverage %.2fx", humanize.Comma(res.GenomeLength), res.Coverage),
		}),
	)
	bar.SetXAxis(names(res)).
		AddSeries("bases", generateBarItems(bases)).
		AddSeries("reads", generateBarItems(reads))
	return bar.Render(w)
}

// SavePNG saves a bar chart of each file's share of the depth. The image format
// follows the extension of path.
func SavePNG(path string, res *coverage.Result) error {
	var (
		p      = plot.New()
		values = make(plotter.Values, len(res.Files))
	)
	for i, f := range res.Files {
		values[i] = float64(f.Bases) / float64(res.GenomeLength)
	}
	p.Title.Text = fmt.Sprintf("Average coverage %.2fx", res.Coverage)
	p.X.Label.Text = "file"
	p.Y.Label.Text = "depth (x)"

	var bars, err = plotter.NewBarChart(values, vg.Points(20))
	if err != nil {
		return err
	}
	p.Add(bars)
	p.NominalX(names(res)...)

	slog.Info("save plot", "path", path)
	return p.Save(8*vg.Inch, 4*vg.Inch, path)
}
