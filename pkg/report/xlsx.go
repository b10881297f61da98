package report

import (
	"log/slog"

	"github.com/xuri/excelize/v2"

	"SeqCoverage/pkg/coverage"
)

// sheet names
const (
	SheetSummary = "Summary"
	SheetFiles   = "Files"
)

var titleFiles = []interface{}{"File", "Path", "Reads", "Bases", "Coverage"}

func setRow(xlsx *excelize.File, sheet string, col, row int, value []interface{}) error {
	var cell, err = excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return xlsx.SetSheetRow(sheet, cell, &value)
}

// SaveXlsx writes a Summary sheet and a per-file Files sheet to path.
func SaveXlsx(path string, res *coverage.Result) (err error) {
	var xlsx = excelize.NewFile()
	defer func() {
		if cerr := xlsx.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if err = xlsx.SetSheetName("Sheet1", SheetSummary); err != nil {
		return err
	}
	var summary = [][]interface{}{
		{"Reference genome", res.GenomePath},
		{"Format", res.GenomeFormat.String()},
		{"Genome length (bp)", res.GenomeLength},
		{"Total reads", res.TotalReads},
		{"Total bases (bp)", res.TotalBases},
		{"Average coverage", res.Coverage},
	}
	for i, row := range summary {
		if err = setRow(xlsx, SheetSummary, 1, i+1, row); err != nil {
			return err
		}
	}

	if _, err = xlsx.NewSheet(SheetFiles); err != nil {
		return err
	}
	if err = setRow(xlsx, SheetFiles, 1, 1, titleFiles); err != nil {
		return err
	}
	for i, f := range res.Files {
		var row = []interface{}{
			coverage.Name(f),
			f.Path,
			f.Reads,
			f.Bases,
			float64(f.Bases) / float64(res.GenomeLength),
		}
		if err = setRow(xlsx, SheetFiles, 1, i+2, row); err != nil {
			return err
		}
	}

	slog.Info("save xlsx", "path", path)
	return xlsx.SaveAs(path)
}
