// Package export writes normalized observations to CSV or XLSX for
// use in spreadsheets and downstream pipelines.
package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/ecostats/ecostats/internal/bls/obs"
)

// header is the column order for both output formats.
var header = []string{"series_id", "year", "period", "date", "value", "period_name", "footnote_codes"}

// WriteCSV writes observations as CSV with a header row. Nil years,
// dates, and values render as empty fields.
func WriteCSV(w io.Writer, rows []obs.Observation) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(header); err != nil {
		return eris.Wrap(err, "export: write csv header")
	}
	for _, o := range rows {
		if err := cw.Write(record(o)); err != nil {
			return eris.Wrapf(err, "export: write csv row %s", o.SeriesID)
		}
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "export: flush csv")
}

// WriteXLSX writes observations to a single-sheet workbook. Values are
// written as numeric cells so spreadsheet formulas work on them.
func WriteXLSX(w io.Writer, sheetName string, rows []obs.Observation) error {
	if sheetName == "" {
		sheetName = "observations"
	}

	f := xlsx.NewFile()
	sheet, err := f.AddSheet(sheetName)
	if err != nil {
		return eris.Wrapf(err, "export: add sheet %s", sheetName)
	}

	hr := sheet.AddRow()
	for _, h := range header {
		hr.AddCell().SetString(h)
	}

	for _, o := range rows {
		row := sheet.AddRow()
		rec := record(o)
		for i, field := range rec {
			cell := row.AddCell()
			if i == 4 && o.Value != nil {
				cell.SetFloat(*o.Value)
				continue
			}
			cell.SetString(field)
		}
	}

	return eris.Wrap(f.Write(w), "export: write xlsx")
}

// Write dispatches on format ("csv" or "xlsx").
func Write(w io.Writer, format string, rows []obs.Observation) error {
	switch format {
	case "csv", "":
		return WriteCSV(w, rows)
	case "xlsx":
		return WriteXLSX(w, "", rows)
	default:
		return eris.Errorf("export: unknown format %q (want csv or xlsx)", format)
	}
}

func record(o obs.Observation) []string {
	rec := make([]string, len(header))
	rec[0] = o.SeriesID
	if o.Year != nil {
		rec[1] = strconv.Itoa(*o.Year)
	}
	rec[2] = o.Period
	if o.Date != nil {
		rec[3] = o.Date.Format("2006-01-02")
	}
	if o.Value != nil {
		rec[4] = strconv.FormatFloat(*o.Value, 'f', -1, 64)
	}
	rec[5] = o.PeriodName
	rec[6] = o.FootnoteCodes
	return rec
}
