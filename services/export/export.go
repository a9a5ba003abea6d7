package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/tealeg/xlsx/v2"

	"github.com/dvoryanov/tipscraper/internal/tip"
	scrapeerr "github.com/dvoryanov/tipscraper/pkg/errors"
)

// Column order is the data contract shared by every export format.
var columns = []string{
	"Added", "Event", "Prediction", "Odds", "Result", "Profit", "Stake", "League",
}

func row(t tip.Tip) []string {
	added := ""
	if t.AddedDate != nil {
		added = t.AddedDate.Format("2006-01-02")
	}
	odds := ""
	if t.AdvisedOdds != nil {
		odds = strconv.FormatFloat(*t.AdvisedOdds, 'f', 2, 64)
	}
	profit := ""
	if t.Profit != nil {
		profit = t.Profit.Signed()
	}
	stake := ""
	if t.Stake != nil {
		stake = t.Stake.String()
	}

	return []string{
		added, t.Event, t.Prediction, odds, string(t.Result), profit, stake, t.League,
	}
}

// WriteCSV writes the batch as CSV with a header row.
func WriteCSV(w io.Writer, tips []tip.Tip) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return err
	}
	for _, t := range tips {
		if err := cw.Write(row(t)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes the batch as a single-sheet spreadsheet.
func WriteXLSX(w io.Writer, tips []tip.Tip) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Tips")
	if err != nil {
		return scrapeerr.New(scrapeerr.ErrorTypeConfiguration, "export", "failed to add sheet", err)
	}

	header := sheet.AddRow()
	for _, col := range columns {
		header.AddCell().Value = col
	}

	for _, t := range tips {
		xr := sheet.AddRow()
		for _, cell := range row(t) {
			xr.AddCell().Value = cell
		}
	}

	return file.Write(w)
}

// WriteJSON writes the batch as an indented JSON array.
func WriteJSON(w io.Writer, tips []tip.Tip) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(tips)
}
