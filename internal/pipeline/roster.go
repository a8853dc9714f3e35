package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"rostercheck/internal"
	"rostercheck/internal/config"
)

// Roster is the loaded spreadsheet: header row, the resolved name column and
// the data rows with their cells carried verbatim.
type Roster struct {
	Sheet   string
	Header  []string
	NameIdx int
	Rows    []internal.RosterRow
}

func LoadRoster(path, nameColumn string) (*Roster, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, internal.Validationf("roster not found: %s", path)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open roster %s: %w", path, err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read roster sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, internal.Validationf("roster %s: sheet %q is empty", path, sheet)
	}

	// header cells are carried raw for the output; lookup uses a trimmed copy
	header := rows[0]
	trimmed := normalizeCells(header)
	nameIdx := -1
	for i, h := range trimmed {
		if h == nameColumn {
			nameIdx = i
			break
		}
	}
	if nameIdx < 0 {
		return nil, internal.Validationf(
			"column %q not found in roster %s; available columns: %s",
			nameColumn, path, strings.Join(trimmed, ", "))
	}

	out := make([]internal.RosterRow, 0, len(rows)-1)
	for i, row := range rows[1:] {
		name := ""
		if nameIdx < len(row) {
			name = strings.TrimSpace(row[nameIdx])
		}
		out = append(out, internal.RosterRow{
			RowNo: i + 2,
			Cells: row,
			Name:  name,
		})
	}

	return &Roster{Sheet: sheet, Header: header, NameIdx: nameIdx, Rows: out}, nil
}

// WriteAnnotated writes the roster back out with the presence flag and, where
// filled, the suggestion column appended after the original columns.
func WriteAnnotated(roster *Roster, results []internal.RowResult, cfg config.Config, outputPath string) error {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	// appended columns go after the widest row so stray cells survive
	width := len(roster.Header)
	for _, res := range results {
		if len(res.Cells) > width {
			width = len(res.Cells)
		}
	}
	for i, h := range roster.Header {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}
	flagCell, _ := excelize.CoordinatesToCellName(width+1, 1)
	_ = f.SetCellValue(sheet, flagCell, cfg.ResultColumn)
	suggestCell, _ := excelize.CoordinatesToCellName(width+2, 1)
	_ = f.SetCellValue(sheet, suggestCell, cfg.SuggestColumn)

	for i, res := range results {
		r := i + 2
		for c, value := range res.Cells {
			cell, _ := excelize.CoordinatesToCellName(c+1, r)
			_ = f.SetCellValue(sheet, cell, value)
		}
		cell, _ := excelize.CoordinatesToCellName(width+1, r)
		_ = f.SetCellValue(sheet, cell, res.Present)
		if res.Suggestion != "" {
			cell, _ := excelize.CoordinatesToCellName(width+2, r)
			_ = f.SetCellValue(sheet, cell, res.Suggestion)
		}
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := f.SaveAs(outputPath); err != nil {
		return fmt.Errorf("write annotated roster %s: %w", outputPath, err)
	}
	return nil
}

func normalizeCells(row []string) []string {
	out := make([]string, 0, len(row))
	for _, c := range row {
		out = append(out, strings.TrimSpace(c))
	}
	return out
}
