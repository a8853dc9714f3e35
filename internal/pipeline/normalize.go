package pipeline

import (
	"rostercheck/internal"
	"rostercheck/internal/util"
)

type NormalizedRow struct {
	internal.RosterRow
	NormalizedName string
}

func NormalizeRows(rows []internal.RosterRow) []NormalizedRow {
	out := make([]NormalizedRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, NormalizedRow{
			RosterRow:      row,
			NormalizedName: util.NormalizeName(row.Name),
		})
	}
	return out
}
