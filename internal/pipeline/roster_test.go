package pipeline

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"rostercheck/internal"
	"rostercheck/internal/config"
)

func mkXLSX(t *testing.T, path string, rows [][]any) {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for r, row := range rows {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+1)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
}

func TestLoadRoster(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roster.xlsx")
	mkXLSX(t, path, [][]any{
		{"No", "Nombre Completo", "Puesto"},
		{1, "Ana María López", "Seguridad"},
		{2, "Juan Pérez", "Acceso"},
	})

	roster, err := LoadRoster(path, "Nombre Completo")
	if err != nil {
		t.Fatal(err)
	}
	if roster.NameIdx != 1 {
		t.Fatalf("nameIdx=%d", roster.NameIdx)
	}
	if len(roster.Rows) != 2 {
		t.Fatalf("rows=%d", len(roster.Rows))
	}
	if roster.Rows[0].Name != "Ana María López" {
		t.Fatalf("name=%q", roster.Rows[0].Name)
	}
	if roster.Rows[1].RowNo != 3 {
		t.Fatalf("rowNo=%d", roster.Rows[1].RowNo)
	}
}

func TestLoadRosterHeaderWhitespace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roster.xlsx")
	mkXLSX(t, path, [][]any{
		{"No", "Nombre Completo ", "Puesto"},
		{1, "Ana María López", "Seguridad"},
	})

	roster, err := LoadRoster(path, "Nombre Completo")
	if err != nil {
		t.Fatal(err)
	}
	if roster.NameIdx != 1 {
		t.Fatalf("nameIdx=%d", roster.NameIdx)
	}
	// raw header survives for the output copy
	if roster.Header[1] != "Nombre Completo " {
		t.Fatalf("header rewritten: %q", roster.Header[1])
	}
}

func TestLoadRosterMissingColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roster.xlsx")
	mkXLSX(t, path, [][]any{
		{"No", "Nombre", "Puesto"},
		{1, "Ana María López", "Seguridad"},
	})

	_, err := LoadRoster(path, "Nombre Completo")
	if err == nil {
		t.Fatal("expected error")
	}
	var v *internal.ValidationError
	if !errors.As(err, &v) {
		t.Fatalf("expected validation error, got %T: %v", err, err)
	}
	for _, col := range []string{"No", "Nombre", "Puesto"} {
		if !strings.Contains(err.Error(), col) {
			t.Fatalf("error %q does not list column %q", err.Error(), col)
		}
	}
}

func TestLoadRosterMissingFile(t *testing.T) {
	_, err := LoadRoster(filepath.Join(t.TempDir(), "nope.xlsx"), "Nombre Completo")
	var v *internal.ValidationError
	if !errors.As(err, &v) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestWriteAnnotatedRoundTrip(t *testing.T) {
	tmp := t.TempDir()
	in := filepath.Join(tmp, "roster.xlsx")
	mkXLSX(t, in, [][]any{
		{"No", "Nombre Completo", "Puesto"},
		{1, "Ana María López", "Seguridad"},
		{2, "Carmen Díaz", "Acceso"},
	})

	roster, err := LoadRoster(in, "Nombre Completo")
	if err != nil {
		t.Fatal(err)
	}

	names := internal.NameSet{}
	names.Add("ANA MARIA LOPEZ")

	cfg, _ := config.Load()
	matcher := NewMatcher(cfg, names)
	results := make([]internal.RowResult, 0, len(roster.Rows))
	for _, row := range NormalizeRows(roster.Rows) {
		results = append(results, matcher.Match(row))
	}

	out := filepath.Join(tmp, "sub", "roster_REVISADO.xlsx")
	if err := WriteAnnotated(roster, results, cfg, out); err != nil {
		t.Fatal(err)
	}

	f, err := excelize.OpenFile(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows=%d", len(rows))
	}
	if rows[0][3] != cfg.ResultColumn {
		t.Fatalf("flag header=%q", rows[0][3])
	}
	// original cells pass through unchanged
	if rows[1][1] != "Ana María López" || rows[2][2] != "Acceso" {
		t.Fatalf("original cells changed: %v", rows[1:])
	}
	if rows[1][3] != "TRUE" {
		t.Fatalf("row 1 flag=%q", rows[1][3])
	}
	if rows[2][3] != "FALSE" {
		t.Fatalf("row 2 flag=%q", rows[2][3])
	}
}

func TestWriteAnnotatedRaggedRow(t *testing.T) {
	tmp := t.TempDir()
	in := filepath.Join(tmp, "roster.xlsx")
	mkXLSX(t, in, [][]any{
		{"No", "Nombre Completo", "Puesto"},
		{1, "Ana María López", "Seguridad", "nota extra"},
		{2, "Carmen Díaz", "Acceso"},
	})

	roster, err := LoadRoster(in, "Nombre Completo")
	if err != nil {
		t.Fatal(err)
	}

	names := internal.NameSet{}
	names.Add("ANA MARIA LOPEZ")

	cfg, _ := config.Load()
	matcher := NewMatcher(cfg, names)
	results := make([]internal.RowResult, 0, len(roster.Rows))
	for _, row := range NormalizeRows(roster.Rows) {
		results = append(results, matcher.Match(row))
	}

	out := filepath.Join(tmp, "roster_REVISADO.xlsx")
	if err := WriteAnnotated(roster, results, cfg, out); err != nil {
		t.Fatal(err)
	}

	f, err := excelize.OpenFile(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		t.Fatal(err)
	}
	// the stray fourth cell must survive, with the flag column after it
	if rows[1][3] != "nota extra" {
		t.Fatalf("extra cell lost: %v", rows[1])
	}
	if rows[0][4] != cfg.ResultColumn {
		t.Fatalf("flag header=%q", rows[0][4])
	}
	if rows[1][4] != "TRUE" {
		t.Fatalf("row 1 flag=%q", rows[1][4])
	}
	if rows[2][4] != "FALSE" {
		t.Fatalf("row 2 flag=%q", rows[2][4])
	}
}
