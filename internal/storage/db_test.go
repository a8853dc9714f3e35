package storage

import (
	"path/filepath"
	"testing"
)

func TestDocumentsAndRuns(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "app.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	doc, err := db.UpsertDocument("/in/registry.pdf", "hash-1", "pending")
	if err != nil {
		t.Fatal(err)
	}
	if doc.ID == 0 || doc.Status != "pending" {
		t.Fatalf("unexpected document: %+v", doc)
	}

	// same path with a new hash updates in place
	doc2, err := db.UpsertDocument("/in/registry.pdf", "hash-2", "pending")
	if err != nil {
		t.Fatal(err)
	}
	if doc2.ID != doc.ID || doc2.Hash != "hash-2" {
		t.Fatalf("upsert did not update: %+v", doc2)
	}

	if err := db.UpdateDocumentStatus(doc.ID, "processed"); err != nil {
		t.Fatal(err)
	}
	got, err := db.GetDocumentByPath("/in/registry.pdf")
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.Status != "processed" {
		t.Fatalf("status not updated: %+v", got)
	}

	err = db.InsertRun("trace-1", &doc.ID, "/in/roster.xlsx", "/out/roster_REVISADO.xlsx",
		map[string]float64{"totalMs": 12},
		map[string]int{"rows": 3, "matched": 2})
	if err != nil {
		t.Fatal(err)
	}

	runs, err := db.ListRuns(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].TraceID != "trace-1" {
		t.Fatalf("runs=%+v", runs)
	}
	if runs[0].DocumentID == nil || *runs[0].DocumentID != doc.ID {
		t.Fatalf("documentId=%v", runs[0].DocumentID)
	}
}

func TestMetadata(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "app.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	if v, err := db.GetMetadata("lastCycleAt"); err != nil || v != nil {
		t.Fatalf("expected no value, got %v err=%v", v, err)
	}
	if err := db.SetMetadata("lastCycleAt", "2026-08-30T00:00:00Z"); err != nil {
		t.Fatal(err)
	}
	v, err := db.GetMetadata("lastCycleAt")
	if err != nil || v == nil || *v != "2026-08-30T00:00:00Z" {
		t.Fatalf("got %v err=%v", v, err)
	}
}
