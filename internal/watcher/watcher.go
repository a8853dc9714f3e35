package watcher

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"rostercheck/internal"
	"rostercheck/internal/config"
	"rostercheck/internal/pipeline"
	"rostercheck/internal/storage"
)

// Service polls the registry input directory and checks every new or changed
// PDF against a fixed roster, tracking document state in sqlite.
type Service struct {
	db  *storage.DB
	cfg config.Config
}

func NewService(db *storage.DB, cfg config.Config) *Service {
	return &Service{db: db, cfg: cfg}
}

func (s *Service) Run(ctx context.Context) error {
	if strings.TrimSpace(s.cfg.WatchRoster) == "" {
		return internal.Validationf("WATCH_ROSTER is required for watch mode")
	}
	rosterPath := s.cfg.WatchRoster
	if !filepath.IsAbs(rosterPath) {
		rosterPath = filepath.Join(s.cfg.RosterDir, rosterPath)
	}
	if _, err := os.Stat(rosterPath); err != nil {
		return internal.Validationf("watch roster not found: %s", rosterPath)
	}

	for {
		if err := s.runCycle(ctx, rosterPath); err != nil {
			fmt.Printf("watch cycle error: %v\n", err)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(time.Duration(s.cfg.WatchIntervalSec) * time.Second):
		}
	}
}

func (s *Service) runCycle(ctx context.Context, rosterPath string) error {
	entries, err := os.ReadDir(s.cfg.PDFDir)
	if err != nil {
		return fmt.Errorf("read watch dir %s: %w", s.cfg.PDFDir, err)
	}

	checked := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			continue
		}
		pdfPath := filepath.Join(s.cfg.PDFDir, entry.Name())

		hash, err := hashFile(pdfPath)
		if err != nil {
			fmt.Printf("watch: cannot hash %s: %v\n", pdfPath, err)
			continue
		}

		existing, err := s.db.GetDocumentByPath(pdfPath)
		if err != nil {
			return err
		}
		if existing != nil && existing.Hash == hash && existing.Status == "processed" {
			continue
		}

		doc, err := s.db.UpsertDocument(pdfPath, hash, "pending")
		if err != nil {
			return err
		}

		outputPath := s.outputPathFor(entry.Name())
		proc := pipeline.NewProcessingService(s.db, s.cfg, false)
		res, err := proc.Check(ctx, pdfPath, rosterPath, outputPath)
		if err != nil {
			_ = s.db.UpdateDocumentStatus(doc.ID, "failed")
			fmt.Printf("watch: check failed for %s: %v\n", pdfPath, err)
			continue
		}

		_ = s.db.UpdateDocumentStatus(doc.ID, "processed")
		checked++
		fmt.Printf("watch: checked %s rows=%d matched=%d output=%s\n", entry.Name(), res.Rows, res.Matched, res.OutputPath)
	}

	_ = s.db.SetMetadata("lastCycleAt", time.Now().UTC().Format(time.RFC3339))
	if checked > 0 {
		fmt.Printf("watch cycle done documents=%d\n", checked)
	}
	return nil
}

func (s *Service) outputPathFor(pdfName string) string {
	pdfStem := strings.TrimSuffix(pdfName, filepath.Ext(pdfName))
	rosterName := filepath.Base(s.cfg.WatchRoster)
	rosterStem := strings.TrimSuffix(rosterName, filepath.Ext(rosterName))
	filename := fmt.Sprintf("%s_%s%s.xlsx", pdfStem, rosterStem, s.cfg.OutputSuffix)
	return filepath.Join(s.cfg.OutputDir, "watch", filename)
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
