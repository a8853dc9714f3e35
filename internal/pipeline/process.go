package pipeline

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"rostercheck/internal"
	"rostercheck/internal/config"
	"rostercheck/internal/ocr"
	"rostercheck/internal/storage"
)

// ProcessingService runs one full check: extract names from the PDF, match
// the roster against them, write the annotated copy and record the run.
type ProcessingService struct {
	db      *storage.DB
	cfg     config.Config
	verbose bool
}

func NewProcessingService(db *storage.DB, cfg config.Config, verbose bool) *ProcessingService {
	return &ProcessingService{db: db, cfg: cfg, verbose: verbose}
}

type CheckResult struct {
	PDFPath    string
	RosterPath string
	OutputPath string
	Pages      int
	TextPages  int
	OCRPages   int
	Names      int
	Rows       int
	Matched    int
	Unmatched  int
}

func (s *ProcessingService) Check(ctx context.Context, pdfPath, rosterPath, outputPath string) (CheckResult, error) {
	start := time.Now()

	extractor := NewExtractor(s.cfg, makeEngine(s.cfg), ocr.NewRasterizer(s.cfg.PdftoppmCmd, s.cfg.OCRDPI), s.verbose)
	names, pages, err := extractor.ExtractNames(ctx, pdfPath)
	if err != nil {
		return CheckResult{}, err
	}
	extractMs := float64(time.Since(start).Milliseconds())

	roster, err := LoadRoster(rosterPath, s.cfg.NameColumn)
	if err != nil {
		return CheckResult{}, err
	}

	normalized := NormalizeRows(roster.Rows)
	matcher := NewMatcher(s.cfg, names)

	results := make([]internal.RowResult, 0, len(normalized))
	matched := 0
	for _, row := range normalized {
		res := matcher.Match(row)
		if res.Present {
			matched++
		}
		results = append(results, res)
	}

	if err := WriteAnnotated(roster, results, s.cfg, outputPath); err != nil {
		return CheckResult{}, err
	}

	result := CheckResult{
		PDFPath:    pdfPath,
		RosterPath: rosterPath,
		OutputPath: outputPath,
		Pages:      len(pages),
		Names:      len(names),
		Rows:       len(results),
		Matched:    matched,
		Unmatched:  len(results) - matched,
	}
	for _, page := range pages {
		switch page.Source {
		case internal.SourceTextLayer:
			result.TextPages++
		case internal.SourceOCR:
			result.OCRPages++
		}
	}

	if s.db != nil {
		s.recordRun(pdfPath, rosterPath, outputPath, result, extractMs, float64(time.Since(start).Milliseconds()))
	}

	return result, nil
}

func (s *ProcessingService) recordRun(pdfPath, rosterPath, outputPath string, result CheckResult, extractMs, totalMs float64) {
	var documentID *int
	if doc, err := s.db.GetDocumentByPath(pdfPath); err == nil && doc != nil {
		documentID = &doc.ID
	}
	err := s.db.InsertRun(traceID(), documentID, rosterPath, outputPath,
		map[string]float64{"extractMs": extractMs, "totalMs": totalMs},
		map[string]int{
			"pages":     result.Pages,
			"textPages": result.TextPages,
			"ocrPages":  result.OCRPages,
			"names":     result.Names,
			"rows":      result.Rows,
			"matched":   result.Matched,
			"unmatched": result.Unmatched,
		})
	if err != nil {
		fmt.Printf("failed to record run: %v\n", err)
	}
}

func makeEngine(cfg config.Config) ocr.Engine {
	if cfg.TesseractCmd != "" {
		return ocr.NewCLIEngine(cfg.TesseractCmd, cfg.OCRLang, cfg.OCRDPI)
	}
	return ocr.NewGosseractEngine(cfg.OCRLang, cfg.OCRDPI)
}

func traceID() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return fmt.Sprintf("run-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b[:])
}
