package pipeline

import (
	"context"
	"fmt"
	"os"
	"strings"
	"unicode"

	pdf "github.com/ledongthuc/pdf"

	"rostercheck/internal"
	"rostercheck/internal/config"
	"rostercheck/internal/ocr"
	"rostercheck/internal/util"
)

// Extractor turns a scanned registry PDF into the set of canonical names it
// contains. Pages that carry an embedded text layer are read directly; the
// rest are rasterized and OCR'd one at a time.
type Extractor struct {
	cfg     config.Config
	engine  ocr.Engine
	raster  ocr.Renderer
	verbose bool
}

func NewExtractor(cfg config.Config, engine ocr.Engine, raster ocr.Renderer, verbose bool) *Extractor {
	return &Extractor{cfg: cfg, engine: engine, raster: raster, verbose: verbose}
}

func (e *Extractor) ExtractNames(ctx context.Context, pdfPath string) (internal.NameSet, []internal.PageText, error) {
	if _, err := os.Stat(pdfPath); err != nil {
		return nil, nil, internal.Validationf("pdf not found: %s", pdfPath)
	}

	pages, err := readTextLayer(pdfPath)
	if err != nil {
		// Some scanner output trips the parser; poppler still renders it.
		fmt.Printf("no readable text layer in %s (%v); rasterizing the whole document\n", pdfPath, err)
		pages = nil
	}

	if pages == nil {
		pages, err = e.ocrWholeDocument(ctx, pdfPath)
		if err != nil {
			return nil, nil, err
		}
	} else if err := e.ocrMissingPages(ctx, pdfPath, pages); err != nil {
		return nil, nil, err
	}

	names := collectNames(pages)
	if e.verbose {
		for _, page := range pages {
			fmt.Printf("page %d: source=%s chars=%d\n", page.PageNo, page.Source, len(page.Text))
		}
	}
	fmt.Printf("extracted %d names from %s\n", len(names), pdfPath)

	return names, pages, nil
}

// ocrMissingPages rasterizes and recognizes the pages left empty by the text
// layer pass. A page that fails OCR is logged and skipped; the rest of the
// document still contributes.
func (e *Extractor) ocrMissingPages(ctx context.Context, pdfPath string, pages []internal.PageText) error {
	pending := 0
	for _, page := range pages {
		if page.Text == "" {
			pending++
		}
	}
	if pending == 0 {
		return nil
	}

	if err := e.requireRasterizer(); err != nil {
		return err
	}
	tmpDir, err := os.MkdirTemp("", "rostercheck-pages-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(tmpDir)

	if e.verbose {
		fmt.Printf("rasterizing %d of %d pages at %d dpi (engine=%s)\n", pending, len(pages), e.cfg.OCRDPI, e.engine.Name())
	}

	for i := range pages {
		if pages[i].Text != "" {
			continue
		}
		imgPath, err := e.raster.RenderPage(ctx, pdfPath, pages[i].PageNo, tmpDir)
		if err != nil {
			fmt.Printf("rasterization failed on page %d, skipping: %v\n", pages[i].PageNo, err)
			continue
		}
		text, err := e.engine.Recognize(ctx, imgPath)
		if err != nil {
			fmt.Printf("ocr failed on page %d, skipping: %v\n", pages[i].PageNo, err)
			continue
		}
		pages[i].Source = internal.SourceOCR
		pages[i].Text = text
	}
	return nil
}

// ocrWholeDocument is the fallback when the PDF parser cannot read the file at
// all: render every page through poppler and OCR each image.
func (e *Extractor) ocrWholeDocument(ctx context.Context, pdfPath string) ([]internal.PageText, error) {
	if err := e.requireRasterizer(); err != nil {
		return nil, err
	}
	tmpDir, err := os.MkdirTemp("", "rostercheck-pages-")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(tmpDir)

	images, err := e.raster.RenderAll(ctx, pdfPath, tmpDir)
	if err != nil {
		return nil, internal.Validationf("failed to rasterize %s: %v", pdfPath, err)
	}

	pages := make([]internal.PageText, 0, len(images))
	for i, imgPath := range images {
		page := internal.PageText{PageNo: i + 1}
		text, err := e.engine.Recognize(ctx, imgPath)
		if err != nil {
			fmt.Printf("ocr failed on page %d, skipping: %v\n", page.PageNo, err)
		} else {
			page.Source = internal.SourceOCR
			page.Text = text
		}
		pages = append(pages, page)
	}
	return pages, nil
}

func (e *Extractor) requireRasterizer() error {
	if e.raster.Available() {
		return nil
	}
	return internal.Validationf("%s not found in PATH; install poppler-utils or set PDFTOPPM_CMD", e.raster.BinPath())
}

// readTextLayer returns one PageText per page, filled in where the PDF carries
// extractable text. Pages left empty are OCR candidates.
func readTextLayer(pdfPath string) (pages []internal.PageText, err error) {
	// the parser panics on some scanner output; treat that as unreadable
	defer func() {
		if r := recover(); r != nil {
			pages, err = nil, fmt.Errorf("pdf parser: %v", r)
		}
	}()

	f, reader, err := pdf.Open(pdfPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	total := reader.NumPage()
	pages = make([]internal.PageText, 0, total)
	for i := 1; i <= total; i++ {
		page := internal.PageText{PageNo: i}
		p := reader.Page(i)
		if !p.V.IsNull() {
			if text, err := p.GetPlainText(nil); err == nil && strings.TrimSpace(text) != "" {
				page.Source = internal.SourceTextLayer
				page.Text = text
			}
		}
		pages = append(pages, page)
	}
	return pages, nil
}

// collectNames builds the deduplicated name set from recognized page text.
// Lines without an alphabetic rune are dropped, and normalized lines need at
// least two tokens to count as a name (single fragments are OCR noise).
func collectNames(pages []internal.PageText) internal.NameSet {
	names := internal.NameSet{}
	for _, page := range pages {
		for _, line := range splitLines(page.Text) {
			if !hasLetter(line) {
				continue
			}
			normalized := util.NormalizeName(line)
			if util.TokenCount(normalized) < 2 {
				continue
			}
			names.Add(normalized)
		}
	}
	return names
}

func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	parts := strings.Split(text, "\n")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func hasLetter(line string) bool {
	for _, r := range line {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}
