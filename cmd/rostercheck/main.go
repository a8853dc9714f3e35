package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"rostercheck/internal"
	"rostercheck/internal/config"
	"rostercheck/internal/ocr"
	"rostercheck/internal/pipeline"
	"rostercheck/internal/storage"
	"rostercheck/internal/watcher"
)

func main() {
	cfg, err := config.Load()
	fail(err)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	switch cmd {
	case "check":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		dpi := fs.Int("dpi", cfg.OCRDPI, "rasterization resolution")
		lang := fs.String("lang", cfg.OCRLang, "OCR language")
		tesseractCmd := fs.String("tesseract-cmd", cfg.TesseractCmd, "tesseract binary path (switches to the CLI engine)")
		verbose := fs.Bool("verbose", false, "verbose output")
		_ = fs.Parse(os.Args[2:])
		if fs.NArg() != 2 {
			fail(internal.Validationf("usage: rostercheck check [flags] <pdf> <roster.xlsx>"))
		}
		pdfName, rosterName := fs.Arg(0), fs.Arg(1)
		if !strings.EqualFold(filepath.Ext(pdfName), ".pdf") {
			fail(internal.Validationf("first argument must be a .pdf file: %s", pdfName))
		}
		if !strings.EqualFold(filepath.Ext(rosterName), ".xlsx") {
			fail(internal.Validationf("second argument must be an .xlsx file: %s", rosterName))
		}

		cfg.OCRDPI = *dpi
		cfg.OCRLang = *lang
		cfg.TesseractCmd = *tesseractCmd

		pdfPath := resolveInput(cfg.PDFDir, pdfName)
		rosterPath := resolveInput(cfg.RosterDir, rosterName)
		rosterStem := strings.TrimSuffix(filepath.Base(rosterName), filepath.Ext(rosterName))
		outputPath := filepath.Join(cfg.OutputDir, rosterStem+cfg.OutputSuffix+".xlsx")

		db, err := storage.Open(cfg.DBPath)
		fail(err)
		defer db.Close()

		proc := pipeline.NewProcessingService(db, cfg, *verbose)
		res, err := proc.Check(context.Background(), pdfPath, rosterPath, outputPath)
		fail(err)
		fmt.Printf("check done pages=%d (text=%d ocr=%d) names=%d rows=%d matched=%d unmatched=%d output=%s\n",
			res.Pages, res.TextPages, res.OCRPages, res.Names, res.Rows, res.Matched, res.Unmatched, res.OutputPath)
	case "extract":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		dpi := fs.Int("dpi", cfg.OCRDPI, "rasterization resolution")
		lang := fs.String("lang", cfg.OCRLang, "OCR language")
		tesseractCmd := fs.String("tesseract-cmd", cfg.TesseractCmd, "tesseract binary path (switches to the CLI engine)")
		verbose := fs.Bool("verbose", false, "verbose output")
		_ = fs.Parse(os.Args[2:])
		if fs.NArg() != 1 {
			fail(internal.Validationf("usage: rostercheck extract [flags] <pdf>"))
		}

		cfg.OCRDPI = *dpi
		cfg.OCRLang = *lang
		cfg.TesseractCmd = *tesseractCmd
		pdfPath := resolveInput(cfg.PDFDir, fs.Arg(0))

		extractor := pipeline.NewExtractor(cfg, makeEngine(cfg), ocr.NewRasterizer(cfg.PdftoppmCmd, cfg.OCRDPI), *verbose)
		names, _, err := extractor.ExtractNames(context.Background(), pdfPath)
		fail(err)

		sorted := make([]string, 0, len(names))
		for name := range names {
			sorted = append(sorted, name)
		}
		sort.Strings(sorted)
		for _, name := range sorted {
			fmt.Println(name)
		}
	case "runs:list":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		limit := fs.Int("limit", 20, "max runs to show")
		_ = fs.Parse(os.Args[2:])

		db, err := storage.Open(cfg.DBPath)
		fail(err)
		defer db.Close()

		runs, err := db.ListRuns(*limit)
		fail(err)
		for _, run := range runs {
			fmt.Printf("%s trace=%s roster=%s output=%s counts=%s timings=%s\n",
				run.CreatedAt, run.TraceID, run.RosterPath, run.OutputPath, run.CountsJSON, run.TimingsJSON)
		}
	case "watch":
		db, err := storage.Open(cfg.DBPath)
		fail(err)
		defer db.Close()

		svc := watcher.NewService(db, cfg)
		fail(svc.Run(context.Background()))
	default:
		usage()
		os.Exit(1)
	}
}

func makeEngine(cfg config.Config) ocr.Engine {
	if cfg.TesseractCmd != "" {
		return ocr.NewCLIEngine(cfg.TesseractCmd, cfg.OCRLang, cfg.OCRDPI)
	}
	return ocr.NewGosseractEngine(cfg.OCRLang, cfg.OCRDPI)
}

func resolveInput(dir, name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(dir, name)
}

func usage() {
	fmt.Println("usage: rostercheck <command>")
	fmt.Println("commands:")
	fmt.Println("  check [--dpi=300] [--lang=spa] [--tesseract-cmd=...] [--verbose] <pdf> <roster.xlsx>")
	fmt.Println("  extract [--dpi=300] [--lang=spa] [--tesseract-cmd=...] [--verbose] <pdf>")
	fmt.Println("  runs:list [--limit=20]")
	fmt.Println("  watch")
}

func fail(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	var v *internal.ValidationError
	if errors.As(err, &v) {
		os.Exit(1)
	}
	os.Exit(2)
}
