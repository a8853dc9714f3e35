package ocr

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Renderer is the page rasterization contract. Rasterizer is the poppler
// implementation; tests substitute their own.
type Renderer interface {
	Available() bool
	BinPath() string
	RenderPage(ctx context.Context, pdfPath string, pageNo int, dir string) (string, error)
	RenderAll(ctx context.Context, pdfPath, dir string) ([]string, error)
}

// Rasterizer renders PDF pages to PNG images with poppler's pdftoppm.
type Rasterizer struct {
	binPath string
	dpi     int
}

func NewRasterizer(binPath string, dpi int) *Rasterizer {
	if binPath == "" {
		binPath = "pdftoppm"
	}
	return &Rasterizer{binPath: binPath, dpi: dpi}
}

// Available reports whether the pdftoppm binary can be resolved.
func (r *Rasterizer) Available() bool {
	_, err := exec.LookPath(r.binPath)
	return err == nil
}

func (r *Rasterizer) BinPath() string { return r.binPath }

// RenderAll rasterizes every page into dir and returns the PNG paths in page
// order. pdftoppm zero-pads its page counter, so a lexical sort is positional.
func (r *Rasterizer) RenderAll(ctx context.Context, pdfPath, dir string) ([]string, error) {
	prefix := filepath.Join(dir, "page")

	cmd := exec.CommandContext(ctx, r.binPath, "-png", "-r", strconv.Itoa(r.dpi), pdfPath, prefix)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("pdftoppm failed for %s: %s: %w", pdfPath, strings.TrimSpace(stderr.String()), err)
	}

	matches, err := filepath.Glob(prefix + "-*.png")
	if err != nil || len(matches) == 0 {
		return nil, fmt.Errorf("pdftoppm produced no images for %s", pdfPath)
	}
	sort.Strings(matches)
	return matches, nil
}

// RenderPage rasterizes a single page into dir and returns the PNG path.
func (r *Rasterizer) RenderPage(ctx context.Context, pdfPath string, pageNo int, dir string) (string, error) {
	prefix := filepath.Join(dir, fmt.Sprintf("page-%d", pageNo))
	page := strconv.Itoa(pageNo)

	cmd := exec.CommandContext(ctx, r.binPath,
		"-png", "-r", strconv.Itoa(r.dpi), "-f", page, "-l", page, pdfPath, prefix)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("pdftoppm failed for page %d: %s: %w", pageNo, strings.TrimSpace(stderr.String()), err)
	}

	// pdftoppm appends its own page counter to the prefix.
	matches, err := filepath.Glob(prefix + "-*.png")
	if err != nil || len(matches) == 0 {
		return "", fmt.Errorf("pdftoppm produced no image for page %d", pageNo)
	}
	return matches[0], nil
}
