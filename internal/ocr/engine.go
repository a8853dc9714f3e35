package ocr

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// Engine turns one page image into plain text.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, imagePath string) (string, error)
}

// GosseractEngine runs tesseract in-process through the gosseract bindings.
type GosseractEngine struct {
	lang string
	dpi  int
}

func NewGosseractEngine(lang string, dpi int) *GosseractEngine {
	return &GosseractEngine{lang: lang, dpi: dpi}
}

func (e *GosseractEngine) Name() string { return "gosseract" }

func (e *GosseractEngine) Recognize(ctx context.Context, imagePath string) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	client := gosseract.NewClient()
	defer client.Close()

	if e.lang != "" {
		if err := client.SetLanguage(e.lang); err != nil {
			return "", fmt.Errorf("set language %q: %w", e.lang, err)
		}
	}
	if e.dpi > 0 {
		if err := client.SetVariable(gosseract.SettableVariable("user_defined_dpi"), fmt.Sprint(e.dpi)); err != nil {
			return "", fmt.Errorf("set dpi: %w", err)
		}
	}
	if err := client.SetImage(imagePath); err != nil {
		return "", fmt.Errorf("set image %s: %w", imagePath, err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("ocr %s: %w", imagePath, err)
	}
	return strings.TrimSpace(text), nil
}

// CLIEngine shells out to a tesseract binary. Used when a binary override is
// configured so a specific install can be pointed at without relinking.
type CLIEngine struct {
	binPath string
	lang    string
	dpi     int
}

func NewCLIEngine(binPath, lang string, dpi int) *CLIEngine {
	if binPath == "" {
		binPath = "tesseract"
	}
	return &CLIEngine{binPath: binPath, lang: lang, dpi: dpi}
}

func (e *CLIEngine) Name() string { return "tesseract-cli" }

func (e *CLIEngine) Recognize(ctx context.Context, imagePath string) (string, error) {
	args := []string{imagePath, "stdout"}
	if e.lang != "" {
		args = append(args, "-l", e.lang)
	}
	if e.dpi > 0 {
		args = append(args, "--dpi", fmt.Sprint(e.dpi))
	}

	cmd := exec.CommandContext(ctx, e.binPath, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("tesseract failed for %s: %s: %w", imagePath, strings.TrimSpace(stderr.String()), err)
	}
	return strings.TrimSpace(stdout.String()), nil
}
