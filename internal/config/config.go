package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	PDFDir    string
	RosterDir string
	OutputDir string
	DBPath    string

	NameColumn    string
	ResultColumn  string
	SuggestColumn string
	OutputSuffix  string

	OCRLang      string
	OCRDPI       int
	TesseractCmd string
	PdftoppmCmd  string

	SuggestThreshold float64

	WatchIntervalSec int
	WatchRoster      string
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		PDFDir:    getEnv("PDF_DIR", filepath.Join(cwd, "SUA")),
		RosterDir: getEnv("ROSTER_DIR", filepath.Join(cwd, "EXCEL")),
		OutputDir: getEnv("OUTPUT_DIR", filepath.Join(cwd, "OUTPUT")),
		DBPath:    getEnv("DB_PATH", filepath.Join(cwd, "data", "app.db")),

		NameColumn:    getEnv("NAME_COLUMN", "Nombre Completo"),
		ResultColumn:  getEnv("RESULT_COLUMN", "Existe en SUA"),
		SuggestColumn: getEnv("SUGGEST_COLUMN", "Sugerencia"),
		OutputSuffix:  getEnv("OUTPUT_SUFFIX", "_REVISADO"),

		OCRLang:      getEnv("OCR_LANG", "spa"),
		OCRDPI:       getEnvInt("OCR_DPI", 300),
		TesseractCmd: getEnv("TESSERACT_CMD", ""),
		PdftoppmCmd:  getEnv("PDFTOPPM_CMD", "pdftoppm"),

		SuggestThreshold: getEnvFloat("SUGGEST_THRESHOLD", 0.82),

		WatchIntervalSec: getEnvInt("WATCH_INTERVAL_SEC", 60),
		WatchRoster:      getEnv("WATCH_ROSTER", ""),
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := strings.TrimSpace(getEnv(key, ""))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	value := strings.TrimSpace(getEnv(key, ""))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}
