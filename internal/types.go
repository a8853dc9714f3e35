package internal

import "fmt"

// ValidationError marks expected misuse or environment problems (missing file,
// missing tool, missing column) so the CLI can exit with the usage status
// instead of the internal-error status.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func Validationf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

type PageSource string

const (
	SourceTextLayer PageSource = "text_layer"
	SourceOCR       PageSource = "ocr"
)

// PageText holds the raw text recovered from one PDF page. Text is empty when
// neither the text layer nor OCR produced anything for the page.
type PageText struct {
	PageNo int
	Source PageSource
	Text   string
}

// NameSet is the deduplicated set of canonical names extracted from one
// document. Immutable once built for a matching pass.
type NameSet map[string]struct{}

func (s NameSet) Add(name string) { s[name] = struct{}{} }

func (s NameSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// RosterRow is one data row of the roster sheet. Cells are carried verbatim so
// the annotated output can reproduce them unchanged.
type RosterRow struct {
	RowNo int
	Cells []string
	Name  string
}

type RowResult struct {
	RowNo      int
	Cells      []string
	Present    bool
	Suggestion string
}

type DocumentRow struct {
	ID        int
	Path      string
	Hash      string
	Status    string
	CreatedAt string
	UpdatedAt string
}

type RunRow struct {
	ID          int
	TraceID     string
	DocumentID  *int
	RosterPath  string
	OutputPath  string
	CountsJSON  string
	TimingsJSON string
	CreatedAt   string
}
