package wrapper

import (
	"errors"
	"fmt"
	"io"

	"github.com/a3tai/form-filler/internal/pdf/render"
)

// Inspector reads the structure of a template document.
type Inspector interface {
	Inspect(data []byte) (*TemplateInfo, error)

	// Library identification
	GetLibraryType() LibraryType
}

// Stamper draws resolved stamps onto a template and writes the result.
type Stamper interface {
	Stamp(template []byte, stamps []render.Stamp, w io.Writer) error
}

// LibraryType represents the underlying PDF library being used
type LibraryType string

const (
	LibraryPDFCPU     LibraryType = "pdfcpu"
	LibraryLedongthuc LibraryType = "ledongthuc"
)

// TemplateInfo describes a template as seen by one library.
type TemplateInfo struct {
	Library   LibraryType       `json:"library"`
	PageCount int               `json:"page_count"`
	Pages     []render.PageSize `json:"pages"`
}

// WrapperError represents errors from PDF library operations
type WrapperError struct {
	Library LibraryType `json:"library"`
	Op      string      `json:"operation"`
	Err     error       `json:"error"`
}

func (e *WrapperError) Error() string {
	return fmt.Sprintf("PDF %s library error in %s: %v", e.Library, e.Op, e.Err)
}

func (e *WrapperError) Unwrap() error {
	return e.Err
}

// Common errors
var (
	ErrUnsupportedLibrary = errors.New("unsupported library type")
	ErrNoPages            = &WrapperError{Op: "inspect", Err: fmt.Errorf("document has no pages")}
	ErrFontNotDetected    = &WrapperError{Op: "install_font", Err: fmt.Errorf("installed font name could not be determined")}
)
