package pdf

import (
	"fmt"

	"github.com/a3tai/form-filler/internal/form"
	pdferrors "github.com/a3tai/form-filler/internal/pdf/errors"
	"github.com/a3tai/form-filler/internal/pdf/render"
	"github.com/a3tai/form-filler/internal/pdf/wrapper"
)

// Dispositions of a generated document.
const (
	DispositionInline     = "inline"
	DispositionAttachment = "attachment"
)

// ContentTypePDF is the media type of generated documents.
const ContentTypePDF = "application/pdf"

// Request Types

// GenerateRequest represents a request to fill the template
type GenerateRequest struct {
	// Record is the raw submission, flattened but not yet normalized.
	Record form.Record `json:"record"`
	// Mode selects the disposition; when empty the record's mode field is used.
	Mode string `json:"mode,omitempty"`
}

// Response Types

// GenerateResult represents a filled document ready to be sent
type GenerateResult struct {
	Data        []byte                 `json:"-"`
	ContentType string                 `json:"content_type"`
	Disposition string                 `json:"disposition"`
	Filename    string                 `json:"filename"`
	Pages       int                    `json:"pages"`
	Stamps      int                    `json:"stamps"`
	Skipped     []*pdferrors.FormError `json:"skipped,omitempty"`
	// Summary tallies the skipped entries, for logs.
	Summary    string                      `json:"summary"`
	SkipCounts map[pdferrors.ErrorType]int `json:"-"`
}

// ContentDisposition returns the Content-Disposition header value.
func (r *GenerateResult) ContentDisposition() string {
	return fmt.Sprintf("%s; filename=%q", r.Disposition, r.Filename)
}

// PlanInfo is a catalog entry with amounts formatted for display
type PlanInfo struct {
	Code     string `json:"code"`
	Title    string `json:"title"`
	Total    string `json:"total"`
	Monthly  string `json:"monthly"`
	Discount string `json:"discount"`
	Bill     string `json:"bill"`
}

// TemplateReport represents the result of validating the template
type TemplateReport struct {
	Path      string                  `json:"path"`
	Valid     bool                    `json:"valid"`
	Message   string                  `json:"message,omitempty"`
	Size      int64                   `json:"size"`
	PageCount int                     `json:"page_count"`
	Pages     []render.PageSize       `json:"pages,omitempty"`
	Libraries []*wrapper.TemplateInfo `json:"libraries,omitempty"`
	Warnings  []string                `json:"warnings,omitempty"`
}

// PlacementReport describes where one mapping entry lands on the template
type PlacementReport struct {
	Field string  `json:"field"`
	Page  int     `json:"page"`
	Mode  string  `json:"mode"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Size  float64 `json:"size"`
	Skip  string  `json:"skip,omitempty"`
}

// InspectResult represents the template and mapping as the renderer sees them
type InspectResult struct {
	Template   *TemplateReport   `json:"template"`
	Fonts      render.Fonts      `json:"fonts"`
	Placements []PlacementReport `json:"placements"`
}
