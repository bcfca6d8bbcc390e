package render

import (
	"fmt"
	"strings"

	"github.com/a3tai/form-filler/internal/form"
	pdferrors "github.com/a3tai/form-filler/internal/pdf/errors"
	"github.com/a3tai/form-filler/internal/pdf/mapping"
)

// DefaultCheckMark is drawn for satisfied check placements. The embedded
// Unicode font may lack a checkmark glyph, so a Latin "V" is used.
const DefaultCheckMark = "V"

// Fonts names the fonts stamps are drawn with.
type Fonts struct {
	// Unicode renders Hangul and every other script in the record.
	Unicode string
	// Latin renders check marks and placements that ask for it.
	Latin string
	// CheckMark is the text drawn for check placements.
	CheckMark string
}

func (f Fonts) checkMark() string {
	if f.CheckMark == "" {
		return DefaultCheckMark
	}
	return f.CheckMark
}

// PageSize is a page's width and height in points.
type PageSize struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Measurer reports the advance width of text in points.
type Measurer interface {
	TextWidth(text, fontName string, size float64) float64
}

// View is what a render pass reads from: the normalized record and the
// gate deciding which fields must stay blank.
type View struct {
	Record form.Record
	Gated  func(field string) bool
}

func (v View) value(field string) string {
	if v.Gated != nil && v.Gated(field) {
		return ""
	}
	return v.Record.Get(field)
}

func (v View) contains(field, cond string) bool {
	if v.Gated != nil && v.Gated(field) {
		return false
	}
	return v.Record.Contains(field, cond)
}

// Stamp is one resolved draw operation in PDF user space.
type Stamp struct {
	Field string  `json:"field"`
	Page  int     `json:"page"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Text  string  `json:"text"`
	Font  string  `json:"font"`
	Size  float64 `json:"size"`
}

// Layout resolves every placement of the table into stamps. Placements that
// cannot be drawn are skipped and reported in the returned collection; they
// never abort the pass.
func Layout(table *mapping.Table, pages []PageSize, view View, fonts Fonts, m Measurer) ([]Stamp, *pdferrors.ErrorCollection) {
	report := pdferrors.NewErrorCollection()
	if table == nil {
		return nil, report
	}

	stamps := make([]Stamp, 0, len(table.Entries))
	for _, p := range table.Entries {
		stamp, skip := place(p, pages, view, fonts, m)
		if skip != nil {
			report.Add(skip)
			continue
		}
		stamps = append(stamps, stamp)
	}
	return stamps, report
}

func place(p mapping.Placement, pages []PageSize, view View, fonts Fonts, m Measurer) (Stamp, *pdferrors.FormError) {
	pageNum := p.PageNumber()
	if pageNum > len(pages) {
		return Stamp{}, pdferrors.NewFormError(pdferrors.ErrorTypeOutOfRangePage,
			fmt.Sprintf("page %d of %d", pageNum, len(pages))).WithField(p.Name).WithPage(pageNum)
	}
	page := pages[pageNum-1]

	mode, err := p.DrawMode()
	if err != nil {
		return Stamp{}, pdferrors.WrapError(pdferrors.ErrorTypeInvalidPlacement, err).WithField(p.Name)
	}

	x, y, err := p.Anchor(page.Width, page.Height)
	if err != nil {
		return Stamp{}, pdferrors.WrapError(pdferrors.ErrorTypeInvalidPlacement, err).WithField(p.Name).WithPage(pageNum)
	}

	fontName := fonts.Unicode
	var text string
	switch mode {
	case mapping.ModeFixedText:
		text = p.FixedText
	case mapping.ModeCheck:
		if p.Cond != "" && view.contains(p.Name, p.Cond) {
			text = fonts.checkMark()
			fontName = fonts.Latin
		}
	default:
		text = view.value(p.Name)
	}
	if strings.TrimSpace(text) == "" {
		return Stamp{}, pdferrors.NewFormError(pdferrors.ErrorTypeUnresolvedField, "nothing to draw").WithField(p.Name)
	}

	fontName = pickFont(p.Font, fontName, fonts)
	size := p.FontSize()
	if align := p.Alignment(); align != mapping.AlignLeft && m != nil {
		x = mapping.AlignedX(x, m.TextWidth(text, fontName, size), align)
	}

	return Stamp{
		Field: p.Name,
		Page:  pageNum,
		X:     x,
		Y:     y,
		Text:  text,
		Font:  fontName,
		Size:  size,
	}, nil
}

// pickFont honors a placement's font override. "latin" and "unicode" select
// the configured fonts; any other value names a font directly.
func pickFont(override, current string, fonts Fonts) string {
	switch strings.ToLower(strings.TrimSpace(override)) {
	case "":
	case "latin":
		current = fonts.Latin
	case "unicode":
		current = fonts.Unicode
	default:
		current = strings.TrimSpace(override)
	}
	if current == "" {
		current = fonts.Latin
	}
	return current
}
