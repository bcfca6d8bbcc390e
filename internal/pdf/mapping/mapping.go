// Package mapping declares where each form field is drawn on the template.
//
// A mapping file is a JSON object keyed by canonical field name. Each value
// is an array of placements:
//
//	{
//	  "plan_name": [{"page": 1, "xPct": 21.5, "yPct": 71.2, "size": 9}],
//	  "gender":    [{"page": 1, "x": 402, "y": 188, "mode": "check", "cond": "M"}]
//	}
//
// Two coordinate conventions are supported and chosen per placement by the
// fields it declares, never guessed from the values:
//
//   - xPct/yPct: percent of the page width/height, measured from the PDF's
//     native bottom-left origin.
//   - x/y: absolute points measured from the top-left corner of the page.
//     The baseline is placed at pageHeight - y - size.
package mapping

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Mode selects how a placement produces its text.
type Mode string

const (
	ModeText      Mode = "text"
	ModeFixedText Mode = "fixed-text"
	ModeCheck     Mode = "check"
)

// Align selects the horizontal anchor of the text.
type Align string

const (
	AlignLeft   Align = "left"
	AlignCenter Align = "center"
	AlignRight  Align = "right"
)

// DefaultFontSize applies when a placement omits size.
const DefaultFontSize = 10.0

var (
	ErrInvalidPlacement = errors.New("placement must declare exactly one of xPct/yPct or x/y")
	ErrUnsupportedMode  = errors.New("unsupported placement mode")
	ErrInvalidMapping   = errors.New("mapping must be a JSON object")
)

// Number accepts a JSON number or a numeric string, as older mapping files
// quote their coordinates.
type Number struct {
	Value float64
	Set   bool
}

// N builds a set Number.
func N(v float64) Number {
	return Number{Value: v, Set: true}
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*n = Number{}
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*n = Number{}
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("invalid number %q: %w", s, err)
		}
		*n = N(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*n = N(v)
	return nil
}

// MarshalJSON implements json.Marshaler.
func (n Number) MarshalJSON() ([]byte, error) {
	if !n.Set {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

// Placement is one drawing of a field on the template.
type Placement struct {
	Name      string `json:"-"`
	Page      int    `json:"page,omitempty"`
	XPct      Number `json:"xPct"`
	YPct      Number `json:"yPct"`
	X         Number `json:"x"`
	Y         Number `json:"y"`
	Size      Number `json:"size"`
	Align     Align  `json:"align,omitempty"`
	Mode      Mode   `json:"mode,omitempty"`
	Cond      string `json:"cond,omitempty"`
	FixedText string `json:"fixedText,omitempty"`
	Font      string `json:"font,omitempty"`
}

// PageNumber returns the 1-based page, defaulting to the first page.
func (p Placement) PageNumber() int {
	if p.Page <= 0 {
		return 1
	}
	return p.Page
}

// FontSize returns the point size, defaulting to DefaultFontSize.
func (p Placement) FontSize() float64 {
	if !p.Size.Set || p.Size.Value <= 0 {
		return DefaultFontSize
	}
	return p.Size.Value
}

// DrawMode returns the placement mode, defaulting to text.
func (p Placement) DrawMode() (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(string(p.Mode))) {
	case "", string(ModeText):
		return ModeText, nil
	case string(ModeFixedText):
		return ModeFixedText, nil
	case string(ModeCheck):
		return ModeCheck, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedMode, p.Mode)
	}
}

// Alignment returns the horizontal anchor, defaulting to left.
func (p Placement) Alignment() Align {
	switch Align(strings.ToLower(strings.TrimSpace(string(p.Align)))) {
	case AlignCenter:
		return AlignCenter
	case AlignRight:
		return AlignRight
	default:
		return AlignLeft
	}
}

// Percent reports whether the placement uses page-relative coordinates.
func (p Placement) Percent() (bool, error) {
	pct := p.XPct.Set && p.YPct.Set
	abs := p.X.Set && p.Y.Set
	anyPct := p.XPct.Set || p.YPct.Set
	anyAbs := p.X.Set || p.Y.Set
	switch {
	case pct && !anyAbs:
		return true, nil
	case abs && !anyPct:
		return false, nil
	default:
		return false, ErrInvalidPlacement
	}
}

// Anchor converts the placement into PDF user space for a page of the given
// size. The result is the unaligned anchor point with a bottom-left origin.
func (p Placement) Anchor(pageWidth, pageHeight float64) (x, y float64, err error) {
	pct, err := p.Percent()
	if err != nil {
		return 0, 0, err
	}
	if pct {
		return pageWidth * p.XPct.Value / 100, pageHeight * p.YPct.Value / 100, nil
	}
	return p.X.Value, pageHeight - p.Y.Value - p.FontSize(), nil
}

// AlignedX shifts x left by half or all of the text width for center and
// right alignment.
func AlignedX(x, textWidth float64, align Align) float64 {
	switch align {
	case AlignCenter:
		return x - textWidth/2
	case AlignRight:
		return x - textWidth
	default:
		return x
	}
}

// Table is the flattened mapping in file order.
type Table struct {
	Entries []Placement
}

// Fields returns the distinct field names in file order.
func (t *Table) Fields() []string {
	seen := make(map[string]bool)
	var out []string
	for _, e := range t.Entries {
		if !seen[e.Name] {
			seen[e.Name] = true
			out = append(out, e.Name)
		}
	}
	return out
}

// Load reads a mapping file.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	t, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse mapping %s: %w", path, err)
	}
	return t, nil
}

// Parse decodes a mapping document, keeping the order fields appear in.
// Values that are not arrays are ignored, as are array items that are not
// objects.
func Parse(r io.Reader) (*Table, error) {
	dec := json.NewDecoder(r)

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMapping, err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, ErrInvalidMapping
	}

	table := &Table{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		name, ok := tok.(string)
		if !ok {
			return nil, ErrInvalidMapping
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("field %q: %w", name, err)
		}
		raw = bytes.TrimSpace(raw)
		if len(raw) == 0 || raw[0] != '[' {
			continue
		}

		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("field %q: %w", name, err)
		}
		for i, item := range items {
			item = bytes.TrimSpace(item)
			if len(item) == 0 || item[0] != '{' {
				continue
			}
			var p Placement
			if err := json.Unmarshal(item, &p); err != nil {
				return nil, fmt.Errorf("field %q placement %d: %w", name, i, err)
			}
			p.Name = name
			table.Entries = append(table.Entries, p)
		}
	}

	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMapping, err)
	}
	return table, nil
}
