package wrapper

import (
	"bytes"
	"fmt"

	"github.com/a3tai/form-filler/internal/pdf/render"
	"github.com/ledongthuc/pdf"
)

// US Letter, used when a page declares no MediaBox anywhere in its tree.
var defaultPageSize = render.PageSize{Width: 612, Height: 792}

// LedongthucLibrary inspects templates using ledongthuc/pdf
type LedongthucLibrary struct{}

// NewLedongthucLibrary creates a new ledongthuc library wrapper
func NewLedongthucLibrary() *LedongthucLibrary {
	return &LedongthucLibrary{}
}

// GetLibraryType returns the library type
func (l *LedongthucLibrary) GetLibraryType() LibraryType {
	return LibraryLedongthuc
}

// Inspect opens the template and reads each page's MediaBox.
func (l *LedongthucLibrary) Inspect(data []byte) (info *TemplateInfo, err error) {
	// ledongthuc/pdf panics on some malformed xref tables
	defer func() {
		if r := recover(); r != nil {
			info = nil
			err = &WrapperError{
				Library: LibraryLedongthuc,
				Op:      "inspect",
				Err:     fmt.Errorf("failed to parse PDF: %v", r),
			}
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &WrapperError{
			Library: LibraryLedongthuc,
			Op:      "inspect",
			Err:     fmt.Errorf("failed to open PDF: %w", err),
		}
	}

	count := reader.NumPage()
	if count == 0 {
		return nil, &WrapperError{Library: LibraryLedongthuc, Op: "inspect", Err: ErrNoPages.Err}
	}

	info = &TemplateInfo{
		Library:   LibraryLedongthuc,
		PageCount: count,
		Pages:     make([]render.PageSize, 0, count),
	}
	for i := 1; i <= count; i++ {
		info.Pages = append(info.Pages, mediaBoxSize(reader.Page(i).V))
	}
	return info, nil
}

// mediaBoxSize reads the MediaBox of a page, following Parent links for
// inherited boxes.
func mediaBoxSize(page pdf.Value) render.PageSize {
	for v := page; !v.IsNull(); v = v.Key("Parent") {
		box := v.Key("MediaBox")
		if box.Kind() != pdf.Array || box.Len() < 4 {
			continue
		}
		llx, lly := box.Index(0).Float64(), box.Index(1).Float64()
		urx, ury := box.Index(2).Float64(), box.Index(3).Float64()
		return render.PageSize{Width: urx - llx, Height: ury - lly}
	}
	return defaultPageSize
}
