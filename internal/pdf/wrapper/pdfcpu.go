package wrapper

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/a3tai/form-filler/internal/pdf/render"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/font"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// LatinFont is the core font used for check marks and Latin-only overrides.
const LatinFont = "Helvetica"

// pdfcpu keeps its user font registry in package globals.
var fontMu sync.Mutex

func init() {
	// Keep pdfcpu from creating a config directory under $HOME.
	model.ConfigPath = "disable"
}

// PDFCPULibrary reads, measures and stamps templates using pdfcpu
type PDFCPULibrary struct{}

// NewPDFCPULibrary creates a new pdfcpu library wrapper
func NewPDFCPULibrary() *PDFCPULibrary {
	return &PDFCPULibrary{}
}

func newConfiguration() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

// GetLibraryType returns the library type
func (p *PDFCPULibrary) GetLibraryType() LibraryType {
	return LibraryPDFCPU
}

// Inspect reads the page count and page dimensions of a template.
func (p *PDFCPULibrary) Inspect(data []byte) (*TemplateInfo, error) {
	conf := newConfiguration()

	ctx, err := api.ReadContext(bytes.NewReader(data), conf)
	if err != nil {
		return nil, &WrapperError{
			Library: LibraryPDFCPU,
			Op:      "inspect",
			Err:     fmt.Errorf("failed to read PDF context: %w", err),
		}
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return nil, &WrapperError{
			Library: LibraryPDFCPU,
			Op:      "inspect",
			Err:     fmt.Errorf("failed to ensure page count: %w", err),
		}
	}
	if ctx.PageCount == 0 {
		return nil, &WrapperError{Library: LibraryPDFCPU, Op: "inspect", Err: ErrNoPages.Err}
	}

	dims, err := api.PageDims(bytes.NewReader(data), conf)
	if err != nil {
		return nil, &WrapperError{
			Library: LibraryPDFCPU,
			Op:      "page_dims",
			Err:     fmt.Errorf("failed to read page dimensions: %w", err),
		}
	}

	info := &TemplateInfo{
		Library:   LibraryPDFCPU,
		PageCount: ctx.PageCount,
		Pages:     make([]render.PageSize, 0, len(dims)),
	}
	for _, d := range dims {
		info.Pages = append(info.Pages, render.PageSize{Width: d.Width, Height: d.Height})
	}
	return info, nil
}

// Stamp draws every stamp onto its page and writes the resulting document.
// With no stamps the template is written unchanged.
func (p *PDFCPULibrary) Stamp(template []byte, stamps []render.Stamp, w io.Writer) error {
	if len(stamps) == 0 {
		_, err := w.Write(template)
		return err
	}

	fontMu.Lock()
	defer fontMu.Unlock()

	pages := make(map[int][]*model.Watermark)
	for _, s := range stamps {
		wm, err := api.TextWatermark(s.Text, stampDescription(s), true, false, types.POINTS)
		if err != nil {
			return &WrapperError{
				Library: LibraryPDFCPU,
				Op:      "stamp",
				Err:     fmt.Errorf("field %s: %w", s.Field, err),
			}
		}
		pages[s.Page] = append(pages[s.Page], wm)
	}

	if err := api.AddWatermarksSliceMap(bytes.NewReader(template), w, pages, newConfiguration()); err != nil {
		return &WrapperError{
			Library: LibraryPDFCPU,
			Op:      "stamp",
			Err:     fmt.Errorf("failed to apply stamps: %w", err),
		}
	}
	return nil
}

// stampDescription renders a stamp as a pdfcpu watermark description: an
// absolute font size, no rotation, anchored at the bottom-left corner and
// offset to the stamp's point. pdfcpu sets text on a baseline raised by the
// font's descent inside the watermark box, so the offset is lowered by the
// same amount to keep the baseline on the stamp's point. Callers hold fontMu.
func stampDescription(s render.Stamp) string {
	size := pointSize(s.Size)
	y := s.Y - math.Ceil(font.Descent(s.Font, size))
	return fmt.Sprintf(
		"fontname:%s, points:%d, scalefactor:1 abs, position:bl, offset:%.2f %.2f, rotation:0, fillcolor:#000000, opacity:1",
		s.Font, size, s.X, y)
}

// pointSize rounds a mapping size to whole points. pdfcpu lays out text in
// integer font sizes, so drawing and measuring share this rounding.
func pointSize(size float64) int {
	n := int(math.Round(size))
	if n < 1 {
		return 1
	}
	return n
}

// TextWidth implements render.Measurer with pdfcpu's font metrics.
func (p *PDFCPULibrary) TextWidth(text, fontName string, size float64) float64 {
	fontMu.Lock()
	defer fontMu.Unlock()
	return font.TextWidth(text, fontName, pointSize(size))
}

// InstallFont registers a TrueType font with pdfcpu and returns the name
// stamps must use. Each font file gets its own directory under cacheDir,
// keyed by its path, size and modification time, so a replaced file is
// installed afresh and fonts cached by earlier runs are never mistaken for
// it. When preferred names a font that is already registered, it is used
// as is.
func (p *PDFCPULibrary) InstallFont(path, cacheDir, preferred string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", &WrapperError{Library: LibraryPDFCPU, Op: "install_font", Err: err}
	}
	dir := fontCacheDir(cacheDir, path, info)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", &WrapperError{
			Library: LibraryPDFCPU,
			Op:      "install_font",
			Err:     fmt.Errorf("failed to create font cache %s: %w", dir, err),
		}
	}

	fontMu.Lock()
	defer fontMu.Unlock()

	font.UserFontDir = dir
	if err := api.InstallFonts([]string{path}); err != nil {
		return "", &WrapperError{
			Library: LibraryPDFCPU,
			Op:      "install_font",
			Err:     fmt.Errorf("failed to install %s: %w", path, err),
		}
	}

	preferred = strings.TrimSpace(preferred)
	if preferred != "" && font.IsUserFont(preferred) {
		return preferred, nil
	}

	names, err := cachedFontNames(dir)
	if err != nil {
		return "", &WrapperError{Library: LibraryPDFCPU, Op: "install_font", Err: err}
	}
	for _, name := range names {
		if font.IsUserFont(name) {
			return name, nil
		}
	}
	return "", ErrFontNotDetected
}

// fontCacheDir names the cache directory for one version of a font file.
func fontCacheDir(cacheDir, path string, info os.FileInfo) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s\x00%d\x00%d", path, info.Size(), info.ModTime().UnixNano())))
	return filepath.Join(cacheDir, hex.EncodeToString(sum[:8]))
}

// cachedFontNames lists the fonts pdfcpu stored in dir, sorted. pdfcpu
// names each metrics file after the font's PostScript name.
func cachedFontNames(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".gob" {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".gob"))
	}
	sort.Strings(names)
	return names, nil
}

// IsFontAvailable reports whether pdfcpu can draw with the named font.
func IsFontAvailable(name string) bool {
	fontMu.Lock()
	defer fontMu.Unlock()
	return font.IsCoreFont(name) || font.IsUserFont(name)
}
