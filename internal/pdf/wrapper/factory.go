package wrapper

import (
	"fmt"
	"strings"
)

// NewInspector creates the inspector for the named library.
func NewInspector(libType LibraryType) (Inspector, error) {
	switch LibraryType(strings.ToLower(string(libType))) {
	case LibraryPDFCPU, "":
		return NewPDFCPULibrary(), nil
	case LibraryLedongthuc:
		return NewLedongthucLibrary(), nil
	default:
		return nil, &WrapperError{
			Library: libType,
			Op:      "create",
			Err:     fmt.Errorf("%w: %s", ErrUnsupportedLibrary, libType),
		}
	}
}

// CrossCheck inspects a template with every library and reports where
// they disagree on its page count. The pdfcpu result comes first when pdfcpu
// can read the template.
func CrossCheck(data []byte) ([]*TemplateInfo, []error) {
	var (
		infos []*TemplateInfo
		errs  []error
	)
	for _, lib := range []LibraryType{LibraryPDFCPU, LibraryLedongthuc} {
		inspector, err := NewInspector(lib)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		info, err := inspector.Inspect(data)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if len(infos) > 0 && info.PageCount != infos[0].PageCount {
			errs = append(errs, &WrapperError{
				Library: lib,
				Op:      "cross_check",
				Err: fmt.Errorf("page count %d differs from %s page count %d",
					info.PageCount, infos[0].Library, infos[0].PageCount),
			})
		}
		infos = append(infos, info)
	}
	return infos, errs
}
