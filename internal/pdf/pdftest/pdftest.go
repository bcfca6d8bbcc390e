// Package pdftest builds small PDF documents for tests.
package pdftest

import (
	"bytes"
	"fmt"
)

// A4 page size in points.
const (
	A4Width  = 595.0
	A4Height = 842.0
)

// Size is a page's width and height in points.
type Size struct {
	Width, Height float64
}

// Document returns a valid PDF with one blank page per size. Every page has
// its own content stream. With no sizes it returns a single A4 page.
func Document(sizes ...Size) []byte {
	if len(sizes) == 0 {
		sizes = []Size{{A4Width, A4Height}}
	}

	// Objects: catalog, page tree, one page per size, then one content
	// stream per page.
	firstContents := 3 + len(sizes)
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		pagesObject(len(sizes)),
	}
	for i, s := range sizes {
		objects = append(objects, fmt.Sprintf(
			"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 %g %g] /Resources << >> /Contents %d 0 R >>",
			s.Width, s.Height, firstContents+i))
	}
	for range sizes {
		objects = append(objects, "<< /Length 0 >>\nstream\n\nendstream")
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

func pagesObject(n int) string {
	var kids bytes.Buffer
	for i := 0; i < n; i++ {
		if i > 0 {
			kids.WriteByte(' ')
		}
		fmt.Fprintf(&kids, "%d 0 R", 3+i)
	}
	return fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", kids.String(), n)
}
