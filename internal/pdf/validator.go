package pdf

import (
	"fmt"
	"os"
	"strings"

	"github.com/a3tai/form-filler/internal/pdf/wrapper"
)

// Validator handles template file validation
type Validator struct {
	maxFileSize int64
}

// NewValidator creates a new template validator with the specified constraints
func NewValidator(maxFileSize int64) *Validator {
	return &Validator{
		maxFileSize: maxFileSize,
	}
}

// ValidateTemplate performs comprehensive validation on the template and
// reports what every PDF library reads from it.
func (v *Validator) ValidateTemplate(path string) *TemplateReport {
	report := &TemplateReport{Path: path}

	data, err := v.ReadTemplate(path)
	if err != nil {
		report.Message = err.Error()
		return report
	}
	report.Size = int64(len(data))

	infos, problems := wrapper.CrossCheck(data)
	for _, p := range problems {
		report.Warnings = append(report.Warnings, p.Error())
	}
	if len(infos) == 0 {
		report.Message = "no PDF library could read the template"
		return report
	}

	report.Valid = true
	report.Libraries = infos
	report.PageCount = infos[0].PageCount
	report.Pages = infos[0].Pages
	return report
}

// ReadTemplate checks the file and returns its bytes. A missing file yields
// an error satisfying os.IsNotExist.
func (v *Validator) ReadTemplate(path string) ([]byte, error) {
	if path == "" {
		return nil, fmt.Errorf("path cannot be empty")
	}

	fileInfo, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if err := v.ValidateFileInfo(path, fileInfo); err != nil {
		return nil, err
	}

	return os.ReadFile(path)
}

// ValidateFileInfo performs basic validation on file info without opening the PDF
func (v *Validator) ValidateFileInfo(filePath string, fileInfo os.FileInfo) error {
	if fileInfo.IsDir() {
		return fmt.Errorf("path is a directory, not a file: %s", filePath)
	}

	if !strings.HasSuffix(strings.ToLower(filePath), ".pdf") {
		return fmt.Errorf("file is not a PDF: %s", filePath)
	}

	if fileInfo.Size() == 0 {
		return fmt.Errorf("file is empty: %s", filePath)
	}

	if v.maxFileSize > 0 && fileInfo.Size() > v.maxFileSize {
		return fmt.Errorf("file too large: %d bytes (max: %d bytes)",
			fileInfo.Size(), v.maxFileSize)
	}

	return nil
}
