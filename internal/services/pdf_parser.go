package services

import (
	"fmt"
	"os"

	"github.com/ledongthuc/pdf"
)

// PDFInspector reads document metadata shown next to each chosen file.
// Text extraction and scoring happen in the remote service.
type PDFInspector interface {
	Inspect(filePath string) (*PDFInfo, error)
}

type PDFInfo struct {
	PageCount int
}

type pdfInspector struct{}

func NewPDFInspector() PDFInspector {
	return &pdfInspector{}
}

func (p *pdfInspector) Inspect(filePath string) (info *PDFInfo, err error) {
	// the pdf reader panics on some malformed xref tables
	defer func() {
		if r := recover(); r != nil {
			info, err = nil, fmt.Errorf("failed to read PDF: %v", r)
		}
	}()

	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("file does not exist: %s", filePath)
	}

	f, r, err := pdf.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	return &PDFInfo{
		PageCount: r.NumPage(),
	}, nil
}
