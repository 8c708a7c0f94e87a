package content

import (
	"bytes"
	"fmt"
	"strings"

	pdflib "github.com/ledongthuc/pdf"
)

// pdfInfo is what the loader learns from a local paper PDF.
type pdfInfo struct {
	Pages int
	Text  string // plain text of the first page
}

// readPDF opens a PDF held in memory. The library panics on some
// malformed files, so panics are turned into errors.
func readPDF(b []byte) (info pdfInfo, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("read pdf: %v", r)
		}
	}()
	reader, err := pdflib.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return pdfInfo{}, fmt.Errorf("open pdf: %w", err)
	}
	info.Pages = reader.NumPage()
	for i := 1; i <= info.Pages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		info.Text = strings.TrimSpace(text)
		break
	}
	return info, nil
}
