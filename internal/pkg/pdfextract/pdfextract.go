package pdfextract

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ExtractText reads the entire content of r and returns the plain text of every
// page, concatenated in page order and separated by newlines.
// Returns the page count alongside the text; an empty string with a nil error
// means the PDF has no extractable text.
func ExtractText(r io.Reader) (string, int, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", 0, err
	}
	if len(b) == 0 {
		return "", 0, nil
	}
	readerAt := bytes.NewReader(b)
	pdfReader, err := pdf.NewReader(readerAt, int64(len(b)))
	if err != nil {
		return "", 0, err
	}

	pages := pdfReader.NumPage()
	var sb strings.Builder
	for i := 1; i <= pages; i++ {
		page := pdfReader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", pages, fmt.Errorf("extract page %d failed: %w", i, err)
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}
	return sb.String(), pages, nil
}
