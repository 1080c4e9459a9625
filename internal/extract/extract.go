// Package extract turns uploaded files into a single text blob for ingestion.
package extract

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"netauto/internal/pkg/pdfextract"
)

var (
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrExtraction          = errors.New("text extraction failed")
)

// Result carries the extracted text plus what was learned about the file.
type Result struct {
	Text     string
	FileType string
	Pages    int
}

var handlers = map[string]func(io.Reader) (Result, error){
	".txt":  extractPlain("text"),
	".md":   extractPlain("markdown"),
	".pdf":  extractPDF,
	".csv":  extractCSV,
	".xlsx": extractXLSX,
}

// SupportedExtensions lists the suffixes Extract understands.
func SupportedExtensions() []string {
	return []string{".txt", ".pdf", ".csv", ".xlsx", ".md"}
}

// IsSupported reports whether the file name has a known suffix.
func IsSupported(filename string) bool {
	_, ok := handlers[strings.ToLower(filepath.Ext(filename))]
	return ok
}

// Extract dispatches on the file-name suffix. Empty output is an error.
func Extract(filename string, r io.Reader) (Result, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	handler, ok := handlers[ext]
	if !ok {
		return Result{}, fmt.Errorf("%w: %q", ErrUnsupportedFileType, ext)
	}
	res, err := handler(r)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrExtraction, err)
	}
	if strings.TrimSpace(res.Text) == "" {
		return Result{}, fmt.Errorf("%w: no text in %s", ErrExtraction, filename)
	}
	return res, nil
}

func extractPlain(fileType string) func(io.Reader) (Result, error) {
	return func(r io.Reader) (Result, error) {
		b, err := io.ReadAll(r)
		if err != nil {
			return Result{}, err
		}
		if !utf8.Valid(b) {
			return Result{}, errors.New("content is not valid utf-8")
		}
		return Result{Text: string(b), FileType: fileType}, nil
	}
}

func extractPDF(r io.Reader) (Result, error) {
	text, pages, err := pdfextract.ExtractText(r)
	if err != nil {
		return Result{}, err
	}
	return Result{Text: text, FileType: "pdf", Pages: pages}, nil
}

func extractCSV(r io.Reader) (Result, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return Result{}, err
	}
	return Result{Text: formatTable(rows), FileType: "csv"}, nil
}

func extractXLSX(r io.Reader) (Result, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return Result{}, err
	}
	f, err := excelize.OpenReader(bytes.NewReader(b))
	if err != nil {
		return Result{}, err
	}
	defer f.Close()

	var sb strings.Builder
	sheets := f.GetSheetList()
	for i, sheet := range sheets {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return Result{}, fmt.Errorf("read sheet %s failed: %w", sheet, err)
		}
		if len(rows) == 0 {
			continue
		}
		if i > 0 && sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString("Sheet: " + sheet + "\n")
		sb.WriteString(formatTable(rows))
	}
	return Result{Text: sb.String(), FileType: "xlsx", Pages: len(sheets)}, nil
}

// formatTable renders rows as space-padded columns with a leading row index,
// the first row being treated as the header.
func formatTable(rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}
	cols := 0
	for _, row := range rows {
		if len(row) > cols {
			cols = len(row)
		}
	}
	widths := make([]int, cols)
	for _, row := range rows {
		for i, cell := range row {
			if n := utf8.RuneCountInString(cell); n > widths[i] {
				widths[i] = n
			}
		}
	}
	indexWidth := len(fmt.Sprint(len(rows) - 1))

	var sb strings.Builder
	for r, row := range rows {
		if r == 0 {
			sb.WriteString(strings.Repeat(" ", indexWidth))
		} else {
			sb.WriteString(fmt.Sprintf("%*d", indexWidth, r-1))
		}
		for i := 0; i < cols; i++ {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			sb.WriteString("  ")
			sb.WriteString(cell)
			sb.WriteString(strings.Repeat(" ", widths[i]-utf8.RuneCountInString(cell)))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
