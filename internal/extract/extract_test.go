package extract

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestExtractTextVerbatim(t *testing.T) {
	content := "hostname R15\ninterface Gi0/1\n description uplink\n"
	res, err := Extract("router.TXT", strings.NewReader(content))
	require.NoError(t, err)
	assert.Equal(t, content, res.Text)
	assert.Equal(t, "text", res.FileType)
}

func TestExtractMarkdown(t *testing.T) {
	res, err := Extract("notes.md", strings.NewReader("# OSPF\narea 0"))
	require.NoError(t, err)
	assert.Equal(t, "# OSPF\narea 0", res.Text)
	assert.Equal(t, "markdown", res.FileType)
}

func TestExtractCSV(t *testing.T) {
	content := "name,ip,role\nR15,172.16.39.115,PE\nR19,172.16.39.119,CE\n"
	res, err := Extract("inventory.csv", strings.NewReader(content))
	require.NoError(t, err)

	for _, want := range []string{"name", "ip", "role", "R15", "172.16.39.115", "R19", "CE"} {
		assert.Contains(t, res.Text, want)
	}
	assert.Equal(t, "csv", res.FileType)
	assert.Len(t, strings.Split(strings.TrimRight(res.Text, "\n"), "\n"), 3)
}

func TestExtractCSVRaggedRows(t *testing.T) {
	res, err := Extract("ragged.csv", strings.NewReader("a,b,c\n1\n2,3\n"))
	require.NoError(t, err)
	assert.Contains(t, res.Text, "c")
	assert.Contains(t, res.Text, "3")
}

func TestExtractXLSX(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "device"))
	require.NoError(t, f.SetCellValue("Sheet1", "B1", "as_number"))
	require.NoError(t, f.SetCellValue("Sheet1", "A2", "R18"))
	require.NoError(t, f.SetCellValue("Sheet1", "B2", 2222))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	require.NoError(t, f.Close())

	res, err := Extract("devices.xlsx", buf)
	require.NoError(t, err)
	assert.Contains(t, res.Text, "Sheet: Sheet1")
	assert.Contains(t, res.Text, "device")
	assert.Contains(t, res.Text, "R18")
	assert.Contains(t, res.Text, "2222")
	assert.Equal(t, "xlsx", res.FileType)
}

func TestExtractUnsupported(t *testing.T) {
	_, err := Extract("diagram.vsdx", strings.NewReader("x"))
	require.ErrorIs(t, err, ErrUnsupportedFileType)
	assert.False(t, IsSupported("diagram.vsdx"))
	assert.True(t, IsSupported("Report.PDF"))
}

func TestExtractEmpty(t *testing.T) {
	_, err := Extract("empty.txt", strings.NewReader("   \n"))
	require.ErrorIs(t, err, ErrExtraction)
}

func TestExtractInvalidPDF(t *testing.T) {
	_, err := Extract("broken.pdf", strings.NewReader("not a pdf at all"))
	require.ErrorIs(t, err, ErrExtraction)
}

func TestExtractInvalidUTF8(t *testing.T) {
	_, err := Extract("bin.txt", strings.NewReader(string([]byte{0xff, 0xfe, 0xfd})))
	require.ErrorIs(t, err, ErrExtraction)
}

func TestFormatTable(t *testing.T) {
	out := formatTable([][]string{{"a", "bb"}, {"ccc", "d"}})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[1], "0"))
	assert.Empty(t, formatTable(nil))
}

// onePagePDF builds a single-page PDF that shows text in Helvetica.
func onePagePDF(text string) string {
	content := fmt.Sprintf("BT /F1 12 Tf 72 712 Td (%s) Tj ET", text)
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Contents 4 0 R /Resources << /Font << /F1 5 0 R >> >> >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
	}

	var b strings.Builder
	b.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = b.Len()
		fmt.Fprintf(&b, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := b.Len()
	fmt.Fprintf(&b, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&b, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&b, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return b.String()
}

func TestExtractPDF(t *testing.T) {
	res, err := Extract("runbook.pdf", strings.NewReader(onePagePDF("interface Gi0/1 uplink")))
	require.NoError(t, err)
	assert.Equal(t, "pdf", res.FileType)
	assert.Equal(t, 1, res.Pages)
	assert.Contains(t, res.Text, "interface Gi0/1 uplink")
}
