package export

import (
	"strconv"
	"strings"
	"testing"

	"github.com/jung-kurt/gofpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSizingPDF() *gofpdf.Fpdf {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 12, 10)
	pdf.SetFont("Arial", "", 9)
	return pdf
}

func TestPDFRenderWideMatrix(t *testing.T) {
	data := Dataset{
		Title:   "Matriks Absensi Siswa 2026-03",
		Headers: []string{"No", "ID", "Nama"},
	}
	for d := 1; d <= 31; d++ {
		data.Headers = append(data.Headers, strconv.Itoa(d))
	}
	data.Headers = append(data.Headers, "Hadir", "Sakit", "Izin", "Alfa")

	row := map[string]string{"No": "1", "ID": "1001", "Nama": "Budi Santoso"}
	for d := 1; d <= 31; d++ {
		row[strconv.Itoa(d)] = "H"
	}
	data.Rows = append(data.Rows, row)

	out, err := NewPDFExporter().Render(data, data.Title)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out), "%PDF"))
}

func TestPDFRenderRequiresHeaders(t *testing.T) {
	_, err := NewPDFExporter().Render(Dataset{}, "")
	require.Error(t, err)
}

func TestPDFColumnWidthsFillPage(t *testing.T) {
	data := Dataset{
		Headers: []string{"Nama", "H"},
		Rows:    []map[string]string{{"Nama": "Budi Santoso yang sangat panjang namanya", "H": "1"}},
	}
	e := NewPDFExporter()

	pdf := newSizingPDF()
	widths := e.columnWidths(pdf, data)
	require.Len(t, widths, 2)
	assert.Greater(t, widths[0], widths[1])

	pageWidth, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	assert.InDelta(t, pageWidth-left-right, widths[0]+widths[1], 0.01)
}
