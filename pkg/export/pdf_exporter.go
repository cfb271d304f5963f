package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// PDFExporter renders datasets as a landscape A4 table. Attendance exports
// range from the narrow daily roster to the monthly matrix with a column per
// day of the month, so column widths are sized from the content instead of
// split evenly.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render creates a PDF document with an optional title and table body.
func (e *PDFExporter) Render(data Dataset, title string) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("pdf requires at least one header")
	}
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 12, 10)
	pdf.AddPage()

	if title != "" {
		pdf.SetFont("Arial", "B", 13)
		pdf.CellFormat(0, 9, strings.ToUpper(title), "", 1, "C", false, 0, "")
		pdf.Ln(4)
	}

	fontSize, rowHeight := 9.0, 7.0
	if len(data.Headers) > 14 {
		fontSize, rowHeight = 6.5, 5.5
	}

	pdf.SetFont("Arial", "", fontSize)
	widths := e.columnWidths(pdf, data)

	pdf.SetFont("Arial", "B", fontSize)
	for i, header := range data.Headers {
		pdf.CellFormat(widths[i], rowHeight, header, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", fontSize)
	for _, row := range data.Rows {
		for i, header := range data.Headers {
			pdf.CellFormat(widths[i], rowHeight, row[header], "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// columnWidths distributes the printable width proportionally to the widest
// string in each column. Single-letter matrix columns keep a small floor so
// their borders stay visible.
func (e *PDFExporter) columnWidths(pdf *gofpdf.Fpdf, data Dataset) []float64 {
	pageWidth, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	printable := pageWidth - left - right

	widths := make([]float64, len(data.Headers))
	total := 0.0
	for i, header := range data.Headers {
		w := pdf.GetStringWidth(header)
		for _, row := range data.Rows {
			if cw := pdf.GetStringWidth(row[header]); cw > w {
				w = cw
			}
		}
		w += 3
		if w < 6 {
			w = 6
		}
		widths[i] = w
		total += w
	}
	for i := range widths {
		widths[i] *= printable / total
	}
	return widths
}
