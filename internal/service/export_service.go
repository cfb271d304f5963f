package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/smk-presensi-api/internal/dto"
	"github.com/noah-isme/smk-presensi-api/internal/models"
	appErrors "github.com/noah-isme/smk-presensi-api/pkg/errors"
	"github.com/noah-isme/smk-presensi-api/pkg/export"
)

// ExportFormat selects the rendered file type.
type ExportFormat string

const (
	FormatCSV  ExportFormat = "csv"
	FormatXLSX ExportFormat = "xlsx"
	FormatPDF  ExportFormat = "pdf"
)

// Valid reports whether the format is supported.
func (f ExportFormat) Valid() bool {
	switch f {
	case FormatCSV, FormatXLSX, FormatPDF:
		return true
	default:
		return false
	}
}

// ContentType returns the download MIME type.
func (f ExportFormat) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/pdf"
	}
}

// ExportFile is a rendered report ready for download.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

type exportReports interface {
	Daily(ctx context.Context, scope models.LedgerScope, date time.Time, filter models.PersonFilter) (*dto.DailyReport, error)
	RangeDetail(ctx context.Context, scope models.LedgerScope, from, to time.Time, filter models.PersonFilter) ([]dto.RangeDetailRow, error)
	Matrix(ctx context.Context, scope models.LedgerScope, month time.Time, filter models.PersonFilter) (*dto.MatrixReport, error)
	Individual(ctx context.Context, scope models.LedgerScope, personID string, from, to time.Time) (*dto.IndividualSummary, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type xlsxRenderer interface {
	Render(data export.Dataset, sheetName string) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportService renders report aggregates into downloadable CSV, XLSX and PDF
// files.
type ExportService struct {
	reports exportReports
	csv     csvRenderer
	xlsx    xlsxRenderer
	pdf     pdfRenderer
	logger  *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(reports exportReports, csv csvRenderer, xlsx xlsxRenderer, pdf pdfRenderer, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if xlsx == nil {
		xlsx = export.NewXLSXExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{reports: reports, csv: csv, xlsx: xlsx, pdf: pdf, logger: logger}
}

// DailyReport renders the daily roster of one ledger.
func (s *ExportService) DailyReport(ctx context.Context, scope models.LedgerScope, date time.Time, filter models.PersonFilter, format ExportFormat) (*ExportFile, error) {
	report, err := s.reports.Daily(ctx, scope, date, filter)
	if err != nil {
		return nil, err
	}

	data := export.Dataset{
		Title:    fmt.Sprintf("Laporan Absensi Harian %s (%s)", scopeLabel(scope), report.Date),
		Filename: fmt.Sprintf("absensi_harian_%s_%s", scope, report.Date),
		Headers:  []string{"No", "ID", "Nama", "Kelompok", "Status", "Jam Masuk", "Jam Pulang", "Keterlambatan", "Total Waktu", "Keterangan"},
	}
	for i, row := range report.Rows {
		data.Rows = append(data.Rows, map[string]string{
			"No":            strconv.Itoa(i + 1),
			"ID":            row.PersonID,
			"Nama":          row.Name,
			"Kelompok":      row.Group,
			"Status":        row.Status,
			"Jam Masuk":     row.EntryTime,
			"Jam Pulang":    row.ExitTime,
			"Keterlambatan": row.Lateness,
			"Total Waktu":   row.Duration,
			"Keterangan":    row.Note,
		})
	}
	return s.render(data, format)
}

// RangeReport renders the per-day detail of a date range.
func (s *ExportService) RangeReport(ctx context.Context, scope models.LedgerScope, from, to time.Time, filter models.PersonFilter, format ExportFormat) (*ExportFile, error) {
	rows, err := s.reports.RangeDetail(ctx, scope, from, to, filter)
	if err != nil {
		return nil, err
	}

	data := export.Dataset{
		Title: fmt.Sprintf("Rekap Absensi %s %s s.d. %s",
			scopeLabel(scope), from.Format("2006-01-02"), to.Format("2006-01-02")),
		Filename: fmt.Sprintf("rekap_absensi_%s_%s_%s", scope, from.Format("20060102"), to.Format("20060102")),
		Headers:  []string{"Tanggal", "ID", "Nama", "Kelompok", "Status", "Jam Masuk", "Jam Pulang", "Keterlambatan", "Durasi"},
	}
	for _, row := range rows {
		data.Rows = append(data.Rows, map[string]string{
			"Tanggal":       row.Date,
			"ID":            row.PersonID,
			"Nama":          row.Name,
			"Kelompok":      row.Group,
			"Status":        row.Status,
			"Jam Masuk":     row.EntryTime,
			"Jam Pulang":    row.ExitTime,
			"Keterlambatan": row.Lateness,
			"Durasi":        row.Duration,
		})
	}
	return s.render(data, format)
}

// MatrixReport renders the monthly H/S/I/A grid.
func (s *ExportService) MatrixReport(ctx context.Context, scope models.LedgerScope, month time.Time, filter models.PersonFilter, format ExportFormat) (*ExportFile, error) {
	matrix, err := s.reports.Matrix(ctx, scope, month, filter)
	if err != nil {
		return nil, err
	}

	headers := []string{"No", "ID", "Nama"}
	for _, day := range matrix.Days {
		headers = append(headers, strconv.Itoa(day))
	}
	headers = append(headers, "Hadir", "Sakit", "Izin", "Alfa")

	data := export.Dataset{
		Title:    fmt.Sprintf("Matriks Absensi %s %s", scopeLabel(scope), matrix.Month),
		Filename: fmt.Sprintf("matriks_absensi_%s_%s", scope, matrix.Month),
		Headers:  headers,
	}
	for i, row := range matrix.Rows {
		record := map[string]string{
			"No":    strconv.Itoa(i + 1),
			"ID":    row.PersonID,
			"Nama":  row.Name,
			"Hadir": strconv.Itoa(row.Present),
			"Sakit": strconv.Itoa(row.Sick),
			"Izin":  strconv.Itoa(row.Excused),
			"Alfa":  strconv.Itoa(row.Absent),
		}
		for j, cell := range row.Cells {
			record[strconv.Itoa(j+1)] = cell
		}
		data.Rows = append(data.Rows, record)
	}
	return s.render(data, format)
}

// IndividualReport renders one person's range history: the per-day rows, a
// blank separator and the four status totals.
func (s *ExportService) IndividualReport(ctx context.Context, scope models.LedgerScope, personID string, from, to time.Time, format ExportFormat) (*ExportFile, error) {
	summary, err := s.reports.Individual(ctx, scope, personID, from, to)
	if err != nil {
		return nil, err
	}

	data := export.Dataset{
		Title: fmt.Sprintf("Rekap Absensi %s %s s.d. %s", summary.Name, summary.From, summary.To),
		Filename: fmt.Sprintf("rekap_individu_%s_%s_%s",
			summary.PersonID, from.Format("20060102"), to.Format("20060102")),
		Headers: []string{"Tanggal", "Status", "Jam Masuk", "Jam Pulang", "Keterlambatan", "Durasi"},
	}
	for _, row := range summary.Days {
		data.Rows = append(data.Rows, map[string]string{
			"Tanggal":       row.Date,
			"Status":        row.Status,
			"Jam Masuk":     row.EntryTime,
			"Jam Pulang":    row.ExitTime,
			"Keterlambatan": row.Lateness,
			"Durasi":        row.Duration,
		})
	}

	data.Rows = append(data.Rows, map[string]string{})
	totals := []struct {
		label string
		count int
	}{
		{"Total Hadir", summary.Tally.Present},
		{"Total Sakit", summary.Tally.Sick},
		{"Total Izin", summary.Tally.Excused},
		{"Total Alfa", summary.Tally.Absent},
	}
	for _, total := range totals {
		data.Rows = append(data.Rows, map[string]string{
			"Tanggal": total.label,
			"Status":  strconv.Itoa(total.count),
		})
	}
	return s.render(data, format)
}

func (s *ExportService) render(data export.Dataset, format ExportFormat) (*ExportFile, error) {
	if !format.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format ekspor tidak dikenal")
	}

	var (
		payload []byte
		err     error
	)
	switch format {
	case FormatCSV:
		payload, err = s.csv.Render(data)
	case FormatXLSX:
		payload, err = s.xlsx.Render(data, data.Title)
	default:
		payload, err = s.pdf.Render(data, data.Title)
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	return &ExportFile{
		Filename:    fmt.Sprintf("%s.%s", data.Filename, format),
		ContentType: format.ContentType(),
		Data:        payload,
	}, nil
}

func scopeLabel(scope models.LedgerScope) string {
	if scope == models.LedgerStudents {
		return "Siswa"
	}
	return "Pegawai"
}
