package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/smk-presensi-api/internal/dto"
	"github.com/noah-isme/smk-presensi-api/internal/models"
	"github.com/noah-isme/smk-presensi-api/internal/service"
	appErrors "github.com/noah-isme/smk-presensi-api/pkg/errors"
	"github.com/noah-isme/smk-presensi-api/pkg/response"
)

type reportService interface {
	Daily(ctx context.Context, scope models.LedgerScope, date time.Time, filter models.PersonFilter) (*dto.DailyReport, error)
	RangeDetail(ctx context.Context, scope models.LedgerScope, from, to time.Time, filter models.PersonFilter) ([]dto.RangeDetailRow, error)
	Matrix(ctx context.Context, scope models.LedgerScope, month time.Time, filter models.PersonFilter) (*dto.MatrixReport, error)
	Individual(ctx context.Context, scope models.LedgerScope, personID string, from, to time.Time) (*dto.IndividualSummary, error)
}

type exportService interface {
	DailyReport(ctx context.Context, scope models.LedgerScope, date time.Time, filter models.PersonFilter, format service.ExportFormat) (*service.ExportFile, error)
	RangeReport(ctx context.Context, scope models.LedgerScope, from, to time.Time, filter models.PersonFilter, format service.ExportFormat) (*service.ExportFile, error)
	MatrixReport(ctx context.Context, scope models.LedgerScope, month time.Time, filter models.PersonFilter, format service.ExportFormat) (*service.ExportFile, error)
	IndividualReport(ctx context.Context, scope models.LedgerScope, personID string, from, to time.Time, format service.ExportFormat) (*service.ExportFile, error)
}

// ReportHandler serves report aggregates and their file exports.
type ReportHandler struct {
	reports reportService
	exports exportService
}

// NewReportHandler constructs the handler.
func NewReportHandler(reports reportService, exports exportService) *ReportHandler {
	return &ReportHandler{reports: reports, exports: exports}
}

// Daily godoc
// @Summary Per-person roster for one date
// @Tags Reports
// @Produce json
// @Param scope query string false "siswa or pegawai (default siswa)"
// @Param tanggal query string false "Date (YYYY-MM-DD). Defaults to today"
// @Param kelas query string false "Class filter (students)"
// @Param role query string false "Role filter (employees)"
// @Success 200 {object} response.Envelope
// @Router /reports/daily [get]
func (h *ReportHandler) Daily(c *gin.Context) {
	scope, err := queryScope(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	date, err := queryDate(c, "tanggal")
	if err != nil {
		response.Error(c, err)
		return
	}
	report, err := h.reports.Daily(c.Request.Context(), scope, date, queryFilter(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// Range godoc
// @Summary Per-person, per-day detail over a date range
// @Tags Reports
// @Produce json
// @Param scope query string false "siswa or pegawai (default siswa)"
// @Param dari query string true "Range start (YYYY-MM-DD)"
// @Param sampai query string true "Range end (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /reports/range [get]
func (h *ReportHandler) Range(c *gin.Context) {
	scope, from, to, err := rangeParams(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	rows, err := h.reports.RangeDetail(c.Request.Context(), scope, from, to, queryFilter(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// Matrix godoc
// @Summary Monthly person-by-day status grid
// @Tags Reports
// @Produce json
// @Param scope query string false "siswa or pegawai (default siswa)"
// @Param bulan query string false "Month (YYYY-MM). Defaults to this month"
// @Success 200 {object} response.Envelope
// @Router /reports/matrix [get]
func (h *ReportHandler) Matrix(c *gin.Context) {
	scope, err := queryScope(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	month, err := queryMonth(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	report, err := h.reports.Matrix(c.Request.Context(), scope, month, queryFilter(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// Individual godoc
// @Summary One person's history and tallies over a range
// @Tags Reports
// @Produce json
// @Param id path string true "Person ID (NIS or employee number)"
// @Param scope query string false "siswa or pegawai (default siswa)"
// @Param dari query string true "Range start (YYYY-MM-DD)"
// @Param sampai query string true "Range end (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /reports/individual/{id} [get]
func (h *ReportHandler) Individual(c *gin.Context) {
	scope, from, to, err := rangeParams(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	summary, err := h.reports.Individual(c.Request.Context(), scope, c.Param("id"), from, to)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// ExportDaily godoc
// @Summary Download the daily roster as csv, xlsx or pdf
// @Tags Reports
// @Produce octet-stream
// @Param format query string true "csv, xlsx or pdf"
// @Router /reports/daily/export [get]
func (h *ReportHandler) ExportDaily(c *gin.Context) {
	scope, err := queryScope(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	date, err := queryDate(c, "tanggal")
	if err != nil {
		response.Error(c, err)
		return
	}
	format, err := exportFormat(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	file, err := h.exports.DailyReport(c.Request.Context(), scope, date, queryFilter(c), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	sendFile(c, file)
}

// ExportRange godoc
// @Summary Download the range detail as csv, xlsx or pdf
// @Tags Reports
// @Produce octet-stream
// @Param format query string true "csv, xlsx or pdf"
// @Router /reports/range/export [get]
func (h *ReportHandler) ExportRange(c *gin.Context) {
	scope, from, to, err := rangeParams(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	format, err := exportFormat(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	file, err := h.exports.RangeReport(c.Request.Context(), scope, from, to, queryFilter(c), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	sendFile(c, file)
}

// ExportMatrix godoc
// @Summary Download the monthly grid as csv, xlsx or pdf
// @Tags Reports
// @Produce octet-stream
// @Param format query string true "csv, xlsx or pdf"
// @Router /reports/matrix/export [get]
func (h *ReportHandler) ExportMatrix(c *gin.Context) {
	scope, err := queryScope(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	month, err := queryMonth(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	format, err := exportFormat(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	file, err := h.exports.MatrixReport(c.Request.Context(), scope, month, queryFilter(c), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	sendFile(c, file)
}

// ExportIndividual godoc
// @Summary Download one person's range history as csv, xlsx or pdf
// @Tags Reports
// @Produce octet-stream
// @Param id path string true "Person ID (NIS or employee number)"
// @Param format query string true "csv, xlsx or pdf"
// @Router /reports/individual/{id}/export [get]
func (h *ReportHandler) ExportIndividual(c *gin.Context) {
	scope, from, to, err := rangeParams(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	format, err := exportFormat(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	file, err := h.exports.IndividualReport(c.Request.Context(), scope, c.Param("id"), from, to, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	sendFile(c, file)
}

func rangeParams(c *gin.Context) (models.LedgerScope, time.Time, time.Time, error) {
	scope, err := queryScope(c)
	if err != nil {
		return "", time.Time{}, time.Time{}, err
	}
	from, err := requireDate(c, "dari")
	if err != nil {
		return "", time.Time{}, time.Time{}, err
	}
	to, err := requireDate(c, "sampai")
	if err != nil {
		return "", time.Time{}, time.Time{}, err
	}
	if to.Before(from) {
		return "", time.Time{}, time.Time{}, appErrors.Clone(appErrors.ErrValidation, "sampai must not precede dari")
	}
	return scope, from, to, nil
}

func exportFormat(c *gin.Context) (service.ExportFormat, error) {
	format := service.ExportFormat(strings.ToLower(strings.TrimSpace(c.Query("format"))))
	if format == "" {
		format = service.FormatCSV
	}
	if !format.Valid() {
		return "", appErrors.Clone(appErrors.ErrValidation, "format must be csv, xlsx or pdf")
	}
	return format, nil
}

func sendFile(c *gin.Context, file *service.ExportFile) {
	c.Header("Content-Disposition", `attachment; filename="`+file.Filename+`"`)
	c.Data(http.StatusOK, file.ContentType, file.Data)
}
