package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/smk-presensi-api/internal/dto"
	"github.com/noah-isme/smk-presensi-api/internal/models"
	appErrors "github.com/noah-isme/smk-presensi-api/pkg/errors"
	"github.com/noah-isme/smk-presensi-api/pkg/response"
)

type attendanceService interface {
	RecordScan(ctx context.Context, req dto.ScanRequest) (*models.ScanOutcome, error)
	Override(ctx context.Context, req dto.OverrideRequest) (models.DayView, error)
	BulkOverride(ctx context.Context, req dto.BulkOverrideRequest) (*dto.BulkOverrideResult, error)
	Day(ctx context.Context, scope models.LedgerScope, personID string, date time.Time) (models.DayView, error)
}

// AttendanceHandler exposes the scan kiosk and manual-override endpoints.
type AttendanceHandler struct {
	service attendanceService
}

// NewAttendanceHandler constructs the handler.
func NewAttendanceHandler(service attendanceService) *AttendanceHandler {
	return &AttendanceHandler{service: service}
}

// Scan godoc
// @Summary Record one QR scan
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body dto.ScanRequest true "Scan payload"
// @Success 200 {object} response.Envelope
// @Router /attendance/scan [post]
func (h *AttendanceHandler) Scan(c *gin.Context) {
	var req dto.ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid scan payload"))
		return
	}
	outcome, err := h.service.RecordScan(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, outcome, nil)
}

// Override godoc
// @Summary Manually set one person's status for a date
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body dto.OverrideRequest true "Override payload"
// @Success 200 {object} response.Envelope
// @Router /attendance/override [put]
func (h *AttendanceHandler) Override(c *gin.Context) {
	var req dto.OverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid override payload"))
		return
	}
	day, err := h.service.Override(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, day, nil)
}

// BulkOverride godoc
// @Summary Apply one status to many people on the same date
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body dto.BulkOverrideRequest true "Bulk override payload"
// @Success 200 {object} response.Envelope
// @Router /attendance/override/bulk [put]
func (h *AttendanceHandler) BulkOverride(c *gin.Context) {
	var req dto.BulkOverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid bulk override payload"))
		return
	}
	result, err := h.service.BulkOverride(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Day godoc
// @Summary One person's entry/exit pair for a date
// @Tags Attendance
// @Produce json
// @Param id path string true "Person ID (NIS or employee number)"
// @Param scope query string false "siswa or pegawai (default siswa)"
// @Param tanggal query string false "Date (YYYY-MM-DD). Defaults to today"
// @Success 200 {object} response.Envelope
// @Router /attendance/{id} [get]
func (h *AttendanceHandler) Day(c *gin.Context) {
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
	day, err := h.service.Day(c.Request.Context(), scope, c.Param("id"), date)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, day, nil)
}
