package handler

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/smk-presensi-api/internal/dto"
	appErrors "github.com/noah-isme/smk-presensi-api/pkg/errors"
	"github.com/noah-isme/smk-presensi-api/pkg/response"
)

type scheduleService interface {
	Month(ctx context.Context, month string) (*dto.ScheduleView, error)
	Save(ctx context.Context, req dto.ScheduleSaveRequest) error
	CopyPrevious(ctx context.Context, req dto.ScheduleCopyRequest) (int, error)
	ImportCSV(ctx context.Context, month string, file io.Reader) (*dto.ScheduleImportResult, error)
}

// ScheduleHandler manages the security staff shift grid.
type ScheduleHandler struct {
	service scheduleService
}

// NewScheduleHandler constructs the handler.
func NewScheduleHandler(service scheduleService) *ScheduleHandler {
	return &ScheduleHandler{service: service}
}

// Month godoc
// @Summary One month's shift grid
// @Tags Schedule
// @Produce json
// @Param bulan query string false "Month (YYYY-MM). Defaults to this month"
// @Success 200 {object} response.Envelope
// @Router /schedule [get]
func (h *ScheduleHandler) Month(c *gin.Context) {
	month := strings.TrimSpace(c.Query("bulan"))
	if month == "" {
		parsed, err := queryMonth(c)
		if err != nil {
			response.Error(c, err)
			return
		}
		month = parsed.Format("2006-01")
	}
	view, err := h.service.Month(c.Request.Context(), month)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// Save godoc
// @Summary Replace one month's shift assignments
// @Tags Schedule
// @Accept json
// @Produce json
// @Param payload body dto.ScheduleSaveRequest true "Schedule payload"
// @Success 204
// @Router /schedule [put]
func (h *ScheduleHandler) Save(c *gin.Context) {
	var req dto.ScheduleSaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid schedule payload"))
		return
	}
	if err := h.service.Save(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// CopyPrevious godoc
// @Summary Fill empty cells from the previous month's pattern
// @Tags Schedule
// @Accept json
// @Produce json
// @Param payload body dto.ScheduleCopyRequest true "Target month"
// @Success 200 {object} response.Envelope
// @Router /schedule/copy [post]
func (h *ScheduleHandler) CopyPrevious(c *gin.Context) {
	var req dto.ScheduleCopyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid copy payload"))
		return
	}
	filled, err := h.service.CopyPrevious(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"filled": filled}, nil)
}

// Import godoc
// @Summary Import one month's shifts from a CSV upload
// @Tags Schedule
// @Accept multipart/form-data
// @Produce json
// @Param bulan formData string true "Month (YYYY-MM)"
// @Param file formData file true "CSV file with No_id and shift_tglN columns"
// @Success 200 {object} response.Envelope
// @Router /schedule/import [post]
func (h *ScheduleHandler) Import(c *gin.Context) {
	month := strings.TrimSpace(c.PostForm("bulan"))
	if month == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "bulan is required"))
		return
	}
	upload, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "file upload is required"))
		return
	}
	file, err := upload.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "failed to read upload"))
		return
	}
	defer file.Close()

	result, err := h.service.ImportCSV(c.Request.Context(), month, file)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
