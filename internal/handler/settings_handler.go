package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/smk-presensi-api/internal/dto"
	"github.com/noah-isme/smk-presensi-api/internal/models"
	appErrors "github.com/noah-isme/smk-presensi-api/pkg/errors"
	"github.com/noah-isme/smk-presensi-api/pkg/response"
)

type settingsService interface {
	ListWindowConfigs(ctx context.Context) ([]models.WindowConfig, error)
	SaveWindowConfig(ctx context.Context, req dto.WindowConfigRequest) (*models.WindowConfig, error)
	DeleteShiftConfig(ctx context.Context, shiftName string) error
	ListHolidays(ctx context.Context) ([]models.SpecialHoliday, error)
	CreateHoliday(ctx context.Context, req dto.HolidayRequest) (*models.SpecialHoliday, error)
	DeleteHoliday(ctx context.Context, id int64) error
}

// SettingsHandler manages attendance windows and the holiday calendar.
type SettingsHandler struct {
	service settingsService
}

// NewSettingsHandler constructs the handler.
func NewSettingsHandler(service settingsService) *SettingsHandler {
	return &SettingsHandler{service: service}
}

// ListWindows godoc
// @Summary List attendance-window configurations
// @Tags Settings
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /settings/windows [get]
func (h *SettingsHandler) ListWindows(c *gin.Context) {
	configs, err := h.service.ListWindowConfigs(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, configs, nil)
}

// SaveWindow godoc
// @Summary Create or update one window configuration
// @Tags Settings
// @Accept json
// @Produce json
// @Param payload body dto.WindowConfigRequest true "Window payload"
// @Success 200 {object} response.Envelope
// @Router /settings/windows [put]
func (h *SettingsHandler) SaveWindow(c *gin.Context) {
	var req dto.WindowConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid window payload"))
		return
	}
	cfg, err := h.service.SaveWindowConfig(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, cfg, nil)
}

// DeleteShift godoc
// @Summary Delete one security shift configuration
// @Tags Settings
// @Param shift path string true "Shift name"
// @Success 204
// @Router /settings/windows/shifts/{shift} [delete]
func (h *SettingsHandler) DeleteShift(c *gin.Context) {
	if err := h.service.DeleteShiftConfig(c.Request.Context(), c.Param("shift")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListHolidays godoc
// @Summary List special holidays
// @Tags Settings
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /settings/holidays [get]
func (h *SettingsHandler) ListHolidays(c *gin.Context) {
	holidays, err := h.service.ListHolidays(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, holidays, nil)
}

// CreateHoliday godoc
// @Summary Add a one-off closure date
// @Tags Settings
// @Accept json
// @Produce json
// @Param payload body dto.HolidayRequest true "Holiday payload"
// @Success 201 {object} response.Envelope
// @Router /settings/holidays [post]
func (h *SettingsHandler) CreateHoliday(c *gin.Context) {
	var req dto.HolidayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid holiday payload"))
		return
	}
	holiday, err := h.service.CreateHoliday(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, holiday)
}

// DeleteHoliday godoc
// @Summary Remove a special holiday
// @Tags Settings
// @Param id path int true "Holiday ID"
// @Success 204
// @Router /settings/holidays/{id} [delete]
func (h *SettingsHandler) DeleteHoliday(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid holiday id"))
		return
	}
	if err := h.service.DeleteHoliday(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
