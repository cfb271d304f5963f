package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/smk-presensi-api/internal/dto"
	"github.com/noah-isme/smk-presensi-api/internal/models"
	appErrors "github.com/noah-isme/smk-presensi-api/pkg/errors"
	"github.com/noah-isme/smk-presensi-api/pkg/response"
)

type leaveService interface {
	Create(ctx context.Context, req dto.LeaveCreateRequest) (*models.LeaveRequest, error)
	ListByDate(ctx context.Context, date time.Time, page, pageSize int) ([]models.LeaveRequest, *models.Pagination, error)
	Decide(ctx context.Context, id int64, approve bool) (*models.LeaveRequest, error)
}

// LeaveHandler receives parent absence requests and their admin decisions.
type LeaveHandler struct {
	service leaveService
}

// NewLeaveHandler constructs the handler.
func NewLeaveHandler(service leaveService) *LeaveHandler {
	return &LeaveHandler{service: service}
}

// Create godoc
// @Summary Submit a sick/excused request for a student
// @Tags Leave
// @Accept json
// @Produce json
// @Param payload body dto.LeaveCreateRequest true "Leave payload"
// @Success 201 {object} response.Envelope
// @Router /leave [post]
func (h *LeaveHandler) Create(c *gin.Context) {
	var req dto.LeaveCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid leave payload"))
		return
	}
	leave, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, leave)
}

// List godoc
// @Summary List requests submitted for one date
// @Tags Leave
// @Produce json
// @Param tanggal query string false "Date (YYYY-MM-DD). Defaults to today"
// @Param page query int false "Page number (default 1)"
// @Param limit query int false "Page size (default 20, max 200)"
// @Success 200 {object} response.Envelope
// @Router /leave [get]
func (h *LeaveHandler) List(c *gin.Context) {
	date, err := queryDate(c, "tanggal")
	if err != nil {
		response.Error(c, err)
		return
	}
	page, pageSize, err := queryPage(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	leaves, pagination, err := h.service.ListByDate(c.Request.Context(), date, page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, leaves, pagination)
}

// Decide godoc
// @Summary Approve or reject one pending request
// @Tags Leave
// @Accept json
// @Produce json
// @Param id path int true "Leave request ID"
// @Param payload body dto.LeaveDecisionRequest true "Decision"
// @Success 200 {object} response.Envelope
// @Router /leave/{id}/decision [put]
func (h *LeaveHandler) Decide(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid leave id"))
		return
	}
	var req dto.LeaveDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid decision payload"))
		return
	}
	leave, err := h.service.Decide(c.Request.Context(), id, req.Approve)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, leave, nil)
}
