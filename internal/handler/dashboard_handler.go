package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/smk-presensi-api/internal/dto"
	"github.com/noah-isme/smk-presensi-api/internal/models"
	"github.com/noah-isme/smk-presensi-api/pkg/response"
)

type dashboardService interface {
	Summary(ctx context.Context, scope models.LedgerScope) (*dto.DashboardSummary, error)
}

// DashboardHandler serves today's live tallies.
type DashboardHandler struct {
	service dashboardService
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(service dashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// Summary godoc
// @Summary Today's attendance tally for one ledger
// @Tags Dashboard
// @Produce json
// @Param scope query string false "siswa or pegawai (default siswa)"
// @Success 200 {object} response.Envelope
// @Router /dashboard [get]
func (h *DashboardHandler) Summary(c *gin.Context) {
	scope, err := queryScope(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	summary, err := h.service.Summary(c.Request.Context(), scope)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}
