package handler

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/smk-presensi-api/internal/models"
	appErrors "github.com/noah-isme/smk-presensi-api/pkg/errors"
)

// queryScope reads the ?scope= query, defaulting to the student ledger.
func queryScope(c *gin.Context) (models.LedgerScope, error) {
	raw := strings.TrimSpace(c.Query("scope"))
	switch raw {
	case "", string(models.LedgerStudents):
		return models.LedgerStudents, nil
	case string(models.LedgerEmployees):
		return models.LedgerEmployees, nil
	default:
		return "", appErrors.Clone(appErrors.ErrValidation, "scope must be siswa or pegawai")
	}
}

// queryDate reads a yyyy-mm-dd query parameter, defaulting to today.
func queryDate(c *gin.Context, key string) (time.Time, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		now := time.Now().UTC()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	parsed, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, "invalid "+key+", expected YYYY-MM-DD")
	}
	return parsed, nil
}

// requireDate is queryDate without the today fallback.
func requireDate(c *gin.Context, key string) (time.Time, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, key+" is required")
	}
	return queryDate(c, key)
}

// queryMonth reads a yyyy-mm query parameter, defaulting to the current month.
func queryMonth(c *gin.Context) (time.Time, error) {
	raw := strings.TrimSpace(c.Query("bulan"))
	if raw == "" {
		now := time.Now().UTC()
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC), nil
	}
	parsed, err := time.Parse("2006-01", raw)
	if err != nil {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, "invalid bulan, expected YYYY-MM")
	}
	return parsed, nil
}

// queryPage reads the page/limit list parameters, defaulting to the first
// page of twenty.
func queryPage(c *gin.Context) (int, int, error) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		return 0, 0, appErrors.Clone(appErrors.ErrValidation, "page must be a positive number")
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 1 || limit > 200 {
		return 0, 0, appErrors.Clone(appErrors.ErrValidation, "limit must be between 1 and 200")
	}
	return page, limit, nil
}

// queryFilter reads the optional kelas/role list filters.
func queryFilter(c *gin.Context) models.PersonFilter {
	return models.PersonFilter{
		ClassName: strings.TrimSpace(c.Query("kelas")),
		Role:      models.Population(strings.TrimSpace(c.Query("role"))),
	}
}
