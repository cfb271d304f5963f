package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/smk-presensi-api/internal/dto"
	"github.com/noah-isme/smk-presensi-api/internal/models"
	appErrors "github.com/noah-isme/smk-presensi-api/pkg/errors"
)

type attendanceServiceMock struct {
	scanOutcome *models.ScanOutcome
	scanErr     error
	lastScan    dto.ScanRequest
	day         models.DayView
}

func (m *attendanceServiceMock) RecordScan(_ context.Context, req dto.ScanRequest) (*models.ScanOutcome, error) {
	m.lastScan = req
	if m.scanErr != nil {
		return nil, m.scanErr
	}
	return m.scanOutcome, nil
}

func (m *attendanceServiceMock) Override(_ context.Context, _ dto.OverrideRequest) (models.DayView, error) {
	return m.day, nil
}

func (m *attendanceServiceMock) BulkOverride(_ context.Context, req dto.BulkOverrideRequest) (*dto.BulkOverrideResult, error) {
	return &dto.BulkOverrideResult{Applied: len(req.PersonIDs)}, nil
}

func (m *attendanceServiceMock) Day(_ context.Context, _ models.LedgerScope, _ string, _ time.Time) (models.DayView, error) {
	return m.day, nil
}

func buildAttendanceRouter(mock *attendanceServiceMock) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	h := NewAttendanceHandler(mock)
	router.POST("/attendance/scan", h.Scan)
	router.GET("/attendance/:id", h.Day)
	return router
}

func performRequest(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestScanReturnsOutcome(t *testing.T) {
	mock := &attendanceServiceMock{
		scanOutcome: &models.ScanOutcome{
			PersonName: "Budi Santoso",
			Population: models.PopulationStudent,
			Kind:       models.EventEntry,
			Status:     models.StatusPresent,
			RecordedAt: models.NewClock(7, 2, 11),
		},
	}
	router := buildAttendanceRouter(mock)

	// The kiosk sends only the token; the service derives entry/exit from
	// the scan time.
	body, _ := json.Marshal(map[string]string{"qr_code": "s1001"})
	req := httptest.NewRequest(http.MethodPost, "/attendance/scan", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := performRequest(router, req)

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "s1001", mock.lastScan.Token)

	var envelope struct {
		Data models.ScanOutcome `json:"data"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, "Budi Santoso", envelope.Data.PersonName)
	assert.Equal(t, models.StatusPresent, envelope.Data.Status)
}

func TestScanRejectsBadPayload(t *testing.T) {
	router := buildAttendanceRouter(&attendanceServiceMock{})

	req := httptest.NewRequest(http.MethodPost, "/attendance/scan", bytes.NewReader([]byte("{")))
	req.Header.Set("Content-Type", "application/json")
	resp := performRequest(router, req)

	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestScanSurfacesDomainError(t *testing.T) {
	mock := &attendanceServiceMock{scanErr: appErrors.ErrOutOfWindow}
	router := buildAttendanceRouter(mock)

	body, _ := json.Marshal(map[string]string{"qr_code": "s1001"})
	req := httptest.NewRequest(http.MethodPost, "/attendance/scan", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := performRequest(router, req)

	assert.Equal(t, appErrors.ErrOutOfWindow.Status, resp.Code)
}

func TestDayRejectsUnknownScope(t *testing.T) {
	router := buildAttendanceRouter(&attendanceServiceMock{})

	req := httptest.NewRequest(http.MethodGet, "/attendance/1001?scope=alumni", nil)
	resp := performRequest(router, req)

	assert.Equal(t, http.StatusBadRequest, resp.Code)
}
