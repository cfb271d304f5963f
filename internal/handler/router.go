package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Handlers bundles every HTTP handler the gateway mounts.
type Handlers struct {
	Attendance *AttendanceHandler
	Reports    *ReportHandler
	Dashboard  *DashboardHandler
	Settings   *SettingsHandler
	Schedule   *ScheduleHandler
	Leave      *LeaveHandler
	Metrics    http.Handler
}

// Register mounts all routes under the API prefix. The metrics endpoint, when
// configured, is mounted at the root so scrapers bypass the prefix.
func (h Handlers) Register(r *gin.Engine, prefix string) {
	api := r.Group(prefix)

	attendance := api.Group("/attendance")
	attendance.POST("/scan", h.Attendance.Scan)
	attendance.PUT("/override", h.Attendance.Override)
	attendance.PUT("/override/bulk", h.Attendance.BulkOverride)
	attendance.GET("/:id", h.Attendance.Day)

	reports := api.Group("/reports")
	reports.GET("/daily", h.Reports.Daily)
	reports.GET("/daily/export", h.Reports.ExportDaily)
	reports.GET("/range", h.Reports.Range)
	reports.GET("/range/export", h.Reports.ExportRange)
	reports.GET("/matrix", h.Reports.Matrix)
	reports.GET("/matrix/export", h.Reports.ExportMatrix)
	reports.GET("/individual/:id", h.Reports.Individual)
	reports.GET("/individual/:id/export", h.Reports.ExportIndividual)

	api.GET("/dashboard", h.Dashboard.Summary)

	settings := api.Group("/settings")
	settings.GET("/windows", h.Settings.ListWindows)
	settings.PUT("/windows", h.Settings.SaveWindow)
	settings.DELETE("/windows/shifts/:shift", h.Settings.DeleteShift)
	settings.GET("/holidays", h.Settings.ListHolidays)
	settings.POST("/holidays", h.Settings.CreateHoliday)
	settings.DELETE("/holidays/:id", h.Settings.DeleteHoliday)

	schedule := api.Group("/schedule")
	schedule.GET("", h.Schedule.Month)
	schedule.PUT("", h.Schedule.Save)
	schedule.POST("/copy", h.Schedule.CopyPrevious)
	schedule.POST("/import", h.Schedule.Import)

	leave := api.Group("/leave")
	leave.POST("", h.Leave.Create)
	leave.GET("", h.Leave.List)
	leave.PUT("/:id/decision", h.Leave.Decide)

	if h.Metrics != nil {
		r.GET("/metrics", gin.WrapH(h.Metrics))
	}
}
