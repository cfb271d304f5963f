package dto

// ScheduleSaveRequest replaces the security schedule of one month. Shifts maps
// employee id -> date (yyyy-mm-dd) -> shift name or "Off"; empty and omitted
// cells are left unassigned, which scan processing treats as an off-day.
type ScheduleSaveRequest struct {
	Month  string                      `json:"bulan" validate:"required,monthformat"`
	Shifts map[int64]map[string]string `json:"shifts" validate:"required"`
}

// ScheduleCopyRequest copies the previous month's pattern into the target
// month, filling only cells that have no assignment yet.
type ScheduleCopyRequest struct {
	Month string `json:"bulan" validate:"required,monthformat"`
}

// ScheduleView is the editor's read shape for one month.
type ScheduleView struct {
	Month     string                      `json:"bulan"`
	Employees []ScheduleEmployee          `json:"employees"`
	Shifts    map[int64]map[string]string `json:"shifts"`
}

// ScheduleEmployee is one row header of the schedule grid.
type ScheduleEmployee struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ScheduleImportResult summarises a CSV import.
type ScheduleImportResult struct {
	Month   string   `json:"bulan"`
	Applied int      `json:"applied"`
	Skipped []string `json:"skipped,omitempty"`
}
