package models

import "time"

// ShiftOff marks a scheduled rest day for security staff. A missing schedule
// entry is treated the same way by scan processing.
const ShiftOff = "Off"

// SecurityScheduleEntry assigns a shift name (or Off) to one security
// employee for one date.
type SecurityScheduleEntry struct {
	ID         int64     `db:"id" json:"id"`
	EmployeeID int64     `db:"pegawai_id" json:"employee_id"`
	Date       time.Time `db:"tanggal" json:"date"`
	Shift      string    `db:"shift" json:"shift"`
}

// IsWorking reports whether the entry schedules an actual shift.
func (e SecurityScheduleEntry) IsWorking() bool {
	return e.Shift != "" && e.Shift != ShiftOff
}

// MonthlySchedule maps employee id -> date (yyyy-mm-dd) -> shift name for a
// whole month, the shape the schedule editor works with.
type MonthlySchedule map[int64]map[string]string
