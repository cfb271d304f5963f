package dto

// DailyReportRow is one person's line in the daily roster report. Times and
// lateness are pre-formatted display strings; "-" marks an empty cell.
type DailyReportRow struct {
	PersonID  string `json:"person_id"`
	Name      string `json:"name"`
	Group     string `json:"group,omitempty"`
	Status    string `json:"status"`
	EntryTime string `json:"jam_masuk"`
	ExitTime  string `json:"jam_pulang"`
	Lateness  string `json:"keterlambatan"`
	Duration  string `json:"durasi"`
	Note      string `json:"keterangan,omitempty"`
}

// DailyReport is the roster of one ledger on one date.
type DailyReport struct {
	Date    string           `json:"tanggal"`
	Scope   string           `json:"scope"`
	Rows    []DailyReportRow `json:"rows"`
	Summary StatusTally      `json:"summary"`
}

// StatusTally counts people per effective status. Present includes late
// arrivals; Late tracks how many of them arrived past the deadline.
type StatusTally struct {
	Present int `json:"hadir"`
	Late    int `json:"terlambat"`
	Sick    int `json:"sakit"`
	Excused int `json:"izin"`
	Absent  int `json:"alfa"`
}

// RangeDetailRow is one (person, date) line of the date-range detail report.
type RangeDetailRow struct {
	Date      string `json:"tanggal"`
	PersonID  string `json:"person_id"`
	Name      string `json:"name"`
	Group     string `json:"group,omitempty"`
	Status    string `json:"status"`
	EntryTime string `json:"jam_masuk"`
	ExitTime  string `json:"jam_pulang"`
	Lateness  string `json:"keterlambatan"`
	Duration  string `json:"durasi"`
}

// MatrixReport is the monthly H/S/I/A grid: one row per person, one cell per
// day of the month, plus per-status totals.
type MatrixReport struct {
	Month string      `json:"bulan"`
	Scope string      `json:"scope"`
	Days  []int       `json:"days"`
	Rows  []MatrixRow `json:"rows"`
}

// MatrixRow is one person's matrix line. Cells hold "H", "S", "I", "A" or "-"
// for non-attendance days, indexed by day of month starting at 1.
type MatrixRow struct {
	PersonID string   `json:"person_id"`
	Name     string   `json:"name"`
	Group    string   `json:"group,omitempty"`
	Cells    []string `json:"cells"`
	Present  int      `json:"hadir"`
	Sick     int      `json:"sakit"`
	Excused  int      `json:"izin"`
	Absent   int      `json:"alfa"`
}

// IndividualSummary aggregates one person across a date range.
type IndividualSummary struct {
	PersonID string           `json:"person_id"`
	Name     string           `json:"name"`
	From     string           `json:"dari"`
	To       string           `json:"sampai"`
	Tally    StatusTally      `json:"rekap"`
	Days     []RangeDetailRow `json:"days"`
}
