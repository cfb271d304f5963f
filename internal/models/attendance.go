package models

import "time"

// AttendanceStatus is the persisted status of a ledger record. Values follow
// the Indonesian report vocabulary.
type AttendanceStatus string

const (
	StatusPresent AttendanceStatus = "Hadir"
	StatusLate    AttendanceStatus = "Terlambat"
	StatusSick    AttendanceStatus = "Sakit"
	StatusExcused AttendanceStatus = "Izin"
	StatusAbsent  AttendanceStatus = "Alfa"
)

// Valid reports whether the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case StatusPresent, StatusLate, StatusSick, StatusExcused, StatusAbsent:
		return true
	default:
		return false
	}
}

// CountsAsPresent reports whether the status rolls up into Hadir totals.
// Terlambat is displayed and counted as Hadir; only the lateness column
// distinguishes the two.
func (s AttendanceStatus) CountsAsPresent() bool {
	return s == StatusPresent || s == StatusLate
}

// ReportLabel is the status shown in report rows. Terlambat renders as Hadir;
// the lateness column carries the distinction.
func (s AttendanceStatus) ReportLabel() string {
	if s.CountsAsPresent() {
		return string(StatusPresent)
	}
	return string(s)
}

// MatrixCode is the single-letter cell value of the monthly matrix.
func (s AttendanceStatus) MatrixCode() string {
	switch s {
	case StatusPresent, StatusLate:
		return "H"
	case StatusSick:
		return "S"
	case StatusExcused:
		return "I"
	default:
		return "A"
	}
}

// EventKind is the slot an attendance record occupies for a day.
type EventKind string

const (
	EventEntry EventKind = "masuk"
	EventExit  EventKind = "pulang"
	// EventManual stands in for both entry and exit when an administrator
	// records Sakit/Izin/Alfa for the whole day.
	EventManual EventKind = "lainnya"
)

// Valid reports whether the event kind is a supported value.
func (k EventKind) Valid() bool {
	switch k {
	case EventEntry, EventExit, EventManual:
		return true
	default:
		return false
	}
}

// AttendanceRecord is one ledger row. At most one masuk and one pulang record
// exist per (person, date); a lainnya record occupies both slots.
type AttendanceRecord struct {
	ID       string           `db:"id" json:"id"`
	Scope    LedgerScope      `db:"scope" json:"scope"`
	PersonID string           `db:"person_id" json:"person_id"`
	Date     time.Time        `db:"tanggal" json:"date"`
	Kind     EventKind        `db:"jenis_absen" json:"kind"`
	Status   AttendanceStatus `db:"status" json:"status"`
	Time     Clock            `db:"waktu" json:"time"`
	Note     *string          `db:"keterangan" json:"note,omitempty"`
}

// DayView is the per-day read shape of the ledger. A manual record populates
// both slots.
type DayView struct {
	Entry *AttendanceRecord `json:"entry,omitempty"`
	Exit  *AttendanceRecord `json:"exit,omitempty"`
}

// Status resolves the day's effective status from the entry slot, falling
// back to Alfa. Manual records land here too: the day view aliases them into
// both slots.
func (d DayView) Status() AttendanceStatus {
	if d.Entry != nil {
		return d.Entry.Status
	}
	return StatusAbsent
}

// EntryTime returns the entry clock when a scanned entry exists.
func (d DayView) EntryTime() *Clock {
	if d.Entry == nil || d.Entry.Kind == EventManual {
		return nil
	}
	t := d.Entry.Time
	return &t
}

// ExitTime returns the exit clock when a scanned exit exists.
func (d DayView) ExitTime() *Clock {
	if d.Exit == nil || d.Exit.Kind == EventManual {
		return nil
	}
	t := d.Exit.Time
	return &t
}

// ScanOutcome is the structured result handed back to the scan boundary.
type ScanOutcome struct {
	PersonName string           `json:"person_name"`
	Population Population       `json:"population"`
	Kind       EventKind        `json:"kind"`
	Status     AttendanceStatus `json:"status"`
	RecordedAt Clock            `json:"recorded_at"`
	Notified   bool             `json:"notified"`
}

// OverrideConflict reports a person that failed during a bulk override.
type OverrideConflict struct {
	PersonID string `json:"person_id"`
	Reason   string `json:"reason"`
}
