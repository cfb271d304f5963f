package models

import (
	"database/sql/driver"
	"fmt"
	"sort"
	"strings"
	"time"
)

// WindowConfig holds the attendance bands for one config family: the student
// config, the shared teacher/staff config, or one record per security shift.
type WindowConfig struct {
	ID              int64       `db:"id" json:"id"`
	Scope           ConfigScope `db:"scope" json:"scope"`
	ShiftName       string      `db:"nama_shift" json:"shift_name,omitempty"`
	EntryStart      Clock       `db:"jam_masuk_mulai" json:"entry_start"`
	EntryEnd        Clock       `db:"jam_masuk_selesai" json:"entry_end"`
	LateCutoff      *Clock      `db:"jam_terlambat_selesai" json:"late_cutoff,omitempty"`
	ExitStart       Clock       `db:"jam_pulang_mulai" json:"exit_start"`
	ExitEnd         Clock       `db:"jam_pulang_selesai" json:"exit_end"`
	RoutineHolidays WeekdaySet  `db:"hari_libur_rutin" json:"routine_holidays"`
}

// Validate enforces the ordering invariant across the configured bands.
func (w WindowConfig) Validate() error {
	if w.EntryEnd.Before(w.EntryStart) {
		return fmt.Errorf("entry window ends before it starts")
	}
	if w.LateCutoff != nil && w.LateCutoff.Before(w.EntryEnd) {
		return fmt.Errorf("late cutoff precedes end of entry window")
	}
	if w.ExitEnd.Before(w.ExitStart) {
		return fmt.Errorf("exit window ends before it starts")
	}
	return nil
}

// LatenessDeadline is the reference time lateness minutes are computed
// against: the late cutoff when configured, the end of the entry window
// otherwise.
func (w WindowConfig) LatenessDeadline() Clock {
	if w.LateCutoff != nil {
		return *w.LateCutoff
	}
	return w.EntryEnd
}

// WeekdaySet is a recurring-closure set persisted as a comma-separated list
// of Indonesian weekday names ("Sabtu,Minggu").
type WeekdaySet map[time.Weekday]bool

var weekdayNames = map[time.Weekday]string{
	time.Monday:    "Senin",
	time.Tuesday:   "Selasa",
	time.Wednesday: "Rabu",
	time.Thursday:  "Kamis",
	time.Friday:    "Jumat",
	time.Saturday:  "Sabtu",
	time.Sunday:    "Minggu",
}

// WeekdayName returns the Indonesian name used in storage and messages.
func WeekdayName(d time.Weekday) string {
	return weekdayNames[d]
}

// ParseWeekdaySet parses the stored comma-separated form. Unknown names are
// ignored, matching the tolerant behaviour of the settings screen.
func ParseWeekdaySet(raw string) WeekdaySet {
	set := WeekdaySet{}
	for _, part := range strings.Split(raw, ",") {
		name := strings.ToLower(strings.TrimSpace(part))
		for day, label := range weekdayNames {
			if strings.ToLower(label) == name {
				set[day] = true
			}
		}
	}
	return set
}

// Contains reports whether the weekday is a recurring closure day.
func (s WeekdaySet) Contains(d time.Weekday) bool {
	return s != nil && s[d]
}

// String renders the set back into its stored form, ordered Monday first.
func (s WeekdaySet) String() string {
	days := make([]int, 0, len(s))
	for d, ok := range s {
		if !ok {
			continue
		}
		idx := (int(d) + 6) % 7
		days = append(days, idx)
	}
	sort.Ints(days)
	names := make([]string, len(days))
	for i, idx := range days {
		names[i] = weekdayNames[time.Weekday((idx+1)%7)]
	}
	return strings.Join(names, ",")
}

// Scan implements sql.Scanner for the comma-separated storage form.
func (s *WeekdaySet) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*s = WeekdaySet{}
		return nil
	case []byte:
		*s = ParseWeekdaySet(string(v))
		return nil
	case string:
		*s = ParseWeekdaySet(v)
		return nil
	default:
		return fmt.Errorf("cannot scan %T into WeekdaySet", src)
	}
}

// Value implements driver.Valuer.
func (s WeekdaySet) Value() (driver.Value, error) {
	return s.String(), nil
}

// SpecialHoliday is a one-off non-attendance date, unique per date.
type SpecialHoliday struct {
	ID          int64     `db:"id" json:"id"`
	Date        time.Time `db:"tanggal" json:"date"`
	Description string    `db:"keterangan" json:"description"`
}
