package dto

// WindowConfigRequest creates or updates one window-config family. Clock
// fields accept "HH:MM" or "HH:MM:SS".
type WindowConfigRequest struct {
	Scope           string   `json:"scope" validate:"required,oneof=siswa guru_staf keamanan"`
	ShiftName       string   `json:"nama_shift,omitempty"`
	EntryStart      string   `json:"jam_masuk_mulai" validate:"required,clockformat"`
	EntryEnd        string   `json:"jam_masuk_selesai" validate:"required,clockformat"`
	LateCutoff      *string  `json:"jam_terlambat_selesai,omitempty" validate:"omitempty,clockformat"`
	ExitStart       string   `json:"jam_pulang_mulai" validate:"required,clockformat"`
	ExitEnd         string   `json:"jam_pulang_selesai" validate:"required,clockformat"`
	RoutineHolidays []string `json:"hari_libur_rutin,omitempty"`
}

// HolidayRequest creates a one-off closure date.
type HolidayRequest struct {
	Date        string `json:"tanggal" validate:"required,dateformat"`
	Description string `json:"keterangan" validate:"required"`
}
