package dto

// ScanRequest carries one QR scan from a kiosk. The token is the raw QR
// payload: an "s" prefix plus NIS for students, "p" plus employee number for
// staff. Whether the scan is an entry or an exit is derived from the scan
// time, not sent by the kiosk.
type ScanRequest struct {
	Token string `json:"qr_code" validate:"required"`
}

// OverrideRequest records a manual status for one person on one date.
type OverrideRequest struct {
	Scope    string  `json:"scope" validate:"required,oneof=siswa pegawai"`
	PersonID string  `json:"person_id" validate:"required"`
	Date     string  `json:"tanggal" validate:"required,dateformat"`
	Status   string  `json:"status" validate:"required,oneof=Hadir Terlambat Sakit Izin Alfa"`
	Note     *string `json:"keterangan,omitempty"`
}

// BulkOverrideRequest applies one status to many people on the same date.
type BulkOverrideRequest struct {
	Scope     string   `json:"scope" validate:"required,oneof=siswa pegawai"`
	PersonIDs []string `json:"person_ids" validate:"required,min=1,dive,required"`
	Date      string   `json:"tanggal" validate:"required,dateformat"`
	Status    string   `json:"status" validate:"required,oneof=Hadir Terlambat Sakit Izin Alfa"`
	Note      *string  `json:"keterangan,omitempty"`
}

// BulkOverrideResult summarises a bulk write.
type BulkOverrideResult struct {
	Applied   int                `json:"applied"`
	Conflicts []OverrideConflict `json:"conflicts,omitempty"`
}

// OverrideConflict names one person a bulk override skipped.
type OverrideConflict struct {
	PersonID string `json:"person_id"`
	Reason   string `json:"reason"`
}
