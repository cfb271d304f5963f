package dto

// DashboardSummary is today's live tally for one ledger. Absent stays zero
// until the lateness deadline has passed, so the morning dashboard never
// shows the whole school as Alfa.
type DashboardSummary struct {
	Date           string      `json:"tanggal"`
	Scope          string      `json:"scope"`
	TotalPeople    int         `json:"total"`
	Tally          StatusTally `json:"rekap"`
	NotYetArrived  int         `json:"belum_hadir"`
	AbsentRevealed bool        `json:"alfa_final"`
	Closed         bool        `json:"hari_libur"`
	ClosedReason   string      `json:"keterangan_libur,omitempty"`
}
