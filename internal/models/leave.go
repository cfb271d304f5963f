package models

import "time"

// LeaveStatus is the lifecycle state of a leave request.
type LeaveStatus string

const (
	LeavePending  LeaveStatus = "Pending"
	LeaveApproved LeaveStatus = "Disetujui"
	LeaveRejected LeaveStatus = "Ditolak"
)

// LeaveKind is the requested absence category. Approval writes the matching
// manual ledger status for the day.
type LeaveKind string

const (
	LeaveSick    LeaveKind = "Sakit"
	LeaveExcused LeaveKind = "Izin"
)

// LeaveRequest is a parent-submitted absence request for a student.
type LeaveRequest struct {
	ID          int64       `db:"id" json:"id"`
	StudentNIS  string      `db:"nis" json:"student_nis"`
	StudentName string      `db:"nama_siswa" json:"student_name"`
	ClassName   string      `db:"kelas" json:"class_name"`
	ParentName  string      `db:"nama_ortu" json:"parent_name"`
	ParentPhone string      `db:"no_wa" json:"parent_phone"`
	Kind        LeaveKind   `db:"jenis_izin" json:"kind"`
	Note        *string     `db:"keterangan" json:"note,omitempty"`
	Status      LeaveStatus `db:"status" json:"status"`
	Date        time.Time   `db:"tanggal" json:"date"`
	CreatedAt   time.Time   `db:"created_at" json:"created_at"`
}
