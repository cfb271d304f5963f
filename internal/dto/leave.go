package dto

// LeaveCreateRequest is a parent-submitted absence request for today.
type LeaveCreateRequest struct {
	StudentNIS  string  `json:"nis" validate:"required"`
	ParentName  string  `json:"nama_ortu" validate:"required"`
	ParentPhone string  `json:"no_wa" validate:"required"`
	Kind        string  `json:"jenis_izin" validate:"required,oneof=Sakit Izin"`
	Note        *string `json:"keterangan,omitempty"`
	Date        string  `json:"tanggal,omitempty" validate:"omitempty,dateformat"`
}

// LeaveDecisionRequest approves or rejects a pending request.
type LeaveDecisionRequest struct {
	Approve bool `json:"approve"`
}
