package models

// Student is read-only directory data; the attendance core never mutates it.
type Student struct {
	NIS         string  `db:"nis" json:"nis"`
	Name        string  `db:"nama" json:"name"`
	ClassName   *string `db:"kelas" json:"class_name,omitempty"`
	ParentPhone *string `db:"no_hp_ortu" json:"parent_phone,omitempty"`
}

// Employee covers teachers, general staff and security personnel.
type Employee struct {
	ID    int64      `db:"id" json:"id"`
	NoID  string     `db:"no_id" json:"no_id"`
	Name  string     `db:"nama" json:"name"`
	Role  Population `db:"role" json:"role"`
	Phone *string    `db:"no_hp" json:"phone,omitempty"`
}

// PersonFilter narrows directory listings for reports.
type PersonFilter struct {
	ClassName string
	Role      Population
}

// Pagination echoes list metadata in response envelopes.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
