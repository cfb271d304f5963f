package models

// Population identifies which attendance rules govern a person. The set is
// closed: scan tokens and employee roles must map onto one of these values
// before any window or holiday logic runs.
type Population string

const (
	PopulationStudent  Population = "siswa"
	PopulationTeacher  Population = "guru"
	PopulationStaff    Population = "staf"
	PopulationSecurity Population = "keamanan"
)

// Valid reports whether the population is a supported value.
func (p Population) Valid() bool {
	switch p {
	case PopulationStudent, PopulationTeacher, PopulationStaff, PopulationSecurity:
		return true
	default:
		return false
	}
}

// UsesShiftSchedule reports whether attendance windows come from the
// per-person security schedule instead of a global config.
func (p Population) UsesShiftSchedule() bool {
	return p == PopulationSecurity
}

// ConfigScope names a window-config family. Teachers and general staff share
// one family; each security shift has its own record keyed by shift name.
type ConfigScope string

const (
	ScopeStudent  ConfigScope = "siswa"
	ScopeStaff    ConfigScope = "guru_staf"
	ScopeSecurity ConfigScope = "keamanan"
)

// ConfigScope maps the population onto its window-config family.
func (p Population) ConfigScope() ConfigScope {
	switch p {
	case PopulationStudent:
		return ScopeStudent
	case PopulationTeacher, PopulationStaff:
		return ScopeStaff
	default:
		return ScopeSecurity
	}
}

// LedgerScope names which attendance ledger a population writes to. Students
// and employees are tracked in separate record sets keyed by different
// natural keys (NIS vs employee number).
type LedgerScope string

const (
	LedgerStudents  LedgerScope = "siswa"
	LedgerEmployees LedgerScope = "pegawai"
)

// LedgerScope returns the ledger a population's records belong to.
func (p Population) LedgerScope() LedgerScope {
	if p == PopulationStudent {
		return LedgerStudents
	}
	return LedgerEmployees
}

// PersonRef addresses one person in one ledger.
type PersonRef struct {
	Scope LedgerScope `json:"scope"`
	ID    string      `json:"id"`
}
