package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/smk-presensi-api/internal/dto"
	"github.com/noah-isme/smk-presensi-api/internal/models"
	appErrors "github.com/noah-isme/smk-presensi-api/pkg/errors"
)

type fakeLedger struct {
	inserted  []models.AttendanceRecord
	replaced  map[string][]models.AttendanceRecord
	occupied  map[string]bool
	day       models.DayView
	insertErr error
}

func ledgerKey(scope models.LedgerScope, personID string, date time.Time) string {
	return string(scope) + "|" + personID + "|" + date.Format("2006-01-02")
}

func (f *fakeLedger) Insert(_ context.Context, record *models.AttendanceRecord) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserted = append(f.inserted, *record)
	return nil
}

func (f *fakeLedger) SlotOccupied(_ context.Context, scope models.LedgerScope, personID string, date time.Time, _ models.EventKind) (bool, error) {
	return f.occupied[ledgerKey(scope, personID, date)], nil
}

func (f *fakeLedger) Day(context.Context, models.LedgerScope, string, time.Time) (models.DayView, error) {
	return f.day, nil
}

func (f *fakeLedger) ReplaceDay(_ context.Context, scope models.LedgerScope, personID string, date time.Time, records []models.AttendanceRecord) error {
	if f.replaced == nil {
		f.replaced = map[string][]models.AttendanceRecord{}
	}
	f.replaced[ledgerKey(scope, personID, date)] = records
	return nil
}

type fakeDirectory struct {
	students  map[string]*models.Student
	employees map[string]*models.Employee
}

func (f *fakeDirectory) GetStudent(_ context.Context, nis string) (*models.Student, error) {
	student, ok := f.students[nis]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return student, nil
}

func (f *fakeDirectory) GetEmployee(_ context.Context, noID string) (*models.Employee, error) {
	employee, ok := f.employees[noID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return employee, nil
}

type fakeResolver struct {
	cfg *models.WindowConfig
	err error
}

func (f *fakeResolver) Resolve(context.Context, models.Population, int64, time.Time) (*models.WindowConfig, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.cfg, nil
}

type fakeAnnouncer struct {
	announced []models.ScanOutcome
}

func (f *fakeAnnouncer) AnnounceScan(_ scannedPerson, outcome models.ScanOutcome) bool {
	f.announced = append(f.announced, outcome)
	return true
}

func phoneP(v string) *string { return &v }

func newTestAttendanceService(ledger *fakeLedger, resolver *fakeResolver, announcer *fakeAnnouncer) *AttendanceService {
	directory := &fakeDirectory{
		students: map[string]*models.Student{
			"1001": {NIS: "1001", Name: "Budi Santoso", ParentPhone: phoneP("08123")},
		},
		employees: map[string]*models.Employee{
			"EMP01": {ID: 7, NoID: "EMP01", Name: "Pak Dedi", Role: models.PopulationSecurity},
		},
	}
	var announce scanAnnouncer
	if announcer != nil {
		announce = announcer
	}
	svc := NewAttendanceService(ledger, directory, resolver, announce, nil, nil, nil, nil)
	svc.now = func() time.Time {
		return time.Date(2026, 3, 2, 7, 5, 0, 0, time.UTC)
	}
	return svc
}

func TestRecordScanEntry(t *testing.T) {
	ledger := &fakeLedger{}
	announcer := &fakeAnnouncer{}
	svc := newTestAttendanceService(ledger, &fakeResolver{cfg: studentWindow()}, announcer)

	outcome, err := svc.RecordScan(context.Background(), dto.ScanRequest{Token: "s1001"})
	require.NoError(t, err)
	assert.Equal(t, "Budi Santoso", outcome.PersonName)
	assert.Equal(t, models.EventEntry, outcome.Kind)
	assert.Equal(t, models.StatusPresent, outcome.Status)
	assert.Equal(t, "07:05:00", outcome.RecordedAt.String())
	assert.True(t, outcome.Notified)

	require.Len(t, ledger.inserted, 1)
	record := ledger.inserted[0]
	assert.Equal(t, models.LedgerStudents, record.Scope)
	assert.Equal(t, "1001", record.PersonID)
	assert.Equal(t, models.EventEntry, record.Kind)
	assert.NotEmpty(t, record.ID)
	require.Len(t, announcer.announced, 1)
}

func TestRecordScanDerivesExitFromTime(t *testing.T) {
	ledger := &fakeLedger{}
	svc := newTestAttendanceService(ledger, &fakeResolver{cfg: studentWindow()}, nil)
	svc.now = func() time.Time {
		return time.Date(2026, 3, 2, 15, 30, 0, 0, time.UTC)
	}

	outcome, err := svc.RecordScan(context.Background(), dto.ScanRequest{Token: "s1001"})
	require.NoError(t, err)
	assert.Equal(t, models.EventExit, outcome.Kind)
	assert.Equal(t, models.StatusPresent, outcome.Status)

	require.Len(t, ledger.inserted, 1)
	assert.Equal(t, models.EventExit, ledger.inserted[0].Kind)
}

func TestRecordScanLateEntry(t *testing.T) {
	ledger := &fakeLedger{}
	svc := newTestAttendanceService(ledger, &fakeResolver{cfg: studentWindow()}, nil)
	svc.now = func() time.Time {
		return time.Date(2026, 3, 2, 7, 45, 0, 0, time.UTC)
	}

	outcome, err := svc.RecordScan(context.Background(), dto.ScanRequest{Token: "s1001"})
	require.NoError(t, err)
	assert.Equal(t, models.EventEntry, outcome.Kind)
	assert.Equal(t, models.StatusLate, outcome.Status)
}

func TestRecordScanOutsideAnyBand(t *testing.T) {
	svc := newTestAttendanceService(&fakeLedger{}, &fakeResolver{cfg: studentWindow()}, nil)
	svc.now = func() time.Time {
		return time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	}

	_, err := svc.RecordScan(context.Background(), dto.ScanRequest{Token: "s1001"})
	assert.True(t, appErrors.Is(err, appErrors.ErrOutOfWindow))
}

func TestRecordScanEmployeeToken(t *testing.T) {
	ledger := &fakeLedger{}
	cfg := studentWindow()
	svc := newTestAttendanceService(ledger, &fakeResolver{cfg: cfg}, nil)

	outcome, err := svc.RecordScan(context.Background(), dto.ScanRequest{Token: "pEMP01"})
	require.NoError(t, err)
	assert.Equal(t, models.PopulationSecurity, outcome.Population)
	require.Len(t, ledger.inserted, 1)
	assert.Equal(t, models.LedgerEmployees, ledger.inserted[0].Scope)
	assert.Equal(t, "EMP01", ledger.inserted[0].PersonID)
}

func TestRecordScanUnknownToken(t *testing.T) {
	svc := newTestAttendanceService(&fakeLedger{}, &fakeResolver{cfg: studentWindow()}, nil)

	for _, token := range []string{"s9999", "x1001", "s"} {
		_, err := svc.RecordScan(context.Background(), dto.ScanRequest{Token: token})
		assert.True(t, appErrors.Is(err, appErrors.ErrUnknownPerson), "token %q", token)
	}
}

func TestRecordScanDuplicate(t *testing.T) {
	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	ledger := &fakeLedger{
		occupied: map[string]bool{ledgerKey(models.LedgerStudents, "1001", date): true},
	}
	svc := newTestAttendanceService(ledger, &fakeResolver{cfg: studentWindow()}, nil)

	_, err := svc.RecordScan(context.Background(), dto.ScanRequest{Token: "s1001"})
	assert.True(t, appErrors.Is(err, appErrors.ErrDuplicateEvent))
	assert.Empty(t, ledger.inserted)
}

func TestRecordScanClosedDay(t *testing.T) {
	svc := newTestAttendanceService(&fakeLedger{}, &fakeResolver{err: appErrors.ErrHolidayOrOff}, nil)

	_, err := svc.RecordScan(context.Background(), dto.ScanRequest{Token: "s1001"})
	assert.True(t, appErrors.Is(err, appErrors.ErrHolidayOrOff))
}

func TestOverridePresentWritesEntryAndExit(t *testing.T) {
	ledger := &fakeLedger{}
	svc := newTestAttendanceService(ledger, &fakeResolver{cfg: studentWindow()}, nil)

	_, err := svc.Override(context.Background(), dto.OverrideRequest{
		Scope:    "siswa",
		PersonID: "1001",
		Date:     "2026-03-02",
		Status:   "Hadir",
	})
	require.NoError(t, err)

	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	records := ledger.replaced[ledgerKey(models.LedgerStudents, "1001", date)]
	require.Len(t, records, 2)
	assert.Equal(t, models.EventEntry, records[0].Kind)
	assert.Equal(t, models.EventExit, records[1].Kind)
	assert.Equal(t, models.StatusPresent, records[0].Status)
	require.NotNil(t, records[0].Note)
	assert.Equal(t, "Konfirmasi Masuk (Manual)", *records[0].Note)
}

func TestOverrideSickWritesSingleManualRecord(t *testing.T) {
	ledger := &fakeLedger{}
	svc := newTestAttendanceService(ledger, &fakeResolver{cfg: studentWindow()}, nil)

	_, err := svc.Override(context.Background(), dto.OverrideRequest{
		Scope:    "siswa",
		PersonID: "1001",
		Date:     "2026-03-02",
		Status:   "Sakit",
	})
	require.NoError(t, err)

	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	records := ledger.replaced[ledgerKey(models.LedgerStudents, "1001", date)]
	require.Len(t, records, 1)
	assert.Equal(t, models.EventManual, records[0].Kind)
	assert.Equal(t, models.StatusSick, records[0].Status)
}

func TestOverrideLateWritesEntryOnly(t *testing.T) {
	ledger := &fakeLedger{}
	svc := newTestAttendanceService(ledger, &fakeResolver{cfg: studentWindow()}, nil)

	_, err := svc.Override(context.Background(), dto.OverrideRequest{
		Scope:    "siswa",
		PersonID: "1001",
		Date:     "2026-03-02",
		Status:   "Terlambat",
	})
	require.NoError(t, err)

	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	records := ledger.replaced[ledgerKey(models.LedgerStudents, "1001", date)]
	require.Len(t, records, 1)
	assert.Equal(t, models.EventEntry, records[0].Kind)
	assert.Equal(t, models.StatusLate, records[0].Status)
}

func TestOverrideRejectsBadPayload(t *testing.T) {
	svc := newTestAttendanceService(&fakeLedger{}, &fakeResolver{cfg: studentWindow()}, nil)

	_, err := svc.Override(context.Background(), dto.OverrideRequest{
		Scope:    "siswa",
		PersonID: "1001",
		Date:     "02-03-2026",
		Status:   "Hadir",
	})
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestBulkOverrideCollectsConflicts(t *testing.T) {
	ledger := &fakeLedger{}
	svc := newTestAttendanceService(ledger, &fakeResolver{cfg: studentWindow()}, nil)

	result, err := svc.BulkOverride(context.Background(), dto.BulkOverrideRequest{
		Scope:     "siswa",
		PersonIDs: []string{"1001", "1002"},
		Date:      "2026-03-02",
		Status:    "Alfa",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Applied)
	assert.Empty(t, result.Conflicts)
	assert.Len(t, ledger.replaced, 2)
}

func TestLockMapPrunedAfterWrites(t *testing.T) {
	ledger := &fakeLedger{}
	svc := newTestAttendanceService(ledger, &fakeResolver{cfg: studentWindow()}, nil)

	_, err := svc.RecordScan(context.Background(), dto.ScanRequest{Token: "s1001"})
	require.NoError(t, err)

	_, err = svc.Override(context.Background(), dto.OverrideRequest{
		Scope:    "siswa",
		PersonID: "1001",
		Date:     "2026-03-03",
		Status:   "Sakit",
	})
	require.NoError(t, err)

	svc.mu.Lock()
	defer svc.mu.Unlock()
	assert.Empty(t, svc.locks)
}
