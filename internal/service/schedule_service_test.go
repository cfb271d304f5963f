package service

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/smk-presensi-api/internal/dto"
	"github.com/noah-isme/smk-presensi-api/internal/models"
	appErrors "github.com/noah-isme/smk-presensi-api/pkg/errors"
)

type fakeScheduleStore struct {
	schedule   models.MonthlySchedule
	replaced   []models.SecurityScheduleEntry
	perMonth   map[int64][]models.SecurityScheduleEntry
	inserted   []models.SecurityScheduleEntry
	insertSkip int
}

func (f *fakeScheduleStore) MapForRange(context.Context, time.Time, time.Time) (models.MonthlySchedule, error) {
	return f.schedule, nil
}

func (f *fakeScheduleStore) ReplaceRange(_ context.Context, _, _ time.Time, entries []models.SecurityScheduleEntry) error {
	f.replaced = entries
	return nil
}

func (f *fakeScheduleStore) ReplaceEmployeeMonth(_ context.Context, employeeID int64, _, _ time.Time, entries []models.SecurityScheduleEntry) error {
	if f.perMonth == nil {
		f.perMonth = map[int64][]models.SecurityScheduleEntry{}
	}
	f.perMonth[employeeID] = entries
	return nil
}

func (f *fakeScheduleStore) InsertMissing(_ context.Context, entries []models.SecurityScheduleEntry) (int, error) {
	f.inserted = entries
	return len(entries) - f.insertSkip, nil
}

type fakeSecurityDirectory struct {
	staff []models.Employee
}

func (f *fakeSecurityDirectory) ListSecurityStaff(context.Context) ([]models.Employee, error) {
	return f.staff, nil
}

func (f *fakeSecurityDirectory) GetEmployee(_ context.Context, noID string) (*models.Employee, error) {
	for i := range f.staff {
		if f.staff[i].NoID == noID {
			return &f.staff[i], nil
		}
	}
	return nil, sql.ErrNoRows
}

func TestScheduleServiceSaveDropsEmptyCells(t *testing.T) {
	store := &fakeScheduleStore{}
	svc := NewScheduleService(store, &fakeSecurityDirectory{}, nil, nil)

	err := svc.Save(context.Background(), dto.ScheduleSaveRequest{
		Month: "2026-03",
		Shifts: map[int64]map[string]string{
			7: {
				"2026-03-01": "Malam",
				"2026-03-02": "",
				"2026-04-01": "Pagi", // outside the month, ignored
			},
		},
	})
	require.NoError(t, err)
	require.Len(t, store.replaced, 1)
	assert.Equal(t, "Malam", store.replaced[0].Shift)
	assert.Equal(t, int64(7), store.replaced[0].EmployeeID)
}

func TestScheduleServiceCopyPreviousMapsByDayOfMonth(t *testing.T) {
	store := &fakeScheduleStore{
		schedule: models.MonthlySchedule{
			7: {
				"2026-01-15": "Pagi",
				"2026-01-31": "Malam", // February has no day 31
			},
		},
	}
	svc := NewScheduleService(store, &fakeSecurityDirectory{}, nil, nil)

	copied, err := svc.CopyPrevious(context.Background(), dto.ScheduleCopyRequest{Month: "2026-02"})
	require.NoError(t, err)
	assert.Equal(t, 1, copied)
	require.Len(t, store.inserted, 1)
	assert.Equal(t, "2026-02-15", store.inserted[0].Date.Format("2006-01-02"))
	assert.Equal(t, "Pagi", store.inserted[0].Shift)
}

func TestScheduleServiceImportCSV(t *testing.T) {
	store := &fakeScheduleStore{}
	directory := &fakeSecurityDirectory{staff: []models.Employee{
		{ID: 7, NoID: "EMP01", Name: "Pak Dedi", Role: models.PopulationSecurity},
	}}
	svc := NewScheduleService(store, directory, nil, nil)

	csvData := strings.Join([]string{
		"No_id,shift_tgl1,shift_tgl2,shift_tgl3",
		"EMP01,Pagi,,Malam",
		"EMP99,Pagi,Pagi,Pagi",
	}, "\n")

	result, err := svc.ImportCSV(context.Background(), "2026-03", strings.NewReader(csvData))
	require.NoError(t, err)
	assert.Equal(t, 2, result.Applied)
	assert.Equal(t, []string{"EMP99"}, result.Skipped)

	entries := store.perMonth[7]
	require.Len(t, entries, 2)
	assert.Equal(t, "2026-03-01", entries[0].Date.Format("2006-01-02"))
	assert.Equal(t, "Pagi", entries[0].Shift)
	assert.Equal(t, "2026-03-03", entries[1].Date.Format("2006-01-02"))
	assert.Equal(t, "Malam", entries[1].Shift)
}

func TestScheduleServiceImportCSVRequiresIDColumn(t *testing.T) {
	svc := NewScheduleService(&fakeScheduleStore{}, &fakeSecurityDirectory{}, nil, nil)

	_, err := svc.ImportCSV(context.Background(), "2026-03", strings.NewReader("nama,shift_tgl1\nBudi,Pagi"))
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestScheduleServiceMonth(t *testing.T) {
	store := &fakeScheduleStore{schedule: models.MonthlySchedule{7: {"2026-03-01": "Pagi"}}}
	directory := &fakeSecurityDirectory{staff: []models.Employee{
		{ID: 7, NoID: "EMP01", Name: "Pak Dedi", Role: models.PopulationSecurity},
	}}
	svc := NewScheduleService(store, directory, nil, nil)

	view, err := svc.Month(context.Background(), "2026-03")
	require.NoError(t, err)
	assert.Equal(t, "2026-03", view.Month)
	require.Len(t, view.Employees, 1)
	assert.Equal(t, "Pagi", view.Shifts[7]["2026-03-01"])
}
