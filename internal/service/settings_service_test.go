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

type fakeWindowConfigStore struct {
	fakeConfigReader
	saved   []*models.WindowConfig
	deleted []string
}

func (f *fakeWindowConfigStore) List(context.Context) ([]models.WindowConfig, error) {
	var out []models.WindowConfig
	for _, cfg := range f.byScope {
		out = append(out, *cfg)
	}
	return out, nil
}

func (f *fakeWindowConfigStore) Upsert(_ context.Context, cfg *models.WindowConfig) error {
	f.saved = append(f.saved, cfg)
	return nil
}

func (f *fakeWindowConfigStore) DeleteShift(_ context.Context, shiftName string) error {
	f.deleted = append(f.deleted, shiftName)
	return nil
}

type fakeHolidayStore struct {
	holidays []models.SpecialHoliday
	created  []*models.SpecialHoliday
	missing  bool
}

func (f *fakeHolidayStore) List(context.Context) ([]models.SpecialHoliday, error) {
	return f.holidays, nil
}

func (f *fakeHolidayStore) Create(_ context.Context, holiday *models.SpecialHoliday) error {
	holiday.ID = int64(len(f.created) + 1)
	f.created = append(f.created, holiday)
	return nil
}

func (f *fakeHolidayStore) Delete(_ context.Context, _ int64) error {
	if f.missing {
		return sql.ErrNoRows
	}
	return nil
}

func validWindowRequest() dto.WindowConfigRequest {
	cutoff := "08:00"
	return dto.WindowConfigRequest{
		Scope:           string(models.ScopeStudent),
		EntryStart:      "06:00",
		EntryEnd:        "07:30",
		LateCutoff:      &cutoff,
		ExitStart:       "15:00",
		ExitEnd:         "17:00",
		RoutineHolidays: []string{"Sabtu", "Minggu"},
	}
}

func TestSaveWindowConfigParsesClocks(t *testing.T) {
	store := &fakeWindowConfigStore{}
	svc := NewSettingsService(store, &fakeHolidayStore{}, nil, nil)

	cfg, err := svc.SaveWindowConfig(context.Background(), validWindowRequest())
	require.NoError(t, err)
	require.Len(t, store.saved, 1)

	assert.Equal(t, models.NewClock(6, 0, 0), cfg.EntryStart)
	assert.Equal(t, models.NewClock(7, 30, 0), cfg.EntryEnd)
	require.NotNil(t, cfg.LateCutoff)
	assert.Equal(t, models.NewClock(8, 0, 0), *cfg.LateCutoff)
	assert.True(t, cfg.RoutineHolidays.Contains(time.Saturday))
	assert.True(t, cfg.RoutineHolidays.Contains(time.Sunday))
	assert.False(t, cfg.RoutineHolidays.Contains(time.Monday))
}

func TestSaveWindowConfigSecurityRequiresShiftName(t *testing.T) {
	svc := NewSettingsService(&fakeWindowConfigStore{}, &fakeHolidayStore{}, nil, nil)

	req := validWindowRequest()
	req.Scope = string(models.ScopeSecurity)
	_, err := svc.SaveWindowConfig(context.Background(), req)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	req.ShiftName = "Pagi"
	_, err = svc.SaveWindowConfig(context.Background(), req)
	assert.NoError(t, err)
}

func TestSaveWindowConfigRejectsShiftNameOutsideSecurity(t *testing.T) {
	svc := NewSettingsService(&fakeWindowConfigStore{}, &fakeHolidayStore{}, nil, nil)

	req := validWindowRequest()
	req.ShiftName = "Pagi"
	_, err := svc.SaveWindowConfig(context.Background(), req)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestSaveWindowConfigRejectsInvertedWindow(t *testing.T) {
	svc := NewSettingsService(&fakeWindowConfigStore{}, &fakeHolidayStore{}, nil, nil)

	req := validWindowRequest()
	req.EntryEnd = "05:00"
	_, err := svc.SaveWindowConfig(context.Background(), req)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestCreateHolidayParsesDate(t *testing.T) {
	holidays := &fakeHolidayStore{}
	svc := NewSettingsService(&fakeWindowConfigStore{}, holidays, nil, nil)

	holiday, err := svc.CreateHoliday(context.Background(), dto.HolidayRequest{
		Date:        "2026-03-17",
		Description: "Ujian Sekolah",
	})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 17, 0, 0, 0, 0, time.UTC), holiday.Date)
	assert.NotZero(t, holiday.ID)
}

func TestDeleteHolidayNotFound(t *testing.T) {
	svc := NewSettingsService(&fakeWindowConfigStore{}, &fakeHolidayStore{missing: true}, nil, nil)

	err := svc.DeleteHoliday(context.Background(), 99)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}
