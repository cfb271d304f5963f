package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/smk-presensi-api/internal/models"
)

func newScheduleRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	return sqlxDB, mock, func() {
		sqlxDB.Close()
		db.Close()
	}
}

func TestSecurityScheduleRepositoryShiftFor(t *testing.T) {
	db, mock, cleanup := newScheduleRepoMock(t)
	defer cleanup()

	repo := NewSecurityScheduleRepository(db)
	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT shift FROM security_schedules").
		WithArgs(int64(5), "2026-03-02").
		WillReturnRows(sqlmock.NewRows([]string{"shift"}).AddRow("Malam"))
	shift, err := repo.ShiftFor(context.Background(), 5, date)
	require.NoError(t, err)
	assert.Equal(t, "Malam", shift)

	mock.ExpectQuery("SELECT shift FROM security_schedules").
		WithArgs(int64(5), "2026-03-02").
		WillReturnError(sql.ErrNoRows)
	_, err = repo.ShiftFor(context.Background(), 5, date)
	assert.True(t, errors.Is(err, sql.ErrNoRows))
}

func TestSecurityScheduleRepositoryMapForRange(t *testing.T) {
	db, mock, cleanup := newScheduleRepoMock(t)
	defer cleanup()

	repo := NewSecurityScheduleRepository(db)
	rows := sqlmock.NewRows([]string{"id", "pegawai_id", "tanggal", "shift"}).
		AddRow(1, 5, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), "Pagi").
		AddRow(2, 5, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), "Off").
		AddRow(3, 6, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), "Malam")
	mock.ExpectQuery("SELECT id, pegawai_id, tanggal, shift FROM security_schedules").
		WithArgs("2026-03-01", "2026-03-31").
		WillReturnRows(rows)

	schedule, err := repo.MapForRange(context.Background(),
		time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, schedule, 2)
	assert.Equal(t, "Pagi", schedule[5]["2026-03-01"])
	assert.Equal(t, "Off", schedule[5]["2026-03-02"])
	assert.Equal(t, "Malam", schedule[6]["2026-03-01"])
}

func TestSecurityScheduleRepositoryInsertMissingCountsOnlyNewRows(t *testing.T) {
	db, mock, cleanup := newScheduleRepoMock(t)
	defer cleanup()

	repo := NewSecurityScheduleRepository(db)
	mock.ExpectExec("INSERT INTO security_schedules").
		WithArgs(int64(5), "2026-04-01", "Pagi").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO security_schedules").
		WithArgs(int64(5), "2026-04-02", "Malam").
		WillReturnResult(sqlmock.NewResult(0, 0)) // existing cell untouched

	entries := []models.SecurityScheduleEntry{
		{EmployeeID: 5, Date: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), Shift: "Pagi"},
		{EmployeeID: 5, Date: time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC), Shift: "Malam"},
	}
	inserted, err := repo.InsertMissing(context.Background(), entries)
	require.NoError(t, err)
	assert.Equal(t, 1, inserted)
}

func TestSecurityScheduleRepositoryReplaceRange(t *testing.T) {
	db, mock, cleanup := newScheduleRepoMock(t)
	defer cleanup()

	repo := NewSecurityScheduleRepository(db)
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM security_schedules").
		WithArgs("2026-03-01", "2026-03-31").
		WillReturnResult(sqlmock.NewResult(0, 10))
	mock.ExpectExec("INSERT INTO security_schedules").
		WithArgs(int64(5), "2026-03-01", "Pagi").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	entries := []models.SecurityScheduleEntry{
		{EmployeeID: 5, Date: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), Shift: "Pagi"},
	}
	err := repo.ReplaceRange(context.Background(),
		time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC), entries)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
