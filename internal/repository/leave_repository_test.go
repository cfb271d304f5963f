package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/smk-presensi-api/internal/models"
)

func newLeaveRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	return sqlxDB, mock, func() {
		sqlxDB.Close()
		db.Close()
	}
}

func TestLeaveRepositoryListByDatePaginates(t *testing.T) {
	db, mock, cleanup := newLeaveRepoMock(t)
	defer cleanup()

	repo := NewLeaveRepository(db)
	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"id", "nis", "nama_siswa", "kelas", "nama_ortu", "no_wa", "jenis_izin", "keterangan", "status", "tanggal", "created_at"}).
		AddRow(3, "1001", "Budi Santoso", "XII RPL 1", "Ibu Sari", "08123", "Sakit", nil, "Pending", date, time.Now())
	mock.ExpectQuery("SELECT (.+) FROM leave_requests").
		WithArgs("2026-03-02", 2, 4).
		WillReturnRows(rows)

	requests, err := repo.ListByDate(context.Background(), date, 2, 4)
	require.NoError(t, err)
	require.Len(t, requests, 1)
	assert.Equal(t, int64(3), requests[0].ID)
	assert.Equal(t, models.LeavePending, requests[0].Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLeaveRepositoryCountByDate(t *testing.T) {
	db, mock, cleanup := newLeaveRepoMock(t)
	defer cleanup()

	repo := NewLeaveRepository(db)
	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT COUNT").
		WithArgs("2026-03-02").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	count, err := repo.CountByDate(context.Background(), date)
	require.NoError(t, err)
	assert.Equal(t, 7, count)
	require.NoError(t, mock.ExpectationsWereMet())
}
