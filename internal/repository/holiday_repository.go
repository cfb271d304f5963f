package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/smk-presensi-api/internal/models"
)

// HolidayRepository persists one-off closure dates.
type HolidayRepository struct {
	db *sqlx.DB
}

// NewHolidayRepository constructs the repository.
func NewHolidayRepository(db *sqlx.DB) *HolidayRepository {
	return &HolidayRepository{db: db}
}

// GetByDate returns the holiday on a date, or nil when the date is a normal
// day.
func (r *HolidayRepository) GetByDate(ctx context.Context, date time.Time) (*models.SpecialHoliday, error) {
	query := `SELECT id, tanggal, keterangan FROM special_holidays WHERE tanggal = $1`
	var holiday models.SpecialHoliday
	err := r.db.GetContext(ctx, &holiday, query, date.Format("2006-01-02"))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get holiday by date: %w", err)
	}
	return &holiday, nil
}

// ListBetween returns holidays inside [from, to] inclusive, ordered by date.
func (r *HolidayRepository) ListBetween(ctx context.Context, from, to time.Time) ([]models.SpecialHoliday, error) {
	query := `SELECT id, tanggal, keterangan FROM special_holidays
		WHERE tanggal BETWEEN $1 AND $2 ORDER BY tanggal ASC`
	var holidays []models.SpecialHoliday
	if err := r.db.SelectContext(ctx, &holidays, query, from.Format("2006-01-02"), to.Format("2006-01-02")); err != nil {
		return nil, fmt.Errorf("list holidays: %w", err)
	}
	return holidays, nil
}

// List returns every holiday, newest first.
func (r *HolidayRepository) List(ctx context.Context) ([]models.SpecialHoliday, error) {
	query := `SELECT id, tanggal, keterangan FROM special_holidays ORDER BY tanggal DESC`
	var holidays []models.SpecialHoliday
	if err := r.db.SelectContext(ctx, &holidays, query); err != nil {
		return nil, fmt.Errorf("list holidays: %w", err)
	}
	return holidays, nil
}

// Create inserts a holiday; the date carries a unique constraint so a second
// insert for the same date updates the description instead.
func (r *HolidayRepository) Create(ctx context.Context, holiday *models.SpecialHoliday) error {
	query := `
		INSERT INTO special_holidays (tanggal, keterangan)
		VALUES ($1, $2)
		ON CONFLICT (tanggal) DO UPDATE SET keterangan = EXCLUDED.keterangan
		RETURNING id`
	if err := r.db.GetContext(ctx, &holiday.ID, query, holiday.Date.Format("2006-01-02"), holiday.Description); err != nil {
		return fmt.Errorf("create holiday: %w", err)
	}
	return nil
}

// Delete removes one holiday by id.
func (r *HolidayRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM special_holidays WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete holiday: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete holiday: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
