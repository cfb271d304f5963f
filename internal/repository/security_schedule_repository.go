package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/smk-presensi-api/internal/models"
)

// SecurityScheduleRepository persists the per-day shift assignments of
// security staff.
type SecurityScheduleRepository struct {
	db *sqlx.DB
}

// NewSecurityScheduleRepository constructs the repository.
func NewSecurityScheduleRepository(db *sqlx.DB) *SecurityScheduleRepository {
	return &SecurityScheduleRepository{db: db}
}

// ShiftFor returns the shift assigned to an employee on a date. A missing row
// surfaces as sql.ErrNoRows, which callers treat as an off-day.
func (r *SecurityScheduleRepository) ShiftFor(ctx context.Context, employeeID int64, date time.Time) (string, error) {
	var shift string
	query := `SELECT shift FROM security_schedules WHERE pegawai_id = $1 AND tanggal = $2`
	if err := r.db.GetContext(ctx, &shift, query, employeeID, date.Format("2006-01-02")); err != nil {
		return "", err
	}
	return shift, nil
}

// MapForRange loads every assignment inside [from, to] keyed by employee and
// date, the shape the schedule editor renders.
func (r *SecurityScheduleRepository) MapForRange(ctx context.Context, from, to time.Time) (models.MonthlySchedule, error) {
	query := `SELECT id, pegawai_id, tanggal, shift FROM security_schedules
		WHERE tanggal BETWEEN $1 AND $2 ORDER BY pegawai_id ASC, tanggal ASC`
	var entries []models.SecurityScheduleEntry
	if err := r.db.SelectContext(ctx, &entries, query, from.Format("2006-01-02"), to.Format("2006-01-02")); err != nil {
		return nil, fmt.Errorf("load schedule range: %w", err)
	}
	schedule := models.MonthlySchedule{}
	for _, entry := range entries {
		byDate, ok := schedule[entry.EmployeeID]
		if !ok {
			byDate = map[string]string{}
			schedule[entry.EmployeeID] = byDate
		}
		byDate[entry.Date.Format("2006-01-02")] = entry.Shift
	}
	return schedule, nil
}

// ReplaceRange overwrites the assignments of [from, to] inside one
// transaction: a full delete followed by inserting the submitted entries.
func (r *SecurityScheduleRepository) ReplaceRange(ctx context.Context, from, to time.Time, entries []models.SecurityScheduleEntry) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schedule replace: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM security_schedules WHERE tanggal BETWEEN $1 AND $2`,
		from.Format("2006-01-02"), to.Format("2006-01-02")); err != nil {
		return fmt.Errorf("clear schedule range: %w", err)
	}
	insert := `INSERT INTO security_schedules (pegawai_id, tanggal, shift) VALUES ($1, $2, $3)`
	for _, entry := range entries {
		if _, err := tx.ExecContext(ctx, insert, entry.EmployeeID, entry.Date.Format("2006-01-02"), entry.Shift); err != nil {
			return fmt.Errorf("insert schedule entry: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schedule replace: %w", err)
	}
	return nil
}

// ReplaceEmployeeMonth rewrites one employee's assignments inside [from, to].
// CSV import calls this per employee so a bad row never clears anyone else.
func (r *SecurityScheduleRepository) ReplaceEmployeeMonth(ctx context.Context, employeeID int64, from, to time.Time, entries []models.SecurityScheduleEntry) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin employee schedule replace: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM security_schedules WHERE pegawai_id = $1 AND tanggal BETWEEN $2 AND $3`,
		employeeID, from.Format("2006-01-02"), to.Format("2006-01-02")); err != nil {
		return fmt.Errorf("clear employee schedule: %w", err)
	}
	insert := `INSERT INTO security_schedules (pegawai_id, tanggal, shift) VALUES ($1, $2, $3)`
	for _, entry := range entries {
		if _, err := tx.ExecContext(ctx, insert, entry.EmployeeID, entry.Date.Format("2006-01-02"), entry.Shift); err != nil {
			return fmt.Errorf("insert schedule entry: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit employee schedule replace: %w", err)
	}
	return nil
}

// InsertMissing adds entries only where no assignment exists yet, leaving any
// hand-edited cell alone. Used by copy-from-previous-month.
func (r *SecurityScheduleRepository) InsertMissing(ctx context.Context, entries []models.SecurityScheduleEntry) (int, error) {
	query := `INSERT INTO security_schedules (pegawai_id, tanggal, shift)
		VALUES ($1, $2, $3)
		ON CONFLICT (pegawai_id, tanggal) DO NOTHING`
	inserted := 0
	for _, entry := range entries {
		result, err := r.db.ExecContext(ctx, query, entry.EmployeeID, entry.Date.Format("2006-01-02"), entry.Shift)
		if err != nil {
			return inserted, fmt.Errorf("insert schedule entry: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return inserted, fmt.Errorf("insert schedule entry: %w", err)
		}
		inserted += int(affected)
	}
	return inserted, nil
}
