package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/smk-presensi-api/internal/models"
)

// AttendanceRepository owns the attendance ledger. Rows are append-only from
// the scan path; manual overrides rewrite a whole (person, date) inside one
// transaction so the one-entry/one-exit invariant survives concurrent reads.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs the repository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

const attendanceColumns = `id, scope, person_id, tanggal, jenis_absen, status, waktu, keterangan`

// Insert appends one ledger row.
func (r *AttendanceRepository) Insert(ctx context.Context, record *models.AttendanceRecord) error {
	query := `
		INSERT INTO attendance_records (id, scope, person_id, tanggal, jenis_absen, status, waktu, keterangan)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.db.ExecContext(ctx, query,
		record.ID, record.Scope, record.PersonID, record.Date.Format("2006-01-02"),
		record.Kind, record.Status, record.Time, record.Note)
	if err != nil {
		return fmt.Errorf("insert attendance record: %w", err)
	}
	return nil
}

// SlotOccupied reports whether a record already fills the given slot for the
// day. A lainnya record occupies both slots, and inserting lainnya conflicts
// with any existing record.
func (r *AttendanceRepository) SlotOccupied(ctx context.Context, scope models.LedgerScope, personID string, date time.Time, kind models.EventKind) (bool, error) {
	query := `SELECT COUNT(*) FROM attendance_records
		WHERE scope = $1 AND person_id = $2 AND tanggal = $3`
	args := []interface{}{scope, personID, date.Format("2006-01-02")}
	if kind != models.EventManual {
		query += ` AND jenis_absen IN ($4, $5)`
		args = append(args, kind, models.EventManual)
	}
	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return false, fmt.Errorf("check attendance slot: %w", err)
	}
	return count > 0, nil
}

// Day loads the entry/exit view of one person on one date. A lainnya record
// fills both slots.
func (r *AttendanceRepository) Day(ctx context.Context, scope models.LedgerScope, personID string, date time.Time) (models.DayView, error) {
	query := fmt.Sprintf(`SELECT %s FROM attendance_records
		WHERE scope = $1 AND person_id = $2 AND tanggal = $3 ORDER BY waktu ASC`, attendanceColumns)
	var records []models.AttendanceRecord
	if err := r.db.SelectContext(ctx, &records, query, scope, personID, date.Format("2006-01-02")); err != nil {
		return models.DayView{}, fmt.Errorf("load attendance day: %w", err)
	}
	return buildDayView(records), nil
}

// ReplaceDay deletes every record of the (person, date) and inserts the
// replacement rows inside one transaction.
func (r *AttendanceRepository) ReplaceDay(ctx context.Context, scope models.LedgerScope, personID string, date time.Time, records []models.AttendanceRecord) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin day replace: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM attendance_records WHERE scope = $1 AND person_id = $2 AND tanggal = $3`,
		scope, personID, date.Format("2006-01-02")); err != nil {
		return fmt.Errorf("clear attendance day: %w", err)
	}
	insert := `INSERT INTO attendance_records (id, scope, person_id, tanggal, jenis_absen, status, waktu, keterangan)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	for _, record := range records {
		if _, err := tx.ExecContext(ctx, insert,
			record.ID, record.Scope, record.PersonID, record.Date.Format("2006-01-02"),
			record.Kind, record.Status, record.Time, record.Note); err != nil {
			return fmt.Errorf("insert replacement record: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit day replace: %w", err)
	}
	return nil
}

// ForDate returns every record of one ledger on one date.
func (r *AttendanceRepository) ForDate(ctx context.Context, scope models.LedgerScope, date time.Time) ([]models.AttendanceRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM attendance_records
		WHERE scope = $1 AND tanggal = $2 ORDER BY person_id ASC, waktu ASC`, attendanceColumns)
	var records []models.AttendanceRecord
	if err := r.db.SelectContext(ctx, &records, query, scope, date.Format("2006-01-02")); err != nil {
		return nil, fmt.Errorf("load attendance for date: %w", err)
	}
	return records, nil
}

// ForRange returns every record of one ledger inside [from, to] inclusive.
func (r *AttendanceRepository) ForRange(ctx context.Context, scope models.LedgerScope, from, to time.Time) ([]models.AttendanceRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM attendance_records
		WHERE scope = $1 AND tanggal BETWEEN $2 AND $3
		ORDER BY tanggal ASC, person_id ASC, waktu ASC`, attendanceColumns)
	var records []models.AttendanceRecord
	if err := r.db.SelectContext(ctx, &records, query, scope, from.Format("2006-01-02"), to.Format("2006-01-02")); err != nil {
		return nil, fmt.Errorf("load attendance range: %w", err)
	}
	return records, nil
}

// ForPersonRange returns one person's records inside [from, to] inclusive.
func (r *AttendanceRepository) ForPersonRange(ctx context.Context, scope models.LedgerScope, personID string, from, to time.Time) ([]models.AttendanceRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM attendance_records
		WHERE scope = $1 AND person_id = $2 AND tanggal BETWEEN $3 AND $4
		ORDER BY tanggal ASC, waktu ASC`, attendanceColumns)
	var records []models.AttendanceRecord
	if err := r.db.SelectContext(ctx, &records, query, scope, personID, from.Format("2006-01-02"), to.Format("2006-01-02")); err != nil {
		return nil, fmt.Errorf("load person attendance range: %w", err)
	}
	return records, nil
}

// buildDayView folds raw rows into the entry/exit shape. A lainnya row wins
// both slots regardless of other rows.
func buildDayView(records []models.AttendanceRecord) models.DayView {
	var view models.DayView
	for i := range records {
		record := &records[i]
		switch record.Kind {
		case models.EventManual:
			return models.DayView{Entry: record, Exit: record}
		case models.EventEntry:
			if view.Entry == nil {
				view.Entry = record
			}
		case models.EventExit:
			if view.Exit == nil {
				view.Exit = record
			}
		}
	}
	return view
}

// GroupByPerson folds range rows into per-person, per-date day views.
func GroupByPerson(records []models.AttendanceRecord) map[string]map[string]models.DayView {
	grouped := map[string][]models.AttendanceRecord{}
	for _, record := range records {
		key := record.PersonID + "|" + record.Date.Format("2006-01-02")
		grouped[key] = append(grouped[key], record)
	}
	out := map[string]map[string]models.DayView{}
	for _, rows := range grouped {
		personID := rows[0].PersonID
		date := rows[0].Date.Format("2006-01-02")
		byDate, ok := out[personID]
		if !ok {
			byDate = map[string]models.DayView{}
			out[personID] = byDate
		}
		byDate[date] = buildDayView(rows)
	}
	return out
}
