package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/smk-presensi-api/internal/models"
)

// LeaveRepository persists parent-submitted leave requests.
type LeaveRepository struct {
	db *sqlx.DB
}

// NewLeaveRepository constructs the repository.
func NewLeaveRepository(db *sqlx.DB) *LeaveRepository {
	return &LeaveRepository{db: db}
}

const leaveColumns = `id, nis, nama_siswa, kelas, nama_ortu, no_wa, jenis_izin, keterangan, status, tanggal, created_at`

// Create inserts a pending request.
func (r *LeaveRepository) Create(ctx context.Context, request *models.LeaveRequest) error {
	query := `
		INSERT INTO leave_requests (nis, nama_siswa, kelas, nama_ortu, no_wa, jenis_izin, keterangan, status, tanggal)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at`
	row := r.db.QueryRowxContext(ctx, query,
		request.StudentNIS, request.StudentName, request.ClassName,
		request.ParentName, request.ParentPhone, request.Kind,
		request.Note, models.LeavePending, request.Date.Format("2006-01-02"))
	if err := row.Scan(&request.ID, &request.CreatedAt); err != nil {
		return fmt.Errorf("create leave request: %w", err)
	}
	request.Status = models.LeavePending
	return nil
}

// GetByID fetches one request.
func (r *LeaveRepository) GetByID(ctx context.Context, id int64) (*models.LeaveRequest, error) {
	query := fmt.Sprintf(`SELECT %s FROM leave_requests WHERE id = $1`, leaveColumns)
	var request models.LeaveRequest
	if err := r.db.GetContext(ctx, &request, query, id); err != nil {
		return nil, err
	}
	return &request, nil
}

// ListByDate returns one page of the requests targeting a date, newest first.
func (r *LeaveRepository) ListByDate(ctx context.Context, date time.Time, limit, offset int) ([]models.LeaveRequest, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM leave_requests
		WHERE tanggal = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`, leaveColumns)
	var requests []models.LeaveRequest
	if err := r.db.SelectContext(ctx, &requests, query, date.Format("2006-01-02"), limit, offset); err != nil {
		return nil, fmt.Errorf("list leave requests: %w", err)
	}
	return requests, nil
}

// CountByDate reports how many requests target one date.
func (r *LeaveRepository) CountByDate(ctx context.Context, date time.Time) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM leave_requests WHERE tanggal = $1`, date.Format("2006-01-02"))
	if err != nil {
		return 0, fmt.Errorf("count leave requests: %w", err)
	}
	return count, nil
}

// UpdateStatus moves a request out of Pending.
func (r *LeaveRepository) UpdateStatus(ctx context.Context, id int64, status models.LeaveStatus) error {
	result, err := r.db.ExecContext(ctx, `UPDATE leave_requests SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("update leave status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update leave status: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("leave request %d not found", id)
	}
	return nil
}
