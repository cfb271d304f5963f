package service

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/smk-presensi-api/internal/dto"
	"github.com/noah-isme/smk-presensi-api/internal/models"
	appErrors "github.com/noah-isme/smk-presensi-api/pkg/errors"
)

type scheduleStore interface {
	MapForRange(ctx context.Context, from, to time.Time) (models.MonthlySchedule, error)
	ReplaceRange(ctx context.Context, from, to time.Time, entries []models.SecurityScheduleEntry) error
	ReplaceEmployeeMonth(ctx context.Context, employeeID int64, from, to time.Time, entries []models.SecurityScheduleEntry) error
	InsertMissing(ctx context.Context, entries []models.SecurityScheduleEntry) (int, error)
}

type securityDirectory interface {
	ListSecurityStaff(ctx context.Context) ([]models.Employee, error)
	GetEmployee(ctx context.Context, noID string) (*models.Employee, error)
}

// ScheduleService manages the monthly shift schedule of security staff: the
// editor grid, copy-from-previous-month and CSV import.
type ScheduleService struct {
	store     scheduleStore
	people    securityDirectory
	validator *validator.Validate
	logger    *zap.Logger
}

// NewScheduleService constructs a ScheduleService.
func NewScheduleService(store scheduleStore, people securityDirectory, validate *validator.Validate, logger *zap.Logger) *ScheduleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	registerRequestFormats(validate)
	return &ScheduleService{store: store, people: people, validator: validate, logger: logger}
}

// Month returns the editor view of one month.
func (s *ScheduleService) Month(ctx context.Context, month string) (*dto.ScheduleView, error) {
	first, last, err := monthBounds(month)
	if err != nil {
		return nil, err
	}
	staff, err := s.people.ListSecurityStaff(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list security staff")
	}
	schedule, err := s.store.MapForRange(ctx, first, last)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule")
	}

	view := &dto.ScheduleView{
		Month:  first.Format("2006-01"),
		Shifts: schedule,
	}
	for _, employee := range staff {
		view.Employees = append(view.Employees, dto.ScheduleEmployee{ID: employee.ID, Name: employee.Name})
	}
	return view, nil
}

// Save replaces the whole month with the submitted grid. Empty cells are not
// stored; scan processing treats the gap as an off-day.
func (s *ScheduleService) Save(ctx context.Context, req dto.ScheduleSaveRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule payload")
	}
	first, last, err := monthBounds(req.Month)
	if err != nil {
		return err
	}

	var entries []models.SecurityScheduleEntry
	for employeeID, byDate := range req.Shifts {
		for dateKey, shift := range byDate {
			shift = strings.TrimSpace(shift)
			if shift == "" {
				continue
			}
			date, err := time.Parse("2006-01-02", dateKey)
			if err != nil || date.Before(first) || date.After(last) {
				continue
			}
			entries = append(entries, models.SecurityScheduleEntry{
				EmployeeID: employeeID,
				Date:       date,
				Shift:      shift,
			})
		}
	}

	if err := s.store.ReplaceRange(ctx, first, last, entries); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save schedule")
	}
	s.logger.Info("security schedule saved",
		zap.String("month", req.Month), zap.Int("entries", len(entries)))
	return nil
}

// CopyPrevious fills the target month from the previous month's pattern,
// matched by day of month. Cells that already hold an assignment stay
// untouched.
func (s *ScheduleService) CopyPrevious(ctx context.Context, req dto.ScheduleCopyRequest) (int, error) {
	if err := s.validator.Struct(req); err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid copy payload")
	}
	first, last, err := monthBounds(req.Month)
	if err != nil {
		return 0, err
	}
	prevFirst := first.AddDate(0, -1, 0)
	prevLast := first.AddDate(0, 0, -1)

	previous, err := s.store.MapForRange(ctx, prevFirst, prevLast)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load previous month")
	}

	var entries []models.SecurityScheduleEntry
	for employeeID, byDate := range previous {
		for dateKey, shift := range byDate {
			if strings.TrimSpace(shift) == "" {
				continue
			}
			prevDate, err := time.Parse("2006-01-02", dateKey)
			if err != nil {
				continue
			}
			target := time.Date(first.Year(), first.Month(), prevDate.Day(), 0, 0, 0, 0, first.Location())
			// Day 31 of a 30-day target month has no counterpart.
			if target.After(last) || target.Day() != prevDate.Day() {
				continue
			}
			entries = append(entries, models.SecurityScheduleEntry{
				EmployeeID: employeeID,
				Date:       target,
				Shift:      shift,
			})
		}
	}

	copied, err := s.store.InsertMissing(ctx, entries)
	if err != nil {
		return copied, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to copy schedule")
	}
	return copied, nil
}

// ImportCSV replaces schedules from an uploaded CSV. Each row names an
// employee by No_id and carries shift_tgl1..shift_tglN columns; rows for
// unknown employees are skipped and reported, and each known employee's month
// is replaced wholesale.
func (s *ScheduleService) ImportCSV(ctx context.Context, month string, file io.Reader) (*dto.ScheduleImportResult, error) {
	first, last, err := monthBounds(month)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "file CSV tidak dapat dibaca")
	}
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}
	idCol, ok := columns["No_id"]
	if !ok {
		idCol, ok = columns["no_id"]
	}
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "kolom No_id tidak ditemukan di file CSV")
	}

	result := &dto.ScheduleImportResult{Month: first.Format("2006-01")}
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "baris CSV tidak valid")
		}
		noID := strings.TrimSpace(cell(row, idCol))
		if noID == "" {
			result.Skipped = append(result.Skipped, "baris tanpa No_id")
			continue
		}

		employee, err := s.people.GetEmployee(ctx, noID)
		if errors.Is(err, sql.ErrNoRows) {
			result.Skipped = append(result.Skipped, noID)
			continue
		}
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to look up employee")
		}

		var entries []models.SecurityScheduleEntry
		for day := 1; day <= last.Day(); day++ {
			col, ok := columns[fmt.Sprintf("shift_tgl%d", day)]
			if !ok {
				continue
			}
			shift := strings.TrimSpace(cell(row, col))
			if shift == "" {
				continue
			}
			entries = append(entries, models.SecurityScheduleEntry{
				EmployeeID: employee.ID,
				Date:       time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, first.Location()),
				Shift:      shift,
			})
		}

		if err := s.store.ReplaceEmployeeMonth(ctx, employee.ID, first, last, entries); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to import schedule")
		}
		result.Applied += len(entries)
	}
	return result, nil
}

func monthBounds(month string) (time.Time, time.Time, error) {
	first, err := time.Parse("2006-01", month)
	if err != nil {
		return time.Time{}, time.Time{}, appErrors.Clone(appErrors.ErrValidation, "format bulan tidak valid, gunakan YYYY-MM")
	}
	return first, first.AddDate(0, 1, -1), nil
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
