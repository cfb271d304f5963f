package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/smk-presensi-api/internal/dto"
	"github.com/noah-isme/smk-presensi-api/internal/models"
	appErrors "github.com/noah-isme/smk-presensi-api/pkg/errors"
)

type leaveStore interface {
	Create(ctx context.Context, request *models.LeaveRequest) error
	GetByID(ctx context.Context, id int64) (*models.LeaveRequest, error)
	ListByDate(ctx context.Context, date time.Time, limit, offset int) ([]models.LeaveRequest, error)
	CountByDate(ctx context.Context, date time.Time) (int, error)
	UpdateStatus(ctx context.Context, id int64, status models.LeaveStatus) error
}

type leaveStudentReader interface {
	GetStudent(ctx context.Context, nis string) (*models.Student, error)
}

type overrideApplier interface {
	Override(ctx context.Context, req dto.OverrideRequest) (models.DayView, error)
}

// LeaveService handles parent-submitted absence requests. Approving a request
// writes the matching manual status into the ledger for that day, so the
// roster and matrix pick it up without a separate admin step.
type LeaveService struct {
	store     leaveStore
	students  leaveStudentReader
	overrides overrideApplier
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewLeaveService constructs a LeaveService.
func NewLeaveService(store leaveStore, students leaveStudentReader, overrides overrideApplier, validate *validator.Validate, logger *zap.Logger) *LeaveService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	registerRequestFormats(validate)
	return &LeaveService{
		store:     store,
		students:  students,
		overrides: overrides,
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}
}

// Create records a pending leave request. The student name and class are
// snapshotted from the directory so the request list stays readable even if
// the student record changes later.
func (s *LeaveService) Create(ctx context.Context, req dto.LeaveCreateRequest) (*models.LeaveRequest, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid leave payload")
	}

	student, err := s.students.GetStudent(ctx, req.StudentNIS)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Clone(appErrors.ErrUnknownPerson, "siswa dengan NIS tersebut tidak ditemukan")
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to look up student")
	}

	date := dateOnly(s.now())
	if req.Date != "" {
		if date, err = time.Parse("2006-01-02", req.Date); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "tanggal tidak valid")
		}
	}

	className := ""
	if student.ClassName != nil {
		className = *student.ClassName
	}
	request := &models.LeaveRequest{
		StudentNIS:  student.NIS,
		StudentName: student.Name,
		ClassName:   className,
		ParentName:  req.ParentName,
		ParentPhone: req.ParentPhone,
		Kind:        models.LeaveKind(req.Kind),
		Note:        req.Note,
		Status:      models.LeavePending,
		Date:        date,
	}
	if err := s.store.Create(ctx, request); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create leave request")
	}
	return request, nil
}

// ListByDate returns one page of the requests targeting a date.
func (s *LeaveService) ListByDate(ctx context.Context, date time.Time, page, pageSize int) ([]models.LeaveRequest, *models.Pagination, error) {
	requests, err := s.store.ListByDate(ctx, date, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list leave requests")
	}
	total, err := s.store.CountByDate(ctx, date)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count leave requests")
	}
	return requests, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, nil
}

// Decide approves or rejects a pending request. Approval also writes the
// requested status into the attendance ledger for that date.
func (s *LeaveService) Decide(ctx context.Context, id int64, approve bool) (*models.LeaveRequest, error) {
	request, err := s.store.GetByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "pengajuan izin tidak ditemukan")
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load leave request")
	}
	if request.Status != models.LeavePending {
		return nil, appErrors.Clone(appErrors.ErrConflict, "pengajuan izin sudah diputuskan")
	}

	status := models.LeaveRejected
	if approve {
		status = models.LeaveApproved
	}
	if err := s.store.UpdateStatus(ctx, id, status); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update leave status")
	}
	request.Status = status

	if approve {
		note := "Izin disetujui"
		if request.Note != nil && *request.Note != "" {
			note = *request.Note
		}
		_, err := s.overrides.Override(ctx, dto.OverrideRequest{
			Scope:    string(models.LedgerStudents),
			PersonID: request.StudentNIS,
			Date:     request.Date.Format("2006-01-02"),
			Status:   string(request.Kind),
			Note:     &note,
		})
		if err != nil {
			// The decision stands; the ledger write is retryable by hand.
			s.logger.Error("approved leave but ledger write failed",
				zap.Int64("leave_id", id), zap.Error(err))
		}
	}
	return request, nil
}
