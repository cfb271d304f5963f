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

type fakeLeaveStore struct {
	created  []*models.LeaveRequest
	byID     map[int64]*models.LeaveRequest
	byDate   []models.LeaveRequest
	statuses map[int64]models.LeaveStatus
}

func (f *fakeLeaveStore) Create(_ context.Context, request *models.LeaveRequest) error {
	request.ID = int64(len(f.created) + 1)
	f.created = append(f.created, request)
	return nil
}

func (f *fakeLeaveStore) GetByID(_ context.Context, id int64) (*models.LeaveRequest, error) {
	request, ok := f.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *request
	return &copied, nil
}

func (f *fakeLeaveStore) ListByDate(_ context.Context, _ time.Time, limit, offset int) ([]models.LeaveRequest, error) {
	if offset >= len(f.byDate) {
		return nil, nil
	}
	end := offset + limit
	if end > len(f.byDate) {
		end = len(f.byDate)
	}
	return f.byDate[offset:end], nil
}

func (f *fakeLeaveStore) CountByDate(_ context.Context, _ time.Time) (int, error) {
	return len(f.byDate), nil
}

func (f *fakeLeaveStore) UpdateStatus(_ context.Context, id int64, status models.LeaveStatus) error {
	if f.statuses == nil {
		f.statuses = map[int64]models.LeaveStatus{}
	}
	f.statuses[id] = status
	return nil
}

type fakeOverrideApplier struct {
	applied []dto.OverrideRequest
	err     error
}

func (f *fakeOverrideApplier) Override(_ context.Context, req dto.OverrideRequest) (models.DayView, error) {
	f.applied = append(f.applied, req)
	return models.DayView{}, f.err
}

type fakeLeaveStudents struct {
	students map[string]*models.Student
}

func (f *fakeLeaveStudents) GetStudent(_ context.Context, nis string) (*models.Student, error) {
	student, ok := f.students[nis]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return student, nil
}

func pendingLeave(id int64, kind models.LeaveKind) *models.LeaveRequest {
	return &models.LeaveRequest{
		ID:         id,
		StudentNIS: "1001",
		Kind:       kind,
		Status:     models.LeavePending,
		Date:       time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
	}
}

func TestLeaveCreateSnapshotsStudent(t *testing.T) {
	store := &fakeLeaveStore{}
	svc := NewLeaveService(store, &fakeLeaveStudents{students: map[string]*models.Student{
		"1001": {NIS: "1001", Name: "Budi Santoso", ClassName: classP("XII RPL 1")},
	}}, &fakeOverrideApplier{}, nil, nil)

	leave, err := svc.Create(context.Background(), dto.LeaveCreateRequest{
		StudentNIS:  "1001",
		ParentName:  "Ibu Sari",
		ParentPhone: "081234567890",
		Kind:        "Sakit",
		Date:        "2026-03-02",
	})
	require.NoError(t, err)
	assert.Equal(t, "Budi Santoso", leave.StudentName)
	assert.Equal(t, "XII RPL 1", leave.ClassName)
	assert.Equal(t, models.LeavePending, leave.Status)
	require.Len(t, store.created, 1)
}

func TestLeaveListPaginates(t *testing.T) {
	store := &fakeLeaveStore{}
	for i := int64(1); i <= 5; i++ {
		store.byDate = append(store.byDate, *pendingLeave(i, models.LeaveSick))
	}
	svc := NewLeaveService(store, &fakeLeaveStudents{}, &fakeOverrideApplier{}, nil, nil)

	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	requests, pagination, err := svc.ListByDate(context.Background(), date, 2, 2)
	require.NoError(t, err)

	require.Len(t, requests, 2)
	assert.Equal(t, int64(3), requests[0].ID)
	require.NotNil(t, pagination)
	assert.Equal(t, 2, pagination.Page)
	assert.Equal(t, 2, pagination.PageSize)
	assert.Equal(t, 5, pagination.TotalCount)
}

func TestLeaveCreateUnknownStudent(t *testing.T) {
	svc := NewLeaveService(&fakeLeaveStore{}, &fakeLeaveStudents{}, &fakeOverrideApplier{}, nil, nil)

	_, err := svc.Create(context.Background(), dto.LeaveCreateRequest{
		StudentNIS:  "9999",
		ParentName:  "Ibu Sari",
		ParentPhone: "081234567890",
		Kind:        "Izin",
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrUnknownPerson))
}

func TestLeaveDecideApprovalWritesLedger(t *testing.T) {
	store := &fakeLeaveStore{byID: map[int64]*models.LeaveRequest{
		7: pendingLeave(7, models.LeaveSick),
	}}
	overrides := &fakeOverrideApplier{}
	svc := NewLeaveService(store, &fakeLeaveStudents{}, overrides, nil, nil)

	leave, err := svc.Decide(context.Background(), 7, true)
	require.NoError(t, err)
	assert.Equal(t, models.LeaveApproved, leave.Status)
	assert.Equal(t, models.LeaveApproved, store.statuses[7])

	require.Len(t, overrides.applied, 1)
	applied := overrides.applied[0]
	assert.Equal(t, "1001", applied.PersonID)
	assert.Equal(t, "2026-03-02", applied.Date)
	assert.Equal(t, "Sakit", applied.Status)
}

func TestLeaveDecideRejectionSkipsLedger(t *testing.T) {
	store := &fakeLeaveStore{byID: map[int64]*models.LeaveRequest{
		7: pendingLeave(7, models.LeaveExcused),
	}}
	overrides := &fakeOverrideApplier{}
	svc := NewLeaveService(store, &fakeLeaveStudents{}, overrides, nil, nil)

	leave, err := svc.Decide(context.Background(), 7, false)
	require.NoError(t, err)
	assert.Equal(t, models.LeaveRejected, leave.Status)
	assert.Empty(t, overrides.applied)
}

func TestLeaveDecideAlreadyDecided(t *testing.T) {
	decided := pendingLeave(7, models.LeaveSick)
	decided.Status = models.LeaveApproved
	store := &fakeLeaveStore{byID: map[int64]*models.LeaveRequest{7: decided}}
	svc := NewLeaveService(store, &fakeLeaveStudents{}, &fakeOverrideApplier{}, nil, nil)

	_, err := svc.Decide(context.Background(), 7, true)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))
}

func TestLeaveDecideApprovalSurvivesLedgerFailure(t *testing.T) {
	store := &fakeLeaveStore{byID: map[int64]*models.LeaveRequest{
		7: pendingLeave(7, models.LeaveSick),
	}}
	overrides := &fakeOverrideApplier{err: appErrors.ErrInternal}
	svc := NewLeaveService(store, &fakeLeaveStudents{}, overrides, nil, nil)

	leave, err := svc.Decide(context.Background(), 7, true)
	require.NoError(t, err)
	assert.Equal(t, models.LeaveApproved, leave.Status)
}
