package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/smk-presensi-api/internal/dto"
	"github.com/noah-isme/smk-presensi-api/internal/models"
	appErrors "github.com/noah-isme/smk-presensi-api/pkg/errors"
)

type attendanceLedger interface {
	Insert(ctx context.Context, record *models.AttendanceRecord) error
	SlotOccupied(ctx context.Context, scope models.LedgerScope, personID string, date time.Time, kind models.EventKind) (bool, error)
	Day(ctx context.Context, scope models.LedgerScope, personID string, date time.Time) (models.DayView, error)
	ReplaceDay(ctx context.Context, scope models.LedgerScope, personID string, date time.Time, records []models.AttendanceRecord) error
}

type personDirectory interface {
	GetStudent(ctx context.Context, nis string) (*models.Student, error)
	GetEmployee(ctx context.Context, noID string) (*models.Employee, error)
}

type windowResolver interface {
	Resolve(ctx context.Context, population models.Population, employeeID int64, date time.Time) (*models.WindowConfig, error)
}

type scanAnnouncer interface {
	AnnounceScan(person scannedPerson, outcome models.ScanOutcome) bool
}

type ledgerCacheInvalidator interface {
	InvalidateDashboard(ctx context.Context, scope models.LedgerScope)
}

type scanRecorder interface {
	ObserveScan(kind models.EventKind, status models.AttendanceStatus)
	ObserveScanRejected(reason string)
}

// scannedPerson is the resolved identity behind a QR token.
type scannedPerson struct {
	Name       string
	Population models.Population
	LedgerID   string
	EmployeeID int64
	Phone      *string
}

// AttendanceService owns the scan pipeline and manual overrides. Writes to
// one (person, date) are serialised through a keyed mutex on top of the
// ledger's transaction so two kiosks scanning the same card land exactly one
// record.
type AttendanceService struct {
	ledger    attendanceLedger
	people    personDirectory
	windows   windowResolver
	announcer scanAnnouncer
	cache     ledgerCacheInvalidator
	metrics   scanRecorder
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time

	mu    sync.Mutex
	locks map[string]*personLock
}

// personLock is one keyed mutex entry. The reference count lets the service
// drop the entry once the last writer for that (scope, person, date) is done,
// so the map does not grow with every day the system stays up.
type personLock struct {
	sync.Mutex
	refs int
}

// NewAttendanceService constructs an AttendanceService.
func NewAttendanceService(ledger attendanceLedger, people personDirectory, windows windowResolver, announcer scanAnnouncer, cache ledgerCacheInvalidator, metrics scanRecorder, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	registerRequestFormats(validate)
	return &AttendanceService{
		ledger:    ledger,
		people:    people,
		windows:   windows,
		announcer: announcer,
		cache:     cache,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		now:       time.Now,
		locks:     map[string]*personLock{},
	}
}

// RecordScan runs one QR scan through identity resolution, window
// classification and the ledger write.
func (s *AttendanceService) RecordScan(ctx context.Context, req dto.ScanRequest) (*models.ScanOutcome, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid scan payload")
	}

	person, err := s.resolveToken(ctx, req.Token)
	if err != nil {
		s.rejected(appErrors.FromError(err).Code)
		return nil, err
	}

	now := s.now()
	today := dateOnly(now)
	at := models.ClockOf(now)

	cfg, err := s.windows.Resolve(ctx, person.Population, person.EmployeeID, today)
	if err != nil {
		s.rejected(appErrors.FromError(err).Code)
		return nil, err
	}

	kind, status, err := classify(cfg, at)
	if err != nil {
		s.rejected(appErrors.FromError(err).Code)
		return nil, err
	}

	scope := person.Population.LedgerScope()
	unlock := s.lock(scope, person.LedgerID, today)
	defer unlock()

	occupied, err := s.ledger.SlotOccupied(ctx, scope, person.LedgerID, today, kind)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check attendance slot")
	}
	if occupied {
		s.rejected(appErrors.ErrDuplicateEvent.Code)
		return nil, appErrors.ErrDuplicateEvent
	}

	record := &models.AttendanceRecord{
		ID:       uuid.NewString(),
		Scope:    scope,
		PersonID: person.LedgerID,
		Date:     today,
		Kind:     kind,
		Status:   status,
		Time:     at,
	}
	if err := s.ledger.Insert(ctx, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record attendance")
	}
	s.invalidate(ctx, scope)
	if s.metrics != nil {
		s.metrics.ObserveScan(kind, status)
	}

	outcome := models.ScanOutcome{
		PersonName: person.Name,
		Population: person.Population,
		Kind:       kind,
		Status:     status,
		RecordedAt: at,
	}
	if s.announcer != nil {
		outcome.Notified = s.announcer.AnnounceScan(person, outcome)
	}
	return &outcome, nil
}

// Override rewrites one (person, date) to the requested status, replacing
// whatever records exist for that day.
func (s *AttendanceService) Override(ctx context.Context, req dto.OverrideRequest) (models.DayView, error) {
	if err := s.validator.Struct(req); err != nil {
		return models.DayView{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid override payload")
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return models.DayView{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid date")
	}
	scope := models.LedgerScope(req.Scope)
	status := models.AttendanceStatus(req.Status)

	unlock := s.lock(scope, req.PersonID, date)
	defer unlock()

	records := s.buildOverrideRecords(scope, req.PersonID, date, status, req.Note)
	if err := s.ledger.ReplaceDay(ctx, scope, req.PersonID, date, records); err != nil {
		return models.DayView{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to apply override")
	}
	s.invalidate(ctx, scope)

	return s.ledger.Day(ctx, scope, req.PersonID, date)
}

// BulkOverride applies one status to many people, collecting per-person
// failures instead of aborting the batch.
func (s *AttendanceService) BulkOverride(ctx context.Context, req dto.BulkOverrideRequest) (*dto.BulkOverrideResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid bulk override payload")
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid date")
	}
	scope := models.LedgerScope(req.Scope)
	status := models.AttendanceStatus(req.Status)

	result := &dto.BulkOverrideResult{}
	for _, personID := range req.PersonIDs {
		unlock := s.lock(scope, personID, date)
		records := s.buildOverrideRecords(scope, personID, date, status, req.Note)
		err := s.ledger.ReplaceDay(ctx, scope, personID, date, records)
		unlock()
		if err != nil {
			s.logger.Warn("bulk override failed for person",
				zap.String("person_id", personID), zap.Error(err))
			result.Conflicts = append(result.Conflicts, dto.OverrideConflict{PersonID: personID, Reason: err.Error()})
			continue
		}
		result.Applied++
	}
	if result.Applied > 0 {
		s.invalidate(ctx, scope)
	}
	return result, nil
}

// Day returns the entry/exit view of one person on one date.
func (s *AttendanceService) Day(ctx context.Context, scope models.LedgerScope, personID string, date time.Time) (models.DayView, error) {
	return s.ledger.Day(ctx, scope, personID, date)
}

// buildOverrideRecords maps a manual status onto ledger rows: Hadir becomes a
// full entry/exit pair, Terlambat an entry only, and Sakit/Izin/Alfa a single
// lainnya row occupying both slots. All rows are stamped with the current
// time and a manual note.
func (s *AttendanceService) buildOverrideRecords(scope models.LedgerScope, personID string, date time.Time, status models.AttendanceStatus, note *string) []models.AttendanceRecord {
	at := models.ClockOf(s.now())
	noteFor := func(fallback string) *string {
		if note != nil && *note != "" {
			return note
		}
		return &fallback
	}
	base := models.AttendanceRecord{
		Scope:    scope,
		PersonID: personID,
		Date:     date,
		Time:     at,
	}

	switch status {
	case models.StatusPresent:
		entry := base
		entry.ID = uuid.NewString()
		entry.Kind = models.EventEntry
		entry.Status = models.StatusPresent
		entry.Note = noteFor("Konfirmasi Masuk (Manual)")
		exit := base
		exit.ID = uuid.NewString()
		exit.Kind = models.EventExit
		exit.Status = models.StatusPresent
		exit.Note = noteFor("Konfirmasi Pulang (Manual)")
		return []models.AttendanceRecord{entry, exit}
	case models.StatusLate:
		entry := base
		entry.ID = uuid.NewString()
		entry.Kind = models.EventEntry
		entry.Status = models.StatusLate
		entry.Note = noteFor("Terlambat (Manual)")
		return []models.AttendanceRecord{entry}
	default:
		manual := base
		manual.ID = uuid.NewString()
		manual.Kind = models.EventManual
		manual.Status = status
		manual.Note = noteFor(string(status) + " (Manual)")
		return []models.AttendanceRecord{manual}
	}
}

// resolveToken maps a QR payload onto a person. Tokens are an "s" prefix plus
// NIS for students and "p" plus employee number for staff.
func (s *AttendanceService) resolveToken(ctx context.Context, token string) (scannedPerson, error) {
	token = strings.TrimSpace(token)
	if len(token) < 2 {
		return scannedPerson{}, appErrors.ErrUnknownPerson
	}
	prefix, id := strings.ToLower(token[:1]), token[1:]

	switch prefix {
	case "s":
		student, err := s.people.GetStudent(ctx, id)
		if errors.Is(err, sql.ErrNoRows) {
			return scannedPerson{}, appErrors.ErrUnknownPerson
		}
		if err != nil {
			return scannedPerson{}, fmt.Errorf("lookup student: %w", err)
		}
		return scannedPerson{
			Name:       student.Name,
			Population: models.PopulationStudent,
			LedgerID:   student.NIS,
			Phone:      student.ParentPhone,
		}, nil
	case "p":
		employee, err := s.people.GetEmployee(ctx, id)
		if errors.Is(err, sql.ErrNoRows) {
			return scannedPerson{}, appErrors.ErrUnknownPerson
		}
		if err != nil {
			return scannedPerson{}, fmt.Errorf("lookup employee: %w", err)
		}
		return scannedPerson{
			Name:       employee.Name,
			Population: employee.Role,
			LedgerID:   employee.NoID,
			EmployeeID: employee.ID,
			Phone:      employee.Phone,
		}, nil
	default:
		return scannedPerson{}, appErrors.ErrUnknownPerson
	}
}

func (s *AttendanceService) lock(scope models.LedgerScope, personID string, date time.Time) func() {
	key := string(scope) + "|" + personID + "|" + date.Format("2006-01-02")
	s.mu.Lock()
	l, ok := s.locks[key]
	if !ok {
		l = &personLock{}
		s.locks[key] = l
	}
	l.refs++
	s.mu.Unlock()
	l.Lock()
	return func() {
		l.Unlock()
		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, key)
		}
		s.mu.Unlock()
	}
}

func (s *AttendanceService) invalidate(ctx context.Context, scope models.LedgerScope) {
	if s.cache != nil {
		s.cache.InvalidateDashboard(ctx, scope)
	}
}

func (s *AttendanceService) rejected(reason string) {
	if s.metrics != nil {
		s.metrics.ObserveScanRejected(reason)
	}
}

// dateOnly truncates a timestamp to its calendar date.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// registerRequestFormats installs the shared request-format validators. The
// call is idempotent per validator instance.
func registerRequestFormats(v *validator.Validate) {
	_ = v.RegisterValidation("dateformat", func(fl validator.FieldLevel) bool {
		_, err := time.Parse("2006-01-02", fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("monthformat", func(fl validator.FieldLevel) bool {
		_, err := time.Parse("2006-01", fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("clockformat", func(fl validator.FieldLevel) bool {
		_, err := models.ParseClock(fl.Field().String())
		return err == nil
	})
}
