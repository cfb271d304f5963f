package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/smk-presensi-api/internal/models"
	appErrors "github.com/noah-isme/smk-presensi-api/pkg/errors"
)

type windowConfigReader interface {
	GetByScope(ctx context.Context, scope models.ConfigScope) (*models.WindowConfig, error)
	GetByShift(ctx context.Context, shiftName string) (*models.WindowConfig, error)
}

type holidayReader interface {
	GetByDate(ctx context.Context, date time.Time) (*models.SpecialHoliday, error)
}

type shiftReader interface {
	ShiftFor(ctx context.Context, employeeID int64, date time.Time) (string, error)
}

// Closure describes why a date records no attendance for a person.
type Closure struct {
	Closed bool
	Reason string
}

// WindowService resolves which attendance bands govern a person on a date,
// folding in special holidays, routine weekly closures and the security shift
// schedule.
type WindowService struct {
	configs  windowConfigReader
	holidays holidayReader
	shifts   shiftReader
	logger   *zap.Logger
}

// NewWindowService constructs a WindowService.
func NewWindowService(configs windowConfigReader, holidays holidayReader, shifts shiftReader, logger *zap.Logger) *WindowService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WindowService{configs: configs, holidays: holidays, shifts: shifts, logger: logger}
}

// Resolve returns the window config governing the person on the date, or a
// typed error when the date is closed for them or no config exists.
//
// Security staff are special: the global holiday calendar does not apply to
// them, and their window comes from the shift assigned for the exact date. A
// missing schedule row counts as an off-day.
func (s *WindowService) Resolve(ctx context.Context, population models.Population, employeeID int64, date time.Time) (*models.WindowConfig, error) {
	if population.UsesShiftSchedule() {
		return s.resolveShift(ctx, employeeID, date)
	}

	cfg, err := s.configs.GetByScope(ctx, population.ConfigScope())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.ErrConfigMissing
	}
	if err != nil {
		return nil, fmt.Errorf("load window config: %w", err)
	}

	closure, err := s.globalClosure(ctx, cfg, date)
	if err != nil {
		return nil, err
	}
	if closure.Closed {
		return nil, appErrors.Clone(appErrors.ErrHolidayOrOff, closure.Reason)
	}
	return cfg, nil
}

func (s *WindowService) resolveShift(ctx context.Context, employeeID int64, date time.Time) (*models.WindowConfig, error) {
	shift, err := s.shifts.ShiftFor(ctx, employeeID, date)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.ErrHolidayOrOff
	}
	if err != nil {
		return nil, fmt.Errorf("load shift assignment: %w", err)
	}
	if shift == "" || shift == models.ShiftOff {
		return nil, appErrors.ErrHolidayOrOff
	}

	cfg, err := s.configs.GetByShift(ctx, shift)
	if errors.Is(err, sql.ErrNoRows) {
		s.logger.Warn("shift scheduled without a window config", zap.String("shift", shift))
		return nil, appErrors.ErrConfigMissing
	}
	if err != nil {
		return nil, fmt.Errorf("load shift config: %w", err)
	}
	return cfg, nil
}

// ClosureFor reports whether a date records no attendance for a person, with
// a human-readable reason. Reports use this to mark "-" cells.
func (s *WindowService) ClosureFor(ctx context.Context, population models.Population, employeeID int64, date time.Time) (Closure, error) {
	if population.UsesShiftSchedule() {
		shift, err := s.shifts.ShiftFor(ctx, employeeID, date)
		if errors.Is(err, sql.ErrNoRows) {
			return Closure{Closed: true, Reason: "tidak ada jadwal"}, nil
		}
		if err != nil {
			return Closure{}, fmt.Errorf("load shift assignment: %w", err)
		}
		if shift == "" || shift == models.ShiftOff {
			return Closure{Closed: true, Reason: models.ShiftOff}, nil
		}
		return Closure{}, nil
	}

	cfg, err := s.configs.GetByScope(ctx, population.ConfigScope())
	if errors.Is(err, sql.ErrNoRows) {
		return Closure{}, appErrors.ErrConfigMissing
	}
	if err != nil {
		return Closure{}, fmt.Errorf("load window config: %w", err)
	}
	return s.globalClosure(ctx, cfg, date)
}

func (s *WindowService) globalClosure(ctx context.Context, cfg *models.WindowConfig, date time.Time) (Closure, error) {
	holiday, err := s.holidays.GetByDate(ctx, date)
	if err != nil {
		return Closure{}, fmt.Errorf("check holiday: %w", err)
	}
	if holiday != nil {
		return Closure{Closed: true, Reason: holiday.Description}, nil
	}
	if cfg.RoutineHolidays.Contains(date.Weekday()) {
		return Closure{Closed: true, Reason: "libur rutin " + models.WeekdayName(date.Weekday())}, nil
	}
	return Closure{}, nil
}
