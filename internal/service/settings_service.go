package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/smk-presensi-api/internal/dto"
	"github.com/noah-isme/smk-presensi-api/internal/models"
	appErrors "github.com/noah-isme/smk-presensi-api/pkg/errors"
)

type windowConfigStore interface {
	windowConfigReader
	List(ctx context.Context) ([]models.WindowConfig, error)
	Upsert(ctx context.Context, cfg *models.WindowConfig) error
	DeleteShift(ctx context.Context, shiftName string) error
}

type holidayStore interface {
	List(ctx context.Context) ([]models.SpecialHoliday, error)
	Create(ctx context.Context, holiday *models.SpecialHoliday) error
	Delete(ctx context.Context, id int64) error
}

// SettingsService manages attendance window configs and the holiday calendar.
type SettingsService struct {
	configs   windowConfigStore
	holidays  holidayStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSettingsService constructs a SettingsService.
func NewSettingsService(configs windowConfigStore, holidays holidayStore, validate *validator.Validate, logger *zap.Logger) *SettingsService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	registerRequestFormats(validate)
	return &SettingsService{configs: configs, holidays: holidays, validator: validate, logger: logger}
}

// ListWindowConfigs returns every configured family.
func (s *SettingsService) ListWindowConfigs(ctx context.Context) ([]models.WindowConfig, error) {
	configs, err := s.configs.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list window configs")
	}
	return configs, nil
}

// SaveWindowConfig validates and upserts one window-config family. Security
// configs must name a shift; the other scopes must not.
func (s *SettingsService) SaveWindowConfig(ctx context.Context, req dto.WindowConfigRequest) (*models.WindowConfig, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid window config payload")
	}
	scope := models.ConfigScope(req.Scope)
	if scope == models.ScopeSecurity && req.ShiftName == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "konfigurasi keamanan harus memiliki nama shift")
	}
	if scope != models.ScopeSecurity && req.ShiftName != "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "nama shift hanya berlaku untuk scope keamanan")
	}

	cfg := &models.WindowConfig{
		Scope:           scope,
		ShiftName:       req.ShiftName,
		RoutineHolidays: models.ParseWeekdaySet(joinDays(req.RoutineHolidays)),
	}
	var err error
	if cfg.EntryStart, err = models.ParseClock(req.EntryStart); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "jam masuk mulai tidak valid")
	}
	if cfg.EntryEnd, err = models.ParseClock(req.EntryEnd); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "jam masuk selesai tidak valid")
	}
	if req.LateCutoff != nil && *req.LateCutoff != "" {
		cutoff, err := models.ParseClock(*req.LateCutoff)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "jam batas terlambat tidak valid")
		}
		cfg.LateCutoff = &cutoff
	}
	if cfg.ExitStart, err = models.ParseClock(req.ExitStart); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "jam pulang mulai tidak valid")
	}
	if cfg.ExitEnd, err = models.ParseClock(req.ExitEnd); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "jam pulang selesai tidak valid")
	}

	if err := cfg.Validate(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}
	if err := s.configs.Upsert(ctx, cfg); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save window config")
	}
	s.logger.Info("window config saved",
		zap.String("scope", req.Scope), zap.String("shift", req.ShiftName))
	return cfg, nil
}

// DeleteShiftConfig removes one security shift config.
func (s *SettingsService) DeleteShiftConfig(ctx context.Context, shiftName string) error {
	if shiftName == "" {
		return appErrors.Clone(appErrors.ErrValidation, "nama shift wajib diisi")
	}
	if err := s.configs.DeleteShift(ctx, shiftName); err != nil {
		return appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "shift tidak ditemukan")
	}
	return nil
}

// ListHolidays returns the holiday calendar, newest first.
func (s *SettingsService) ListHolidays(ctx context.Context) ([]models.SpecialHoliday, error) {
	holidays, err := s.holidays.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list holidays")
	}
	return holidays, nil
}

// CreateHoliday adds a one-off closure date. A second write to the same date
// updates the description.
func (s *SettingsService) CreateHoliday(ctx context.Context, req dto.HolidayRequest) (*models.SpecialHoliday, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid holiday payload")
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "tanggal tidak valid")
	}

	holiday := &models.SpecialHoliday{Date: date, Description: req.Description}
	if err := s.holidays.Create(ctx, holiday); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create holiday")
	}
	return holiday, nil
}

// DeleteHoliday removes one holiday.
func (s *SettingsService) DeleteHoliday(ctx context.Context, id int64) error {
	err := s.holidays.Delete(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, "hari libur tidak ditemukan")
	}
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete holiday")
	}
	return nil
}

func joinDays(days []string) string {
	return strings.Join(days, ",")
}
