package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/smk-presensi-api/internal/dto"
	"github.com/noah-isme/smk-presensi-api/internal/models"
	"github.com/noah-isme/smk-presensi-api/internal/repository"
	appErrors "github.com/noah-isme/smk-presensi-api/pkg/errors"
)

type dashboardCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	InvalidatePrefix(ctx context.Context, prefix string) error
}

type dashboardCounter interface {
	CountStudents(ctx context.Context) (int, error)
	CountEmployees(ctx context.Context) (int, error)
}

// DashboardServiceConfig tunes dashboard behaviour.
type DashboardServiceConfig struct {
	CacheTTL time.Duration
	// DefaultLateCutoff gates Alfa disclosure when no window config exists.
	DefaultLateCutoff models.Clock
}

// DashboardService serves today's live tallies. Results are cached briefly in
// Redis; every ledger write invalidates the scope's entries.
type DashboardService struct {
	ledger   ledgerDateReader
	people   dashboardCounter
	configs  windowConfigReader
	holidays holidayReader
	cache    dashboardCache
	logger   *zap.Logger
	cfg      DashboardServiceConfig
	now      func() time.Time
}

// NewDashboardService constructs a DashboardService.
func NewDashboardService(ledger ledgerDateReader, people dashboardCounter, configs windowConfigReader, holidays holidayReader, cache dashboardCache, logger *zap.Logger, cfg DashboardServiceConfig) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 30 * time.Second
	}
	return &DashboardService{
		ledger:   ledger,
		people:   people,
		configs:  configs,
		holidays: holidays,
		cache:    cache,
		logger:   logger,
		cfg:      cfg,
		now:      time.Now,
	}
}

// dashboardKeyPrefix namespaces cached summaries per ledger.
func dashboardKeyPrefix(scope models.LedgerScope) string {
	return "dashboard:" + string(scope)
}

// InvalidateDashboard drops the cached summaries of one ledger. Called by the
// attendance service after every write.
func (s *DashboardService) InvalidateDashboard(ctx context.Context, scope models.LedgerScope) {
	if err := s.cache.InvalidatePrefix(ctx, dashboardKeyPrefix(scope)); err != nil {
		s.logger.Warn("failed to invalidate dashboard cache", zap.Error(err))
	}
}

// Summary returns today's tally for one ledger. People with no record count
// as "not yet arrived" until the lateness deadline passes; only then do they
// surface as Alfa.
func (s *DashboardService) Summary(ctx context.Context, scope models.LedgerScope) (*dto.DashboardSummary, error) {
	now := s.now()
	today := dateOnly(now)
	key := fmt.Sprintf("%s:%s", dashboardKeyPrefix(scope), today.Format("2006-01-02"))

	var cached dto.DashboardSummary
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		return &cached, nil
	} else if !appErrors.Is(err, appErrors.ErrCacheMiss) {
		s.logger.Warn("dashboard cache read failed", zap.Error(err))
	}

	summary, err := s.build(ctx, scope, today, models.ClockOf(now))
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, key, summary, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("dashboard cache write failed", zap.Error(err))
	}
	return summary, nil
}

func (s *DashboardService) build(ctx context.Context, scope models.LedgerScope, today time.Time, at models.Clock) (*dto.DashboardSummary, error) {
	summary := &dto.DashboardSummary{
		Date:  today.Format("2006-01-02"),
		Scope: string(scope),
	}

	total, err := s.countPeople(ctx, scope)
	if err != nil {
		return nil, err
	}
	summary.TotalPeople = total

	cfgScope := models.ScopeStudent
	if scope == models.LedgerEmployees {
		cfgScope = models.ScopeStaff
	}
	cfg, err := s.configs.GetByScope(ctx, cfgScope)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load window config")
	}

	holiday, err := s.holidays.GetByDate(ctx, today)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check holiday")
	}
	switch {
	case holiday != nil:
		summary.Closed = true
		summary.ClosedReason = holiday.Description
	case cfg != nil && cfg.RoutineHolidays.Contains(today.Weekday()):
		summary.Closed = true
		summary.ClosedReason = "libur rutin " + models.WeekdayName(today.Weekday())
	}

	records, err := s.ledger.ForDate(ctx, scope, today)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance")
	}
	days := repository.GroupByPerson(records)
	recorded := 0
	for _, byDate := range days {
		for _, day := range byDate {
			tallyAdd(&summary.Tally, day.Status())
			recorded++
		}
	}

	missing := total - recorded
	if missing < 0 {
		missing = 0
	}
	deadline := s.cfg.DefaultLateCutoff
	if cfg != nil {
		deadline = cfg.LatenessDeadline()
	}
	if summary.Closed {
		summary.NotYetArrived = 0
	} else if at.After(deadline) {
		summary.AbsentRevealed = true
		summary.Tally.Absent += missing
	} else {
		summary.NotYetArrived = missing
	}
	return summary, nil
}

func (s *DashboardService) countPeople(ctx context.Context, scope models.LedgerScope) (int, error) {
	if scope == models.LedgerStudents {
		return s.people.CountStudents(ctx)
	}
	return s.people.CountEmployees(ctx)
}
