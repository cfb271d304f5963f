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

type holidayRangeReader interface {
	ListBetween(ctx context.Context, from, to time.Time) ([]models.SpecialHoliday, error)
}

type scheduleRangeReader interface {
	MapForRange(ctx context.Context, from, to time.Time) (models.MonthlySchedule, error)
}

type ledgerRangeReader interface {
	ForDate(ctx context.Context, scope models.LedgerScope, date time.Time) ([]models.AttendanceRecord, error)
	ForRange(ctx context.Context, scope models.LedgerScope, from, to time.Time) ([]models.AttendanceRecord, error)
	ForPersonRange(ctx context.Context, scope models.LedgerScope, personID string, from, to time.Time) ([]models.AttendanceRecord, error)
}

type reportDirectory interface {
	GetStudent(ctx context.Context, nis string) (*models.Student, error)
	GetEmployee(ctx context.Context, noID string) (*models.Employee, error)
	ListStudents(ctx context.Context, filter models.PersonFilter) ([]models.Student, error)
	ListEmployees(ctx context.Context, filter models.PersonFilter) ([]models.Employee, error)
}

type reportMetrics interface {
	ObserveReport(kind string, started time.Time)
}

// ReportService aggregates the ledger into the daily roster, date-range
// detail, the monthly matrix and per-person summaries. Window and holiday
// data for the whole range is loaded once up front so per-cell resolution is
// pure map lookups.
type ReportService struct {
	configs   windowConfigReader
	holidays  holidayRangeReader
	schedules scheduleRangeReader
	ledger    ledgerRangeReader
	people    reportDirectory
	metrics   reportMetrics
	logger    *zap.Logger
}

// NewReportService constructs a ReportService.
func NewReportService(configs windowConfigReader, holidays holidayRangeReader, schedules scheduleRangeReader, ledger ledgerRangeReader, people reportDirectory, metrics reportMetrics, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		configs:   configs,
		holidays:  holidays,
		schedules: schedules,
		ledger:    ledger,
		people:    people,
		metrics:   metrics,
		logger:    logger,
	}
}

// reportPerson is the roster row shared by both ledgers.
type reportPerson struct {
	ID         string
	Name       string
	Group      string
	Population models.Population
	EmployeeID int64
}

// rangeContext holds everything needed to resolve closures and deadlines for
// any (person, date) in a range without further queries.
type rangeContext struct {
	holidays     map[string]string
	configs      map[models.ConfigScope]*models.WindowConfig
	shiftConfigs map[string]*models.WindowConfig
	schedule     models.MonthlySchedule
}

// Daily builds the roster report of one ledger on one date.
func (s *ReportService) Daily(ctx context.Context, scope models.LedgerScope, date time.Time, filter models.PersonFilter) (*dto.DailyReport, error) {
	defer s.observe("daily", time.Now())

	people, err := s.roster(ctx, scope, filter)
	if err != nil {
		return nil, err
	}
	rc, err := s.loadRangeContext(ctx, scope, date, date)
	if err != nil {
		return nil, err
	}
	records, err := s.ledger.ForDate(ctx, scope, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance")
	}
	days := repository.GroupByPerson(records)
	dateKey := date.Format("2006-01-02")

	report := &dto.DailyReport{Date: dateKey, Scope: string(scope)}
	for _, person := range people {
		day := days[person.ID][dateKey]
		closure := rc.closureFor(person, date)

		row := dto.DailyReportRow{
			PersonID:  person.ID,
			Name:      person.Name,
			Group:     person.Group,
			EntryTime: "-",
			ExitTime:  "-",
			Lateness:  "-",
			Duration:  "-",
		}
		if day.Entry == nil && day.Exit == nil && closure.Closed {
			row.Status = "-"
			row.Note = closure.Reason
			report.Rows = append(report.Rows, row)
			continue
		}

		status := day.Status()
		row.Status = status.ReportLabel()
		entry, exit := day.EntryTime(), day.ExitTime()
		if entry != nil {
			row.EntryTime = entry.String()
			if cfg := rc.configFor(person, date); cfg != nil {
				row.Lateness = formatLateness(*entry, cfg.LatenessDeadline())
			}
		}
		if exit != nil {
			row.ExitTime = exit.String()
		}
		if entry != nil && exit != nil {
			row.Duration = formatDuration(*entry, *exit)
		}
		if day.Entry != nil && day.Entry.Note != nil {
			row.Note = *day.Entry.Note
		}
		tallyAdd(&report.Summary, status)
		report.Rows = append(report.Rows, row)
	}
	return report, nil
}

// RangeDetail builds one row per (person, date) across a range. Days with no
// expected attendance still get a row, marked Libur (or Off for shift staff),
// so the range reads as a complete calendar.
func (s *ReportService) RangeDetail(ctx context.Context, scope models.LedgerScope, from, to time.Time, filter models.PersonFilter) ([]dto.RangeDetailRow, error) {
	defer s.observe("range_detail", time.Now())

	if to.Before(from) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "rentang tanggal tidak valid")
	}
	people, err := s.roster(ctx, scope, filter)
	if err != nil {
		return nil, err
	}
	rc, err := s.loadRangeContext(ctx, scope, from, to)
	if err != nil {
		return nil, err
	}
	records, err := s.ledger.ForRange(ctx, scope, from, to)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance")
	}
	days := repository.GroupByPerson(records)

	var rows []dto.RangeDetailRow
	for date := from; !date.After(to); date = date.AddDate(0, 0, 1) {
		dateKey := date.Format("2006-01-02")
		for _, person := range people {
			day := days[person.ID][dateKey]
			if day.Entry == nil && day.Exit == nil && rc.closureFor(person, date).Closed {
				rows = append(rows, closedRow(person, date))
				continue
			}
			rows = append(rows, s.detailRow(rc, person, date, day))
		}
	}
	return rows, nil
}

// Matrix builds the monthly grid of one ledger: one cell per person per day,
// "-" on non-attendance days, plus per-status totals.
func (s *ReportService) Matrix(ctx context.Context, scope models.LedgerScope, month time.Time, filter models.PersonFilter) (*dto.MatrixReport, error) {
	defer s.observe("matrix", time.Now())

	first := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, month.Location())
	last := first.AddDate(0, 1, -1)

	people, err := s.roster(ctx, scope, filter)
	if err != nil {
		return nil, err
	}
	rc, err := s.loadRangeContext(ctx, scope, first, last)
	if err != nil {
		return nil, err
	}
	records, err := s.ledger.ForRange(ctx, scope, first, last)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance")
	}
	days := repository.GroupByPerson(records)

	report := &dto.MatrixReport{
		Month: first.Format("2006-01"),
		Scope: string(scope),
	}
	for d := 1; d <= last.Day(); d++ {
		report.Days = append(report.Days, d)
	}

	for _, person := range people {
		row := dto.MatrixRow{
			PersonID: person.ID,
			Name:     person.Name,
			Group:    person.Group,
			Cells:    make([]string, last.Day()),
		}
		for date := first; !date.After(last); date = date.AddDate(0, 0, 1) {
			idx := date.Day() - 1
			day := days[person.ID][date.Format("2006-01-02")]
			if day.Entry == nil && day.Exit == nil {
				if rc.closureFor(person, date).Closed {
					row.Cells[idx] = "-"
					continue
				}
				row.Cells[idx] = models.StatusAbsent.MatrixCode()
				row.Absent++
				continue
			}
			status := day.Status()
			row.Cells[idx] = status.MatrixCode()
			switch {
			case status.CountsAsPresent():
				row.Present++
			case status == models.StatusSick:
				row.Sick++
			case status == models.StatusExcused:
				row.Excused++
			default:
				row.Absent++
			}
		}
		report.Rows = append(report.Rows, row)
	}
	return report, nil
}

// Individual aggregates one person across a range: a status tally plus the
// per-day detail rows.
func (s *ReportService) Individual(ctx context.Context, scope models.LedgerScope, personID string, from, to time.Time) (*dto.IndividualSummary, error) {
	defer s.observe("individual", time.Now())

	if to.Before(from) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "rentang tanggal tidak valid")
	}
	person, err := s.lookup(ctx, scope, personID)
	if err != nil {
		return nil, err
	}
	rc, err := s.loadRangeContext(ctx, scope, from, to)
	if err != nil {
		return nil, err
	}
	records, err := s.ledger.ForPersonRange(ctx, scope, personID, from, to)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance")
	}
	days := repository.GroupByPerson(records)

	summary := &dto.IndividualSummary{
		PersonID: person.ID,
		Name:     person.Name,
		From:     from.Format("2006-01-02"),
		To:       to.Format("2006-01-02"),
	}
	for date := from; !date.After(to); date = date.AddDate(0, 0, 1) {
		day := days[person.ID][date.Format("2006-01-02")]
		if day.Entry == nil && day.Exit == nil && rc.closureFor(person, date).Closed {
			// Closed days appear in the listing but stay out of the totals.
			summary.Days = append(summary.Days, closedRow(person, date))
			continue
		}
		tallyAdd(&summary.Tally, day.Status())
		summary.Days = append(summary.Days, s.detailRow(rc, person, date, day))
	}
	return summary, nil
}

func (s *ReportService) detailRow(rc *rangeContext, person reportPerson, date time.Time, day models.DayView) dto.RangeDetailRow {
	row := dto.RangeDetailRow{
		Date:      date.Format("2006-01-02"),
		PersonID:  person.ID,
		Name:      person.Name,
		Group:     person.Group,
		Status:    day.Status().ReportLabel(),
		EntryTime: "-",
		ExitTime:  "-",
		Lateness:  "-",
		Duration:  "-",
	}
	entry, exit := day.EntryTime(), day.ExitTime()
	if entry != nil {
		row.EntryTime = entry.String()
		if cfg := rc.configFor(person, date); cfg != nil {
			row.Lateness = formatLateness(*entry, cfg.LatenessDeadline())
		}
	}
	if exit != nil {
		row.ExitTime = exit.String()
	}
	if entry != nil && exit != nil {
		row.Duration = formatDuration(*entry, *exit)
	}
	return row
}

// closedRow is the placeholder line for a date with no expected attendance.
func closedRow(person reportPerson, date time.Time) dto.RangeDetailRow {
	status := "Libur"
	if person.Population.UsesShiftSchedule() {
		status = models.ShiftOff
	}
	return dto.RangeDetailRow{
		Date:      date.Format("2006-01-02"),
		PersonID:  person.ID,
		Name:      person.Name,
		Group:     person.Group,
		Status:    status,
		EntryTime: "-",
		ExitTime:  "-",
		Lateness:  "-",
		Duration:  "-",
	}
}

// roster lists the people of one ledger in report order.
func (s *ReportService) roster(ctx context.Context, scope models.LedgerScope, filter models.PersonFilter) ([]reportPerson, error) {
	if scope == models.LedgerStudents {
		students, err := s.people.ListStudents(ctx, filter)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
		}
		people := make([]reportPerson, 0, len(students))
		for _, student := range students {
			group := ""
			if student.ClassName != nil {
				group = *student.ClassName
			}
			people = append(people, reportPerson{
				ID:         student.NIS,
				Name:       student.Name,
				Group:      group,
				Population: models.PopulationStudent,
			})
		}
		return people, nil
	}

	employees, err := s.people.ListEmployees(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list employees")
	}
	people := make([]reportPerson, 0, len(employees))
	for _, employee := range employees {
		people = append(people, reportPerson{
			ID:         employee.NoID,
			Name:       employee.Name,
			Group:      string(employee.Role),
			Population: employee.Role,
			EmployeeID: employee.ID,
		})
	}
	return people, nil
}

func (s *ReportService) lookup(ctx context.Context, scope models.LedgerScope, personID string) (reportPerson, error) {
	if scope == models.LedgerStudents {
		student, err := s.people.GetStudent(ctx, personID)
		if errors.Is(err, sql.ErrNoRows) {
			return reportPerson{}, appErrors.ErrUnknownPerson
		}
		if err != nil {
			return reportPerson{}, fmt.Errorf("lookup student: %w", err)
		}
		return reportPerson{ID: student.NIS, Name: student.Name, Population: models.PopulationStudent}, nil
	}
	employee, err := s.people.GetEmployee(ctx, personID)
	if errors.Is(err, sql.ErrNoRows) {
		return reportPerson{}, appErrors.ErrUnknownPerson
	}
	if err != nil {
		return reportPerson{}, fmt.Errorf("lookup employee: %w", err)
	}
	return reportPerson{ID: employee.NoID, Name: employee.Name, Population: employee.Role, EmployeeID: employee.ID}, nil
}

// loadRangeContext pre-loads holidays, configs and shift assignments covering
// [from, to] for one ledger.
func (s *ReportService) loadRangeContext(ctx context.Context, scope models.LedgerScope, from, to time.Time) (*rangeContext, error) {
	rc := &rangeContext{
		holidays:     map[string]string{},
		configs:      map[models.ConfigScope]*models.WindowConfig{},
		shiftConfigs: map[string]*models.WindowConfig{},
	}

	holidays, err := s.holidays.ListBetween(ctx, from, to)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load holidays")
	}
	for _, holiday := range holidays {
		rc.holidays[holiday.Date.Format("2006-01-02")] = holiday.Description
	}

	scopes := []models.ConfigScope{models.ScopeStudent}
	if scope == models.LedgerEmployees {
		scopes = []models.ConfigScope{models.ScopeStaff}
	}
	for _, cs := range scopes {
		cfg, err := s.configs.GetByScope(ctx, cs)
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load window config")
		}
		rc.configs[cs] = cfg
	}

	if scope == models.LedgerEmployees {
		schedule, err := s.schedules.MapForRange(ctx, from, to)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load security schedule")
		}
		rc.schedule = schedule
		for _, byDate := range schedule {
			for _, shift := range byDate {
				if shift == "" || shift == models.ShiftOff {
					continue
				}
				if _, seen := rc.shiftConfigs[shift]; seen {
					continue
				}
				cfg, err := s.configs.GetByShift(ctx, shift)
				if errors.Is(err, sql.ErrNoRows) {
					rc.shiftConfigs[shift] = nil
					continue
				}
				if err != nil {
					return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load shift config")
				}
				rc.shiftConfigs[shift] = cfg
			}
		}
	}
	return rc, nil
}

// closureFor resolves whether the date records no attendance for the person.
// Security staff answer from the shift schedule only; everyone else from the
// holiday calendar and their config's routine closure days.
func (rc *rangeContext) closureFor(person reportPerson, date time.Time) Closure {
	if person.Population.UsesShiftSchedule() {
		shift := rc.shiftOn(person.EmployeeID, date)
		if shift == "" || shift == models.ShiftOff {
			return Closure{Closed: true, Reason: models.ShiftOff}
		}
		return Closure{}
	}
	dateKey := date.Format("2006-01-02")
	if desc, ok := rc.holidays[dateKey]; ok {
		return Closure{Closed: true, Reason: desc}
	}
	cfg := rc.configs[person.Population.ConfigScope()]
	if cfg != nil && cfg.RoutineHolidays.Contains(date.Weekday()) {
		return Closure{Closed: true, Reason: "libur rutin " + models.WeekdayName(date.Weekday())}
	}
	return Closure{}
}

// configFor resolves the window config governing the person on the date, nil
// when none is configured.
func (rc *rangeContext) configFor(person reportPerson, date time.Time) *models.WindowConfig {
	if person.Population.UsesShiftSchedule() {
		return rc.shiftConfigs[rc.shiftOn(person.EmployeeID, date)]
	}
	return rc.configs[person.Population.ConfigScope()]
}

func (rc *rangeContext) shiftOn(employeeID int64, date time.Time) string {
	byDate, ok := rc.schedule[employeeID]
	if !ok {
		return ""
	}
	return byDate[date.Format("2006-01-02")]
}

func (s *ReportService) observe(kind string, started time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveReport(kind, started)
	}
}

// tallyAdd counts a day's raw status. Terlambat rolls into the Hadir total
// and is tracked separately so late arrivals stay visible.
func tallyAdd(tally *dto.StatusTally, status models.AttendanceStatus) {
	switch {
	case status.CountsAsPresent():
		tally.Present++
		if status == models.StatusLate {
			tally.Late++
		}
	case status == models.StatusSick:
		tally.Sick++
	case status == models.StatusExcused:
		tally.Excused++
	default:
		tally.Absent++
	}
}
