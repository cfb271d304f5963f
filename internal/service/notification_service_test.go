package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/smk-presensi-api/internal/models"
	"github.com/noah-isme/smk-presensi-api/pkg/jobs"
)

type fakeQueue struct {
	jobs []jobs.Job
	err  error
}

func (f *fakeQueue) Enqueue(job jobs.Job) error {
	if f.err != nil {
		return f.err
	}
	f.jobs = append(f.jobs, job)
	return nil
}

func newTestNotificationService(queue *fakeQueue, students []models.Student, records []models.AttendanceRecord) *NotificationService {
	cfg := studentWindow()
	configs := &fakeConfigReader{
		byScope: map[models.ConfigScope]*models.WindowConfig{models.ScopeStudent: cfg},
	}
	windows := NewWindowService(configs, &fakeHolidayReader{}, &fakeShiftReader{}, nil)
	svc := NewNotificationService(nil, queue,
		&fakeReportDirectory{students: students},
		&fakeLedgerRange{records: records},
		windows, configs, nil,
		NotificationServiceConfig{Enabled: true, DefaultLateCutoff: models.NewClock(8, 0, 0)})
	svc.now = func() time.Time {
		return time.Date(2026, 3, 2, 8, 1, 0, 0, time.UTC)
	}
	return svc
}

func TestAnnounceScanQueuesStudentMessage(t *testing.T) {
	queue := &fakeQueue{}
	svc := newTestNotificationService(queue, nil, nil)

	notified := svc.AnnounceScan(scannedPerson{
		Name:       "Budi",
		Population: models.PopulationStudent,
		LedgerID:   "1001",
		Phone:      phoneP("08123"),
	}, models.ScanOutcome{Kind: models.EventEntry, Status: models.StatusPresent, RecordedAt: models.NewClock(7, 5, 0)})

	assert.True(t, notified)
	require.Len(t, queue.jobs, 1)
	msg, ok := queue.jobs[0].Payload.(whatsAppMessage)
	require.True(t, ok)
	assert.Equal(t, "08123", msg.Phone)
	assert.Contains(t, msg.Message, "Budi")
	assert.Contains(t, msg.Message, "masuk")
	assert.Contains(t, msg.Message, "07:05:00")
}

func TestAnnounceScanSkipsEmployeesAndMissingPhones(t *testing.T) {
	queue := &fakeQueue{}
	svc := newTestNotificationService(queue, nil, nil)

	assert.False(t, svc.AnnounceScan(scannedPerson{
		Name:       "Pak Dedi",
		Population: models.PopulationSecurity,
		Phone:      phoneP("08123"),
	}, models.ScanOutcome{}))
	assert.False(t, svc.AnnounceScan(scannedPerson{
		Name:       "Budi",
		Population: models.PopulationStudent,
	}, models.ScanOutcome{}))
	assert.Empty(t, queue.jobs)
}

func TestLateSweepQueuesMissingStudentsOnly(t *testing.T) {
	monday := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	students := []models.Student{
		{NIS: "1001", Name: "Budi", ParentPhone: phoneP("0811")},
		{NIS: "1002", Name: "Citra", ParentPhone: phoneP("0812")},
		{NIS: "1003", Name: "Dewi"}, // no parent phone
	}
	records := []models.AttendanceRecord{
		entryRecord("1001", monday, models.StatusPresent, models.NewClock(7, 0, 0)),
	}

	queue := &fakeQueue{}
	svc := newTestNotificationService(queue, students, records)
	require.NoError(t, svc.LateSweep(context.Background()))

	require.Len(t, queue.jobs, 1)
	msg := queue.jobs[0].Payload.(whatsAppMessage)
	assert.Equal(t, "0812", msg.Phone)
	assert.Contains(t, msg.Message, "Citra")
}

func TestLateSweepSkipsClosedDay(t *testing.T) {
	cfg := studentWindow()
	cfg.RoutineHolidays = models.ParseWeekdaySet("Senin")
	configs := &fakeConfigReader{
		byScope: map[models.ConfigScope]*models.WindowConfig{models.ScopeStudent: cfg},
	}
	windows := NewWindowService(configs, &fakeHolidayReader{}, &fakeShiftReader{}, nil)
	queue := &fakeQueue{}
	svc := NewNotificationService(nil, queue,
		&fakeReportDirectory{students: []models.Student{{NIS: "1001", Name: "Budi", ParentPhone: phoneP("0811")}}},
		&fakeLedgerRange{}, windows, configs, nil,
		NotificationServiceConfig{Enabled: true})
	svc.now = func() time.Time {
		return time.Date(2026, 3, 2, 8, 1, 0, 0, time.UTC) // Monday
	}

	require.NoError(t, svc.LateSweep(context.Background()))
	assert.Empty(t, queue.jobs)
}

func TestLateFireAt(t *testing.T) {
	queue := &fakeQueue{}
	svc := newTestNotificationService(queue, nil, nil)

	hour, minute, ok := svc.LateFireAt()
	require.True(t, ok)
	// One minute past the 08:00 late cutoff.
	assert.Equal(t, 8, hour)
	assert.Equal(t, 1, minute)
}

func TestLateFireAtDisabled(t *testing.T) {
	svc := newTestNotificationService(&fakeQueue{}, nil, nil)
	svc.cfg.Enabled = false

	_, _, ok := svc.LateFireAt()
	assert.False(t, ok)
}
