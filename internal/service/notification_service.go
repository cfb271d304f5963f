package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/smk-presensi-api/internal/models"
	"github.com/noah-isme/smk-presensi-api/internal/notifier"
	appErrors "github.com/noah-isme/smk-presensi-api/pkg/errors"
	"github.com/noah-isme/smk-presensi-api/pkg/jobs"
)

type studentLister interface {
	ListStudents(ctx context.Context, filter models.PersonFilter) ([]models.Student, error)
}

type ledgerDateReader interface {
	ForDate(ctx context.Context, scope models.LedgerScope, date time.Time) ([]models.AttendanceRecord, error)
}

type messageQueue interface {
	Enqueue(job jobs.Job) error
}

// whatsAppMessage is the queued payload of one outbound notification.
type whatsAppMessage struct {
	Phone   string
	Message string
}

// NotificationServiceConfig tunes outbound messaging.
type NotificationServiceConfig struct {
	Enabled           bool
	DefaultLateCutoff models.Clock
}

// NotificationService composes and queues WhatsApp messages: the per-scan
// parent notification and the daily sweep that messages parents of students
// still absent after the lateness deadline.
type NotificationService struct {
	sender   notifier.Sender
	queue    messageQueue
	students studentLister
	ledger   ledgerDateReader
	windows  *WindowService
	configs  windowConfigReader
	logger   *zap.Logger
	cfg      NotificationServiceConfig
	now      func() time.Time
}

// NewNotificationService constructs a NotificationService.
func NewNotificationService(sender notifier.Sender, queue messageQueue, students studentLister, ledger ledgerDateReader, windows *WindowService, configs windowConfigReader, logger *zap.Logger, cfg NotificationServiceConfig) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		sender:   sender,
		queue:    queue,
		students: students,
		ledger:   ledger,
		windows:  windows,
		configs:  configs,
		logger:   logger,
		cfg:      cfg,
		now:      time.Now,
	}
}

// HandleMessage is the queue handler: it delivers one queued message through
// the gateway.
func (s *NotificationService) HandleMessage(ctx context.Context, job jobs.Job) error {
	msg, ok := job.Payload.(whatsAppMessage)
	if !ok {
		return fmt.Errorf("unexpected payload type %T", job.Payload)
	}
	return s.sender.Send(ctx, msg.Phone, msg.Message)
}

// AnnounceScan queues a parent notification for a student scan. Employee
// scans and students without a registered parent phone are skipped. Returns
// whether a message was queued.
func (s *NotificationService) AnnounceScan(person scannedPerson, outcome models.ScanOutcome) bool {
	if !s.cfg.Enabled || s.queue == nil {
		return false
	}
	if person.Population != models.PopulationStudent || person.Phone == nil || *person.Phone == "" {
		return false
	}

	message := fmt.Sprintf(
		"📚 *Notifikasi Absensi Sekolah*\n\nAnak Anda, %s, telah melakukan absen *%s* dengan status *%s* pada pukul %s.",
		person.Name, outcome.Kind, outcome.Status, outcome.RecordedAt)
	if err := s.enqueue(*person.Phone, message); err != nil {
		s.logger.Warn("failed to queue scan notification",
			zap.String("student", person.LedgerID), zap.Error(err))
		return false
	}
	return true
}

// LateFireAt tells the daily scheduler when to run the late sweep: one minute
// past the student lateness deadline, falling back to the configured default
// when no student config exists yet.
func (s *NotificationService) LateFireAt() (int, int, bool) {
	if !s.cfg.Enabled {
		return 0, 0, false
	}
	deadline := s.cfg.DefaultLateCutoff
	cfg, err := s.configs.GetByScope(context.Background(), models.ScopeStudent)
	if err == nil {
		deadline = cfg.LatenessDeadline()
	} else if !errors.Is(err, sql.ErrNoRows) {
		s.logger.Warn("failed to load student window for late sweep", zap.Error(err))
		return 0, 0, false
	}
	fire := deadline.Add(time.Minute)
	return fire.Hour(), fire.Minute(), true
}

// LateSweep messages parents of every student with no attendance record once
// the lateness deadline has passed. Closed days are skipped silently.
func (s *NotificationService) LateSweep(ctx context.Context) error {
	today := dateOnly(s.now())

	if _, err := s.windows.Resolve(ctx, models.PopulationStudent, 0, today); err != nil {
		if appErrors.Is(err, appErrors.ErrHolidayOrOff) || appErrors.Is(err, appErrors.ErrConfigMissing) {
			s.logger.Info("late sweep skipped", zap.String("reason", appErrors.FromError(err).Message))
			return nil
		}
		return err
	}

	students, err := s.students.ListStudents(ctx, models.PersonFilter{})
	if err != nil {
		return fmt.Errorf("list students for late sweep: %w", err)
	}
	records, err := s.ledger.ForDate(ctx, models.LedgerStudents, today)
	if err != nil {
		return fmt.Errorf("load attendance for late sweep: %w", err)
	}
	recorded := make(map[string]bool, len(records))
	for _, record := range records {
		recorded[record.PersonID] = true
	}

	queued := 0
	for _, student := range students {
		if recorded[student.NIS] || student.ParentPhone == nil || *student.ParentPhone == "" {
			continue
		}
		message := fmt.Sprintf(
			"⚠️ *Notifikasi Keterlambatan*\n\nAnak Anda, %s, belum tercatat hadir di sekolah hingga batas waktu keterlambatan hari ini (%s).",
			student.Name, today.Format("02-01-2006"))
		if err := s.enqueue(*student.ParentPhone, message); err != nil {
			s.logger.Warn("failed to queue late notification",
				zap.String("student", student.NIS), zap.Error(err))
			continue
		}
		queued++
	}
	s.logger.Info("late sweep finished",
		zap.Int("students", len(students)), zap.Int("queued", queued))
	return nil
}

func (s *NotificationService) enqueue(phone, message string) error {
	return s.queue.Enqueue(jobs.Job{
		ID:      uuid.NewString(),
		Type:    "whatsapp",
		Payload: whatsAppMessage{Phone: phone, Message: message},
	})
}
