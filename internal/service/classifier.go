package service

import (
	"fmt"
	"time"

	"github.com/noah-isme/smk-presensi-api/internal/models"
	appErrors "github.com/noah-isme/smk-presensi-api/pkg/errors"
)

// entryGrace pads the on-time and late boundaries so a scan at exactly the
// configured minute is never rejected by clock skew on the kiosk.
const entryGrace = time.Minute

// classify places a scan time into one of the three daily bands and derives
// both the event kind and the status from it. The kiosk sends only the token,
// so whether a scan is an entry or an exit follows from the clock: the
// on-time and late bands produce masuk records, the exit band pulang, and
// anything between or outside is rejected. The exit band has no grace
// padding.
func classify(cfg *models.WindowConfig, at models.Clock) (models.EventKind, models.AttendanceStatus, error) {
	onTimeEnd := cfg.EntryEnd.Add(entryGrace)
	lateEnd := cfg.LatenessDeadline().Add(entryGrace)

	switch {
	case !at.Before(cfg.EntryStart) && !at.After(onTimeEnd):
		return models.EventEntry, models.StatusPresent, nil
	case at.After(onTimeEnd) && !at.After(lateEnd):
		return models.EventEntry, models.StatusLate, nil
	case !at.Before(cfg.ExitStart) && !at.After(cfg.ExitEnd):
		return models.EventExit, models.StatusPresent, nil
	default:
		return "", "", appErrors.ErrOutOfWindow
	}
}

// formatLateness renders the lateness column: whole minutes past the deadline
// as "N menit", or "-" when the person arrived in time.
func formatLateness(entry models.Clock, deadline models.Clock) string {
	if !entry.After(deadline) {
		return "-"
	}
	minutes := int(entry.Sub(deadline) / time.Minute)
	if minutes < 1 {
		minutes = 1
	}
	return fmt.Sprintf("%d menit", minutes)
}

// formatDuration renders time on site as "J jam M menit". An exit recorded
// before the entry yields "Error" so bad data is visible in reports instead
// of silently clamped.
func formatDuration(entry, exit models.Clock) string {
	d := exit.Sub(entry)
	if d < 0 {
		return "Error"
	}
	hours := int(d / time.Hour)
	minutes := int(d%time.Hour) / int(time.Minute)
	return fmt.Sprintf("%d jam %d menit", hours, minutes)
}
