// Package schedule implements the controller state machine that, for
// each profile, decides on every invocation whether a missed backup must
// run now, whether only next_backup must be advanced, and whether a new
// OS-level trigger must be registered.
//
// Grounded on original_source/backupper/src/backup.rs's handle_profile,
// which computes next_backup_matches/scheduled_matches/skipped_scheduled,
// and on daemon/scheduler/scheduler.go's job-execution loop for the
// surrounding Go idiom (structured logging per decision, persist-then-
// register ordering).
package schedule

import (
	"context"
	"time"

	"backupsdk/internal/apperr"
	"backupsdk/internal/archive"
	"backupsdk/internal/interval"
	"backupsdk/internal/metrics"
	"backupsdk/internal/profile"
	"backupsdk/internal/taskscheduler"
	"backupsdk/logger"
)

// Controller drives the run-now/advance decision table.
type Controller struct {
	Producer  *archive.Producer
	Scheduler taskscheduler.Adapter
	Log       logger.Logger
}

// New builds a Controller.
func New(producer *archive.Producer, sched taskscheduler.Adapter, log logger.Logger) *Controller {
	return &Controller{Producer: producer, Scheduler: sched, Log: log}
}

// Handle runs one invocation for rec: it derives the run-now/advance
// decision, optionally drives the ArchiveProducer, advances
// rec.NextBackup, and (the caller is responsible for persisting the
// mutated rec — see Handle's doc below) registers the next OS trigger.
//
// Ordering guarantee: OS registration happens only after the caller has
// persisted rec, which Handle enforces by taking a persist callback
// rather than persisting internally — a crash between archive production
// and registration always leaves the profile in a consistent, retryable
// state.
func (c *Controller) Handle(ctx context.Context, rec *profile.Record, now time.Time, forced bool, persist func(profile.Record) error) error {
	advanceNext, runNow := decide(*rec, now, forced)
	metrics.RecordScheduleDecision(advanceNext, runNow)

	if runNow {
		if _, err := c.Producer.Produce(*rec, now); err != nil {
			c.Log.Error("archive production failed", "profile_id", rec.ID.String(), "error", err)
			// Log and swallow producer errors — the profile must
			// still be advanced and rescheduled.
		}
	}

	if advanceNext {
		next, ok := rec.Interval.NextDateTime(now)
		if !ok {
			// Fallback safety valve: no match within the 365-day
			// window, so push a year out from the previous
			// next_backup and try again next invocation.
			c.Log.Warn("no interval match in window, applying one-year fallback",
				"profile_id", rec.ID.String(), "error", apperr.ErrNoMatchInWindow)
			next = rec.NextBackup.AddDate(1, 0, 0)
		}
		rec.NextBackup = next
	}

	if err := persist(*rec); err != nil {
		return err
	}

	if err := c.Scheduler.Schedule(ctx, rec.ID, rec.NextBackup); err != nil {
		metrics.RecordSchedulerError("schedule")
		c.Log.Error("scheduler registration failed",
			"profile_id", rec.ID.String(), "error", apperr.ErrSchedulerError, "cause", err)
		// Not fatal: the profile is already persisted and will be
		// retried on the next invocation.
	}

	return nil
}

// decide implements the core decision table.
func decide(rec profile.Record, now time.Time, forced bool) (advanceNext, runNow bool) {
	if forced {
		return true, true
	}
	if now.Before(rec.NextBackup) {
		return false, false
	}

	scheduled, scheduledOK := rec.Interval.NextDateTime(now)
	nextBackupMatches := rec.Interval.MatchesDateTime(rec.NextBackup) == interval.Ok
	scheduledMatches := scheduledOK && rec.Interval.MatchesDateTime(scheduled) == interval.Ok
	skippedScheduled := scheduledOK && !scheduled.After(now)

	if nextBackupMatches || (skippedScheduled && scheduledMatches) {
		return true, true
	}
	return true, false
}
