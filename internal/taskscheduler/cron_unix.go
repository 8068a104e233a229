package taskscheduler

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"backupsdk/logger"
)

// CronScheduler is an in-process Adapter for Unix-like hosts without
// native Task Scheduler access. Grounded on daemon/scheduler/
// scheduler.go's Scheduler (a github.com/robfig/cron/v3 *cron.Cron plus a
// map of tracked entries guarded by a mutex, logged through the same
// logger.Logger interface) but repurposed from recurring cron-string jobs
// to per-profile triggers: Schedule computes the 5-field spec
// "min hour dom month *" for `at` and replaces any earlier entry for the
// same id. A cron spec carries no year, so the entry matches that minute
// of that date in every year until it is removed or replaced. Entries
// live in this process's memory only.
//
// The "run when missed" behavior adapters are expected to provide has no
// equivalent in an in-process cron scheduler (there's no "missed" state
// to recover once the process exits) — that guarantee is instead
// provided by the controller re-deriving next_backup from wall-clock time
// on every invocation, so a process that was offline across its
// scheduled instant still catches up the next time it runs.
type CronScheduler struct {
	cron *cron.Cron
	log  logger.Logger

	// Executable is invoked as `Executable backup --id <id>` when a
	// trigger fires. Defaults to os.Args[0].
	Executable string

	mu      sync.Mutex
	entries map[uuid.UUID]cron.EntryID
}

// NewCronScheduler builds and starts a CronScheduler.
func NewCronScheduler(log logger.Logger) *CronScheduler {
	exe, err := os.Executable()
	if err != nil {
		exe = os.Args[0]
	}
	s := &CronScheduler{
		cron:       cron.New(),
		log:        log,
		Executable: exe,
		entries:    make(map[uuid.UUID]cron.EntryID),
	}
	s.cron.Start()
	return s
}

// Stop drains in-flight cron jobs and halts the scheduler.
func (s *CronScheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *CronScheduler) Schedule(ctx context.Context, id uuid.UUID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.entries[id]; ok {
		s.cron.Remove(old)
		delete(s.entries, id)
	}

	spec := fmt.Sprintf("%d %d %d %d *", at.Minute(), at.Hour(), at.Day(), int(at.Month()))
	entryID, err := s.cron.AddFunc(spec, s.runBackup(id))
	if err != nil {
		return fmt.Errorf("taskscheduler: schedule %s at %s: %w", id, at, err)
	}
	s.entries[id] = entryID

	s.log.Info("scheduled trigger", "profile_id", id.String(), "at", at.Format(time.RFC3339))
	return nil
}

func (s *CronScheduler) Unschedule(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entryID, ok := s.entries[id]
	if !ok {
		return nil
	}
	s.cron.Remove(entryID)
	delete(s.entries, id)
	s.log.Info("unscheduled trigger", "profile_id", id.String())
	return nil
}

func (s *CronScheduler) runBackup(id uuid.UUID) func() {
	return func() {
		cmd := exec.Command(s.Executable, "backup", "--id", id.String())
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		if err := cmd.Run(); err != nil {
			s.log.Error("triggered backup invocation failed", "profile_id", id.String(), "error", err)
		}
	}
}
