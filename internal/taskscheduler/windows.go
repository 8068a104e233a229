package taskscheduler

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/google/uuid"

	"backupsdk/logger"
)

// WindowsScheduler shells out to schtasks.exe, grounded on
// original_source/backupper/src/scheduler/windows.rs's COM Task
// Scheduler binding. This repository trades that literal COM port for
// the command-line equivalent (os/exec + schtasks) since no example in
// the pack wires golang.org/x/sys/windows COM calls — see DESIGN.md.
//
// Task names are "backupsdk_" followed by the profile id; /SC ONCE /SD
// /ST registers a one-time trigger at the given instant, /Z marks the
// task for deletion after its run, and /F overwrites an existing task of
// the same name. A start that was missed is not run later.
type WindowsScheduler struct {
	log        logger.Logger
	Executable string
}

// NewWindowsScheduler builds a WindowsScheduler that invokes
// os.Executable() when a task fires.
func NewWindowsScheduler(log logger.Logger) *WindowsScheduler {
	exe, err := os.Executable()
	if err != nil {
		exe = os.Args[0]
	}
	return &WindowsScheduler{log: log, Executable: exe}
}

func taskName(id uuid.UUID) string {
	return "backupsdk_" + id.String()
}

func (s *WindowsScheduler) Schedule(ctx context.Context, id uuid.UUID, at time.Time) error {
	// Best-effort removal of any prior registration for this id; a
	// missing task is not an error.
	_ = s.Unschedule(ctx, id)

	taskRun := fmt.Sprintf("%s backup --id %s", s.Executable, id.String())
	args := []string{
		"/Create", "/TN", taskName(id),
		"/TR", taskRun,
		"/SC", "ONCE",
		"/SD", at.Format("01/02/2006"),
		"/ST", at.Format("15:04"),
		"/Z", // delete the task after its run
		"/F",
	}
	cmd := exec.CommandContext(ctx, "schtasks", args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("taskscheduler: schtasks /Create for %s: %w (%s)", id, err, out)
	}
	s.log.Info("scheduled trigger", "profile_id", id.String(), "at", at.Format(time.RFC3339))
	return nil
}

func (s *WindowsScheduler) Unschedule(ctx context.Context, id uuid.UUID) error {
	cmd := exec.CommandContext(ctx, "schtasks", "/Delete", "/TN", taskName(id), "/F")
	if out, err := cmd.CombinedOutput(); err != nil {
		// Deleting a task that was never registered is not fatal.
		if isNotFound(out) {
			return nil
		}
		return fmt.Errorf("taskscheduler: schtasks /Delete for %s: %w (%s)", id, err, out)
	}
	s.log.Info("unscheduled trigger", "profile_id", id.String())
	return nil
}

func isNotFound(out []byte) bool {
	s := string(out)
	return strings.Contains(s, "ERROR: The system cannot find") || strings.Contains(s, "cannot find the file specified")
}
