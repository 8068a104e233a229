// Package deletecoord implements the profile delete operation: unregister
// the OS trigger, optionally delete the profile's archives, then delete
// the profile's persisted record — with a compensating re-registration
// if a later step fails, so a single failed step does not leave an
// unscheduled profile that still has on-disk state.
//
// Grounded on original_source/backupper/src/delete.rs's
// delete_backup_files/delete: unschedule first (fatal on failure),
// conditional archive deletion with re-schedule compensation, then record
// deletion with re-schedule compensation.
package deletecoord

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"backupsdk/internal/metrics"
	"backupsdk/internal/profile"
	"backupsdk/internal/store"
	"backupsdk/internal/taskscheduler"
	"backupsdk/logger"
)

// Coordinator implements the Delete operation.
type Coordinator struct {
	Store     *store.Store
	Scheduler taskscheduler.Adapter
	Log       logger.Logger
}

// New builds a Coordinator.
func New(st *store.Store, sched taskscheduler.Adapter, log logger.Logger) *Coordinator {
	return &Coordinator{Store: st, Scheduler: sched, Log: log}
}

// Delete unregisters rec's OS trigger, optionally deletes its archive
// files, and deletes its persisted record. This yields at-most-one
// irreversible step at a time: any failure after the first step
// re-registers the trigger as a compensating action and aborts.
func (c *Coordinator) Delete(ctx context.Context, rec profile.Record, alsoArchives bool) error {
	if err := c.Scheduler.Unschedule(ctx, rec.ID); err != nil {
		return fmt.Errorf("deletecoord: unschedule %s: %w", rec.ID, err)
	}

	if alsoArchives {
		if err := deleteArchiveFiles(rec); err != nil {
			c.compensate(ctx, rec, err, "deleting archives")
			return fmt.Errorf("deletecoord: delete archives for %s: %w", rec.ID, err)
		}
	}

	if err := c.Store.Delete(rec.ID); err != nil {
		c.compensate(ctx, rec, err, "deleting profile record")
		return fmt.Errorf("deletecoord: delete profile record for %s: %w", rec.ID, err)
	}

	metrics.RecordDelete("ok")
	return nil
}

// compensate re-registers rec's trigger after a failed step. A failure
// here is a "double failure", handled as best-effort: it is surfaced
// explicitly in logs rather than retried further, since the coordinator
// has no third fallback.
func (c *Coordinator) compensate(ctx context.Context, rec profile.Record, cause error, step string) {
	if err := c.Scheduler.Schedule(ctx, rec.ID, rec.NextBackup); err != nil {
		metrics.RecordDelete("double_failure")
		c.Log.Error("double failure: couldn't compensate after failed delete step",
			"profile_id", rec.ID.String(), "step", step, "original_error", cause, "compensation_error", err)
		return
	}
	metrics.RecordDelete("compensated")
	c.Log.Warn("re-registered trigger after failed delete step",
		"profile_id", rec.ID.String(), "step", step, "error", cause)
}

// deleteArchiveFiles removes every file in rec.TargetDir whose name
// matches <id>_*.zip.
func deleteArchiveFiles(rec profile.Record) error {
	entries, err := os.ReadDir(rec.TargetDir)
	if err != nil {
		return fmt.Errorf("read %s: %w", rec.TargetDir, err)
	}

	prefix := rec.ID.String() + "_"
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasPrefix(name, prefix) && strings.HasSuffix(name, ".zip") {
			if err := os.Remove(filepath.Join(rec.TargetDir, name)); err != nil {
				return fmt.Errorf("remove %s: %w", name, err)
			}
		}
	}
	return nil
}
