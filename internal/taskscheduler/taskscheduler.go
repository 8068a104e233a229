// Package taskscheduler defines the OS-native task-scheduler adapter:
// two operations, Schedule and Unschedule, keyed by profile id.
// Implementations are responsible for naming the underlying OS task
// after the profile id, setting a "run when missed" flag so transient
// offline periods don't lose backups, and invoking this executable with
// the backup subcommand and the profile id argument when the trigger
// fires.
package taskscheduler

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Adapter is the interface internal/schedule depends on. Both
// implementations in this package invoke their Executable (by default
// this binary) as "backup --id <id>" when a trigger fires. Neither sets a
// "run when missed" flag: CronScheduler has no such notion, and
// WindowsScheduler's schtasks arguments include none.
type Adapter interface {
	Schedule(ctx context.Context, id uuid.UUID, at time.Time) error
	Unschedule(ctx context.Context, id uuid.UUID) error
}
