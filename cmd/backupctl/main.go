// Command backupctl is the CLI entry point: it drives the core
// collaborators (ArchiveProducer, ScheduleController, RestoreSelector,
// DeleteCoordinator) against one or more profiles selected by --name or
// --id.
//
// Grounded on original_source/backupper/src/main.rs for the overall
// shape (working-directory relocation around the run, subcommand
// dispatch, general-config-then-profiles loading order) and on this
// module's cmd/* binaries for flag parsing and pterm status output.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pterm/pterm"

	"backupsdk/internal/archive"
	"backupsdk/internal/deletecoord"
	"backupsdk/internal/profile"
	"backupsdk/internal/prompt"
	"backupsdk/internal/restore"
	"backupsdk/internal/schedule"
	"backupsdk/internal/store"
	"backupsdk/internal/taskscheduler"
	"backupsdk/logger"
)

const (
	exitOK         = 0
	exitConfigErr  = 1
	exitWorkingDir = 2
	exitUsage      = 3
)

func main() {
	os.Exit(run())
}

func run() int {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: backupctl <backup|restore|reschedule|delete> [flags]")
		return exitUsage
	}
	subcommand := os.Args[1]

	origDir, err := os.Getwd()
	if err != nil {
		origDir = ""
	}
	if exe, err := os.Executable(); err == nil {
		if err := os.Chdir(filepath.Dir(exe)); err != nil {
			fmt.Fprintf(os.Stderr, "couldn't change working directory: %v\n", err)
			return exitWorkingDir
		}
	}
	defer func() {
		if origDir != "" {
			_ = os.Chdir(origDir)
		}
	}()

	fs := flag.NewFlagSet(subcommand, flag.ExitOnError)
	generalConfigPath := fs.String("general-config", "./general_config.json", "path to general config file")
	loggerConfigPath := fs.String("logger-config", "./logger_config.json", "path to logger config file")
	name := fs.String("name", "", "name of the profile to operate on")
	id := fs.String("id", "", "uuid of the profile to operate on")
	force := fs.Bool("force", false, "skip the due-check and run unconditionally")
	verbose := fs.Bool("verbose", false, "enable verbose logging")
	timestamp := fs.String("timestamp", "", "restore target instant, format \"2006-01-02 15:04\" (restore only)")
	removeBackups := fs.Bool("remove-backups", false, "also delete archive files (delete only)")
	if err := fs.Parse(os.Args[2:]); err != nil {
		return exitUsage
	}

	if *name == "" && *id == "" {
		fmt.Fprintln(os.Stderr, "exactly one of --name or --id is required")
		return exitUsage
	}
	if *name != "" && *id != "" {
		fmt.Fprintln(os.Stderr, "--name and --id are mutually exclusive")
		return exitUsage
	}

	log := loadLogger(*loggerConfigPath, *verbose)

	gcfg, err := store.LoadGeneralConfig(*generalConfigPath)
	if err != nil {
		log.Error("couldn't load general config", "error", err)
		return exitConfigErr
	}
	log.Info("loaded general config", "profiles_dir", gcfg.ProfilesDir)

	st := store.New(gcfg.ProfilesDir)
	recs, err := st.LoadAllLenient(func(skipID uuid.UUID, err error) {
		log.Warn("skipping unreadable profile", "profile_id", skipID.String(), "error", err)
	})
	if err != nil {
		log.Error("couldn't load profile configs", "error", err)
		return exitConfigErr
	}
	log.Info("loaded profile configs", "count", len(recs))

	matches := selectProfiles(recs, *name, *id)
	if len(matches) == 0 {
		fmt.Fprintf(os.Stderr, "no profile matched name=%q id=%q\n", *name, *id)
		return exitConfigErr
	}

	exe, _ := os.Executable()
	scheduler := newPlatformScheduler(log, exe)

	switch subcommand {
	case "backup":
		runBackup(st, scheduler, log, matches, *force)
		pterm.Success.Println("Backup finished. The external drive can now be removed.")
	case "restore":
		at := time.Now()
		if *timestamp != "" {
			at, err = time.ParseInLocation("2006-01-02 15:04", *timestamp, time.Local)
			if err != nil {
				fmt.Fprintf(os.Stderr, "invalid --timestamp: %v\n", err)
				return exitUsage
			}
		}
		runRestore(log, matches, at)
	case "reschedule":
		runReschedule(st, scheduler, log, matches)
	case "delete":
		runDelete(st, scheduler, log, matches, *removeBackups)
	default:
		fmt.Fprintf(os.Stderr, "unknown subcommand %q\n", subcommand)
		return exitUsage
	}

	return exitOK
}

func loadLogger(path string, verbose bool) logger.Logger {
	cfg := logger.Config{Level: "info", Format: "text"}
	if verbose {
		cfg.Level = "debug"
	}
	if data, err := os.ReadFile(path); err == nil {
		var fileCfg logger.Config
		if json.Unmarshal(data, &fileCfg) == nil {
			if fileCfg.Level != "" && !verbose {
				cfg.Level = fileCfg.Level
			}
			if fileCfg.Format != "" {
				cfg.Format = fileCfg.Format
			}
		}
	}
	return logger.NewWithConfig(cfg)
}

func newPlatformScheduler(log logger.Logger, exe string) taskscheduler.Adapter {
	if runtime.GOOS == "windows" {
		s := taskscheduler.NewWindowsScheduler(log)
		s.Executable = exe
		return s
	}
	return taskscheduler.NewCronScheduler(log)
}

// selectProfiles filters recs down to those matching name (case
// insensitive) or id, the exactly-one-of-name/id selector realized
// against a leniently-loaded profile set the way
// original_source/backupper/src/config.rs's soft loader feeds main.rs.
func selectProfiles(recs []profile.Record, name, id string) []profile.Record {
	var out []profile.Record
	for _, rec := range recs {
		if id != "" {
			if strings.EqualFold(rec.ID.String(), id) {
				out = append(out, rec)
			}
			continue
		}
		if strings.EqualFold(rec.Name, name) {
			out = append(out, rec)
		}
	}
	return out
}

func runBackup(st *store.Store, sched taskscheduler.Adapter, log logger.Logger, recs []profile.Record, force bool) {
	producer := archive.NewProducer(prompt.Interactive{}, log)
	controller := schedule.New(producer, sched, log)
	ctx := context.Background()
	now := time.Now()

	for _, rec := range recs {
		rec := rec
		err := st.WithLock(rec.ID, func(cur *profile.Record) error {
			return controller.Handle(ctx, cur, now, force, func(updated profile.Record) error {
				return st.Store(updated)
			})
		})
		if err != nil {
			log.Error("backup failed for profile", "profile_id", rec.ID.String(), "error", err)
		}
	}
}

func runRestore(log logger.Logger, recs []profile.Record, at time.Time) {
	selector := restore.NewSelector(prompt.Interactive{})
	for _, rec := range recs {
		if err := selector.Restore(rec, at); err != nil {
			log.Error("restore failed for profile", "profile_id", rec.ID.String(), "error", err)
		}
	}
}

func runReschedule(st *store.Store, sched taskscheduler.Adapter, log logger.Logger, recs []profile.Record) {
	ctx := context.Background()
	now := time.Now()
	for _, rec := range recs {
		var next time.Time
		err := st.WithLock(rec.ID, func(cur *profile.Record) error {
			n, ok := cur.Interval.NextDateTime(now)
			if !ok {
				n = now.AddDate(1, 0, 0)
			}
			cur.NextBackup = n
			next = n
			return nil
		})
		if err != nil {
			log.Error("couldn't reschedule profile", "profile_id", rec.ID.String(), "error", err)
			continue
		}
		if err := sched.Schedule(ctx, rec.ID, next); err != nil {
			log.Error("couldn't schedule next backup", "profile_id", rec.ID.String(), "error", err)
		}
	}
}

func runDelete(st *store.Store, sched taskscheduler.Adapter, log logger.Logger, recs []profile.Record, removeBackups bool) {
	coord := deletecoord.New(st, sched, log)
	ctx := context.Background()
	for _, rec := range recs {
		if err := coord.Delete(ctx, rec, removeBackups); err != nil {
			log.Error("couldn't delete profile", "profile_id", rec.ID.String(), "error", err)
		}
	}
}
