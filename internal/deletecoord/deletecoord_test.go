package deletecoord

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"backupsdk/internal/profile"
	"backupsdk/internal/store"
	"backupsdk/logger"
)

type fakeScheduler struct {
	unscheduleErr error
	scheduled     map[uuid.UUID]time.Time
	unscheduled   map[uuid.UUID]bool
}

func newFakeScheduler() *fakeScheduler {
	return &fakeScheduler{scheduled: make(map[uuid.UUID]time.Time), unscheduled: make(map[uuid.UUID]bool)}
}

func (f *fakeScheduler) Schedule(ctx context.Context, id uuid.UUID, at time.Time) error {
	f.scheduled[id] = at
	return nil
}

func (f *fakeScheduler) Unschedule(ctx context.Context, id uuid.UUID) error {
	f.unscheduled[id] = true
	return f.unscheduleErr
}

func TestDeleteRemovesRecordAndArchives(t *testing.T) {
	dir := t.TempDir()
	st := store.New(dir)
	rec := profile.New("delete-me", time.Now())
	rec.TargetDir = dir
	if err := st.Store(rec); err != nil {
		t.Fatal(err)
	}
	archivePath := filepath.Join(dir, rec.ID.String()+"_2026-07-31_08-00.zip")
	if err := os.WriteFile(archivePath, []byte("archive"), 0o644); err != nil {
		t.Fatal(err)
	}

	sched := newFakeScheduler()
	coord := New(st, sched, logger.New("error"))

	if err := coord.Delete(context.Background(), rec, true); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}

	if !sched.unscheduled[rec.ID] {
		t.Fatal("expected the profile to be unscheduled")
	}
	if _, err := os.Stat(archivePath); !os.IsNotExist(err) {
		t.Fatal("expected the archive file to be removed")
	}
	if _, err := st.Load(rec.ID); err == nil {
		t.Fatal("expected the profile record to be removed")
	}
}

func TestDeletePreservesArchivesWhenNotRequested(t *testing.T) {
	dir := t.TempDir()
	st := store.New(dir)
	rec := profile.New("keep-archives", time.Now())
	rec.TargetDir = dir
	if err := st.Store(rec); err != nil {
		t.Fatal(err)
	}
	archivePath := filepath.Join(dir, rec.ID.String()+"_2026-07-31_08-00.zip")
	if err := os.WriteFile(archivePath, []byte("archive"), 0o644); err != nil {
		t.Fatal(err)
	}

	sched := newFakeScheduler()
	coord := New(st, sched, logger.New("error"))

	if err := coord.Delete(context.Background(), rec, false); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if _, err := os.Stat(archivePath); err != nil {
		t.Fatalf("expected archive to survive a delete without --remove-backups: %v", err)
	}
}

func TestDeleteAbortsWhenUnscheduleFails(t *testing.T) {
	dir := t.TempDir()
	st := store.New(dir)
	rec := profile.New("unschedulable", time.Now())
	rec.TargetDir = dir
	if err := st.Store(rec); err != nil {
		t.Fatal(err)
	}

	sched := newFakeScheduler()
	sched.unscheduleErr = errUnschedule
	coord := New(st, sched, logger.New("error"))

	if err := coord.Delete(context.Background(), rec, false); err == nil {
		t.Fatal("expected Delete to fail when unschedule fails")
	}

	if _, err := st.Load(rec.ID); err != nil {
		t.Fatal("expected the profile record to still exist after a failed unschedule")
	}
}

var errUnschedule = &fakeErr{"unschedule failed"}

type fakeErr struct{ msg string }

func (e *fakeErr) Error() string { return e.msg }
