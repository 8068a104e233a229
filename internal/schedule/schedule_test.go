package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"backupsdk/internal/archive"
	"backupsdk/internal/profile"
	"backupsdk/internal/prompt"
	"backupsdk/logger"
)

type fakeScheduler struct {
	scheduled   map[uuid.UUID]time.Time
	unscheduled map[uuid.UUID]bool
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
	return nil
}

func newTestRecord(next time.Time) profile.Record {
	return profile.Record{
		ID:         uuid.New(),
		Name:       "test",
		TargetDir:  "",
		Interval:   profile.New("test", next).Interval,
		NextBackup: next,
	}
}

func TestDecideForcedAlwaysRunsNow(t *testing.T) {
	rec := newTestRecord(time.Now().Add(24 * time.Hour))
	advance, runNow := decide(rec, time.Now(), true)
	if !advance || !runNow {
		t.Fatalf("forced invocation must always advance and run now, got advance=%v runNow=%v", advance, runNow)
	}
}

func TestDecideNotYetDueDoesNothing(t *testing.T) {
	now := time.Date(2026, time.July, 31, 9, 0, 0, 0, time.UTC)
	rec := newTestRecord(now.Add(time.Hour))
	advance, runNow := decide(rec, now, false)
	if advance || runNow {
		t.Fatalf("a profile not yet due must neither advance nor run, got advance=%v runNow=%v", advance, runNow)
	}
}

func TestDecideDueAndMatchingRunsNow(t *testing.T) {
	now := time.Date(2026, time.July, 31, 9, 0, 0, 0, time.UTC)
	rec := newTestRecord(now) // Default() interval matches every instant
	advance, runNow := decide(rec, now, false)
	if !advance || !runNow {
		t.Fatalf("a due, matching profile must advance and run, got advance=%v runNow=%v", advance, runNow)
	}
}

func TestHandlePersistsBeforeRegistering(t *testing.T) {
	now := time.Date(2026, time.July, 31, 9, 0, 0, 0, time.UTC)
	rec := newTestRecord(now)

	sched := newFakeScheduler()
	producer := archive.NewProducer(prompt.AlwaysCancel{}, nil)
	log := logger.New("error")
	ctrl := New(producer, sched, log)

	var persisted profile.Record
	persistCalled := false
	err := ctrl.Handle(context.Background(), &rec, now, false, func(updated profile.Record) error {
		persistCalled = true
		persisted = updated
		if _, registered := sched.scheduled[rec.ID]; registered {
			t.Error("expected the scheduler to be registered only after the profile was persisted")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Handle returned error: %v", err)
	}
	if !persistCalled {
		t.Fatal("expected the persist callback to be invoked")
	}
	if at, ok := sched.scheduled[rec.ID]; !ok || !at.Equal(persisted.NextBackup) {
		t.Fatalf("expected the scheduler to be registered with the persisted NextBackup, got %v", at)
	}
}
