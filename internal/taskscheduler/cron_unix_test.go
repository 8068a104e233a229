package taskscheduler

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"backupsdk/logger"
)

func TestCronSchedulerScheduleAndUnschedule(t *testing.T) {
	s := NewCronScheduler(logger.New("error"))
	defer s.Stop()

	id := uuid.New()
	at := time.Now().Add(time.Hour)

	if err := s.Schedule(context.Background(), id, at); err != nil {
		t.Fatalf("Schedule returned error: %v", err)
	}
	if _, ok := s.entries[id]; !ok {
		t.Fatal("expected an entry to be tracked after Schedule")
	}

	if err := s.Unschedule(context.Background(), id); err != nil {
		t.Fatalf("Unschedule returned error: %v", err)
	}
	if _, ok := s.entries[id]; ok {
		t.Fatal("expected the entry to be removed after Unschedule")
	}
}

func TestCronSchedulerRescheduleReplacesOldEntry(t *testing.T) {
	s := NewCronScheduler(logger.New("error"))
	defer s.Stop()

	id := uuid.New()
	if err := s.Schedule(context.Background(), id, time.Now().Add(time.Hour)); err != nil {
		t.Fatal(err)
	}
	first := s.entries[id]

	if err := s.Schedule(context.Background(), id, time.Now().Add(2*time.Hour)); err != nil {
		t.Fatal(err)
	}
	second := s.entries[id]

	if first == second {
		t.Fatal("expected rescheduling to replace the old cron entry")
	}
}
