package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"backupsdk/internal/interval"
	"backupsdk/internal/profile"
)

func TestValidateGeneralConfigDirRejectsMissing(t *testing.T) {
	r := ValidateGeneralConfigDir(filepath.Join(t.TempDir(), "missing"))
	if r.Valid {
		t.Fatal("expected a missing directory to be invalid")
	}
}

func TestValidateGeneralConfigDirRejectsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "not-a-dir")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	r := ValidateGeneralConfigDir(path)
	if r.Valid {
		t.Fatal("expected a plain file to be invalid")
	}
}

func TestValidateGeneralConfigDirAcceptsWritableDir(t *testing.T) {
	r := ValidateGeneralConfigDir(t.TempDir())
	if !r.Valid {
		t.Fatalf("expected a writable temp dir to validate, got errors: %v", r.Errors)
	}
}

func TestValidateProfileUpdateRejectsImmutableFieldChanges(t *testing.T) {
	existing := profile.New("original", time.Now())
	incoming := existing
	incoming.ID = profile.New("x", time.Now()).ID

	r := ValidateProfileUpdate(existing, incoming)
	if r.Valid {
		t.Fatal("expected id change to be rejected")
	}
}

func TestValidateProfileUpdateRejectsNextBackupChange(t *testing.T) {
	existing := profile.New("original", time.Now())
	incoming := existing
	incoming.NextBackup = incoming.NextBackup.Add(time.Hour)

	r := ValidateProfileUpdate(existing, incoming)
	if r.Valid {
		t.Fatal("expected next_backup change to be rejected")
	}
}

func TestValidateProfileUpdateAcceptsValidChange(t *testing.T) {
	existing := profile.New("original", time.Now())
	incoming := existing
	incoming.Name = "renamed"
	incoming.TargetDir = "/mnt/backup"

	r := ValidateProfileUpdate(existing, incoming)
	if !r.Valid {
		t.Fatalf("expected a valid rename/retarget to validate, got errors: %v", r.Errors)
	}
}

func TestIntervalChangedDetectsDifference(t *testing.T) {
	existing := profile.New("x", time.Now())
	incoming := existing
	daily, err := interval.Daily(30, 9)
	if err != nil {
		t.Fatal(err)
	}
	incoming.Interval = daily

	if !IntervalChanged(existing, incoming) {
		t.Fatal("expected a changed interval to be detected")
	}
	if IntervalChanged(existing, existing) {
		t.Fatal("expected an unchanged interval to report no change")
	}
}
