package archive

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"backupsdk/internal/profile"
	"backupsdk/internal/prompt"
)

func newTestRecord(t *testing.T, targetDir string) profile.Record {
	t.Helper()
	return profile.Record{
		ID:        uuid.New(),
		Name:      "test",
		TargetDir: targetDir,
		Interval:  profile.New("test", time.Now()).Interval,
	}
}

func TestProduceWritesIncludedFilesAndSkipsExcluded(t *testing.T) {
	srcDir := t.TempDir()
	targetDir := t.TempDir()

	if err := os.WriteFile(filepath.Join(srcDir, "keep.txt"), []byte("keep me"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(srcDir, "skip.txt"), []byte("skip me"), 0o644); err != nil {
		t.Fatal(err)
	}

	rec := newTestRecord(t, targetDir)
	rec.DirsToInclude = []string{srcDir}
	rec.FilesToExclude = []string{filepath.Join(srcDir, "skip.txt")}

	p := NewProducer(prompt.AlwaysCancel{}, nil)
	now := time.Date(2026, time.July, 31, 12, 0, 0, 0, time.UTC)
	archivePath, err := p.Produce(rec, now)
	if err != nil {
		t.Fatalf("Produce returned error: %v", err)
	}

	wantName := rec.ID.String() + "_2026-07-31_12-00.zip"
	if filepath.Base(archivePath) != wantName {
		t.Fatalf("got archive name %q, want %q", filepath.Base(archivePath), wantName)
	}

	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		t.Fatalf("couldn't open produced archive: %v", err)
	}
	defer zr.Close()

	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	if len(names) != 1 || names[0] != filepath.Join(srcDir, "keep.txt") {
		t.Fatalf("expected only keep.txt in archive, got %v", names)
	}
}

func TestProduceFailsOnArchiveCollision(t *testing.T) {
	srcDir := t.TempDir()
	targetDir := t.TempDir()
	rec := newTestRecord(t, targetDir)

	now := time.Date(2026, time.July, 31, 12, 0, 0, 0, time.UTC)
	collisionPath := filepath.Join(targetDir, rec.ID.String()+"_2026-07-31_12-00.zip")
	if err := os.WriteFile(collisionPath, []byte("pre-existing"), 0o644); err != nil {
		t.Fatal(err)
	}

	p := NewProducer(prompt.AlwaysCancel{}, nil)
	if _, err := p.Produce(rec, now); err == nil {
		t.Fatal("expected an error when the archive path already exists")
	}
	_ = srcDir
}

func TestAwaitTargetDirCancelsWhenRetrierRefuses(t *testing.T) {
	p := NewProducer(prompt.AlwaysCancel{}, nil)
	if err := p.awaitTargetDir(filepath.Join(t.TempDir(), "does-not-exist")); err == nil {
		t.Fatal("expected an error when the target directory never becomes available")
	}
}

func TestIsWritableDir(t *testing.T) {
	dir := t.TempDir()
	if !isWritableDir(dir) {
		t.Fatal("a freshly created temp dir should be writable")
	}
	if isWritableDir(filepath.Join(dir, "missing")) {
		t.Fatal("a missing directory must not be reported writable")
	}
}
