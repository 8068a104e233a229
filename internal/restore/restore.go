// Package restore picks the latest archive not later than a target
// instant and extracts it. Grounded on
// original_source/backupper/src/restore.rs:
// non-recursive directory scan, strip ".zip" / strip "<id>_" / parse
// "YYYY-MM-DD_HH-MM", skip-on-any-parse-failure, latest-≤-target
// selection, and iterate-by-index extraction that aborts the whole
// restore on any entry error.
package restore

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"backupsdk/internal/metrics"
	"backupsdk/internal/profile"
	"backupsdk/internal/prompt"
)

// Selector implements the Restore operation.
type Selector struct {
	Retry prompt.Retrier
}

// NewSelector builds a Selector. A nil Retrier defaults to
// prompt.AlwaysCancel.
func NewSelector(retry prompt.Retrier) *Selector {
	if retry == nil {
		retry = prompt.AlwaysCancel{}
	}
	return &Selector{Retry: retry}
}

// Restore finds the archive for rec with the latest timestamp ≤ at and
// extracts it into the current working directory structure implied by
// each entry's stored path. If no candidate qualifies, Restore is a
// no-op success.
func (s *Selector) Restore(rec profile.Record, at time.Time) error {
	for !isReachableDir(rec.TargetDir) {
		title := "Backup directory unavailable"
		msg := fmt.Sprintf("The directory %q is not available. Connect the external volume and retry.", rec.TargetDir)
		if !s.Retry.Retry(title, msg) {
			return fmt.Errorf("restore: target directory %s unreachable and retry cancelled", rec.TargetDir)
		}
	}

	best, ok, err := findBestCandidate(rec, at)
	if err != nil {
		metrics.RecordRestore("error")
		return fmt.Errorf("restore: scanning %s: %w", rec.TargetDir, err)
	}
	if !ok {
		metrics.RecordRestore("noop")
		return nil
	}

	if err := extract(best); err != nil {
		metrics.RecordRestore("error")
		return err
	}
	metrics.RecordRestore("restored")
	return nil
}

func isReachableDir(dir string) bool {
	info, err := os.Stat(dir)
	return err == nil && info.IsDir()
}

// findBestCandidate performs the candidate discovery and selection: a
// non-recursive scan for regular files whose name is
// <id>_<YYYY-MM-DD_HH-MM>.zip, keeping the one with the latest parsed
// timestamp that is ≤ at. Ties are broken by lexicographic path order.
func findBestCandidate(rec profile.Record, at time.Time) (string, bool, error) {
	entries, err := os.ReadDir(rec.TargetDir)
	if err != nil {
		return "", false, err
	}

	prefix := rec.ID.String() + "_"
	var bestPath string
	var bestTime time.Time
	found := false

	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()

		stamp, ok := strings.CutSuffix(name, ".zip")
		if !ok {
			continue
		}
		stamp, ok = strings.CutPrefix(stamp, prefix)
		if !ok {
			continue
		}
		ts, err := time.ParseInLocation("2006-01-02_15-04", stamp, time.Local)
		if err != nil {
			continue
		}
		if ts.After(at) {
			continue
		}
		if !found || ts.After(bestTime) || (ts.Equal(bestTime) && name > filepath.Base(bestPath)) {
			found = true
			bestTime = ts
			bestPath = filepath.Join(rec.TargetDir, name)
		}
	}

	return bestPath, found, nil
}

// extract iterates the ZIP archive at path in archive order, deriving an
// output path from each entry's stored name, creating missing parent
// directories and overwriting existing files. Any entry error aborts the
// remainder of the restore.
func extract(path string) error {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return fmt.Errorf("open archive %s: %w", path, err)
	}
	defer zr.Close()

	for _, entry := range zr.File {
		if err := extractEntry(entry); err != nil {
			return fmt.Errorf("extract %s from %s: %w", entry.Name, path, err)
		}
	}
	return nil
}

func extractEntry(entry *zip.File) error {
	if strings.HasSuffix(entry.Name, "/") {
		return os.MkdirAll(entry.Name, 0o755)
	}

	if dir := filepath.Dir(entry.Name); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	rc, err := entry.Open()
	if err != nil {
		return fmt.Errorf("open entry: %w", err)
	}
	defer rc.Close()

	out, err := os.OpenFile(entry.Name, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, rc); err != nil {
		return fmt.Errorf("copy: %w", err)
	}
	return nil
}
