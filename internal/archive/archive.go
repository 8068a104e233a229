// Package archive implements a deterministic filesystem walker that
// applies a profile's inclusion/exclusion semantics and streams surviving
// files into a ZIP container, retrying when the target volume is
// unavailable.
//
// Grounded on daemon/backup/backup.go (walk + io.Copy chunked streaming +
// observer-style error reporting), adapted from tar+gzip to archive/zip,
// and on original_source/backupper/src/backup.rs's perform_backup/
// add_directory/add_file/write_to_zip, which fix the literal 0x2000
// (8 KiB) buffer size and the create-exclusive archive open this port
// preserves.
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"backupsdk/internal/apperr"
	"backupsdk/internal/metrics"
	"backupsdk/internal/profile"
	"backupsdk/internal/prompt"
	"backupsdk/logger"
)

// chunkSize is the fixed read/write buffer size (8 KiB), matching
// backup.rs's `const N: usize = 0x2000`.
const chunkSize = 0x2000

// Producer is an ArchiveProducer: it walks a profile's included paths
// and streams a ZIP archive of the survivors.
type Producer struct {
	Retry  prompt.Retrier
	Log    logger.Logger
}

// NewProducer builds a Producer. A nil Retrier defaults to
// prompt.AlwaysCancel so a misconfigured caller fails closed rather than
// looping forever.
func NewProducer(retry prompt.Retrier, log logger.Logger) *Producer {
	if retry == nil {
		retry = prompt.AlwaysCancel{}
	}
	return &Producer{Retry: retry, Log: log}
}

// Produce walks rec's included paths and streams a ZIP archive named
// <id>_<YYYY-MM-DD_HH-MM>.zip into rec.TargetDir, stamped at now. Returns
// the archive's full path on success.
func (p *Producer) Produce(rec profile.Record, now time.Time) (string, error) {
	start := time.Now()
	if err := p.awaitTargetDir(rec.TargetDir); err != nil {
		metrics.RecordArchive("target_unavailable", time.Since(start).Seconds())
		return "", err
	}

	filename := fmt.Sprintf("%s_%s.zip", rec.ID.String(), now.Format("2006-01-02_15-04"))
	path := filepath.Join(rec.TargetDir, filename)

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if os.IsExist(err) {
			metrics.RecordArchive("collision", time.Since(start).Seconds())
			return "", fmt.Errorf("%w: %s", apperr.ErrArchiveCollision, path)
		}
		metrics.RecordArchive("fatal", time.Since(start).Seconds())
		return "", fmt.Errorf("archive: create %s: %w", path, err)
	}

	zw := zip.NewWriter(file)

	added := make(map[string]bool)
	bytesWritten := new(int64)
	for _, dir := range rec.DirsToInclude {
		p.addDirectory(zw, rec, dir, added, rec.ID.String(), bytesWritten)
	}
	for _, f := range rec.FilesToInclude {
		p.addFile(zw, rec, f, added, rec.ID.String(), bytesWritten)
	}
	metrics.ArchiveBytes.WithLabelValues(rec.ID.String()).Add(float64(*bytesWritten))

	if err := zw.Close(); err != nil {
		file.Close()
		os.Remove(path)
		metrics.RecordArchive("fatal", time.Since(start).Seconds())
		return "", fmt.Errorf("%w: finalize %s: %v", apperr.ErrFatalArchiveError, path, err)
	}
	if err := file.Close(); err != nil {
		os.Remove(path)
		metrics.RecordArchive("fatal", time.Since(start).Seconds())
		return "", fmt.Errorf("%w: close %s: %v", apperr.ErrFatalArchiveError, path, err)
	}

	metrics.RecordArchive("ok", time.Since(start).Seconds())
	return path, nil
}

// awaitTargetDir blocks until rec's target directory exists and is
// writable, or the retry prompt returns Cancel. The boolean structure
// is "dir exists AND is a directory AND not readonly", never the
// original source's inverted `!is_writeable && !readonly`.
func (p *Producer) awaitTargetDir(dir string) error {
	for !isWritableDir(dir) {
		title := "Target directory unavailable"
		msg := fmt.Sprintf("The directory %q is not available. Connect the external volume and retry.", dir)
		if !p.Retry.Retry(title, msg) {
			return fmt.Errorf("%w: %s", apperr.ErrTargetUnavailable, dir)
		}
	}
	return nil
}

func isWritableDir(dir string) bool {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return false
	}
	return info.Mode().Perm()&0o200 != 0
}

// addDirectory walks dir recursively, skipping any entry the profile's
// exclusion test matches (and, for directories, not recursing into it),
// and streams every surviving regular file into zw.
func (p *Producer) addDirectory(zw *zip.Writer, rec profile.Record, dir string, added map[string]bool, profileID string, bytesWritten *int64) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		p.logf("couldn't read directory %s: %v", dir, err)
		return
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, e := range entries {
		path := filepath.Join(dir, e.Name())
		if rec.IsExcluded(path) {
			continue
		}

		if e.IsDir() {
			p.addDirectory(zw, rec, path, added, profileID, bytesWritten)
			continue
		}

		if e.Type().IsRegular() {
			n, err := p.writeToZip(zw, path)
			if err != nil {
				metrics.ArchiveFileErrors.WithLabelValues(profileID).Inc()
				p.logf("%v", fmt.Errorf("%w: %s: %v", apperr.ErrPerFileError, path, err))
				continue
			}
			*bytesWritten += n
			added[path] = true
		}
	}
}

// addFile adds a single files_to_include entry, unless it was already
// covered by a dirs_to_include walk. The file-include list overrides the
// exclusion list at the file-member level, but doesn't duplicate entries
// the walk already added.
func (p *Producer) addFile(zw *zip.Writer, rec profile.Record, path string, added map[string]bool, profileID string, bytesWritten *int64) {
	if added[path] {
		return
	}
	if rec.InIncludedDirs(path) && !rec.IsExcluded(path) {
		return
	}
	n, err := p.writeToZip(zw, path)
	if err != nil {
		metrics.ArchiveFileErrors.WithLabelValues(profileID).Inc()
		p.logf("%v", fmt.Errorf("%w: %s: %v", apperr.ErrPerFileError, path, err))
		return
	}
	*bytesWritten += n
	added[path] = true
}

// writeToZip streams path into a new ZIP entry named after path itself,
// in chunkSize reads, with the format's default (deflate) compression. It
// returns the number of bytes read from path.
func (p *Producer) writeToZip(zw *zip.Writer, path string) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	w, err := zw.Create(path)
	if err != nil {
		return 0, fmt.Errorf("start entry: %w", err)
	}

	var total int64
	buf := make([]byte, chunkSize)
	for {
		n, rerr := f.Read(buf)
		if n > 0 {
			if _, werr := w.Write(buf[:n]); werr != nil {
				return total, fmt.Errorf("write: %w", werr)
			}
			total += int64(n)
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return total, fmt.Errorf("read: %w", rerr)
		}
	}
	return total, nil
}

func (p *Producer) logf(format string, args ...any) {
	if p.Log == nil {
		return
	}
	p.Log.Warn(fmt.Sprintf(format, args...))
}
