// Package apperr collects sentinel error values so callers can
// distinguish recoverable, per-invocation failures from the two that
// terminate the process (ConfigUnavailable and working-directory setup
// failures). Wrapping follows the fmt.Errorf("...: %w", ...) idiom found
// in daemon/store/store.go and daemon/backup/backup.go, so errors.Is/
// errors.As keep working through layers.
package apperr

import "errors"

var (
	// ErrConfigUnavailable: general config missing, unreadable, or
	// misdirected. Fatal — terminates the process.
	ErrConfigUnavailable = errors.New("apperr: general config unavailable")

	// ErrProfileCorrupt: a profile record failed to deserialize. Soft-skip
	// in lenient loader mode, propagated in strict mode.
	ErrProfileCorrupt = errors.New("apperr: profile record corrupt")

	// ErrTargetUnavailable: target directory absent/unwritable and the
	// user cancelled the retry prompt.
	ErrTargetUnavailable = errors.New("apperr: target directory unavailable")

	// ErrArchiveCollision: the archive filename already exists.
	ErrArchiveCollision = errors.New("apperr: archive filename collision")

	// ErrPerFileError: a single file could not be opened, read, or
	// written. Logged; never aborts the archive.
	ErrPerFileError = errors.New("apperr: per-file error")

	// ErrFatalArchiveError: archive-level write/finalize failure. The
	// partial archive is deleted before this is returned.
	ErrFatalArchiveError = errors.New("apperr: fatal archive error")

	// ErrSchedulerError: the OS scheduler adapter call failed. Logged,
	// not fatal to the current invocation.
	ErrSchedulerError = errors.New("apperr: scheduler adapter error")

	// ErrNoMatchInWindow: the interval has no match within the 365-day
	// search window; triggers the one-year fallback in the controller.
	ErrNoMatchInWindow = errors.New("apperr: no match within search window")

	// ErrProfileNotFound: no profile exists with the requested id/name.
	ErrProfileNotFound = errors.New("apperr: profile not found")

	// ErrProfileNameConflict: create-blank found an existing profile with
	// the same name (case-insensitive).
	ErrProfileNameConflict = errors.New("apperr: profile name already in use")

	// ErrImmutableField: an update attempted to change id or next_backup.
	ErrImmutableField = errors.New("apperr: field is immutable")
)
