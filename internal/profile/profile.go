// Package profile defines the persistent ProfileRecord: identity,
// schedule and filesystem scope for one backup target. Grounded on
// original_source/config/src/profile_config.rs, kept to its on-disk/
// in-memory split — config_file is derived by the store from id + the
// configured profiles directory and is never serialized.
package profile

import (
	"time"

	"github.com/google/uuid"

	"backupsdk/internal/interval"
)

// Record is one persistent backup profile. JSON tags fix the on-disk
// shape of <id>.json.
type Record struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`

	TargetDir string `json:"target_dir"`

	FilesToInclude []string `json:"files_to_include"`
	DirsToInclude  []string `json:"dirs_to_include"`
	FilesToExclude []string `json:"files_to_exclude"`
	DirsToExclude  []string `json:"dirs_to_exclude"`

	Interval interval.Interval `json:"interval"`

	// NextBackup is the wall-clock instant at which the next OS-level
	// task is registered to fire. Not guaranteed to be a value Interval
	// matches (a one-year fallback applies when no scheduled match occurs).
	NextBackup time.Time `json:"next_backup"`
}

// New creates a blank profile: a fresh random id, the given name, the
// always-matching default Interval, and NextBackup initialized to the
// creation instant. Callers (the HTTP control plane) fill in
// TargetDir/include/exclude sets afterward via update.
func New(name string, now time.Time) Record {
	return Record{
		ID:         uuid.New(),
		Name:       name,
		Interval:   interval.Default(),
		NextBackup: now,
	}
}

// IsExcluded reports whether x is excluded: it equals some entry of
// FilesToExclude, or starts with some entry of DirsToExclude as a
// path-prefix. Paths are compared as given; the caller is responsible
// for canonicalization.
func (r Record) IsExcluded(x string) bool {
	for _, f := range r.FilesToExclude {
		if x == f {
			return true
		}
	}
	for _, d := range r.DirsToExclude {
		if hasPathPrefix(x, d) {
			return true
		}
	}
	return false
}

// InIncludedDirs reports whether x is covered by an included dir: x
// starts with some entry of DirsToInclude.
func (r Record) InIncludedDirs(x string) bool {
	for _, d := range r.DirsToInclude {
		if hasPathPrefix(x, d) {
			return true
		}
	}
	return false
}

// hasPathPrefix reports whether x starts with prefix as a component-wise
// path prefix: either an exact string match, or prefix followed
// immediately by a path separator.
func hasPathPrefix(x, prefix string) bool {
	if prefix == "" {
		return false
	}
	if x == prefix {
		return true
	}
	if len(x) > len(prefix) && x[:len(prefix)] == prefix {
		sep := x[len(prefix)]
		return sep == '/' || sep == '\\'
	}
	return false
}
