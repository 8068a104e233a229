// Package config validates the general config and profile records that
// cross the HTTP control plane boundary. Grounded on
// daemon/config/validator.go's ValidationResult/ValidationError pattern,
// trimmed to the two things this repository's ambient config actually
// needs to validate: a general config pointing at a readable profiles
// directory, and a profile record's interval ranges (internal/interval.
// Validate already enforces the canonical per-axis ranges; this package
// adds the record-level checks the HTTP layer is responsible for).
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"backupsdk/internal/profile"
)

// ValidationError reports one field-level problem, in the same
// Field/Value/Message shape.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for %q: %s (value: %v)", e.Field, e.Message, e.Value)
}

// Result accumulates validation errors the way daemon/config/
// validator.go's ValidationResult does, so HTTP handlers can report every
// problem at once instead of failing fast on the first one.
type Result struct {
	Valid  bool
	Errors []*ValidationError
}

// AddError records a field-level error and marks the result invalid.
func (r *Result) AddError(field string, value interface{}, message string) {
	r.Valid = false
	r.Errors = append(r.Errors, &ValidationError{Field: field, Value: value, Message: message})
}

func newResult() *Result { return &Result{Valid: true} }

// ValidateGeneralConfigDir reports whether dir exists, is a directory,
// and is writable.
func ValidateGeneralConfigDir(dir string) *Result {
	r := newResult()
	info, err := os.Stat(dir)
	if err != nil {
		r.AddError("profiles_dir", dir, "does not exist or is not readable")
		return r
	}
	if !info.IsDir() {
		r.AddError("profiles_dir", dir, "is not a directory")
		return r
	}
	if info.Mode().Perm()&0o200 == 0 {
		r.AddError("profiles_dir", dir, "is not writable")
	}
	return r
}

// ValidateProfileUpdate validates an incoming update: id and next_backup
// may not change, and the interval must validate against its canonical
// ranges.
func ValidateProfileUpdate(existing, incoming profile.Record) *Result {
	r := newResult()

	if existing.ID != incoming.ID {
		r.AddError("id", incoming.ID, "is immutable")
	}
	if !existing.NextBackup.Equal(incoming.NextBackup) {
		r.AddError("next_backup", incoming.NextBackup, "is immutable via this endpoint")
	}
	if incoming.Name == "" {
		r.AddError("name", incoming.Name, "must not be empty")
	}
	if incoming.TargetDir == "" {
		r.AddError("target_dir", incoming.TargetDir, "must not be empty")
	}
	if err := incoming.Interval.Validate(); err != nil {
		r.AddError("interval", nil, err.Error())
	}

	return r
}

// IntervalChanged reports whether incoming's interval differs from
// existing's — the trigger for the HTTP layer to spawn the
// out-of-process reschedule subcommand.
func IntervalChanged(existing, incoming profile.Record) bool {
	a, _ := json.Marshal(existing.Interval)
	b, _ := json.Marshal(incoming.Interval)
	return string(a) != string(b)
}
