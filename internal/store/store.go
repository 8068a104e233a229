// Package store implements profile persistence: one JSON file per
// profile, named <id>.json, under a directory named by a separate
// general-config file. Grounded on original_source/config/src/
// profile_config.rs (ProfileConfig::load/store) and global_config.rs
// (GeneralConfig::read/store), realized in Go with the fmt.Errorf("%w")
// wrapping idiom found in daemon/store/store.go.
//
// Writes are atomic (temp file + os.Rename in the same directory).
// WithLock runs a load-mutate-store sequence under an in-process,
// per-profile-ID advisory lock; the CLI's backup and reschedule paths use
// it. The HTTP control plane's handlers call Load and Store directly and
// do not take this lock.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"backupsdk/internal/apperr"
	"backupsdk/internal/profile"
)

// GeneralConfig holds the absolute path of the profiles directory.
type GeneralConfig struct {
	ProfilesDir string `json:"profiles_dir"`
}

// LoadGeneralConfig reads the general config file at path. Any failure
// (missing file, bad JSON, missing profiles_dir) is wrapped in
// apperr.ErrConfigUnavailable, a fatal, process-terminating error.
func LoadGeneralConfig(path string) (GeneralConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return GeneralConfig{}, fmt.Errorf("%w: reading %s: %v", apperr.ErrConfigUnavailable, path, err)
	}
	var cfg GeneralConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return GeneralConfig{}, fmt.Errorf("%w: parsing %s: %v", apperr.ErrConfigUnavailable, path, err)
	}
	if cfg.ProfilesDir == "" {
		return GeneralConfig{}, fmt.Errorf("%w: %s has no profiles_dir", apperr.ErrConfigUnavailable, path)
	}
	info, err := os.Stat(cfg.ProfilesDir)
	if err != nil || !info.IsDir() {
		return GeneralConfig{}, fmt.Errorf("%w: profiles_dir %s is not a readable directory", apperr.ErrConfigUnavailable, cfg.ProfilesDir)
	}
	return cfg, nil
}

// Store atomically persists ProfileRecords as <id>.json files under
// ProfilesDir, one in-process advisory lock per profile ID.
type Store struct {
	ProfilesDir string

	locksMu sync.Mutex
	locks   map[uuid.UUID]*sync.Mutex
}

// New builds a Store rooted at dir.
func New(dir string) *Store {
	return &Store{ProfilesDir: dir, locks: make(map[uuid.UUID]*sync.Mutex)}
}

func (s *Store) lockFor(id uuid.UUID) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	return l
}

func (s *Store) pathFor(id uuid.UUID) string {
	return filepath.Join(s.ProfilesDir, id.String()+".json")
}

// Load reads and deserializes the profile with the given id. A bad file
// is reported as apperr.ErrProfileCorrupt; a missing one as
// apperr.ErrProfileNotFound.
func (s *Store) Load(id uuid.UUID) (profile.Record, error) {
	data, err := os.ReadFile(s.pathFor(id))
	if err != nil {
		if os.IsNotExist(err) {
			return profile.Record{}, fmt.Errorf("%w: %s", apperr.ErrProfileNotFound, id)
		}
		return profile.Record{}, fmt.Errorf("%w: reading %s: %v", apperr.ErrProfileCorrupt, id, err)
	}
	var rec profile.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return profile.Record{}, fmt.Errorf("%w: parsing %s: %v", apperr.ErrProfileCorrupt, id, err)
	}
	return rec, nil
}

// Store writes rec to its <id>.json file via a temp-file-then-rename so
// readers never observe a partial write.
func (s *Store) Store(rec profile.Record) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("store: marshal profile %s: %w", rec.ID, err)
	}

	final := s.pathFor(rec.ID)
	tmp := final + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("store: write temp file for %s: %w", rec.ID, err)
	}
	if err := os.Rename(tmp, final); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("store: rename into place for %s: %w", rec.ID, err)
	}
	return nil
}

// Delete removes a profile's persisted record.
func (s *Store) Delete(id uuid.UUID) error {
	if err := os.Remove(s.pathFor(id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("store: delete profile %s: %w", id, err)
	}
	return nil
}

// WithLock runs fn while holding the advisory lock for id, loading the
// current record first and persisting whatever fn leaves in *rec
// afterward, unless fn returns an error. The lock only serializes callers
// of WithLock on the same Store within one process; plain Load/Store calls
// and other processes are not excluded by it.
func (s *Store) WithLock(id uuid.UUID, fn func(rec *profile.Record) error) error {
	lock := s.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	rec, err := s.Load(id)
	if err != nil {
		return err
	}
	if err := fn(&rec); err != nil {
		return err
	}
	return s.Store(rec)
}

// List lists every <uuid>.json entry in the profiles directory,
// regardless of readability; used by name/listing lookups that must
// enumerate ids first.
func (s *Store) List() ([]uuid.UUID, error) {
	entries, err := os.ReadDir(s.ProfilesDir)
	if err != nil {
		return nil, fmt.Errorf("store: reading profiles dir: %w", err)
	}
	var ids []uuid.UUID
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(name, ".json") {
			continue
		}
		id, err := uuid.Parse(strings.TrimSuffix(name, ".json"))
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids, nil
}

// LoadAllLenient loads every profile in the directory, skipping and
// logging (via the onSkip callback) any that fail to deserialize.
// Grounded on original_source/backupper/src/config.rs's
// soft_load_profile_configs, used by every CLI subcommand.
func (s *Store) LoadAllLenient(onSkip func(id uuid.UUID, err error)) ([]profile.Record, error) {
	ids, err := s.List()
	if err != nil {
		return nil, err
	}
	var out []profile.Record
	for _, id := range ids {
		rec, err := s.Load(id)
		if err != nil {
			if onSkip != nil {
				onSkip(id, err)
			}
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

// LoadByName returns the first profile (in ascending id order) whose
// name matches needle case-insensitively — the soft-unique-by-name
// treatment GET /profiles/name/{name} needs.
func (s *Store) LoadByName(needle string) (profile.Record, error) {
	ids, err := s.List()
	if err != nil {
		return profile.Record{}, err
	}
	lower := strings.ToLower(needle)
	for _, id := range ids {
		rec, err := s.Load(id)
		if err != nil {
			continue
		}
		if strings.ToLower(rec.Name) == lower {
			return rec, nil
		}
	}
	return profile.Record{}, fmt.Errorf("%w: name %q", apperr.ErrProfileNotFound, needle)
}

// NameInUse reports whether any existing profile has the given name,
// case-insensitively — the soft-unique check create-blank performs.
func (s *Store) NameInUse(name string) (bool, error) {
	_, err := s.LoadByName(name)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, apperr.ErrProfileNotFound) {
		return false, nil
	}
	return false, err
}
