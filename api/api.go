// Package api implements the HTTP control plane for managing backup
// profiles over their lifecycle, grounded on net/http.ServeMux style
// used across this repository's cmd/* and daemon code, and on
// original_source/server/src/api.rs's route list.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/exec"
	"time"

	"github.com/google/uuid"

	"backupsdk/internal/apperr"
	"backupsdk/internal/config"
	"backupsdk/internal/metrics"
	"backupsdk/internal/profile"
	"backupsdk/internal/store"
	"backupsdk/logger"
)

// Server hosts the profile management routes over a *store.Store.
type Server struct {
	Store      *store.Store
	Log        logger.Logger
	Executable string // this binary's path, used to spawn the reschedule subcommand
}

// New builds a Server and its *http.ServeMux.
func New(st *store.Store, log logger.Logger, executable string) *Server {
	return &Server{Store: st, Log: log, Executable: executable}
}

// Routes returns the ServeMux wired to the full profile control plane.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /profiles", s.instrument("/profiles", s.handleList))
	mux.HandleFunc("GET /profiles/name/{name}", s.instrument("/profiles/name/{name}", s.handleGetByName))
	mux.HandleFunc("GET /profiles/uuid/{id}", s.instrument("/profiles/uuid/{id}", s.handleGetByID))
	mux.HandleFunc("POST /profiles/create/{name}", s.instrument("/profiles/create/{name}", s.handleCreate))
	mux.HandleFunc("PUT /profiles/uuid/{id}", s.instrument("/profiles/uuid/{id}", s.handleUpdate))
	mux.HandleFunc("DELETE /profiles/name/{name}", s.instrument("/profiles/name/{name}", s.handleDeleteByName))
	mux.HandleFunc("DELETE /profiles/uuid/{id}", s.instrument("/profiles/uuid/{id}", s.handleDeleteByID))
	mux.HandleFunc("GET /profiles/config_dir", s.instrument("/profiles/config_dir", s.handleConfigDir))
	return mux
}

func (s *Server) instrument(route string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		h(sw, r)
		metrics.RecordAPIRequest(r.Method, route, fmt.Sprintf("%d", sw.status))
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	recs, err := s.Store.LoadAllLenient(func(id uuid.UUID, err error) {
		s.Log.Warn("skipping unreadable profile while listing", "profile_id", id.String(), "error", err)
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

func (s *Server) handleGetByName(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	rec, err := s.Store.LoadByName(name)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleGetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid id: %w", err))
		return
	}
	rec, err := s.Store.Load(id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if name == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("name must not be empty"))
		return
	}

	inUse, err := s.Store.NameInUse(name)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if inUse {
		writeError(w, http.StatusConflict, fmt.Errorf("a profile named %q already exists", name))
		return
	}

	rec := profile.New(name, time.Now())
	if err := s.Store.Store(rec); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid id: %w", err))
		return
	}

	var incoming profile.Record
	if err := json.NewDecoder(r.Body).Decode(&incoming); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decoding body: %w", err))
		return
	}

	existing, err := s.Store.Load(id)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	result := config.ValidateProfileUpdate(existing, incoming)
	if !result.Valid {
		writeValidationErrors(w, result)
		return
	}

	intervalChanged := config.IntervalChanged(existing, incoming)

	if err := s.Store.Store(incoming); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	if intervalChanged {
		s.spawnReschedule(id)
	}

	writeJSON(w, http.StatusOK, incoming)
}

func (s *Server) handleDeleteByName(w http.ResponseWriter, r *http.Request) {
	rec, err := s.Store.LoadByName(r.PathValue("name"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	s.deleteProfile(w, rec.ID)
}

func (s *Server) handleDeleteByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid id: %w", err))
		return
	}
	s.deleteProfile(w, id)
}

// deleteProfile spawns this binary's delete subcommand out-of-process so
// the full DeleteCoordinator sequence (unschedule, then delete) runs
// under the CLI's process rather than duplicating that state machine in
// the HTTP layer.
func (s *Server) deleteProfile(w http.ResponseWriter, id uuid.UUID) {
	if _, err := s.Store.Load(id); err != nil {
		writeStoreError(w, err)
		return
	}
	cmd := exec.Command(s.Executable, "delete", "--id", id.String())
	if err := cmd.Run(); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Errorf("delete subcommand: %w", err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleConfigDir(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"profiles_dir": s.Store.ProfilesDir})
}

func (s *Server) spawnReschedule(id uuid.UUID) {
	cmd := exec.Command(s.Executable, "reschedule", "--id", id.String())
	if err := cmd.Start(); err != nil {
		s.Log.Error("failed to spawn reschedule subcommand", "profile_id", id.String(), "error", err)
		return
	}
	go func() {
		if err := cmd.Wait(); err != nil {
			s.Log.Error("reschedule subcommand exited with error", "profile_id", id.String(), "error", err)
		}
	}()
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeValidationErrors(w http.ResponseWriter, result *config.Result) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"errors": result.Errors})
}

func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperr.ErrProfileNotFound):
		writeError(w, http.StatusNotFound, err)
	case errors.Is(err, apperr.ErrProfileCorrupt):
		writeError(w, http.StatusInternalServerError, err)
	default:
		writeError(w, http.StatusInternalServerError, err)
	}
}
