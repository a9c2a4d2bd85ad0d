package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"tableflip.dev/lifelog/pkg/alert"
	"tableflip.dev/lifelog/pkg/app"
	"tableflip.dev/lifelog/pkg/entry"
	"tableflip.dev/lifelog/pkg/lifecycle"
	"tableflip.dev/lifelog/pkg/timeutil"
)

func (s *Server) handleListLogs(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("category")
	if raw == "" {
		writeJSON(w, http.StatusOK, s.svc.Logs())
		return
	}
	cat, ok := categoryParam(w, raw)
	if !ok {
		return
	}
	entries, err := s.svc.LogsFor(cat)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleAddLog(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Category string `json:"category"`
		Activity string `json:"activity"`
		When     string `json:"when"`
		Date     string `json:"date"`
		Time     string `json:"time"`
	}
	if !decode(w, r, &req) {
		return
	}
	cat, ok := categoryParam(w, req.Category)
	if !ok {
		return
	}

	var (
		e   *entry.LogEntry
		err error
	)
	if req.When != "" {
		e, err = s.svc.AddLog(cat, req.Activity, req.When)
	} else {
		e, err = s.svc.AddLogAt(cat, req.Activity, req.Date, req.Time)
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if e == nil {
		writeError(w, http.StatusUnprocessableEntity, "activity is required and the date must be valid")
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

func (s *Server) handleDeleteLog(w http.ResponseWriter, r *http.Request) {
	cat, ok := categoryParam(w, chi.URLParam(r, "category"))
	if !ok {
		return
	}
	deleted, err := s.svc.DeleteLog(cat, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": deleted})
}

func (s *Server) handleListArchives(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Archives())
}

func (s *Server) handleArchiveNow(w http.ResponseWriter, r *http.Request) {
	it, err := s.svc.ArchiveNow()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, it)
}

func (s *Server) handleGetArchive(w http.ResponseWriter, r *http.Request) {
	it, err := s.svc.Archive(chi.URLParam(r, "id"))
	if errors.Is(err, app.ErrArchiveNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, it)
}

func (s *Server) handleRestoreArchive(w http.ResponseWriter, r *http.Request) {
	logs, err := s.svc.RestoreArchive(chi.URLParam(r, "id"))
	if errors.Is(err, app.ErrArchiveNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, logs)
}

func (s *Server) handleDeleteArchive(w http.ResponseWriter, r *http.Request) {
	deleted, err := s.svc.DeleteArchive(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": deleted})
}

func (s *Server) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	within := r.URL.Query().Get("within")
	if within == "" {
		writeJSON(w, http.StatusOK, s.svc.Alerts())
		return
	}
	window, _, err := timeutil.ParseWindow(within, 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	type upcoming struct {
		Category string `json:"category"`
		ID       string `json:"id"`
		Task     string `json:"task"`
		Deadline string `json:"deadline"`
	}
	list := s.svc.UpcomingAlerts(s.now(), window)
	out := make([]upcoming, len(list))
	for i, u := range list {
		out[i] = upcoming{
			Category: u.Category.String(),
			ID:       u.Alert.ID,
			Task:     u.Alert.Task,
			Deadline: u.Alert.Deadline,
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAddAlert(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Category string `json:"category"`
		Task     string `json:"task"`
		Deadline string `json:"deadline"`
		Date     string `json:"date"`
		Time     string `json:"time"`
	}
	if !decode(w, r, &req) {
		return
	}
	cat, ok := categoryParam(w, req.Category)
	if !ok {
		return
	}

	var (
		a   *alert.Alert
		err error
	)
	if req.Deadline != "" {
		a, err = s.svc.AddAlert(cat, req.Task, req.Deadline)
	} else {
		a, err = s.svc.AddAlertAt(cat, req.Task, req.Date, req.Time)
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if a == nil {
		writeError(w, http.StatusUnprocessableEntity, "task and a valid deadline are required")
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

func (s *Server) handleCompleteAlert(w http.ResponseWriter, r *http.Request) {
	cat, ok := categoryParam(w, chi.URLParam(r, "category"))
	if !ok {
		return
	}
	done, err := s.svc.CompleteAlert(cat, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"completed": done})
}

func (s *Server) handleDeleteAlert(w http.ResponseWriter, r *http.Request) {
	cat, ok := categoryParam(w, chi.URLParam(r, "category"))
	if !ok {
		return
	}
	deleted, err := s.svc.DeleteAlert(cat, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": deleted})
}

func (s *Server) handleOverdue(w http.ResponseWriter, r *http.Request) {
	keys := s.svc.OverdueCategories(s.now())
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = k.String()
	}
	writeJSON(w, http.StatusOK, map[string][]string{"categories": names})
}

// handleClean runs a whole clean in one request. mode "archive" snapshots
// first; mode "discard" needs confirm to carry the discard phrase.
func (s *Server) handleClean(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Mode    string `json:"mode"`
		Confirm string `json:"confirm"`
	}
	if !decode(w, r, &req) {
		return
	}
	mode := strings.ToLower(strings.TrimSpace(req.Mode))
	if mode != "archive" && mode != "discard" {
		writeError(w, http.StatusBadRequest, `mode must be "archive" or "discard"`)
		return
	}

	outcome, err := s.svc.RequestClean()
	if errors.Is(err, lifecycle.ErrInvalidTransition) {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if outcome == lifecycle.NothingToClean {
		writeJSON(w, http.StatusOK, map[string]string{"outcome": outcome.String()})
		return
	}
	defer func() {
		if s.svc.CleanState() != lifecycle.Idle {
			s.svc.CancelClean()
		}
	}()

	if mode == "archive" {
		if err := s.svc.ChooseArchiveThenClean(); err != nil {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		it, err := s.svc.ConfirmArchiveThenClean()
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"outcome": "archived", "archive": it.ID})
		return
	}

	if err := s.svc.ChooseCleanWithoutArchive(); err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	err = s.svc.ConfirmCleanWithoutArchive(req.Confirm)
	if errors.Is(err, lifecycle.ErrConfirmationMismatch) {
		writeError(w, http.StatusBadRequest, `confirm must be "`+lifecycle.DiscardPhrase+`"`)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"outcome": "discarded"})
}
