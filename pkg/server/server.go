// Package server exposes the engine over a small JSON API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/robfig/cron/v3"

	"tableflip.dev/lifelog/pkg/app"
	"tableflip.dev/lifelog/pkg/category"
	"tableflip.dev/lifelog/pkg/schedule"
)

// Server is the lifelog HTTP API server.
type Server struct {
	svc     *app.Service
	router  chi.Router
	logger  *log.Logger
	version string
	started time.Time
	now     func() time.Time

	// Summary is the HH:MM at which a daily summary is logged. Empty
	// turns it off.
	Summary string
}

// New creates a Server on svc.
func New(svc *app.Service, version string, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		svc:     svc,
		logger:  logger,
		version: version,
		started: time.Now(),
		now:     time.Now,
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/categories", s.handleCategories)
		r.Get("/stats", s.handleStats)
		r.Get("/events", s.handleEvents)

		r.Get("/logs", s.handleListLogs)
		r.Post("/logs", s.handleAddLog)
		r.Delete("/logs/{category}/{id}", s.handleDeleteLog)

		r.Get("/archives", s.handleListArchives)
		r.Post("/archives", s.handleArchiveNow)
		r.Get("/archives/{id}", s.handleGetArchive)
		r.Post("/archives/{id}/restore", s.handleRestoreArchive)
		r.Delete("/archives/{id}", s.handleDeleteArchive)

		r.Get("/alerts", s.handleListAlerts)
		r.Post("/alerts", s.handleAddAlert)
		r.Post("/alerts/{category}/{id}/done", s.handleCompleteAlert)
		r.Delete("/alerts/{category}/{id}", s.handleDeleteAlert)
		r.Get("/overdue", s.handleOverdue)

		r.Post("/clean", s.handleClean)
	})

	s.router = r
}

// ListenAndServe serves on addr until ctx is done, logging overdue
// categories every interval.
func (s *Server) ListenAndServe(ctx context.Context, addr string, interval time.Duration) error {
	httpServer := &http.Server{
		Addr:    addr,
		Handler: s,
	}

	sched := schedule.New(nil)
	if interval > 0 {
		if _, err := sched.Every(interval, s.logOverdue); err != nil {
			return err
		}
	}
	var summary cron.EntryID
	if s.Summary != "" {
		id, err := sched.Daily(s.Summary, s.logSummary)
		if err != nil {
			return err
		}
		summary = id
	}
	sched.Start()
	defer sched.Stop()
	if summary != 0 {
		s.logger.Printf("daily summary at %s, next %s", s.Summary, sched.Next(summary).Format(time.RFC3339))
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Printf("serving on %s", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdown)
}

func (s *Server) logOverdue() {
	keys := s.svc.OverdueCategories(s.now())
	if len(keys) == 0 {
		return
	}
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = k.String()
	}
	s.logger.Printf("overdue: %s", strings.Join(names, ", "))
}

func (s *Server) logSummary() {
	st := s.svc.Stats(s.now())
	open := 0
	for _, c := range st.Categories {
		open += c.OpenAlerts
	}
	overdue := "none"
	if len(st.Overdue) > 0 {
		names := make([]string, len(st.Overdue))
		for i, k := range st.Overdue {
			names[i] = k.String()
		}
		overdue = strings.Join(names, ", ")
	}
	s.logger.Printf("summary: %d entries, %d open alerts, %d archives, overdue: %s",
		st.Entries, open, st.Archives, overdue)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
		"uptime":  time.Since(s.started).Seconds(),
		"clean":   s.svc.CleanState().String(),
	})
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	type view struct {
		Key   category.Key `json:"key"`
		Label string       `json:"label"`
		Color string       `json:"color"`
	}
	cats := s.svc.Categories()
	out := make([]view, len(cats))
	for i, c := range cats {
		out[i] = view{Key: c.Key, Label: c.Label, Color: c.Color}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Stats(s.now()))
}

// handleEvents streams change events as server-sent events until the
// client goes away.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}
	events := s.svc.Watch(r.Context())
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for ev := range events {
		raw, err := json.Marshal(ev)
		if err != nil {
			continue
		}
		if _, err := w.Write([]byte("data: " + string(raw) + "\n\n")); err != nil {
			return
		}
		flusher.Flush()
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return false
	}
	return true
}

// categoryParam resolves {category}, writing a 400 for unknown names.
func categoryParam(w http.ResponseWriter, raw string) (category.Key, bool) {
	k, err := category.Parse(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return "", false
	}
	return k, true
}
