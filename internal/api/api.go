package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/pfrederiksen/ff-events/internal/calendar"
	"github.com/pfrederiksen/ff-events/internal/event"
	"github.com/pfrederiksen/ff-events/internal/filter"
	"github.com/pfrederiksen/ff-events/internal/logger"
	"github.com/pfrederiksen/ff-events/internal/refresh"
	"github.com/pfrederiksen/ff-events/internal/storage"
)

// SnapshotService is the part of refresh.Service the API depends on
type SnapshotService interface {
	Load(ctx context.Context) (*event.Snapshot, error)
	EnsureSnapshot(ctx context.Context, trigger string) (*event.Snapshot, error)
	Refresh(ctx context.Context, trigger string) (*event.Snapshot, error)
}

// DocumentSource returns the snapshot document exactly as it was stored
type DocumentSource interface {
	Raw(ctx context.Context) ([]byte, error)
}

// Options configures the optional parts of the server
type Options struct {
	// Schedule is shown on the info page, e.g. "0 0 * * 0 (Asia/Bangkok)"
	Schedule string
	// Metrics is mounted on /metrics when set
	Metrics http.Handler
	// Document serves /weekly_ecocar.json as stored. Without it the
	// loaded snapshot is re-encoded.
	Document DocumentSource
}

// Server holds the routes and their dependencies
type Server struct {
	svc      SnapshotService
	schedule string
	document DocumentSource
	now      func() time.Time
	router   chi.Router
}

// New creates a Server and registers its routes
func New(svc SnapshotService, opts Options) *Server {
	s := &Server{
		svc:      svc,
		schedule: opts.Schedule,
		document: opts.Document,
		now:      time.Now,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleInfo)
	r.Get("/api/news", s.handleNews)
	r.Get("/"+storage.DefaultFileName, s.handleDocument)
	r.Get("/calendar.ics", s.handleCalendar)
	r.Get("/health", s.handleHealth)
	r.Get("/scrape-now", s.handleScrapeNow)
	r.Post("/scrape-now", s.handleScrapeNow)
	if opts.Metrics != nil {
		r.Handle("/metrics", opts.Metrics)
	}

	s.router = r
	return s
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type newsResponse struct {
	Success     bool           `json:"success"`
	Count       int            `json:"count"`
	Data        []*event.Event `json:"data"`
	LastUpdated *string        `json:"last_updated"`
}

type scrapeResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Count   int    `json:"count"`
}

type healthResponse struct {
	Status     string `json:"status"`
	FileExists bool   `json:"file_exists"`
	Timestamp  string `json:"timestamp"`
}

func (s *Server) handleInfo(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Forex Factory News Scraper Service",
		"endpoints": map[string]string{
			"/":                           "This info page",
			"/api/news":                   "Get weekly forex news data (JSON)",
			"/" + storage.DefaultFileName: "Direct file download",
			"/calendar.ics":               "Weekly events as an iCalendar feed",
			"/health":                     "Health check",
			"/scrape-now":                 "Run a scrape now",
		},
		"schedule": s.schedule,
	})
}

func (s *Server) handleNews(w http.ResponseWriter, r *http.Request) {
	f, err := filter.FromQuery(r.URL.Query(), s.now())
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Success: false, Error: err.Error()})
		return
	}
	snap, err := s.svc.EnsureSnapshot(r.Context(), refresh.TriggerLazy)
	if err != nil {
		writeError(w, err)
		return
	}
	events := f.Apply(snap.Events)
	if !f.IsEmpty() {
		logger.Debug("Filtered snapshot", logger.Fields{"filter": f.String(), "matched": len(events), "total": snap.Len()})
	}

	var lastUpdated *string
	if !snap.UpdatedAt.IsZero() {
		ts := snap.UpdatedAt.UTC().Format(time.RFC3339)
		lastUpdated = &ts
	}
	writeJSON(w, http.StatusOK, newsResponse{
		Success:     true,
		Count:       len(events),
		Data:        events,
		LastUpdated: lastUpdated,
	})
}

func (s *Server) handleDocument(w http.ResponseWriter, r *http.Request) {
	snap, err := s.svc.EnsureSnapshot(r.Context(), refresh.TriggerLazy)
	if err != nil {
		writeError(w, err)
		return
	}
	if !snap.UpdatedAt.IsZero() {
		w.Header().Set("Last-Modified", snap.UpdatedAt.UTC().Format(http.TimeFormat))
	}
	w.Header().Set("Content-Type", "application/json")

	if s.document != nil {
		raw, err := s.document.Raw(r.Context())
		if err == nil {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write(raw)
			return
		}
		logger.Warn("Stored document unreadable, re-encoding snapshot", logger.Fields{"error": err.Error()})
	}

	w.WriteHeader(http.StatusOK)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(snap.Events); err != nil {
		logger.Warn("Failed to write snapshot document", logger.Fields{"error": err.Error()})
	}
}

func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	f, err := filter.FromQuery(r.URL.Query(), s.now())
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Success: false, Error: err.Error()})
		return
	}
	snap, err := s.svc.EnsureSnapshot(r.Context(), refresh.TriggerLazy)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(calendar.GenerateFeed(f.Apply(snap.Events), calendar.DefaultCalendarName, snap.UpdatedAt)))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	_, err := s.svc.Load(ctx)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		logger.Warn("Health check could not read snapshot", logger.Fields{"error": err.Error()})
	}
	writeJSON(w, http.StatusOK, healthResponse{
		Status:     "healthy",
		FileExists: err == nil,
		Timestamp:  s.now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleScrapeNow(w http.ResponseWriter, r *http.Request) {
	snap, err := s.svc.Refresh(r.Context(), refresh.TriggerManual)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, scrapeResponse{
		Success: true,
		Message: "Scraping completed successfully",
		Count:   snap.Len(),
	})
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusInternalServerError, errorResponse{Success: false, Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Warn("Failed to write response", logger.Fields{"error": err.Error()})
	}
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		logger.Debug("HTTP request", logger.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"duration":   time.Since(start).String(),
			"request_id": middleware.GetReqID(r.Context()),
		})
	})
}
