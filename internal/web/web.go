package web

import (
	"context"
	"crypto/subtle"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"sync"
	"time"

	"careplan/internal/agenda"
	"careplan/internal/config"
	"careplan/internal/ics"
	appLog "careplan/internal/log"
	"careplan/internal/logbook"
	"careplan/internal/model"
	"careplan/internal/plan"
	"careplan/internal/schedule"
)

const (
	agendaCacheTTL = 30 * time.Second
	maxDays        = 62
	maxBodyBytes   = 64 << 10
)

//go:embed templates/*.html
var templateFS embed.FS

// PlanSource hands out the plan currently in effect. *plan.Store
// implements it.
type PlanSource interface {
	Current() *plan.Plan
	LoadedAt() time.Time
}

// CompletionLog persists completions recorded through the API.
// *logbook.Logbook implements it.
type CompletionLog interface {
	Record(ctx context.Context, e logbook.Entry) error
	List(ctx context.Context, since time.Time) ([]logbook.Entry, error)
	CompletedSet(ctx context.Context) (map[string]bool, error)
}

// Server serves the agenda as JSON, HTML and iCalendar.
type Server struct {
	cfg   *config.Config
	cal   schedule.Calendar
	loc   *time.Location
	plans PlanSource
	log   CompletionLog
	now   func() time.Time
	mux   *http.ServeMux
	tmpl  *template.Template

	// In-memory cache for agenda responses keyed by resolved query.
	// agendaGen counts invalidations so a build that raced one is not stored.
	agendaMu    sync.RWMutex
	agendaCache map[string]agendaCache
	agendaGen   uint64
}

type agendaCache struct {
	agenda    agenda.Agenda
	updatedAt time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithClock replaces time.Now, e.g. in tests.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// WithLogbook overlays completions from l on every agenda and enables
// /api/completions.
func WithLogbook(l CompletionLog) Option {
	return func(s *Server) { s.log = l }
}

// NewServer constructs a new Server.
func NewServer(cfg *config.Config, plans PlanSource, opts ...Option) *Server {
	s := &Server{
		cfg:         cfg,
		cal:         cfg.Calendar(),
		loc:         cfg.Location(),
		plans:       plans,
		now:         time.Now,
		mux:         http.NewServeMux(),
		tmpl:        template.Must(template.ParseFS(templateFS, "templates/*.html")),
		agendaCache: make(map[string]agendaCache),
	}
	for _, o := range opts {
		o(s)
	}
	s.registerRoutes()
	return s
}

// Handler returns the underlying http.Handler for this server.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		return s.basicAuthMiddleware(h)
	}
	return h
}

// InvalidateCache drops every cached agenda. Register it with
// plan.Store.OnReload so a new plan shows up immediately.
func (s *Server) InvalidateCache() {
	s.agendaMu.Lock()
	clear(s.agendaCache)
	s.agendaGen++
	s.agendaMu.Unlock()
	appLog.Debug("agenda cache invalidated")
}

func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	// Empty credentials disable auth rather than locking everyone out.
	return s.cfg.BasicAuth.Username != "" && s.cfg.BasicAuth.Password != ""
}

// basicAuthMiddleware wraps all handlers except /health with HTTP Basic Auth.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="careplan", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /api/agenda", s.handleAgenda)
	s.mux.HandleFunc("GET /api/greeting", s.handleGreeting)
	s.mux.HandleFunc("GET /api/completions", s.handleListCompletions)
	s.mux.HandleFunc("POST /api/completions", s.handleRecordCompletion)
	s.mux.HandleFunc("GET /calendar", s.handleCalendar)
	s.mux.HandleFunc("GET /calendar.ics", s.handleICS)
	s.mux.Handle("GET /{$}", http.RedirectHandler("/calendar", http.StatusFound))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// agendaQuery is the resolved form of ?days=&backfill=&date=.
type agendaQuery struct {
	days     int
	backfill int
	date     string
}

func (q agendaQuery) key() string {
	return fmt.Sprintf("%d/%d/%s", q.days, q.backfill, q.date)
}

func (s *Server) parseAgendaQuery(r *http.Request) (agendaQuery, error) {
	v := r.URL.Query()
	q := agendaQuery{
		days:     parseIntDefault(v.Get("days"), s.cfg.HorizonDays),
		backfill: parseIntDefault(v.Get("backfill"), s.cfg.BackfillDays),
		date:     v.Get("date"),
	}
	if q.days <= 0 {
		q.days = s.cfg.HorizonDays
	}
	q.days = min(q.days, maxDays)
	q.backfill = min(max(q.backfill, 0), maxDays)
	if q.date != "" {
		if _, err := schedule.ParseDayKey(q.date, s.loc); err != nil {
			return q, fmt.Errorf("date must be yyyy-mm-dd: %q", q.date)
		}
	}
	return q, nil
}

// reference returns the instant the agenda is built for: now, or now's
// clock time on the requested date.
func (s *Server) reference(q agendaQuery) time.Time {
	now := s.now().In(s.loc)
	if q.date == "" {
		return now
	}
	d, _ := schedule.ParseDayKey(q.date, s.loc)
	return time.Date(d.Year(), d.Month(), d.Day(), now.Hour(), now.Minute(), now.Second(), 0, s.loc)
}

// agendaFor builds, or serves from cache, the agenda for q.
func (s *Server) agendaFor(ctx context.Context, q agendaQuery) agenda.Agenda {
	key := q.key()
	cacheNow := s.now()

	s.agendaMu.RLock()
	c, ok := s.agendaCache[key]
	gen := s.agendaGen
	s.agendaMu.RUnlock()
	if ok && cacheNow.Sub(c.updatedAt) < agendaCacheTTL {
		return c.agenda
	}

	opts := agenda.Options{Days: q.days, Backfill: q.backfill}
	if s.log != nil {
		done, err := s.log.CompletedSet(ctx)
		if err != nil {
			// Serve the plan's own completions rather than failing the page.
			appLog.Error("failed to read logbook", err)
		}
		opts.Completed = done
	}
	a := agenda.Build(s.cal, s.plans.Current(), s.reference(q), opts)
	a.PlanLoadedAt = s.plans.LoadedAt()

	s.agendaMu.Lock()
	if s.agendaGen == gen {
		s.agendaCache[key] = agendaCache{agenda: a, updatedAt: cacheNow}
	}
	s.agendaMu.Unlock()

	appLog.Debug("agenda built",
		"days", q.days,
		"backfill", q.backfill,
		"range_start", a.RangeStart.Format(time.DateOnly),
		"range_end", a.RangeEnd.Format(time.DateOnly),
	)
	return a
}

// handleAgenda returns the per-day agenda.
//
// GET /api/agenda?days=7&backfill=1&date=2024-06-10
//   - days:     days shown from the reference day on (default horizon_days)
//   - backfill: past days shown before it (default backfill_days)
//   - date:     reference day; defaults to today in the configured timezone
func (s *Server) handleAgenda(w http.ResponseWriter, r *http.Request) {
	q, err := s.parseAgendaQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.agendaFor(r.Context(), q))
}

// handleListCompletions returns logbook entries recorded since a day.
//
// GET /api/completions?since=2024-06-03
//   - since: first day included; defaults to a week before today
func (s *Server) handleListCompletions(w http.ResponseWriter, r *http.Request) {
	if s.log == nil {
		writeError(w, http.StatusNotFound, "logbook is not configured")
		return
	}

	since := s.cal.StartOfDay(s.now().In(s.loc)).AddDate(0, 0, -7)
	if v := r.URL.Query().Get("since"); v != "" {
		d, err := schedule.ParseDayKey(v, s.loc)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("since must be yyyy-mm-dd: %q", v))
			return
		}
		since = d
	}

	entries, err := s.log.List(r.Context(), since)
	if err != nil {
		appLog.Error("failed to list completions", err)
		writeError(w, http.StatusInternalServerError, "failed to list completions")
		return
	}
	if entries == nil {
		entries = []logbook.Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

type completionRequest struct {
	ScheduleID string `json:"scheduleId"`
	SourceID   string `json:"sourceId"`
	Kind       string `json:"kind"`
	Completed  *bool  `json:"completed"`
	Comment    string `json:"comment"`
}

// handleRecordCompletion stores a completion in the logbook.
//
// POST /api/completions {"scheduleId": "...", "completed": true, "comment": ""}
// completed defaults to true; false clears an earlier completion.
func (s *Server) handleRecordCompletion(w http.ResponseWriter, r *http.Request) {
	if s.log == nil {
		writeError(w, http.StatusNotFound, "logbook is not configured")
		return
	}

	var req completionRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.ScheduleID == "" {
		writeError(w, http.StatusBadRequest, "scheduleId is required")
		return
	}

	e := logbook.Entry{
		ScheduleID: req.ScheduleID,
		SourceID:   req.SourceID,
		Kind:       model.ItemKind(req.Kind),
		Completed:  req.Completed == nil || *req.Completed,
		Comment:    req.Comment,
		RecordedAt: s.now(),
	}
	if err := s.log.Record(r.Context(), e); err != nil {
		appLog.Error("failed to record completion", err, "schedule_id", e.ScheduleID)
		writeError(w, http.StatusInternalServerError, "failed to record completion")
		return
	}
	s.InvalidateCache()

	appLog.Info("completion recorded", "schedule_id", e.ScheduleID, "completed", e.Completed)
	writeJSON(w, http.StatusOK, e)
}

type greetingResponse struct {
	Greeting string    `json:"greeting"`
	Bucket   string    `json:"bucket"`
	Time     time.Time `json:"time"`
}

func (s *Server) handleGreeting(w http.ResponseWriter, _ *http.Request) {
	now := s.now().In(s.loc)
	writeJSON(w, http.StatusOK, greetingResponse{
		Greeting: schedule.GreetingFor(now),
		Bucket:   schedule.BucketOf(now).String(),
		Time:     now,
	})
}

// handleCalendar renders the agenda page captured by the snapshot command.
// Its root element carries data-ready="true" once rendered.
func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	q, err := s.parseAgendaQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	a := s.agendaFor(r.Context(), q)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.ExecuteTemplate(w, "calendar.html", a); err != nil {
		appLog.Error("failed to render calendar page", err)
	}
}

// handleICS exports the agenda window as an iCalendar feed.
func (s *Server) handleICS(w http.ResponseWriter, r *http.Request) {
	q, err := s.parseAgendaQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	a := s.agendaFor(r.Context(), q)

	body := ics.Export(a.Items(), ics.ExportOptions{
		Calendar: s.cal,
		Name:     a.Patient,
		Stamp:    s.now(),
	})
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `inline; filename="careplan.ics"`)
	_, _ = w.Write([]byte(body))
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}
