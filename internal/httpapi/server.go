// Package httpapi exposes one rating session over HTTP. Every request that
// touches the session is serialized on a mutex.
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	m "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/storysense-dev/storysense/internal/dataset"
	"github.com/storysense-dev/storysense/internal/export"
	"github.com/storysense-dev/storysense/internal/log"
	"github.com/storysense-dev/storysense/internal/rating"
	"github.com/storysense-dev/storysense/internal/session"
	"github.com/storysense-dev/storysense/internal/workflow"
)

// maxDatasetBytes caps the POST /dataset body.
var maxDatasetBytes int64 = 32 << 20

// Server hosts a single rating session.
type Server struct {
	mu        sync.Mutex
	ctrl      *workflow.Controller
	publisher *export.Publisher
	events    *log.Logger
	logger    *zap.Logger
	validate  *validator.Validate
}

// NewServer returns a Server over ctrl. publisher and events may be nil.
func NewServer(ctrl *workflow.Controller, publisher *export.Publisher, events *log.Logger, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		ctrl:      ctrl,
		publisher: publisher,
		events:    events,
		logger:    logger,
		validate:  validator.New(),
	}
}

// HTTPServer wraps the routes in an *http.Server listening on addr.
func (s *Server) HTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(m.RequestID, m.RealIP, requestLogger(s.logger), m.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Group(func(r chi.Router) {
		r.Use(s.serialize)
		r.Post("/dataset", s.loadDataset)
		r.Get("/current", s.current)
		r.Post("/previous", s.previous)
		r.Post("/next", s.next)
		r.Post("/ratings", s.saveRating)
		r.Put("/rater", s.setRater)
		r.Get("/progress", s.progress)
		r.Get("/export", s.export)
	})

	return r
}

func (s *Server) serialize(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := m.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", m.GetReqID(r.Context())))
		})
	}
}

// ============================================================================
// Responses
// ============================================================================

type errResp struct {
	Error string `json:"error"`
	Phase string `json:"phase,omitempty"`
}

type loadResp struct {
	Stories int    `json:"stories"`
	Phase   string `json:"phase"`
}

type currentResp struct {
	Phase    string             `json:"phase"`
	Position int                `json:"position"`
	Total    int                `json:"total"`
	Story    *dataset.StoryCase `json:"story,omitempty"`
	Form     *rating.Record     `json:"form,omitempty"`
}

type saveResp struct {
	StoryID  string       `json:"story_id"`
	Advanced bool         `json:"advanced"`
	Progress progressResp `json:"progress"`
}

type progressResp struct {
	Rated    int     `json:"rated"`
	Total    int     `json:"total"`
	Fraction float64 `json:"fraction"`
}

type raterReq struct {
	Name string `json:"name" validate:"max=200"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func toProgress(p session.Progress) progressResp {
	return progressResp{Rated: p.Rated, Total: p.Total, Fraction: p.Fraction()}
}

// ============================================================================
// Handlers
// ============================================================================

func (s *Server) loadDataset(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxDatasetBytes))
	if err != nil {
		code := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			code = http.StatusRequestEntityTooLarge
		}
		writeJSON(w, code, errResp{Error: fmt.Sprintf("reading dataset: %v", err)})
		return
	}

	err = s.ctrl.Load(payload)
	phase := s.ctrl.Phase().String()
	switch {
	case errors.Is(err, workflow.ErrEmptyDataset):
		s.logEvent(log.LogEvent{Event: log.EventDatasetLoaded, Source: "http"})
		writeJSON(w, http.StatusUnprocessableEntity, errResp{Error: err.Error(), Phase: phase})
		return
	case err != nil:
		s.logEvent(log.LogEvent{Event: log.EventDatasetRejected, Source: "http", Error: err.Error()})
		s.logger.Warn("dataset rejected", zap.Error(err))
		writeJSON(w, http.StatusBadRequest, errResp{Error: err.Error(), Phase: phase})
		return
	}

	n := s.ctrl.Store().Dataset().Len()
	s.logEvent(log.LogEvent{Event: log.EventDatasetLoaded, Source: "http", Stories: n})
	s.logger.Info("dataset loaded", zap.Int("stories", n))
	writeJSON(w, http.StatusOK, loadResp{Stories: n, Phase: phase})
}

func (s *Server) currentState() currentResp {
	resp := currentResp{Phase: s.ctrl.Phase().String()}
	resp.Position, resp.Total = s.ctrl.Position()
	if sc, ok := s.ctrl.Current(); ok {
		form := s.ctrl.Form()
		resp.Story = &sc
		resp.Form = &form
	}
	return resp
}

func (s *Server) current(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.currentState())
}

func (s *Server) previous(w http.ResponseWriter, r *http.Request) {
	s.ctrl.Previous()
	writeJSON(w, http.StatusOK, s.currentState())
}

func (s *Server) next(w http.ResponseWriter, r *http.Request) {
	s.ctrl.Next()
	writeJSON(w, http.StatusOK, s.currentState())
}

func (s *Server) saveRating(w http.ResponseWriter, r *http.Request) {
	var rec rating.Record
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		writeJSON(w, http.StatusBadRequest, errResp{Error: fmt.Sprintf("decoding rating: %v", err)})
		return
	}
	if err := rec.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errResp{Error: err.Error()})
		return
	}

	res, err := s.ctrl.Save(rec)
	if errors.Is(err, workflow.ErrNoCurrentStory) {
		writeJSON(w, http.StatusConflict, errResp{Error: err.Error(), Phase: s.ctrl.Phase().String()})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errResp{Error: err.Error()})
		return
	}

	p := s.ctrl.Progress()
	s.logEvent(log.LogEvent{
		Event:   log.EventRatingSaved,
		StoryID: res.StoryID,
		Winner:  string(rec.Winner),
		Rated:   p.Rated,
		Total:   p.Total,
	})
	writeJSON(w, http.StatusOK, saveResp{StoryID: res.StoryID, Advanced: res.Advanced, Progress: toProgress(p)})
}

func (s *Server) setRater(w http.ResponseWriter, r *http.Request) {
	var req raterReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errResp{Error: fmt.Sprintf("decoding rater: %v", err)})
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, errResp{Error: err.Error()})
		return
	}
	s.ctrl.Store().SetRaterName(req.Name)
	writeJSON(w, http.StatusOK, map[string]string{"rater": s.ctrl.Export().Metadata.Rater})
}

func (s *Server) progress(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toProgress(s.ctrl.Progress()))
}

func (s *Server) export(w http.ResponseWriter, r *http.Request) {
	meta, data, err := export.Snapshot(s.ctrl.Store())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errResp{Error: err.Error()})
		return
	}

	if r.URL.Query().Get("publish") == "true" {
		if s.publisher == nil {
			writeJSON(w, http.StatusServiceUnavailable, errResp{Error: "no export destinations configured"})
			return
		}
		res, err := s.publisher.PublishData(r.Context(), meta, data)
		ev := log.LogEvent{Event: log.EventRatingsExported, Rated: meta.TotalRated, Targets: res.Targets}
		if err != nil {
			ev.Error = err.Error()
			s.logEvent(ev)
			s.logger.Error("export failed", zap.Error(err))
			writeJSON(w, http.StatusBadGateway, errResp{Error: err.Error()})
			return
		}
		s.logEvent(ev)
		w.Header().Set("X-Export-Targets", strings.Join(res.Targets, ","))
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="ratings.json"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) logEvent(ev log.LogEvent) {
	ev.SessionID = s.ctrl.Store().ID()
	ev.Rater = s.ctrl.Export().Metadata.Rater
	if err := s.events.Append(ev); err != nil {
		s.logger.Warn("event log write failed", zap.Error(err))
	}
}
