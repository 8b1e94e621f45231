// Package api exposes wizard sessions over HTTP.
package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"loan-wizard/internal/common/logger"
	"loan-wizard/internal/common/metrics"
	"loan-wizard/internal/common/observability"
	"loan-wizard/internal/session"
	"loan-wizard/internal/wizard"
)

// Backend is everything the API needs from the loan backend for one caller.
type Backend interface {
	wizard.ApplicationService
	wizard.ApplicationReader
	wizard.DocumentOpener
}

// BackendFactory returns a backend that authenticates as token. token is
// the raw Authorization header value and may be empty.
type BackendFactory func(token string) Backend

type Handler struct {
	sessions  *session.Manager
	backend   BackendFactory
	listeners []wizard.SubmissionListener
	obs       *observability.Observability
	log       logger.Logger
	timeout   time.Duration
}

type Option func(*Handler)

func WithListener(l wizard.SubmissionListener) Option {
	return func(h *Handler) { h.listeners = append(h.listeners, l) }
}

func WithObservability(o *observability.Observability) Option {
	return func(h *Handler) { h.obs = o }
}

// WithRequestTimeout bounds every request. Submissions with many uploads
// need a generous value.
func WithRequestTimeout(d time.Duration) Option {
	return func(h *Handler) { h.timeout = d }
}

func NewHandler(sessions *session.Manager, backend BackendFactory, log logger.Logger, opts ...Option) *Handler {
	h := &Handler{
		sessions: sessions,
		backend:  backend,
		log:      log.WithFields(map[string]interface{}{"component": "wizard-api"}),
		timeout:  2 * time.Minute,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register mounts the wizard routes under /api/wizard.
func (h *Handler) Register(r chi.Router) {
	r.Route("/api/wizard", func(r chi.Router) {
		r.Use(middleware.RequestID)
		r.Use(middleware.Recoverer)
		r.Use(middleware.Timeout(h.timeout))
		r.Use(h.instrument)

		r.Post("/sessions", h.handleCreateSession)
		r.Route("/sessions/{sessionID}", func(r chi.Router) {
			r.Get("/", h.handleGetSession)
			r.Delete("/", h.handleDeleteSession)
			r.Patch("/fields", h.handleSetFields)
			r.Put("/same-address", h.handleSameAddress)
			r.Put("/documents/{slot}", h.handleAttach)
			r.Delete("/documents/{slot}", h.handleDetach)
			r.Get("/documents/{slot}", h.handlePreviewAttached)
			r.Post("/advance", h.handleAdvance)
			r.Post("/retreat", h.handleRetreat)
			r.Get("/review", h.handleReview)
			r.Post("/submit", h.handleSubmit)
		})
		r.Get("/documents/{documentID}", h.handlePreviewStored)
	})
}

// NewRouter returns a router with the wizard routes and a health probe.
func NewRouter(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	h.Register(r)
	return r
}

func (h *Handler) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unmatched"
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		metrics.HTTPRequestDuration.
			WithLabelValues(r.Method, route, strconv.Itoa(status)).
			Observe(time.Since(start).Seconds())
	})
}

// token returns the bearer credential of the caller, if any.
func token(r *http.Request) string {
	auth := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(auth) > 7 && strings.EqualFold(auth[:7], "bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return auth
}

func (h *Handler) requestLog(r *http.Request) logger.Logger {
	fields := map[string]interface{}{"requestId": middleware.GetReqID(r.Context())}
	if id := chi.URLParam(r, "sessionID"); id != "" {
		fields["sessionId"] = id
	}
	return h.log.WithFields(fields)
}
