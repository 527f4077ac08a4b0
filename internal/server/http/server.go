// Package httpserver exposes the notes JSON API over HTTP.
package httpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/and161185/notekeeper/internal/errs"
	"github.com/and161185/notekeeper/internal/model"
	"github.com/and161185/notekeeper/internal/service"
)

const maxBodyBytes = 1 << 20

// Pinger reports storage health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server wires services into HTTP handlers.
type Server struct {
	auth       service.AuthService
	notes      service.NoteService
	db         Pinger
	log        *zap.Logger
	corsOrigin string
}

// Option customizes a Server.
type Option func(*Server)

// WithPinger enables the storage check in /healthz.
func WithPinger(p Pinger) Option { return func(s *Server) { s.db = p } }

// WithCORSOrigin allows browser requests from origin.
func WithCORSOrigin(origin string) Option { return func(s *Server) { s.corsOrigin = origin } }

// New constructs an HTTP server with injected services.
func New(auth service.AuthService, notes service.NoteService, log *zap.Logger, opts ...Option) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{auth: auth, notes: notes, log: log}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Handler returns the routed handler with the middleware chain applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.health)

	mux.HandleFunc("POST /api/auth/register", s.register)
	mux.HandleFunc("POST /api/auth/login", s.login)

	protected := Auth(s.auth)
	mux.Handle("GET /api/notes", protected(http.HandlerFunc(s.listNotes)))
	mux.Handle("POST /api/notes", protected(http.HandlerFunc(s.createNote)))
	mux.Handle("GET /api/notes/{id}", protected(http.HandlerFunc(s.getNote)))
	mux.Handle("PUT /api/notes/{id}", protected(http.HandlerFunc(s.updateNote)))
	mux.Handle("DELETE /api/notes/{id}", protected(http.HandlerFunc(s.deleteNote)))

	return Chain(mux,
		Recover(s.log),
		RequestID(),
		Logging(s.log),
		CORS(s.corsOrigin),
	)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	if s.db != nil {
		if err := s.db.Ping(r.Context()); err != nil {
			s.log.Warn("health: storage unavailable", zap.Error(err))
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// --- Auth ---

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if !s.decode(w, r, &req) {
		return
	}
	sess, err := s.auth.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if !s.decode(w, r, &req) {
		return
	}
	sess, err := s.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

// --- Notes ---

func (s *Server) listNotes(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFromCtx(r.Context())
	q := r.URL.Query()
	f := model.NoteFilter{
		Search:  q.Get("search"),
		SortBy:  q.Get("sortBy"),
		SortDir: q.Get("sortDir"),
	}
	notes, err := s.notes.List(r.Context(), id.UserID, f)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, notes)
}

func (s *Server) getNote(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFromCtx(r.Context())
	noteID, ok := pathID(w, r)
	if !ok {
		return
	}
	n, err := s.notes.Get(r.Context(), id.UserID, noteID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (s *Server) createNote(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFromCtx(r.Context())
	var in model.NoteInput
	if !s.decode(w, r, &in) {
		return
	}
	n, err := s.notes.Create(r.Context(), id.UserID, in)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Location", fmt.Sprintf("/api/notes/%d", n.ID))
	writeJSON(w, http.StatusCreated, n)
}

func (s *Server) updateNote(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFromCtx(r.Context())
	noteID, ok := pathID(w, r)
	if !ok {
		return
	}
	var in model.NoteInput
	if !s.decode(w, r, &in) {
		return
	}
	n, err := s.notes.Update(r.Context(), id.UserID, noteID, in)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (s *Server) deleteNote(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFromCtx(r.Context())
	noteID, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.notes.Delete(r.Context(), id.UserID, noteID); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, errs.ErrValidation.Error()+": malformed json body")
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "bad id")
		return 0, false
	}
	return id, true
}
