// Package httpapi exposes the chat mirror protocol over HTTP+JSON.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/and161185/o1chat/internal/api"
	"github.com/and161185/o1chat/internal/errs"
	"github.com/and161185/o1chat/internal/limiter"
	"github.com/and161185/o1chat/internal/repository"
)

// maxRequestBody caps decoded request bodies.
const maxRequestBody = 1 << 20

// Server wires repositories into HTTP handlers.
type Server struct {
	users    repository.UserRepository
	messages repository.MessageRepository
	limit    limiter.Limiter
	log      *zap.Logger
}

// New constructs a handler set with injected repositories.
func New(users repository.UserRepository, messages repository.MessageRepository, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{users: users, messages: messages, log: log}
}

// WithLimiter throttles every client by remote address.
func (s *Server) WithLimiter(l limiter.Limiter) *Server {
	s.limit = l
	return s
}

// Router returns the routed handler with recovery, access logging and
// optional throttling.
func (s *Server) Router() http.Handler {
	r := mux.NewRouter()
	r.Use(Recover(s.log), Logging(s.log))
	if s.limit != nil {
		r.Use(RateLimit(s.limit, s.log))
	}

	r.Methods(http.MethodPost).Path(api.PathRegister).HandlerFunc(s.register)
	r.Methods(http.MethodGet).Path(api.PathUsers).HandlerFunc(s.listUsers)
	r.Methods(http.MethodGet).Path(api.PathMessages).HandlerFunc(s.fetchMessages)
	r.Methods(http.MethodPost).Path(api.PathSend).HandlerFunc(s.send)
	return r
}

type statusResponse struct {
	Status string `json:"status"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// register adds a username. Known names succeed again, since clients use it as login.
func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req api.RegisterRequest
	if err := decode(w, r, &req); err != nil {
		s.fail(w, err)
		return
	}
	name := strings.TrimSpace(req.Username)
	if name == "" {
		s.fail(w, errs.ErrValidation)
		return
	}
	if err := s.users.Register(r.Context(), name); err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: "ok"})
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.users.List(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, api.UsersResponse{Users: users})
}

func (s *Server) fetchMessages(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	u1, u2 := q.Get(api.QueryUser1), q.Get(api.QueryUser2)
	if u1 == "" || u2 == "" {
		s.fail(w, errs.ErrValidation)
		return
	}
	msgs, err := s.messages.Conversation(r.Context(), u1, u2)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, api.MessagesResponse{Messages: api.ToWireMessages(msgs)})
}

func (s *Server) send(w http.ResponseWriter, r *http.Request) {
	var req api.SendRequest
	if err := decode(w, r, &req); err != nil {
		s.fail(w, err)
		return
	}
	m, err := api.FromSendRequest(req)
	if err != nil {
		s.fail(w, err)
		return
	}
	if err := s.messages.Append(r.Context(), m); err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: "ok"})
}

// fail maps validation errors to 400 and everything else to 500.
func (s *Server) fail(w http.ResponseWriter, err error) {
	if errors.Is(err, errs.ErrValidation) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	s.log.Error("storage", zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal"})
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err := dec.Decode(v); err != nil {
		return errors.Join(errs.ErrValidation, err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
