// Package http exposes the render service and the user/inbox stores over HTTP.
package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/quill/internal/logging"
	"github.com/aretw0/quill/pkg/domain"
	"github.com/aretw0/quill/pkg/ports"
	"github.com/aretw0/quill/pkg/render"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	defaultName           = "guest"
	defaultRequestTimeout = 3 * time.Second
	serverErrorBody       = "Server Error"
)

// Config wires the handler to its collaborators.
type Config struct {
	Views  *render.Views
	Users  ports.UserRepository
	Inbox  ports.InboxRepository
	KV     ports.KeyValueStore
	Logger *slog.Logger

	// Gatherer backs /metrics; nil disables the route.
	Gatherer prometheus.Gatherer

	// Shutdown is called by /admin/shutdown; nil disables the route.
	Shutdown func()

	RequestTimeout time.Duration
}

// Server holds the HTTP handlers.
type Server struct {
	views    *render.Views
	users    ports.UserRepository
	inbox    ports.InboxRepository
	kv       ports.KeyValueStore
	logger   *slog.Logger
	shutdown func()
}

// NewHandler builds the router.
func NewHandler(cfg Config) http.Handler {
	s := &Server{
		views:    cfg.Views,
		users:    cfg.Users,
		inbox:    cfg.Inbox,
		kv:       cfg.KV,
		logger:   cfg.Logger,
		shutdown: cfg.Shutdown,
	}
	if s.logger == nil {
		s.logger = logging.NewNop()
	}

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Get("/health", s.GetHealth)
	if cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}
	if s.shutdown != nil {
		r.Get("/admin/shutdown", s.AdminShutdown)
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(timeout))

		r.Get("/", s.Index)

		r.Get("/users", s.ListUsers)
		r.Get("/add-user", s.AddUser)
		r.Get("/update-user/{id}", s.UpdateUser)
		r.Get("/delete-user/{id}", s.DeleteUser)

		r.Get("/email-inbox/list", s.ListInbox)
		r.Get("/email-inbox/delete-all", s.DeleteAllInbox)
		r.Post("/email-inbox", s.ReceiveInbox)

		r.Get("/test-redis", s.TestRedis)
	})

	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Index handles GET /: it records the visitor and renders the user list inside the layout.
func (s *Server) Index(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		name = defaultName
	}

	if _, err := s.users.AddUser(r.Context(), name); err != nil {
		s.serverError(w, r, "Index: add user failed", err)
		return
	}
	users, err := s.users.QueryUsers(r.Context(), name)
	if err != nil {
		s.serverError(w, r, "Index: query users failed", err)
		return
	}

	html, err := s.views.Page(r.Context(), "layout.html", "index.html", map[string]any{
		"title": "Home",
		"name":  name,
		"users": users,
	})
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	writeHTML(w, html)
}

// ListUsers handles GET /users.
func (s *Server) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.users.QueryUsers(r.Context(), r.URL.Query().Get("name"))
	if err != nil {
		s.serverError(w, r, "ListUsers failed", err)
		return
	}
	writeJSON(w, s.logger, users)
}

// AddUser handles GET /add-user?name=.
func (s *Server) AddUser(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}
	if _, err := s.users.AddUser(r.Context(), name); err != nil {
		s.serverError(w, r, "AddUser failed", err)
		return
	}
	writeText(w, "rows affected : 1")
}

// UpdateUser handles GET /update-user/{id}?name=.
func (s *Server) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(w, r)
	if !ok {
		return
	}
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}

	n, err := s.users.UpdateUser(r.Context(), id, name)
	if errors.Is(err, domain.ErrUserNotFound) {
		http.Error(w, "user not found", http.StatusNotFound)
		return
	}
	if err != nil {
		s.serverError(w, r, "UpdateUser failed", err)
		return
	}
	writeText(w, fmt.Sprintf("rows affected : %d", n))
}

// DeleteUser handles GET /delete-user/{id}.
func (s *Server) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(w, r)
	if !ok {
		return
	}
	n, err := s.users.DeleteUser(r.Context(), id)
	if err != nil {
		s.serverError(w, r, "DeleteUser failed", err)
		return
	}
	writeText(w, fmt.Sprintf("rows affected : %d", n))
}

// ListInbox handles GET /email-inbox/list.
func (s *Server) ListInbox(w http.ResponseWriter, r *http.Request) {
	messages, err := s.inbox.ListInbox(r.Context())
	if err != nil {
		s.serverError(w, r, "ListInbox failed", err)
		return
	}

	html, err := s.views.Fragment(r.Context(), "email_inbox/list.html", map[string]any{
		"messages": messages,
	})
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	writeHTML(w, html)
}

// DeleteAllInbox handles GET /email-inbox/delete-all.
func (s *Server) DeleteAllInbox(w http.ResponseWriter, r *http.Request) {
	n, err := s.inbox.DeleteAllInbox(r.Context())
	if err != nil {
		s.serverError(w, r, "DeleteAllInbox failed", err)
		return
	}
	writeText(w, fmt.Sprintf("delete count : %d", n))
}

// ReceiveInbox handles POST /email-inbox with a JSON message body.
func (s *Server) ReceiveInbox(w http.ResponseWriter, r *http.Request) {
	var msg domain.InboxMessage
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&msg); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("ReceiveInbox: invalid request body", "err", err)
		return
	}
	if msg.FromMail == "" || msg.ToMail == "" {
		http.Error(w, "from_mail and to_mail are required", http.StatusBadRequest)
		return
	}

	id, err := s.inbox.InsertInbox(r.Context(), msg)
	if err != nil {
		s.serverError(w, r, "ReceiveInbox failed", err)
		return
	}
	s.logger.Info("email received", "id", id, "from", msg.FromMail, "subject", msg.Subject)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(map[string]int64{"id": id}); err != nil {
		s.logger.Error("ReceiveInbox response encode failed", "err", err)
	}
}

// TestRedis handles GET /test-redis: writes testkey and returns what is read back.
func (s *Server) TestRedis(w http.ResponseWriter, r *http.Request) {
	if err := s.kv.Set(r.Context(), "testkey", "testval", 0); err != nil {
		s.serverError(w, r, "TestRedis: set failed", err)
		return
	}
	val, err := s.kv.Get(r.Context(), "testkey")
	if err != nil {
		s.serverError(w, r, "TestRedis: get failed", err)
		return
	}
	writeText(w, val)
}

// GetHealth handles GET /health. It reports 503 once the render worker has stopped.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	svc := s.views.Service()
	status, code := "ok", http.StatusOK
	select {
	case <-svc.Done():
		status, code = "render worker stopped", http.StatusServiceUnavailable
	default:
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]any{
		"status":  status,
		"engine":  svc.Engine(),
		"pending": svc.Pending(),
	})
}

// AdminShutdown handles GET /admin/shutdown.
func (s *Server) AdminShutdown(w http.ResponseWriter, r *http.Request) {
	s.logger.Info("shutdown requested over http", "remote", r.RemoteAddr)
	writeText(w, "shutting down")
	s.shutdown()
}

// renderError maps any render failure to a generic 500 and logs the cause.
func (s *Server) renderError(w http.ResponseWriter, r *http.Request, err error) {
	s.serverError(w, r, "render failed", err)
}

func (s *Server) serverError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	s.logger.Error(msg,
		"path", r.URL.Path,
		"request_id", middleware.GetReqID(r.Context()),
		"kind", domain.KindOf(err),
		"err", err,
	)
	http.Error(w, serverErrorBody, http.StatusInternalServerError)
}

func userID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid user id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func writeHTML(w http.ResponseWriter, html string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(html))
}

func writeText(w http.ResponseWriter, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(text))
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("response encode failed", "err", err)
	}
}
