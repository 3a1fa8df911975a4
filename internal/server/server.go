// Package server exposes a read API over the wiki service.
//
// Cached data is visible to one authenticated principal only, so the server
// partitions by session: each bearer token gets its own wiki.Service with
// its own tiers, and idle sessions are evicted with their caches. Tokens
// never share a cache.
package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/BenDol/GithubWiki-sub000/pkg/errors"
	"github.com/BenDol/GithubWiki-sub000/pkg/wiki"
)

// ServiceFactory builds a wiki.Service for one session's token.
type ServiceFactory func(ctx context.Context, token string) (*wiki.Service, error)

// Server is the HTTP API server.
type Server struct {
	router   chi.Router
	sessions *sessionMap
	logger   *log.Logger
}

// New creates a server. factory is called once per new session token;
// idleTimeout bounds how long an unused session keeps its caches.
func New(factory ServiceFactory, idleTimeout time.Duration, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	s := &Server{
		sessions: newSessionMap(factory, idleTimeout),
		logger:   logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Use(s.requireSession)
		r.Get("/cache/stats", s.handleCacheStats)
		r.Route("/{owner}/{repo}", func(r chi.Router) {
			r.Get("/page", s.handlePage)
			r.Get("/permission/{login}", s.handlePermission)
			r.Get("/pulls/{login}", s.handlePulls)
		})
	})
	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close tears down every session and its caches.
func (s *Server) Close() error {
	return s.sessions.closeAll()
}

type ctxKey int

const serviceKey ctxKey = 0

// requireSession resolves the bearer token to its session service.
func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		svc, err := s.sessions.get(r.Context(), token)
		if err != nil {
			s.logger.Error("session init failed", "err", err)
			writeError(w, http.StatusInternalServerError, "session initialization failed")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), serviceKey, svc)))
	})
}

func serviceFrom(r *http.Request) *wiki.Service {
	return r.Context().Value(serviceKey).(*wiki.Service)
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(h, "Bearer ")
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	owner := chi.URLParam(r, "owner")
	repo := chi.URLParam(r, "repo")
	path := r.URL.Query().Get("path")
	ref := r.URL.Query().Get("ref")

	page, err := serviceFrom(r).PageContent(r.Context(), owner, repo, path, ref)
	if err != nil {
		s.writeAPIError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (s *Server) handlePermission(w http.ResponseWriter, r *http.Request) {
	owner := chi.URLParam(r, "owner")
	repo := chi.URLParam(r, "repo")
	login := chi.URLParam(r, "login")

	perm, err := serviceFrom(r).Permission(r.Context(), owner, repo, login)
	if err != nil {
		s.writeAPIError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, perm)
}

func (s *Server) handlePulls(w http.ResponseWriter, r *http.Request) {
	owner := chi.URLParam(r, "owner")
	repo := chi.URLParam(r, "repo")
	login := chi.URLParam(r, "login")

	page, perPage := queryInt(r, "page", 1), queryInt(r, "per_page", 30)
	pulls, err := serviceFrom(r).UserPullRequests(r.Context(), owner, repo, login, page, perPage)
	if err != nil {
		s.writeAPIError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pulls)
}

func (s *Server) handleCacheStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, serviceFrom(r).Stats())
}

// writeAPIError maps the error taxonomy onto HTTP statuses, preserving the
// user-facing message.
func (s *Server) writeAPIError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch errors.GetCode(err) {
	case errors.ErrCodeNotFound, errors.ErrCodePageNotFound, errors.ErrCodeUserNotFound:
		status = http.StatusNotFound
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidRepo, errors.ErrCodeInvalidPath, errors.ErrCodeInvalidLogin:
		status = http.StatusBadRequest
	case errors.ErrCodeRateLimited:
		status = http.StatusTooManyRequests
	case errors.ErrCodeUnauthorized:
		status = http.StatusUnauthorized
	case errors.ErrCodeForbidden:
		status = http.StatusForbidden
	case errors.ErrCodeConflict:
		status = http.StatusConflict
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	}
	writeError(w, status, errors.UserMessage(err))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func queryInt(r *http.Request, key string, fallback int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
