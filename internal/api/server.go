package api

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"

	"github.com/MikeSquared-Agency/lure/internal/intel"
	"github.com/MikeSquared-Agency/lure/internal/processor"
	"github.com/MikeSquared-Agency/lure/internal/session"
)

// Honeypot is the engine behind the HTTP surface.
type Honeypot interface {
	Respond(ctx context.Context, req processor.TurnRequest) (processor.TurnResponse, error)
	Session(sessionID string) (*session.Record, bool)
	Extract(text string) intel.Intel
	ActiveSessions() int
}

// SessionCounter reports totals from durable session storage.
type SessionCounter interface {
	CountSessions(ctx context.Context) (total, reported int, err error)
}

type Options struct {
	Port   int
	APIKey string
	// Debug mounts the /debug routes.
	Debug       bool
	CallbackURL string
	// Stored adds snapshot counts to the status route. May be nil.
	Stored SessionCounter
	// Bus reports the event bus connection on the status route. May be nil.
	Bus interface{ Connected() bool }
}

type Server struct {
	router *chi.Mux
	http   *http.Server
	opts   Options
	hp     Honeypot
	logger *slog.Logger
}

func NewServer(opts Options, hp Honeypot, logger *slog.Logger) *Server {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	s := &Server{
		router: router,
		opts:   opts,
		hp:     hp,
		logger: logger,
	}

	router.Get("/", s.health)
	router.Get("/health", s.health)
	router.Get("/api/v1/lure/status", s.status)

	router.Group(func(r chi.Router) {
		r.Use(s.requireAPIKey)
		r.Post("/honeypot", s.honeypot)

		if opts.Debug {
			r.Get("/debug/session/{sessionID}", s.debugSession)
			r.Post("/debug/extract", s.debugExtract)
		}
	})

	s.http = &http.Server{
		Addr:              fmt.Sprintf(":%d", opts.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Start blocks serving HTTP until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("API server starting", "addr", s.http.Addr, "debug", s.opts.Debug)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// requireAPIKey rejects requests whose x-api-key does not match. With no key
// configured every protected route is closed.
func (s *Server) requireAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got := r.Header.Get("x-api-key")
		if s.opts.APIKey == "" || subtle.ConstantTimeCompare([]byte(got), []byte(s.opts.APIKey)) != 1 {
			writeJSON(w, http.StatusUnauthorized, map[string]string{
				"status":    "error",
				"message":   "UNAUTHORIZED",
				"errorCode": "E401",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{
		"agent":    "lure",
		"status":   "active",
		"sessions": s.hp.ActiveSessions(),
	}
	if s.opts.Bus != nil {
		body["nats"] = s.opts.Bus.Connected()
	}
	if s.opts.Stored != nil {
		total, reported, err := s.opts.Stored.CountSessions(r.Context())
		if err != nil {
			s.logger.Warn("failed to count stored sessions", "error", err)
		} else {
			body["stored"] = total
			body["reported"] = reported
		}
	}
	writeJSON(w, http.StatusOK, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
