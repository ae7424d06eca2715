package api

import (
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"

	"github.com/MikeSquared-Agency/lure/internal/processor"
)

const maxBodyBytes = 1 << 20

// honeypot handles POST /honeypot. Bodies that cannot be used still get a
// 200 with a resend reply, never an error status.
func (s *Server) honeypot(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil || len(strings.TrimSpace(string(body))) == 0 {
		writeJSON(w, http.StatusOK, processor.ResendResponse())
		return
	}

	var req processor.TurnRequest
	if err := json.Unmarshal(body, &req); err != nil {
		s.logger.Debug("unusable honeypot body", "request_id", middleware.GetReqID(r.Context()), "error", err)
		writeJSON(w, http.StatusOK, processor.ResendResponse())
		return
	}

	resp, err := s.hp.Respond(r.Context(), req)
	if err != nil {
		s.logger.Error("turn failed", "session_id", req.SessionID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"status": "error", "message": "internal error"})
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) debugSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	rec, ok := s.hp.Session(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"session":         rec,
		"completed":       rec.Completed(),
		"shouldComplete":  rec.ShouldComplete(),
		"categoryCount":   rec.CategoryCount(),
		"callbackUrlUsed": s.opts.CallbackURL,
	})
}

func (s *Server) debugExtract(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	writeJSON(w, http.StatusOK, s.hp.Extract(strings.TrimSpace(req.Text)))
}
