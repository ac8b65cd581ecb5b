package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/harun/askd/pkg/history"
	"github.com/harun/askd/pkg/prompt"
)

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

// handleAsk answers a question in the context of a session's prior
// turns and records the exchange.
func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request, logger zerolog.Logger) {
	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON in request body")
		s.metrics.RecordQuestion("validation_error")
		return
	}

	if req.Question == nil {
		writeError(w, http.StatusBadRequest, "Missing 'question' in request body")
		s.metrics.RecordQuestion("validation_error")
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = DefaultSessionID
	}

	question := *req.Question
	logger = logger.With().Str("sessionId", sessionID).Logger()
	logger.Info().Int("questionLength", len(question)).Msg("Received question")

	turns := s.store.GetOrCreate(sessionID)
	contextual := prompt.Build(turns, question)

	start := time.Now()
	answer, err := s.completions.Answer(r.Context(), contextual)
	s.metrics.ObserveProviderCall(s.completions.Name(), time.Since(start))

	if err != nil {
		logger.Error().Err(err).Msg("Completion provider call failed")
		s.metrics.RecordQuestion("provider_error")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// Recorded turn keeps the caller's original question, not the
	// context-expanded one.
	turn := history.Turn{
		Question:  question,
		Answer:    answer,
		Timestamp: time.Now().Format(time.RFC3339),
	}

	updated, trimmed := s.store.Append(sessionID, turn)
	s.metrics.AddTrimmed(trimmed)
	s.metrics.SetActiveSessions(s.store.Count())
	s.metrics.RecordQuestion("success")

	go s.broadcaster.Broadcast("question.answered", map[string]interface{}{
		"session_id": sessionID,
		"turns":      len(updated),
	})

	writeJSON(w, http.StatusOK, AskResponse{
		Answer:    answer,
		Status:    "success",
		SessionID: sessionID,
		History:   updated,
	})
}

// handleHistory returns a session's recorded turns without creating
// the session.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request, logger zerolog.Logger) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		sessionID = DefaultSessionID
	}

	if !s.store.Has(sessionID) {
		writeJSON(w, http.StatusOK, HistoryResponse{
			History:   []history.Turn{},
			Count:     0,
			SessionID: sessionID,
			Error:     fmt.Sprintf("No chat history found for session %s", sessionID),
		})
		return
	}

	turns := s.store.HistoryOf(sessionID)
	writeJSON(w, http.StatusOK, HistoryResponse{
		History:   turns,
		Count:     len(turns),
		SessionID: sessionID,
	})
}

// handleSessions lists every known session id.
func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request, logger zerolog.Logger) {
	sessions := s.store.ListSessions()
	writeJSON(w, http.StatusOK, SessionsResponse{
		Sessions: sessions,
		Count:    len(sessions),
	})
}

// handleGenerateSession mints a fresh session id without touching the
// store.
func (s *Server) handleGenerateSession(w http.ResponseWriter, r *http.Request, logger zerolog.Logger) {
	writeJSON(w, http.StatusOK, GenerateSessionResponse{
		SessionID: uuid.NewString(),
		Status:    "success",
	})
}

// handleClearAll drops every session and its history.
func (s *Server) handleClearAll(w http.ResponseWriter, r *http.Request, logger zerolog.Logger) {
	cleared := s.store.ClearAll()
	s.metrics.SetActiveSessions(0)
	logger.Info().Int("sessions", cleared).Msg("Cleared all chat history")

	go s.broadcaster.Broadcast("history.cleared", map[string]interface{}{
		"sessions": cleared,
	})

	writeJSON(w, http.StatusOK, ClearResponse{
		Message: fmt.Sprintf("Chat history cleared for all %d sessions", cleared),
		Status:  "success",
	})
}

// handleHealth reports liveness and basic counters.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request, logger zerolog.Logger) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Uptime:    time.Since(s.startTime).Seconds(),
		Sessions:  s.store.Count(),
		Timestamp: time.Now().UnixMilli(),
	})
}
