package api

import (
	"time"

	"github.com/harun/askd/pkg/history"
)

// DefaultSessionID is used when a caller supplies no session id.
const DefaultSessionID = "default_session"

// ServerOptions configures the API server.
type ServerOptions struct {
	Host            string        // listen host (default: "0.0.0.0")
	Port            int           // listen port (default: 3000)
	ShutdownTimeout time.Duration // max wait for in-flight requests on Stop (default: 30s)
}

// AskRequest is the body of POST /ask. Question is a pointer so an
// absent field can be told apart from an empty string.
type AskRequest struct {
	Question  *string `json:"question"`
	SessionID string  `json:"session_id"`
}

// AskResponse is the success body of POST /ask.
type AskResponse struct {
	Answer    string         `json:"answer"`
	Status    string         `json:"status"`
	SessionID string         `json:"session_id"`
	History   []history.Turn `json:"history"`
}

// HistoryResponse is the body of GET /history. Error is informational
// for unknown sessions; the status code stays 200.
type HistoryResponse struct {
	History   []history.Turn `json:"history"`
	Count     int            `json:"count"`
	SessionID string         `json:"session_id"`
	Error     string         `json:"error,omitempty"`
}

// SessionsResponse is the body of GET /sessions.
type SessionsResponse struct {
	Sessions []string `json:"sessions"`
	Count    int      `json:"count"`
}

// GenerateSessionResponse is the body of GET /generate-session.
type GenerateSessionResponse struct {
	SessionID string `json:"session_id"`
	Status    string `json:"status"`
}

// ClearResponse is the body of POST /clear-all-history.
type ClearResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status    string  `json:"status"`
	Uptime    float64 `json:"uptime"`
	Sessions  int     `json:"sessions"`
	Timestamp int64   `json:"timestamp"`
}

// ErrorResponse is the JSON error body returned for every failure.
type ErrorResponse struct {
	Error string `json:"error"`
}

// EventMessage is the payload broadcast to websocket event clients.
type EventMessage struct {
	Type      string      `json:"type"`
	Event     string      `json:"event"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
	Seq       int64       `json:"seq"`
}
