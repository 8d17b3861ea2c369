package web

// errors.go provides unified error response handling for the web layer.
//
// It ensures all errors are:
//   - Logged with full technical details for debugging (server-side)
//   - Returned to clients as user-friendly messages with action suggestions
//   - Formatted appropriately based on request type (HTMX, JSON, or HTML)
//
// The error flow:
//  1. Handler encounters an error
//  2. Calls respondError(w, r, err), or respondErrorStatus to force a status
//  3. Error is mapped via core.MapError to get user-friendly message
//  4. Technical error + context is logged with request ID for correlation
//  5. User message is rendered in appropriate format for the client

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/JonMunkholm/labelmerge/internal/core"
	"github.com/JonMunkholm/labelmerge/internal/logging"
	"github.com/JonMunkholm/labelmerge/internal/session"
	"github.com/JonMunkholm/labelmerge/internal/web/templates"
)

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error   string          `json:"error"`
	Message string          `json:"message"`
	Action  string          `json:"action,omitempty"`
	Code    string          `json:"code"`
	Issues  []core.RowIssue `json:"issues,omitempty"`
}

var (
	// errNoFile is returned when a multipart request has no "file" part.
	errNoFile = errors.New("no file provided")

	// errInvalidRequest marks a body or parameter the handler cannot use.
	errInvalidRequest = errors.New("invalid request")

	errRateLimited = errors.New("rate limit exceeded")
)

// statusFor picks the HTTP status for a pipeline or session error.
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrOversizedFile):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, core.ErrUnsupportedFile):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, core.ErrDelimiter),
		errors.Is(err, core.ErrEncoding),
		errors.Is(err, core.ErrNoColumns),
		errors.Is(err, core.ErrNoData):
		return http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrUnknownFormat),
		errors.Is(err, errNoFile),
		errors.Is(err, errInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrIncompleteMapping), errors.Is(err, session.ErrCannotAdvance):
		return http.StatusConflict
	case errors.Is(err, errRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, ErrIngestBusy):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// respondError answers with the status statusFor derives from err.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	s.respondErrorStatus(w, r, err, statusFor(err))
}

// respondErrorStatus handles error responses with user-friendly messages.
// It logs the technical error server-side and returns an appropriate response
// based on the request type (HTMX, JSON, or HTML).
func (s *Server) respondErrorStatus(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	userMsg := core.MapError(err)

	level := slog.LevelWarn
	if statusCode >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	logging.FromContext(r.Context()).Log(r.Context(), level, "request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", userMsg.Code,
	)

	if isHTMX(r) {
		renderErrorPartial(r.Context(), w, userMsg, statusCode)
	} else if wantsJSON(r) {
		respondErrorJSON(w, userMsg, rowIssues(err), statusCode)
	} else {
		respondErrorHTML(w, userMsg, statusCode)
	}
}

// respondErrorJSON writes a JSON error response.
func respondErrorJSON(w http.ResponseWriter, msg core.UserMessage, issues []core.RowIssue, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
		Issues:  issues,
	})
}

// respondErrorHTML writes a plain HTML error response.
func respondErrorHTML(w http.ResponseWriter, msg core.UserMessage, statusCode int) {
	http.Error(w, msg.Message+" ("+msg.Code+")", statusCode)
}

// renderErrorPartial renders an HTMX-compatible error fragment.
func renderErrorPartial(ctx context.Context, w http.ResponseWriter, msg core.UserMessage, statusCode int) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)

	if err := templates.ErrorAlert(msg.Message, msg.Action, msg.Code).Render(ctx, w); err != nil {
		slog.Warn("error fragment render failed", "error", err)
	}
}

// rowIssues exposes malformed-row details so the client can point at lines.
func rowIssues(err error) []core.RowIssue {
	var ie *core.IngestError
	if errors.As(err, &ie) {
		return ie.Issues
	}
	return nil
}

// isHTMX checks if the request is an HTMX request.
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// wantsJSON checks if the client prefers JSON response.
func wantsJSON(r *http.Request) bool {
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		return true
	}
	// API routes default to JSON
	return strings.HasPrefix(r.URL.Path, "/api/")
}
