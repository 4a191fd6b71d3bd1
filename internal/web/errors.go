package web

// errors.go provides unified error response handling for the web layer.
//
// The technical error is logged with the request ID; the client gets the
// mapped user message in the format it asked for (HTMX partial, JSON or
// plain text).

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/JonMunkholm/manifestnorm/internal/logging"
	"github.com/JonMunkholm/manifestnorm/internal/manifest"
	"github.com/JonMunkholm/manifestnorm/internal/web/templates"
)

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`

	// Columns lists the column names found in the file when a required
	// header or column was missing.
	Columns []string `json:"columns,omitempty"`
}

var (
	errNoFile         = errors.New("no file provided")
	errFileTooLarge   = errors.New("file too large or invalid form")
	errSessionMissing = errors.New("session not found or expired")
	errBadExtension   = errors.New("unsupported file type")
	errBadLayout      = errors.New("invalid layout")
)

// respondError logs err and writes the mapped user message.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	userMsg := manifest.MapError(err)
	columns := fileColumns(err)

	logging.FromContext(r.Context()).Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", userMsg.Code,
		"columns", columns,
	)

	switch {
	case isHTMX(r):
		renderErrorPartial(w, r, userMsg, columns, statusCode)
	case wantsJSON(r):
		respondErrorJSON(w, userMsg, columns, statusCode)
	default:
		text := userMsg.Message + " (" + userMsg.Code + ")"
		if len(columns) > 0 {
			text += "\nColumns in file: [" + strings.Join(columns, ", ") + "]"
		}
		http.Error(w, text, statusCode)
	}
}

// fileColumns returns the columns an extractor saw before failing, if any.
func fileColumns(err error) []string {
	var ext *manifest.ExtractionError
	if errors.As(err, &ext) {
		return ext.Columns
	}
	return nil
}

// statusFor picks the HTTP status of a pipeline error.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, errNoFile), errors.Is(err, errBadExtension), errors.Is(err, errBadLayout):
		return http.StatusBadRequest
	case errors.Is(err, manifest.ErrTooManyFiles):
		return http.StatusServiceUnavailable
	case manifest.IsPending(err), errors.Is(err, manifest.ErrEngineNotReady):
		return http.StatusServiceUnavailable
	case errors.Is(err, manifest.ErrUnknownLayout), errors.Is(err, manifest.ErrUnreadableContent),
		errors.Is(err, manifest.ErrNoExtractor):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	var ext *manifest.ExtractionError
	if errors.As(err, &ext) {
		return http.StatusUnprocessableEntity
	}
	var rd *manifest.ReadError
	if errors.As(err, &rd) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// respondErrorJSON writes a JSON error response.
func respondErrorJSON(w http.ResponseWriter, msg manifest.UserMessage, columns []string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
		Columns: columns,
	})
}

// renderErrorPartial renders an HTMX-compatible error fragment.
func renderErrorPartial(w http.ResponseWriter, r *http.Request, msg manifest.UserMessage, columns []string, statusCode int) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	// htmx ignores non-2xx bodies unless told to swap them.
	w.Header().Set("HX-Reswap", "innerHTML")
	w.WriteHeader(statusCode)
	templates.ErrorAlert(msg.Message, msg.Action, msg.Code, columns).Render(r.Context(), w)
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
	// API routes default to JSON
	return strings.HasPrefix(r.URL.Path, "/api/")
}
