package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/JonMunkholm/manifestnorm/internal/export"
	"github.com/JonMunkholm/manifestnorm/internal/logging"
	"github.com/JonMunkholm/manifestnorm/internal/web/templates"
)

// defaultFormat is the export format of saves that do not name one.
const defaultFormat = export.FormatCSV

var contentTypes = map[export.Format]string{
	export.FormatCSV:  "text/csv; charset=utf-8",
	export.FormatXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

// sessionFromRequest resolves the {sessionID} URL parameter.
func (s *Server) sessionFromRequest(r *http.Request) (uuid.UUID, session, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "sessionID"))
	if err != nil {
		return uuid.Nil, session{}, false
	}
	sess, ok := s.sessions.get(id)
	return id, sess, ok
}

// parseFormat maps a format name to an export.Format.
func parseFormat(name string) (export.Format, bool) {
	f := export.Format(name)
	_, ok := contentTypes[f]
	return f, ok
}

// handleSession returns the processed table of a session.
func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	_, sess, ok := s.sessionFromRequest(r)
	if !ok {
		s.respondError(w, r, errSessionMissing, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, sess.table)
}

// handleDownload streams the session table as csv or xlsx. Downloads do
// not advance the export counter.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	_, sess, ok := s.sessionFromRequest(r)
	if !ok {
		s.respondError(w, r, errSessionMissing, http.StatusNotFound)
		return
	}
	format, ok := parseFormat(chi.URLParam(r, "format"))
	if !ok {
		s.respondError(w, r, export.ErrUnsupportedFormat, http.StatusBadRequest)
		return
	}

	buf, err := export.Render(sess.table, format)
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	name := s.exporter.NextName(sess.table.Source, format)
	w.Header().Set("Content-Type", contentTypes[format])
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}

// handleSave writes the session table into the output directory, advances
// the counter and ends the session.
func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	id, sess, ok := s.sessionFromRequest(r)
	if !ok {
		s.respondError(w, r, errSessionMissing, http.StatusNotFound)
		return
	}
	format := defaultFormat
	if name := r.URL.Query().Get("format"); name != "" {
		if format, ok = parseFormat(name); !ok {
			s.respondError(w, r, export.ErrUnsupportedFormat, http.StatusBadRequest)
			return
		}
	}

	saved, err := s.exporter.Save(sess.table, format)
	if err != nil {
		status := http.StatusInternalServerError
		if sess.table.Empty() {
			status = http.StatusUnprocessableEntity
		}
		s.respondError(w, r, err, status)
		return
	}
	s.sessions.remove(id)
	logging.FromContext(r.Context()).Info("session.saved", "session", id, "file", saved.Name, "number", saved.Number)

	if isHTMX(r) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		templates.Saved(saved.Name, saved.Path, saved.Number).Render(r.Context(), w)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

// handleDiscard drops a session without saving.
func (s *Server) handleDiscard(w http.ResponseWriter, r *http.Request) {
	id, _, ok := s.sessionFromRequest(r)
	if !ok || !s.sessions.remove(id) {
		s.respondError(w, r, errSessionMissing, http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
