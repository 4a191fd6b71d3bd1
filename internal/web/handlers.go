package web

import (
	"net/http"
	"strconv"

	"github.com/JonMunkholm/manifestnorm/internal/history"
	"github.com/JonMunkholm/manifestnorm/internal/logging"
	"github.com/JonMunkholm/manifestnorm/internal/manifest"
	"github.com/JonMunkholm/manifestnorm/internal/web/templates"
)

// StatusResponse reports engine readiness and processing capacity.
type StatusResponse struct {
	Engine     string                 `json:"engine"`
	Ready      bool                   `json:"ready"`
	Error      string                 `json:"error,omitempty"`
	Limiter    manifest.LimiterStatus `json:"limiter"`
	Sessions   int                    `json:"sessions"`
	NextNumber int                    `json:"next_number"`
}

// LayoutResponse describes one selectable layout.
type LayoutResponse struct {
	Kind  manifest.LayoutKind `json:"kind"`
	Label string              `json:"label"`
	Icon  string              `json:"icon"`
}

// handleIndex renders the upload page.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	runs, err := s.history.List(ctx, 10)
	if err != nil {
		// The page still works without history.
		logging.FromContext(ctx).Warn("history.list.failed", "error", err)
	}

	data := templates.IndexData{
		EngineState: s.pipeline.Readiness().State().String(),
		NextNumber:  s.exporter.Counter().Next(),
		Layouts:     layoutKinds(),
		Runs:        runs,
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.Index(data).Render(ctx, w); err != nil {
		logging.FromContext(ctx).Error("render index", "error", err)
	}
}

// handleStatus reports the readiness latch and limiter state.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	ready := s.pipeline.Readiness()
	resp := StatusResponse{
		Engine:     ready.State().String(),
		Ready:      ready.Ready(),
		Limiter:    s.limiter.Status(),
		Sessions:   s.sessions.len(),
		NextNumber: s.exporter.Counter().Next(),
	}
	if err := ready.Err(); err != nil {
		resp.Error = err.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleLayouts lists the layouts an operator may force.
func (s *Server) handleLayouts(w http.ResponseWriter, r *http.Request) {
	kinds := layoutKinds()
	resp := make([]LayoutResponse, len(kinds))
	for i, k := range kinds {
		resp[i] = LayoutResponse{Kind: k, Label: templates.LayoutLabel(k), Icon: templates.LayoutIcon(k)}
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleHistory lists recent processing runs, newest first.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := parseIntParam(r, "limit", history.DefaultListLimit)
	runs, err := s.history.List(r.Context(), limit)
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	if isHTMX(r) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		templates.HistoryTable(runs).Render(r.Context(), w)
		return
	}
	if runs == nil {
		runs = []history.Run{}
	}
	writeJSON(w, http.StatusOK, runs)
}

// handleCounter reports the export sequence.
func (s *Server) handleCounter(w http.ResponseWriter, r *http.Request) {
	c := s.exporter.Counter()
	writeJSON(w, http.StatusOK, map[string]int{"current": c.Current(), "next": c.Next()})
}

// handleCounterReset sets the export sequence back to zero.
func (s *Server) handleCounterReset(w http.ResponseWriter, r *http.Request) {
	if err := s.exporter.Counter().Reset(); err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	logging.FromContext(r.Context()).Info("counter.reset")
	writeJSON(w, http.StatusOK, map[string]int{"current": 0, "next": 1})
}

// layoutKinds returns the registered layouts in display order.
func layoutKinds() []manifest.LayoutKind {
	defs := manifest.Layouts()
	kinds := make([]manifest.LayoutKind, len(defs))
	for i, d := range defs {
		kinds[i] = d.Kind
	}
	return kinds
}

// parseIntParam parses a positive integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return defaultVal
	}
	return i
}
