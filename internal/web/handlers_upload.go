package web

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/JonMunkholm/manifestnorm/internal/history"
	"github.com/JonMunkholm/manifestnorm/internal/logging"
	"github.com/JonMunkholm/manifestnorm/internal/manifest"
	"github.com/JonMunkholm/manifestnorm/internal/web/templates"
)

// multipartMemory is how much of a form is buffered before spilling to disk.
const multipartMemory = 8 << 20

// upload is a received file stored under a private temp directory with
// its original base name, so filename rules still apply.
type upload struct {
	name string
	path string
	dir  string
}

func (u *upload) cleanup() {
	os.RemoveAll(u.dir)
}

// ClassifyResponse is the result of POST /api/classify.
type ClassifyResponse struct {
	File   string              `json:"file"`
	Layout manifest.LayoutKind `json:"layout"`
	Label  string              `json:"label"`
}

// ProcessResponse is the result of POST /api/process.
type ProcessResponse struct {
	SessionID string              `json:"session_id"`
	Source    string              `json:"source"`
	Layout    manifest.LayoutKind `json:"layout"`
	Label     string              `json:"label"`
	Rows      int                 `json:"rows"`
	NextName  string              `json:"next_name"`
	Records   []manifest.Record   `json:"records"`
}

// receiveUpload stores the multipart "file" field on disk.
func (s *Server) receiveUpload(w http.ResponseWriter, r *http.Request) (*upload, error) {
	maxSize := s.cfg.Processing.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return nil, errFileTooLarge
		}
		if errors.Is(err, http.ErrNotMultipart) || errors.Is(err, http.ErrMissingFile) {
			return nil, errNoFile
		}
		return nil, fmt.Errorf("%w: %v", errFileTooLarge, err)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, errNoFile
	}
	defer file.Close()

	name := filepath.Base(header.Filename)
	ext := strings.ToLower(filepath.Ext(name))
	if !slices.Contains(s.cfg.Processing.AllowedExtensions, ext) {
		return nil, fmt.Errorf("%w: %q", errBadExtension, ext)
	}

	dir, err := os.MkdirTemp(s.cfg.Processing.WorkDir, "upload-*")
	if err != nil {
		return nil, fmt.Errorf("create work dir: %w", err)
	}
	u := &upload{name: name, path: filepath.Join(dir, name), dir: dir}

	out, err := os.Create(u.path)
	if err != nil {
		u.cleanup()
		return nil, fmt.Errorf("store upload: %w", err)
	}
	if _, err := io.Copy(out, file); err != nil {
		out.Close()
		u.cleanup()
		return nil, fmt.Errorf("store upload: %w", err)
	}
	if err := out.Close(); err != nil {
		u.cleanup()
		return nil, fmt.Errorf("store upload: %w", err)
	}
	return u, nil
}

// handleClassify reports the layout of an uploaded file without
// extracting it.
func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	u, err := s.receiveUpload(w, r)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	defer u.cleanup()

	kind, err := s.pipeline.ClassifyWhenReady(ctx, u.path, s.cfg.Processing.PollInterval)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	logging.WithFields(ctx, "file", u.name).Info("classify.done", "layout", kind)

	if isHTMX(r) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		templates.Classified(u.name, kind).Render(ctx, w)
		return
	}
	writeJSON(w, http.StatusOK, ClassifyResponse{File: u.name, Layout: kind, Label: templates.LayoutLabel(kind)})
}

// handleProcess classifies and extracts an uploaded file, keeping the
// result in a session for export. A "layout" form value forces the layout.
func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := s.limiter.Acquire(ctx); err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	defer s.limiter.Release()

	u, err := s.receiveUpload(w, r)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	defer u.cleanup()

	logger := logging.WithFields(ctx, "file", u.name)
	logger.Info("process.start", "layout_override", r.FormValue("layout"))

	start := time.Now()
	table, kind, err := s.process(ctx, u.path, r.FormValue("layout"))
	elapsed := time.Since(start)
	s.recordRun(ctx, u.name, kind, table, err, elapsed)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	id := s.sessions.put(table, elapsed)
	logger.Info("process.done", "session", id, "layout", kind, "rows", table.Len(), "duration_ms", elapsed.Milliseconds())

	nextName := s.exporter.NextName(table.Source, defaultFormat)
	if isHTMX(r) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		templates.Preview(templates.PreviewData{
			SessionID: id.String(),
			Table:     table,
			NextName:  nextName,
			Elapsed:   elapsed,
		}).Render(ctx, w)
		return
	}
	writeJSON(w, http.StatusOK, ProcessResponse{
		SessionID: id.String(),
		Source:    table.Source,
		Layout:    table.Layout,
		Label:     templates.LayoutLabel(table.Layout),
		Rows:      table.Len(),
		NextName:  nextName,
		Records:   table.Records,
	})
}

// process runs the pipeline, honouring an operator layout override.
func (s *Server) process(ctx context.Context, path, override string) (*manifest.Table, manifest.LayoutKind, error) {
	if override == "" {
		return s.pipeline.ProcessWhenReady(ctx, path, s.cfg.Processing.PollInterval)
	}
	kind, ok := manifest.ParseLayoutKind(override)
	if !ok || !kind.Extractable() {
		return nil, "", fmt.Errorf("%w %q", errBadLayout, override)
	}
	table, err := s.pipeline.ProcessAsWhenReady(ctx, path, kind, s.cfg.Processing.PollInterval)
	return table, kind, err
}

// recordRun stores the outcome of a processing call. History failures are
// logged, never surfaced.
func (s *Server) recordRun(ctx context.Context, name string, kind manifest.LayoutKind, table *manifest.Table, err error, elapsed time.Duration) {
	if errors.Is(err, errBadLayout) {
		return
	}
	run := history.NewRun(name, kind, table, err, elapsed)
	if recErr := s.history.Record(context.WithoutCancel(ctx), run); recErr != nil {
		logging.FromContext(ctx).Warn("history.record.failed", "file", name, "error", recErr)
	}
}
