package web

import (
	"bytes"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/JonMunkholm/labelmerge/internal/core"
	"github.com/JonMunkholm/labelmerge/internal/logging"
	"github.com/JonMunkholm/labelmerge/internal/session"
)

// handleHealth reports liveness plus session and parser load.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": s.sessions.Len(),
		"ingest":   s.limiter.Status(),
	})
}

// handleListFormats returns every registered label format.
func (s *Server) handleListFormats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"default": s.cfg.Output.DefaultFormat,
		"formats": core.Formats(),
	})
}

// handleListFields returns the semantic field catalog in label line order.
func (s *Server) handleListFields(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"fields": core.Fields(),
	})
}

type detectRequest struct {
	Headers []string `json:"headers"`
}

// handleDetect guesses a mapping for a header row.
func (s *Server) handleDetect(w http.ResponseWriter, r *http.Request) {
	var req detectRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	if len(req.Headers) == 0 {
		s.respondError(w, r, fmt.Errorf("%w: headers are required", errInvalidRequest))
		return
	}

	det := core.Detect(req.Headers)
	writeJSON(w, http.StatusOK, newDetectResponse(det.Mapping, det.Confidence))
}

// handleRender turns an uploaded file straight into a label document.
//
// Form fields: file (required), format (default from config), mapping
// (optional JSON object; auto-detected when absent).
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	ds, err := s.readUpload(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	g, err := s.lookupFormat(r.FormValue("format"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	mapping := core.Detect(ds.Headers).Mapping
	if raw := r.FormValue("mapping"); raw != "" {
		if mapping, err = parseMapping(raw, ds); err != nil {
			s.respondError(w, r, err)
			return
		}
	}

	if missing := core.MissingFields(mapping, core.RequiredFields()); len(missing) > 0 {
		s.respondError(w, r, fmt.Errorf("%w: missing %v", session.ErrIncompleteMapping, missing))
		return
	}

	s.writeDocument(w, r, core.Layout(ds.Rows, mapping), g)
}

// writeDocument renders the label sheet and sends it as a download.
// The document is buffered so a render failure still yields an error status.
func (s *Server) writeDocument(w http.ResponseWriter, r *http.Request, labels []core.Label, g core.Geometry) {
	var buf bytes.Buffer
	if err := core.Document(labels, g).Render(r.Context(), &buf); err != nil {
		s.respondError(w, r, fmt.Errorf("render labels: %w", err))
		return
	}

	summary := core.Summarize(labels, g)
	logging.FromContext(r.Context()).Info("labels rendered",
		"format", g.ID,
		"labels", summary.LabelCount,
		"sheets", summary.SheetsNeeded,
	)

	filename := core.OutputFilename(g.ID, time.Now())
	w.Header().Set("Content-Type", core.DocumentContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	w.Header().Set("X-Label-Count", strconv.Itoa(summary.LabelCount))
	w.Header().Set("X-Sheet-Count", strconv.Itoa(summary.SheetsNeeded))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		logging.FromContext(r.Context()).Warn("document write failed", "error", err)
	}
}
