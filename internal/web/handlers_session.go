package web

import (
	"fmt"
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/labelmerge/internal/core"
	"github.com/JonMunkholm/labelmerge/internal/logging"
	"github.com/JonMunkholm/labelmerge/internal/session"
	"github.com/JonMunkholm/labelmerge/internal/web/templates"
)

// handleCreateSession starts a wizard on the upload step.
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	id, st := s.sessions.Create()
	logging.WithFields(r.Context(), "session_id", id).Info("session created")
	writeJSON(w, http.StatusCreated, newSessionResponse(id, st))
}

// handleGetSession returns the wizard state without row data.
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	st, err := s.sessions.Get(id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newSessionResponse(id, st))
}

// handleResetSession returns the session to a fresh wizard.
func (s *Server) handleResetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	st, err := s.sessions.Dispatch(id, session.Reset{DefaultFormat: s.sessions.DefaultFormat()})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newSessionResponse(id, st))
}

// handleSessionFile ingests an upload, auto-detects the mapping and moves
// the wizard to the mapping step.
func (s *Server) handleSessionFile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.sessions.Get(id); err != nil {
		s.respondError(w, r, err)
		return
	}

	ds, err := s.readUpload(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	det := core.Detect(ds.Headers)
	st, err := s.sessions.Dispatch(id,
		session.SetDataset{Dataset: ds},
		session.SetAutoDetection{Detection: det},
		session.CompleteStep{Step: session.StepUpload},
		session.GoToStep{Step: session.StepMapping},
	)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	logging.WithFields(r.Context(), "session_id", id).Info("mapping detected",
		"mapped", len(det.Mapping),
		"missing", len(core.MissingFields(det.Mapping, core.RequiredFields())),
	)
	writeJSON(w, http.StatusOK, newSessionResponse(id, st))
}

// handleSessionMapping applies field-wise overrides. The body is a
// {"field":"Header"} object; an empty header unsets the field.
func (s *Server) handleSessionMapping(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var m core.Mapping
	if err := decodeJSON(w, r, &m); err != nil {
		s.respondError(w, r, err)
		return
	}

	st, err := s.sessions.Update(id, func(st session.State) (session.State, error) {
		if err := validateMapping(m, st.Dataset); err != nil {
			return st, err
		}
		return session.Reduce(st, session.SetMapping{Mapping: m}), nil
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newSessionResponse(id, st))
}

// validateMapping rejects unknown fields and headers the dataset lacks.
func validateMapping(m core.Mapping, ds *core.Dataset) error {
	for field, header := range m {
		if !field.Valid() {
			return fmt.Errorf("%w: unknown field %q", errInvalidRequest, field)
		}
		if header == "" {
			continue
		}
		if ds == nil {
			return fmt.Errorf("%w: no file uploaded yet", errInvalidRequest)
		}
		if !slices.Contains(ds.Headers, header) {
			return fmt.Errorf("%w: unknown column %q", errInvalidRequest, header)
		}
	}
	return nil
}

type formatRequest struct {
	Format string `json:"format"`
}

// handleSessionFormat selects the label format.
func (s *Server) handleSessionFormat(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req formatRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	if _, ok := core.Lookup(req.Format); !ok {
		s.respondError(w, r, &core.UnknownFormatError{ID: req.Format})
		return
	}

	st, err := s.sessions.Dispatch(id, session.SelectFormat{FormatID: req.Format})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newSessionResponse(id, st))
}

type stepRequest struct {
	Step      int    `json:"step,omitempty"`
	Direction string `json:"direction,omitempty"`
}

// handleSessionStep navigates the wizard, either to an explicit step or
// one step next/back. Forward moves require each step on the way to be done.
func (s *Server) handleSessionStep(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req stepRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	var move func(session.State) (session.State, error)
	switch {
	case req.Direction == "next" && req.Step == 0:
		move = session.Next
	case req.Direction == "back" && req.Step == 0:
		move = func(st session.State) (session.State, error) { return session.Back(st), nil }
	case req.Direction == "" && session.Step(req.Step).Valid():
		target := session.Step(req.Step)
		move = func(st session.State) (session.State, error) { return session.GoTo(st, target) }
	default:
		s.respondError(w, r, fmt.Errorf("%w: give a step between %d and %d or a direction of next or back",
			errInvalidRequest, session.FirstStep, session.LastStep))
		return
	}

	st, err := s.sessions.Update(id, move)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newSessionResponse(id, st))
}

// handleSessionPreview renders the first label and totals as an HTML
// fragment for the mapping step.
func (s *Server) handleSessionPreview(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	st, err := s.sessions.Get(id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	data := templates.PreviewData{FormatName: st.Format}
	g, ok := core.Lookup(st.Format)
	if ok {
		data.FormatName = g.Name
	}
	if st.Dataset != nil {
		data.Lines = core.PreviewLabel(st.Dataset.Rows, st.Mapping)
		data.LabelCount = core.CountLabels(st.Dataset.Rows, st.Mapping)
		if ok {
			data.SheetsNeeded = core.SheetsNeeded(data.LabelCount, g)
		}
	}
	for _, f := range core.MissingFields(st.Mapping, core.RequiredFields()) {
		if spec, ok := f.Spec(); ok {
			data.Missing = append(data.Missing, spec.Label)
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.LabelPreview(data).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Warn("preview render failed", "error", err)
	}
}

// handleSessionLabels downloads the label document for the session and
// marks the output step complete.
func (s *Server) handleSessionLabels(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	st, err := s.sessions.Get(id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	labels, err := session.Labels(st)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	g, err := s.lookupFormat(st.Format)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	if _, err := s.sessions.Dispatch(id, session.CompleteStep{Step: session.StepOutput}); err != nil {
		s.respondError(w, r, err)
		return
	}
	s.writeDocument(w, r, labels, g)
}
