package web

// handlers_common.go holds request parsing and response shapes shared by
// the stateless and session handlers.

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/JonMunkholm/labelmerge/internal/core"
	"github.com/JonMunkholm/labelmerge/internal/logging"
	"github.com/JonMunkholm/labelmerge/internal/session"
)

const (
	// multipartOverhead is allowed on top of the file size ceiling for
	// boundaries and the other form fields.
	multipartOverhead = 1 << 20

	// multipartMemory is how much of a multipart body is held in memory
	// before spilling to temp files.
	multipartMemory = 8 << 20

	// maxJSONBody bounds JSON request bodies (mappings, steps, headers).
	maxJSONBody = 1 << 20
)

// readUpload parses the "file" part of a multipart request into a Dataset.
// Parsing waits for an ingest slot so only a bounded number of files are
// decoded at once.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (*core.Dataset, error) {
	maxSize := s.cfg.Ingest.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+multipartOverhead)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, &core.IngestError{Kind: core.ErrOversizedFile, Size: r.ContentLength, Limit: maxSize}
		}
		return nil, fmt.Errorf("%w: multipart form: %v", errInvalidRequest, err)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, errNoFile
	}
	defer file.Close()

	if header.Size > maxSize {
		return nil, &core.IngestError{Kind: core.ErrOversizedFile, File: header.Filename, Size: header.Size, Limit: maxSize}
	}
	if !core.IsAcceptedFile(header.Filename, header.Header.Get("Content-Type")) {
		return nil, &core.IngestError{Kind: core.ErrUnsupportedFile, File: header.Filename}
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}

	if err := s.limiter.Acquire(r.Context()); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	ds, err := core.IngestWithOptions(data, header.Filename, core.IngestOptions{
		MaxRows:  s.cfg.Ingest.MaxRows,
		MaxBytes: maxSize,
	})
	if err != nil {
		return nil, err
	}

	logger := logging.WithFields(r.Context(), "file", ds.FileName)
	logger.Info("file ingested",
		"rows", ds.RowCount,
		"columns", len(ds.Headers),
		"delimiter", ds.Delimiter,
	)
	if ds.Truncated {
		logger.Warn("file truncated at row ceiling", "max_rows", s.cfg.Ingest.MaxRows)
	}
	return ds, nil
}

// decodeJSON reads a bounded JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errInvalidRequest, err)
	}
	return nil
}

// parseMapping decodes a {"field":"Header"} form value and checks it
// against the uploaded headers.
func parseMapping(raw string, ds *core.Dataset) (core.Mapping, error) {
	var m core.Mapping
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return nil, fmt.Errorf("%w: mapping: %v", errInvalidRequest, err)
	}
	if err := validateMapping(m, ds); err != nil {
		return nil, err
	}
	return m, nil
}

// lookupFormat resolves a format id, defaulting to the configured format.
func (s *Server) lookupFormat(id string) (core.Geometry, error) {
	if id == "" {
		id = s.cfg.Output.DefaultFormat
	}
	g, ok := core.Lookup(id)
	if !ok {
		return core.Geometry{}, &core.UnknownFormatError{ID: id}
	}
	return g, nil
}

// DetectResponse is the auto-detection result with display metadata.
type DetectResponse struct {
	Mapping    core.Mapping                        `json:"mapping"`
	Confidence core.Confidence                     `json:"confidence"`
	Levels     map[core.Field]core.ConfidenceLevel `json:"levels"`
	Missing    []core.Field                        `json:"missing"`
	Complete   bool                                `json:"complete"`
}

func newDetectResponse(m core.Mapping, c core.Confidence) DetectResponse {
	levels := make(map[core.Field]core.ConfidenceLevel, len(core.Fields()))
	for _, spec := range core.Fields() {
		levels[spec.Key] = core.Level(c[spec.Key])
	}
	missing := core.MissingFields(m, core.RequiredFields())
	if missing == nil {
		missing = []core.Field{}
	}
	return DetectResponse{
		Mapping:    m,
		Confidence: c,
		Levels:     levels,
		Missing:    missing,
		Complete:   len(missing) == 0,
	}
}

// SessionResponse is a session's state without its row data.
type SessionResponse struct {
	ID         string         `json:"id"`
	Step       session.Step   `json:"step"`
	StepName   string         `json:"stepName"`
	Completed  []session.Step `json:"completed"`
	CanAdvance bool           `json:"canAdvance"`
	Format     string         `json:"format"`
	File       *FileSummary   `json:"file,omitempty"`
	Detection  DetectResponse `json:"detection"`
	Preview    []string       `json:"preview"`
	Summary    *core.Summary  `json:"summary,omitempty"`
}

// FileSummary describes the uploaded dataset.
type FileSummary struct {
	Name      string   `json:"name"`
	Headers   []string `json:"headers"`
	RowCount  int      `json:"rowCount"`
	Delimiter string   `json:"delimiter,omitempty"`
	Truncated bool     `json:"truncated"`
}

func newSessionResponse(id string, st session.State) SessionResponse {
	resp := SessionResponse{
		ID:         id,
		Step:       st.Step,
		StepName:   st.Step.String(),
		Completed:  st.Completed,
		CanAdvance: session.CanAdvance(st),
		Format:     st.Format,
		Detection:  newDetectResponse(st.Mapping, st.Confidence),
		Preview:    []string{},
	}

	if ds := st.Dataset; ds != nil {
		resp.File = &FileSummary{
			Name:      ds.FileName,
			Headers:   ds.Headers,
			RowCount:  ds.RowCount,
			Delimiter: ds.Delimiter,
			Truncated: ds.Truncated,
		}
		if lines := core.PreviewLabel(ds.Rows, st.Mapping); lines != nil {
			resp.Preview = lines
		}
		if g, ok := core.Lookup(st.Format); ok {
			summary := core.Summarize(core.Layout(ds.Rows, st.Mapping), g)
			resp.Summary = &summary
		}
	}
	return resp
}
