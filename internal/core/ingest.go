package core

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// MaxRows is the default ceiling on retained data rows. Rows past the
// ceiling are dropped without error and Dataset.Truncated is set.
const MaxRows = 10000

// DefaultMaxFileSize is the default upload size ceiling (10MB).
const DefaultMaxFileSize int64 = 10 * 1024 * 1024

// delimiterCandidates are tried in order; earlier entries win ties.
var delimiterCandidates = []rune{',', '\t', ';', '|'}

// zipMagic starts every .xlsx file.
var zipMagic = []byte("PK\x03\x04")

var acceptedExtensions = []string{".csv", ".tsv", ".txt", ".xlsx"}

var acceptedContentTypes = []string{
	"text/csv",
	"text/plain",
	"text/tab-separated-values",
	"application/vnd.ms-excel",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

// IngestOptions tunes [IngestWithOptions].
type IngestOptions struct {
	MaxRows  int   // Data rows to retain; <= 0 or above MaxRows means MaxRows
	MaxBytes int64 // Size ceiling; <= 0 means no ceiling
}

// rowSource yields one raw row per call with its 1-indexed source line.
// It returns io.EOF when exhausted. A *csv.ParseError marks a single bad
// row; reading may continue after it.
type rowSource func() (line int, fields []string, err error)

// Ingest parses a delimited-text or .xlsx file into a Dataset using the
// default row ceiling and no size ceiling.
func Ingest(data []byte, name string) (*Dataset, error) {
	return IngestWithOptions(data, name, IngestOptions{})
}

// IngestWithOptions parses a file into a Dataset.
//
// The first non-empty line is the header row. Values are never coerced.
// Short rows are padded with empty strings; fully blank rows are dropped.
// Any failure is returned as *IngestError with no partial dataset.
func IngestWithOptions(data []byte, name string, opts IngestOptions) (*Dataset, error) {
	maxRows := opts.MaxRows
	if maxRows <= 0 || maxRows > MaxRows {
		maxRows = MaxRows
	}

	if opts.MaxBytes > 0 && int64(len(data)) > opts.MaxBytes {
		return nil, &IngestError{
			Kind:  ErrOversizedFile,
			File:  name,
			Size:  int64(len(data)),
			Limit: opts.MaxBytes,
		}
	}

	var (
		src       rowSource
		delimiter string
	)

	if isWorkbook(name, data) {
		s, err := workbookSource(data)
		if err != nil {
			return nil, &IngestError{Kind: ErrUnsupportedFile, File: name, Err: err}
		}
		src = s
	} else {
		text, _, err := decodeText(data)
		if err != nil {
			return nil, &IngestError{Kind: ErrEncoding, File: name, Err: err}
		}
		comma := sniffDelimiter(text)
		delimiter = string(comma)
		src = delimitedSource(text, comma)
	}

	ds, err := buildDataset(src, maxRows)
	if err != nil {
		var ie *IngestError
		if errors.As(err, &ie) {
			ie.File = name
		}
		return nil, err
	}

	ds.FileName = name
	ds.Delimiter = delimiter
	return ds, nil
}

// IsAcceptedFile reports whether an upload looks like a supported file,
// by extension or by declared content type.
func IsAcceptedFile(name, contentType string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, accepted := range acceptedExtensions {
		if ext == accepted {
			return true
		}
	}

	if contentType == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	for _, accepted := range acceptedContentTypes {
		if mediaType == accepted {
			return true
		}
	}
	return false
}

// buildDataset reads the header and data rows from src.
func buildDataset(src rowSource, maxRows int) (*Dataset, error) {
	var header []string
	for {
		_, fields, err := src()
		if err == io.EOF {
			return nil, &IngestError{Kind: ErrNoColumns}
		}
		if err != nil {
			return nil, delimiterError(err)
		}
		if isEmptyLine(fields) {
			continue
		}
		header = fields
		break
	}

	if isBlankRow(header) {
		return nil, &IngestError{Kind: ErrNoColumns}
	}

	headers := uniqueHeaders(header)
	ds := &Dataset{Headers: headers}

	var issues []RowIssue
	for {
		line, fields, err := src()
		if err == io.EOF {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				issues = append(issues, RowIssue{Line: pe.StartLine, Reason: pe.Err.Error()})
				continue
			}
			return nil, &IngestError{Kind: ErrDelimiter, Err: err}
		}

		if isBlankRow(fields) {
			continue
		}

		if len(ds.Rows) == maxRows {
			ds.Truncated = true
			break
		}

		if len(fields) > len(headers) && !isBlankRow(fields[len(headers):]) {
			issues = append(issues, RowIssue{
				Line:   line,
				Reason: fmt.Sprintf("expected %d fields, found %d", len(headers), len(fields)),
			})
			continue
		}

		rec := make(Record, len(headers))
		for i, h := range headers {
			if i < len(fields) {
				rec[h] = fields[i]
			} else {
				rec[h] = ""
			}
		}
		ds.Rows = append(ds.Rows, rec)
	}

	if len(issues) > 0 {
		return nil, &IngestError{Kind: ErrDelimiter, Issues: issues}
	}
	if len(ds.Rows) == 0 {
		return nil, &IngestError{Kind: ErrNoData}
	}

	ds.RowCount = len(ds.Rows)
	return ds, nil
}

// delimiterError reports a read failure, naming the row when the reader
// could locate it.
func delimiterError(err error) *IngestError {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return &IngestError{Kind: ErrDelimiter, Issues: []RowIssue{{Line: pe.StartLine, Reason: pe.Err.Error()}}, Err: err}
	}
	return &IngestError{Kind: ErrDelimiter, Err: err}
}

// delimitedSource reads text with encoding/csv using the given delimiter.
func delimitedSource(text []byte, comma rune) rowSource {
	r := csv.NewReader(bytes.NewReader(text))
	r.Comma = comma
	r.FieldsPerRecord = -1

	return func() (int, []string, error) {
		record, err := r.Read()
		if err != nil {
			return 0, nil, err
		}
		line, _ := r.FieldPos(0)
		return line, record, nil
	}
}

// workbookSource reads the first sheet of an .xlsx workbook.
func workbookSource(data []byte) (rowSource, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}

	next := 0
	return func() (int, []string, error) {
		if next >= len(rows) {
			return 0, nil, io.EOF
		}
		next++
		return next, rows[next-1], nil
	}, nil
}

func isWorkbook(name string, data []byte) bool {
	return strings.EqualFold(filepath.Ext(name), ".xlsx") || bytes.HasPrefix(data, zipMagic)
}

// sniffDelimiter picks the candidate that occurs most often, outside quotes,
// on the first non-empty line. Defaults to comma.
func sniffDelimiter(text []byte) rune {
	var line []byte
	for _, l := range bytes.Split(text, []byte("\n")) {
		if len(bytes.TrimSpace(l)) > 0 {
			line = l
			break
		}
	}

	counts := make(map[rune]int, len(delimiterCandidates))
	inQuotes := false
	for _, r := range string(line) {
		if r == '"' {
			inQuotes = !inQuotes
			continue
		}
		if !inQuotes {
			counts[r]++
		}
	}

	best, bestCount := ',', 0
	for _, c := range delimiterCandidates {
		if counts[c] > bestCount {
			best, bestCount = c, counts[c]
		}
	}
	return best
}

// uniqueHeaders disambiguates repeated header names with a numeric suffix,
// so every header can key a Record.
func uniqueHeaders(raw []string) []string {
	seen := make(map[string]bool, len(raw))
	out := make([]string, len(raw))
	for i, h := range raw {
		name := h
		for n := 1; seen[name]; n++ {
			name = h + "_" + strconv.Itoa(n)
		}
		seen[name] = true
		out[i] = name
	}
	return out
}

// isEmptyLine reports a line with no delimiters and no content.
func isEmptyLine(fields []string) bool {
	return len(fields) == 0 || (len(fields) == 1 && strings.TrimSpace(fields[0]) == "")
}

func isBlankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
