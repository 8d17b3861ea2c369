package core

import (
	"errors"
	"fmt"
	"strings"
)

// Ingest error kinds. Match with errors.Is on an [*IngestError].
var (
	ErrDelimiter       = errors.New("invalid csv: inconsistent delimiter structure")
	ErrNoColumns       = errors.New("no columns found")
	ErrNoData          = errors.New("no data rows found")
	ErrOversizedFile   = errors.New("file too large")
	ErrUnsupportedFile = errors.New("unsupported file type")
	ErrEncoding        = errors.New("encoding error")
)

// ErrUnknownFormat matches any [*UnknownFormatError].
var ErrUnknownFormat = errors.New("unknown label format")

// maxReportedIssues caps how many malformed rows an error message lists.
const maxReportedIssues = 5

// RowIssue describes one malformed input row.
type RowIssue struct {
	Line   int    `json:"line"` // 1-indexed line in the source file
	Reason string `json:"reason"`
}

// IngestError is returned by [Ingest]. It is terminal: no partial dataset
// accompanies it.
type IngestError struct {
	Kind   error      // One of the Err* ingest kinds
	File   string     // Declared file name
	Issues []RowIssue // Malformed rows, for ErrDelimiter
	Size   int64      // File size, for ErrOversizedFile
	Limit  int64      // Size ceiling, for ErrOversizedFile
	Err    error      // Underlying cause, if any
}

func (e *IngestError) Error() string {
	var b strings.Builder
	if e.File != "" {
		b.WriteString(e.File)
		b.WriteString(": ")
	}
	b.WriteString(e.Kind.Error())

	switch {
	case errors.Is(e.Kind, ErrOversizedFile):
		fmt.Fprintf(&b, " (%d bytes, limit %d)", e.Size, e.Limit)
	case len(e.Issues) > 0:
		shown := e.Issues
		if len(shown) > maxReportedIssues {
			shown = shown[:maxReportedIssues]
		}
		parts := make([]string, len(shown))
		for i, issue := range shown {
			parts[i] = fmt.Sprintf("line %d: %s", issue.Line, issue.Reason)
		}
		b.WriteString(": ")
		b.WriteString(strings.Join(parts, "; "))
		if extra := len(e.Issues) - len(shown); extra > 0 {
			fmt.Fprintf(&b, " (and %d more)", extra)
		}
	}

	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Is reports whether target is this error's kind.
func (e *IngestError) Is(target error) bool {
	return target == e.Kind
}

func (e *IngestError) Unwrap() error {
	return e.Err
}

// UnknownFormatError is returned when a format id is not in the registry.
type UnknownFormatError struct {
	ID string
}

func (e *UnknownFormatError) Error() string {
	return fmt.Sprintf("unknown label format %q (available: %s)", e.ID, strings.Join(FormatIDs(), ", "))
}

// Is reports whether target is [ErrUnknownFormat].
func (e *UnknownFormatError) Is(target error) bool {
	return target == ErrUnknownFormat
}
