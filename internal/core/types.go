package core

// Record is one data row keyed by header name.
// Values are kept as raw strings so ZIP codes like "02134" survive unchanged.
type Record map[string]string

// Dataset is the normalized result of ingesting a file.
//
// Every record carries exactly the keys in Headers; short rows are padded
// with empty strings during ingest.
type Dataset struct {
	FileName  string   `json:"fileName" yaml:"fileName"`
	Headers   []string `json:"headers" yaml:"headers"`
	Rows      []Record `json:"rows" yaml:"rows"`
	RowCount  int      `json:"rowCount" yaml:"rowCount"`
	Delimiter string   `json:"delimiter,omitempty" yaml:"delimiter,omitempty"`
	Truncated bool     `json:"truncated" yaml:"truncated"` // More rows existed beyond the row ceiling
}

// Mapping assigns a header to each semantic field.
// A missing key or an empty header means the field is unset.
// The same header may be assigned to more than one field.
type Mapping map[Field]string

// Header returns the header mapped to f, or "" if f is unset.
func (m Mapping) Header(f Field) string {
	if m == nil {
		return ""
	}
	return m[f]
}

// Clone returns an independent copy of the mapping.
func (m Mapping) Clone() Mapping {
	out := make(Mapping, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Confidence holds the auto-detection score per field.
// Fields that detection left unset have no entry.
type Confidence map[Field]float64

// Clone returns an independent copy of the scores.
func (c Confidence) Clone() Confidence {
	out := make(Confidence, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// Detection is the output of [Detect].
type Detection struct {
	Mapping    Mapping    `json:"mapping"`
	Confidence Confidence `json:"confidence"`
}

// Label is one laid-out label: the non-empty text lines built from a row.
type Label struct {
	SourceRow int      `json:"sourceRow"` // Index into Dataset.Rows
	Lines     []string `json:"lines"`
}

// Position locates a label on the printed output (all zero-based).
type Position struct {
	Sheet  int `json:"sheet"`
	Row    int `json:"row"`
	Column int `json:"column"`
}

// Summary describes the printed output for a label set.
type Summary struct {
	LabelCount   int    `json:"labelCount"`
	SheetsNeeded int    `json:"sheetsNeeded"`
	FormatID     string `json:"formatId"`
	FormatName   string `json:"formatName"`
}
