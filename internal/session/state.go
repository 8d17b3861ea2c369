// Package session holds the label wizard's per-user state.
//
// State changes only through [Reduce], which applies one [Action] to a state
// and returns a new one without touching the input. The [Manager] keeps one
// state per session id, expires idle sessions, and can snapshot every session
// to a YAML file so the wizard survives a restart.
package session

import (
	"slices"

	"github.com/JonMunkholm/labelmerge/internal/core"
)

// Step is a wizard page, numbered from 1.
type Step int

const (
	StepUpload Step = iota + 1
	StepMapping
	StepFormat
	StepOutput
)

// FirstStep and LastStep bound valid steps.
const (
	FirstStep = StepUpload
	LastStep  = StepOutput
)

func (s Step) String() string {
	switch s {
	case StepUpload:
		return "upload"
	case StepMapping:
		return "mapping"
	case StepFormat:
		return "format"
	case StepOutput:
		return "output"
	default:
		return "unknown"
	}
}

// Valid reports whether s is a wizard step.
func (s Step) Valid() bool {
	return s >= FirstStep && s <= LastStep
}

// State is everything the wizard remembers for one user.
type State struct {
	Dataset    *core.Dataset   `json:"dataset,omitempty" yaml:"dataset,omitempty"`
	Mapping    core.Mapping    `json:"mapping" yaml:"mapping"`
	Confidence core.Confidence `json:"confidence" yaml:"confidence"`
	Format     string          `json:"format" yaml:"format"`
	Step       Step            `json:"step" yaml:"step"`
	Completed  []Step          `json:"completed" yaml:"completed"`
}

// Initial returns the state of a fresh wizard.
func Initial(defaultFormat string) State {
	return State{
		Mapping:    core.Mapping{},
		Confidence: core.Confidence{},
		Format:     defaultFormat,
		Step:       StepUpload,
		Completed:  []Step{},
	}
}

// RowCount is the number of ingested rows, or 0 before upload.
func (s State) RowCount() int {
	if s.Dataset == nil {
		return 0
	}
	return s.Dataset.RowCount
}

// IsCompleted reports whether step has been marked complete.
func (s State) IsCompleted(step Step) bool {
	return slices.Contains(s.Completed, step)
}

// clone copies the maps and slices so a reducer never mutates its input.
// The dataset is shared: it is replaced wholesale, never edited.
func (s State) clone() State {
	out := s
	out.Mapping = s.Mapping.Clone()
	out.Confidence = s.Confidence.Clone()
	out.Completed = slices.Clone(s.Completed)
	if out.Completed == nil {
		out.Completed = []Step{}
	}
	return out
}
