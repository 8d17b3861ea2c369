package session

import (
	"github.com/JonMunkholm/labelmerge/internal/core"
)

// Action is one state transition. The set is closed: only the types in this
// file implement it.
type Action interface {
	apply(State) State
}

// SetDataset replaces the uploaded dataset. The mapping and confidence are
// cleared because they refer to the previous file's headers.
type SetDataset struct {
	Dataset *core.Dataset
}

// SetMapping overrides fields one by one. An empty header unsets the field.
// Confidence entries for overridden fields are dropped.
type SetMapping struct {
	Mapping core.Mapping
}

// SetAutoDetection merges a detection result into the mapping and replaces
// the confidence scores.
type SetAutoDetection struct {
	Detection core.Detection
}

// SelectFormat chooses the label format.
type SelectFormat struct {
	FormatID string
}

// GoToStep moves to a step. Invalid steps are ignored.
type GoToStep struct {
	Step Step
}

// CompleteStep marks a step complete. Marking twice is a no-op.
type CompleteStep struct {
	Step Step
}

// Reset returns to a fresh wizard.
type Reset struct {
	DefaultFormat string
}

// Restore replaces the whole state, e.g. from a snapshot.
type Restore struct {
	State State
}

// Reduce applies a to s and returns the new state. s is not modified.
func Reduce(s State, a Action) State {
	if a == nil {
		return s
	}
	return a.apply(s)
}

func (a SetDataset) apply(s State) State {
	out := s.clone()
	out.Dataset = a.Dataset
	out.Mapping = core.Mapping{}
	out.Confidence = core.Confidence{}
	return out
}

func (a SetMapping) apply(s State) State {
	out := s.clone()
	for field, header := range a.Mapping {
		if !field.Valid() {
			continue
		}
		if header == "" {
			delete(out.Mapping, field)
		} else {
			out.Mapping[field] = header
		}
		delete(out.Confidence, field)
	}
	return out
}

func (a SetAutoDetection) apply(s State) State {
	out := s.clone()
	for field, header := range a.Detection.Mapping {
		out.Mapping[field] = header
	}
	out.Confidence = a.Detection.Confidence.Clone()
	return out
}

func (a SelectFormat) apply(s State) State {
	out := s.clone()
	out.Format = a.FormatID
	return out
}

func (a GoToStep) apply(s State) State {
	if !a.Step.Valid() {
		return s
	}
	out := s.clone()
	out.Step = a.Step
	return out
}

func (a CompleteStep) apply(s State) State {
	if !a.Step.Valid() || s.IsCompleted(a.Step) {
		return s
	}
	out := s.clone()
	out.Completed = append(out.Completed, a.Step)
	return out
}

func (a Reset) apply(State) State {
	return Initial(a.DefaultFormat)
}

func (a Restore) apply(State) State {
	out := a.State.clone()
	if !out.Step.Valid() {
		out.Step = StepUpload
	}
	return out
}
