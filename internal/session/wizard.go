package session

import (
	"errors"
	"fmt"

	"github.com/JonMunkholm/labelmerge/internal/core"
)

var (
	// ErrCannotAdvance is returned by Next when the current step is unfinished.
	ErrCannotAdvance = errors.New("cannot advance: current step is incomplete")

	// ErrIncompleteMapping is returned when labels are requested before every
	// required field has a column.
	ErrIncompleteMapping = errors.New("incomplete mapping")
)

// CanAdvance reports whether the current step is done:
// upload needs at least one row, mapping needs every required field, and
// format needs a registered format. The output step is always done.
func CanAdvance(s State) bool {
	switch s.Step {
	case StepUpload:
		return s.RowCount() > 0
	case StepMapping:
		return core.IsComplete(s.Mapping, core.RequiredFields())
	case StepFormat:
		_, ok := core.Lookup(s.Format)
		return ok
	default:
		return true
	}
}

// Next completes the current step and moves to the following one.
func Next(s State) (State, error) {
	if s.Step >= LastStep {
		return s, fmt.Errorf("%w: already at the last step", ErrCannotAdvance)
	}
	if !CanAdvance(s) {
		return s, fmt.Errorf("%w: step %d (%s)", ErrCannotAdvance, s.Step, s.Step)
	}
	s = Reduce(s, CompleteStep{Step: s.Step})
	return Reduce(s, GoToStep{Step: s.Step + 1}), nil
}

// Back moves to the previous step. It stays on the first step.
func Back(s State) State {
	if s.Step <= FirstStep {
		return s
	}
	return Reduce(s, GoToStep{Step: s.Step - 1})
}

// Labels lays out the session's rows with its mapping. It fails with
// ErrIncompleteMapping until every required field has a column.
func Labels(s State) ([]core.Label, error) {
	if s.Dataset == nil {
		return nil, &core.IngestError{Kind: core.ErrNoData}
	}
	if missing := core.MissingFields(s.Mapping, core.RequiredFields()); len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing %v", ErrIncompleteMapping, missing)
	}
	return core.Layout(s.Dataset.Rows, s.Mapping), nil
}

// GoTo moves to target. Moving back is always allowed; moving forward
// completes each step on the way and stops with ErrCannotAdvance at the
// first one that is unfinished, leaving the state unchanged.
func GoTo(s State, target Step) (State, error) {
	if !target.Valid() {
		return s, fmt.Errorf("%w: no step %d", ErrCannotAdvance, int(target))
	}
	if target <= s.Step {
		return Reduce(s, GoToStep{Step: target}), nil
	}

	next := s
	for next.Step < target {
		var err error
		if next, err = Next(next); err != nil {
			return s, err
		}
	}
	return next, nil
}
