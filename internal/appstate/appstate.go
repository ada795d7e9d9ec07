// Package appstate implements the application's top-level state machine:
// Inactive, Loading, Active, Exited (spec.md §4.7). It is encoded as a
// tagged sum with one variant per state, per spec.md §9's design note,
// so transitions consume and return the sum rather than branching on a
// mutable enum field.
package appstate

import "github.com/hdrsnip/hdrsnip/internal/selection"

// Kind identifies which variant a State holds.
type Kind int

const (
	Inactive Kind = iota
	Loading
	Active
	Exited
)

func (k Kind) String() string {
	switch k {
	case Inactive:
		return "Inactive"
	case Loading:
		return "Loading"
	case Active:
		return "Active"
	case Exited:
		return "Exited"
	default:
		return "Unknown"
	}
}

// LoadingData is the payload threaded through Loading.
type LoadingData struct {
	// PreviousFocus is the window handle to restore focus to on dismiss.
	PreviousFocus uintptr
}

// ActiveData is the payload threaded through Active.
type ActiveData struct {
	PreviousFocus uintptr
	Whitepoint    float32
	Selection     selection.Selection
}

// State is the tagged union of the four application states. Exactly one
// of the Data fields is meaningful, selected by Kind.
type State struct {
	Kind    Kind
	loading LoadingData
	active  ActiveData
}

// NewInactive returns the initial state.
func NewInactive() State {
	return State{Kind: Inactive}
}

// Screenshot transitions Inactive -> Loading.
func (s State) Screenshot(previousFocus uintptr) State {
	if s.Kind != Inactive {
		return s
	}
	return State{Kind: Loading, loading: LoadingData{PreviousFocus: previousFocus}}
}

// ImportedCapture transitions Loading -> Active once the capture has been
// imported and a whitepoint selected.
func (s State) ImportedCapture(whitepoint float32) State {
	if s.Kind != Loading {
		return s
	}
	return State{
		Kind: Active,
		active: ActiveData{
			PreviousFocus: s.loading.PreviousFocus,
			Whitepoint:    whitepoint,
			Selection:     selection.New(),
		},
	}
}

// Cancel transitions Loading or Active back to Inactive (Escape, or a
// Loading-time error per spec.md §7's "per-capture recoverable" class).
// Cancelling never aborts in-flight GPU work (spec.md §5); it only
// changes what the user sees.
func (s State) Cancel() State {
	switch s.Kind {
	case Loading, Active:
		return State{Kind: Inactive}
	default:
		return s
	}
}

// Save transitions Active -> Inactive; the caller is responsible for
// triggering the CaptureSaver message before/while making this call.
func (s State) Save() State {
	if s.Kind != Active {
		return s
	}
	return State{Kind: Inactive}
}

// Shutdown transitions any state to Exited, the terminal state.
func (s State) Shutdown() State {
	return State{Kind: Exited}
}

// Active returns the Active payload and whether s is in fact Active.
func (s State) Active() (ActiveData, bool) {
	if s.Kind != Active {
		return ActiveData{}, false
	}
	return s.active, true
}

// Loading returns the Loading payload and whether s is in fact Loading.
func (s State) Loading() (LoadingData, bool) {
	if s.Kind != Loading {
		return LoadingData{}, false
	}
	return s.loading, true
}

// WithSelection returns a copy of an Active state with an updated
// selection; no-op for any other state.
func (s State) WithSelection(sel selection.Selection) State {
	if s.Kind != Active {
		return s
	}
	s.active.Selection = sel
	return s
}

// WithWhitepoint returns a copy of an Active state with an updated
// whitepoint; no-op for any other state.
func (s State) WithWhitepoint(w float32) State {
	if s.Kind != Active {
		return s
	}
	s.active.Whitepoint = w
	return s
}
