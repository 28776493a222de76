package filter

import "maps"

// State is the filter state of one list view. RawSearch echoes what the user
// typed; Term is the debounced effective term actually used for filtering.
// Selectors only holds non-sentinel values.
type State struct {
	RawSearch string               `json:"raw_search"`
	Term      string               `json:"term"`
	Selectors map[Dimension]string `json:"selectors"`
}

// Selector returns the active value for d, or All.
func (s State) Selector(d Dimension) string {
	if v, ok := s.Selectors[d]; ok {
		return v
	}
	return All
}

// Criteria returns the filter input derived from s.
func (s State) Criteria() Criteria {
	return Criteria{Term: s.Term, Selectors: maps.Clone(s.Selectors)}
}

// IsZero reports whether no search and no selector is active.
func (s State) IsZero() bool {
	return s.RawSearch == "" && s.Term == "" && len(s.Selectors) == 0
}

func (s State) clone() State {
	s.Selectors = maps.Clone(s.Selectors)
	if s.Selectors == nil {
		s.Selectors = map[Dimension]string{}
	}
	return s
}

type ActionKind int

const (
	ActionSetRawSearch ActionKind = iota + 1
	ActionCommitTerm
	ActionSetSelector
	ActionClearAll
)

// Action is one state transition request for Reduce.
type Action struct {
	Kind      ActionKind
	Dimension Dimension
	Value     string
}

func SetRawSearch(raw string) Action { return Action{Kind: ActionSetRawSearch, Value: raw} }

func CommitTerm(raw string) Action { return Action{Kind: ActionCommitTerm, Value: raw} }

func SetSelector(d Dimension, value string) Action {
	return Action{Kind: ActionSetSelector, Dimension: d, Value: value}
}

func ClearAll() Action { return Action{Kind: ActionClearAll} }

// Reduce returns the state after applying a. s is never modified.
func Reduce(s State, a Action) State {
	next := s.clone()
	switch a.Kind {
	case ActionSetRawSearch:
		next.RawSearch = a.Value
	case ActionCommitTerm:
		next.Term = NormalizeTerm(a.Value)
	case ActionSetSelector:
		if isSentinel(a.Value) {
			delete(next.Selectors, a.Dimension)
		} else {
			next.Selectors[a.Dimension] = a.Value
		}
	case ActionClearAll:
		next = State{Selectors: map[Dimension]string{}}
	default:
		return s
	}
	return next
}
