package filter

import (
	"iter"
	"sync"
	"time"
)

// Session owns the filter state of one list view for one console user.
// Search input is debounced; selector changes apply immediately.
type Session struct {
	schema   Schema
	debounce *Debouncer

	// opMu keeps the two steps of a search update and of a clear from
	// interleaving.
	opMu sync.Mutex
	// notifyMu serializes apply+notify so observers see updates in order.
	notifyMu  sync.Mutex
	mu        sync.Mutex
	state     State
	observers []func(State)
}

type SessionOption func(*sessionOptions)

type sessionOptions struct {
	clock   Clock
	quiet   time.Duration
	initial State
}

func WithClock(c Clock) SessionOption {
	return func(o *sessionOptions) { o.clock = c }
}

func WithQuietPeriod(d time.Duration) SessionOption {
	return func(o *sessionOptions) { o.quiet = d }
}

// WithInitialState restores a saved state. A raw search that was saved before
// its commit ran is committed again after the quiet period.
func WithInitialState(s State) SessionOption {
	return func(o *sessionOptions) { o.initial = s }
}

func NewSession(schema Schema, opts ...SessionOption) *Session {
	o := sessionOptions{clock: SystemClock, quiet: DefaultQuietPeriod}
	for _, opt := range opts {
		opt(&o)
	}
	s := &Session{
		schema:   schema,
		debounce: NewDebouncer(o.clock, o.quiet),
		state:    o.initial.clone(),
	}
	if NormalizeTerm(o.initial.RawSearch) != o.initial.Term {
		s.scheduleCommit(o.initial.RawSearch)
	}
	return s
}

// Schema returns the facets this session filters on.
func (s *Session) Schema() Schema {
	return s.schema
}

// UpdateSearchInput records raw immediately and commits it as the effective
// term once the quiet period passes without another call.
func (s *Session) UpdateSearchInput(raw string) {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	s.apply(SetRawSearch(raw))
	s.scheduleCommit(raw)
}

func (s *Session) scheduleCommit(raw string) {
	s.debounce.Trigger(func() {
		s.apply(CommitTerm(raw))
	})
}

// SetCategoricalFilter replaces the active value for d. Unknown dimensions and
// values outside a closed facet are rejected without touching the state.
func (s *Session) SetCategoricalFilter(d Dimension, value string) error {
	if err := s.schema.Check(d, value); err != nil {
		return err
	}
	s.apply(SetSelector(d, value))
	return nil
}

// ClearAllFilters drops any pending search commit and resets the search and
// every selector in a single update.
func (s *Session) ClearAllFilters() {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	s.debounce.Cancel()
	s.apply(ClearAll())
}

// SearchPending reports whether a search commit is still waiting for the quiet period.
func (s *Session) SearchPending() bool {
	return s.debounce.Pending()
}

// State returns a copy of the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Visible filters records with the current state.
func (s *Session) Visible(records []Record) iter.Seq[Record] {
	return Visible(records, s.schema, s.State().Criteria())
}

// Subscribe registers fn to be called with the new state after every update.
// fn must not call back into the session's mutating methods.
func (s *Session) Subscribe(fn func(State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, fn)
}

// Close cancels the pending search commit.
func (s *Session) Close() {
	s.debounce.Cancel()
}

func (s *Session) apply(a Action) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	s.state = Reduce(s.state, a)
	next := s.state.clone()
	observers := append([]func(State){}, s.observers...)
	s.mu.Unlock()

	for _, fn := range observers {
		fn(next)
	}
}
