package invitations

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Phase is the lifecycle state of one submission:
// idle -> validating -> (rejected | dispatching) -> completed.
type Phase string

const (
	PhaseIdle        Phase = "idle"
	PhaseValidating  Phase = "validating"
	PhaseRejected    Phase = "rejected"
	PhaseDispatching Phase = "dispatching"
	PhaseCompleted   Phase = "completed"
)

var transitions = map[Phase][]Phase{
	PhaseIdle:        {PhaseValidating},
	PhaseValidating:  {PhaseRejected, PhaseDispatching},
	PhaseDispatching: {PhaseCompleted},
}

// Terminal reports whether no further transition is possible from p.
func (p Phase) Terminal() bool {
	return p == PhaseRejected || p == PhaseCompleted
}

// Form is the raw invitation form as the console posts it.
type Form struct {
	Emails  string `json:"emails"`
	Role    string `json:"role"`
	Message string `json:"message"`
}

// Submission tracks one submit of the invitation form.
type Submission struct {
	ID        uuid.UUID
	StartedAt time.Time

	mu      sync.Mutex
	phase   Phase
	history []Phase
	err     error
	results []Result
}

func NewSubmission() *Submission {
	return &Submission{
		ID:        uuid.New(),
		StartedAt: time.Now(),
		phase:     PhaseIdle,
		history:   []Phase{PhaseIdle},
	}
}

func (s *Submission) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// History lists every phase the submission went through, starting with idle.
func (s *Submission) History() []Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.history)
}

// Err is the validation error of a rejected submission.
func (s *Submission) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Results is nil until the submission is completed.
func (s *Submission) Results() []Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.results)
}

func (s *Submission) Summary() Summary {
	return Summarize(s.Results())
}

func (s *Submission) transition(to Phase) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !slices.Contains(transitions[s.phase], to) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, s.phase, to)
	}
	s.phase = to
	s.history = append(s.history, to)
	return nil
}

func (s *Submission) reject(err error) error {
	if terr := s.transition(PhaseRejected); terr != nil {
		return terr
	}
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
	return nil
}

func (s *Submission) complete(results []Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseDispatching {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, s.phase, PhaseCompleted)
	}
	s.results = slices.Clone(results)
	s.phase = PhaseCompleted
	s.history = append(s.history, PhaseCompleted)
	return nil
}

// Submit validates form and, if it passes, dispatches it. The returned
// submission is always in a terminal phase: rejected with the first
// validation error, or completed with one result per recipient.
func (d *Dispatcher) Submit(ctx context.Context, form Form, opts ...Option) *Submission {
	sub := NewSubmission()
	logger := log.Ctx(ctx).With().Str("submission_id", sub.ID.String()).Logger()
	ctx = logger.WithContext(ctx)

	must(sub.transition(PhaseValidating))
	req, err := NewRequest(form.Emails, form.Role, form.Message)
	if err != nil {
		must(sub.reject(err))
		logger.Info().Err(err).Msg("Invitation submission rejected")
		return sub
	}

	must(sub.transition(PhaseDispatching))
	results := d.Dispatch(ctx, req, opts...)
	must(sub.complete(results))

	summary := Summarize(results)
	logger.Info().
		Str("role", req.Role).
		Int("recipients", len(results)).
		Int("success", summary.SuccessCount).
		Int("failed", summary.FailedCount).
		Dur("elapsed", time.Since(sub.StartedAt)).
		Msg("Invitation submission completed")
	return sub
}

// must panics on an illegal transition, which can only come from a bug in Submit.
func must(err error) {
	if err != nil {
		panic(err)
	}
}
