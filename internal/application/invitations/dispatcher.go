package invitations

import (
	"context"
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const DefaultConcurrency = 4

// Policy controls how each recipient is attempted. The zero value sends every
// recipient once, four at a time, with no per-attempt timeout.
type Policy struct {
	Retries     int
	Timeout     time.Duration
	Concurrency int
	Backoff     time.Duration
}

func (p Policy) normalized() Policy {
	if p.Retries < 0 {
		p.Retries = 0
	}
	if p.Concurrency <= 0 {
		p.Concurrency = DefaultConcurrency
	}
	if p.Timeout < 0 {
		p.Timeout = 0
	}
	return p
}

// Option overrides the dispatcher policy for a single call.
type Option func(*Policy)

// WithRetries sets how many times a failed recipient is retried (0 = one attempt).
func WithRetries(n int) Option {
	return func(p *Policy) { p.Retries = n }
}

// WithTimeout bounds each send attempt.
func WithTimeout(d time.Duration) Option {
	return func(p *Policy) { p.Timeout = d }
}

// Dispatcher sends a validated Request to every recipient and collects one
// Result per recipient.
type Dispatcher struct {
	Sender  Sender
	Policy  Policy
	Limiter *rate.Limiter
	// OnResult, when set, is called once per recipient as soon as its outcome is known.
	OnResult func(Result)
}

// Dispatch sends req to every recipient independently. A failing recipient
// never stops the others. It returns once every recipient has an outcome;
// results follow the order of req.Recipients regardless of completion order.
// Cancelling ctx does not cut the batch short.
func (d *Dispatcher) Dispatch(ctx context.Context, req *Request, opts ...Option) []Result {
	if req == nil {
		return []Result{}
	}
	p := d.Policy
	for _, opt := range opts {
		opt(&p)
	}
	p = p.normalized()
	ctx = context.WithoutCancel(ctx)

	results := make([]Result, len(req.Recipients))
	var g errgroup.Group
	g.SetLimit(p.Concurrency)
	for i, recipient := range req.Recipients {
		g.Go(func() error {
			results[i] = d.sendOne(ctx, p, Invitation{
				Recipient: recipient,
				Role:      req.Role,
				Message:   req.Message,
			})
			if d.OnResult != nil {
				d.OnResult(results[i])
			}
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (d *Dispatcher) sendOne(ctx context.Context, p Policy, inv Invitation) Result {
	attempts := 0
	err := retry.Do(
		func() error {
			attempts++
			return d.attempt(ctx, p, inv)
		},
		retry.Context(ctx),
		retry.Attempts(uint(p.Retries)+1),
		retry.Delay(p.Backoff),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrRecipientSendFailed, err)
		log.Ctx(ctx).Warn().Str("recipient", inv.Recipient).Int("attempts", attempts).Err(err).Msg("Invitation send failed")
		return Result{
			Recipient: inv.Recipient,
			Status:    StatusFailed,
			Reason:    err.Error(),
			Attempts:  attempts,
			Err:       err,
		}
	}
	return Result{Recipient: inv.Recipient, Status: StatusSuccess, Attempts: attempts}
}

func (d *Dispatcher) attempt(ctx context.Context, p Policy, inv Invitation) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("sender panic: %v", r)
		}
	}()
	if d.Sender == nil {
		return retry.Unrecoverable(ErrNoSender)
	}
	if d.Limiter != nil {
		if err := d.Limiter.Wait(ctx); err != nil {
			return err
		}
	}
	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}
	return d.Sender.Send(ctx, inv)
}
