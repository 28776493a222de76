package invitations

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Sender delivers one invitation. Implementations must honor ctx cancellation.
type Sender interface {
	Send(ctx context.Context, inv Invitation) error
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(ctx context.Context, inv Invitation) error

func (f SenderFunc) Send(ctx context.Context, inv Invitation) error {
	return f(ctx, inv)
}

var errSimulatedReject = errors.New("simulated delivery failure")

// SimulatedSender stands in for the mail API: it waits Delay and succeeds,
// except for recipients whose domain is listed in FailDomains.
type SimulatedSender struct {
	Delay       time.Duration
	FailDomains []string
}

func (s *SimulatedSender) Send(ctx context.Context, inv Invitation) error {
	if s.Delay > 0 {
		t := time.NewTimer(s.Delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
	domain := inv.Recipient[strings.LastIndex(inv.Recipient, "@")+1:]
	for _, d := range s.FailDomains {
		if strings.EqualFold(d, domain) {
			return errSimulatedReject
		}
	}
	return nil
}
