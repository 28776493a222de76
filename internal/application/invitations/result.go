package invitations

import (
	"slices"

	"github.com/samber/lo"
)

type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// Result is the outcome of sending one invitation.
type Result struct {
	Recipient string `json:"recipient"`
	Status    Status `json:"status"`
	Reason    string `json:"reason,omitempty"`
	Attempts  int    `json:"attempts"`
	Err       error  `json:"-"`
}

// Summary aggregates the results of one submission.
type Summary struct {
	SuccessCount int      `json:"success_count"`
	FailedCount  int      `json:"failed_count"`
	Details      []Result `json:"details"`
}

// Summarize counts outcomes. SuccessCount+FailedCount always equals len(results).
func Summarize(results []Result) Summary {
	ok := lo.CountBy(results, func(r Result) bool { return r.Status == StatusSuccess })
	details := slices.Clone(results)
	if details == nil {
		details = []Result{}
	}
	return Summary{
		SuccessCount: ok,
		FailedCount:  len(results) - ok,
		Details:      details,
	}
}
