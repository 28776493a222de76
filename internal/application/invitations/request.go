package invitations

import (
	"slices"
	"strings"

	policies "yuime-backend/internal/application/policies/invitations"
	"yuime-backend/internal/pkg/constants"
)

// Request is a validated bulk invitation. Build it with NewRequest.
type Request struct {
	Recipients []string
	Role       string
	Message    string
}

// Invitation is what a Sender delivers to one recipient.
type Invitation struct {
	Recipient string
	Role      string
	Message   string
}

// NewRequest parses the raw recipient field and validates the submission.
// The returned error is a *policies.ValidationError.
func NewRequest(rawRecipients, role, message string) (*Request, error) {
	recipients := slices.Collect(ParseRecipients(rawRecipients))
	role = strings.TrimSpace(role)
	if err := policies.Validate(recipients, role, constants.InviteRoles); err != nil {
		return nil, err
	}
	return &Request{
		Recipients: recipients,
		Role:       role,
		Message:    strings.TrimSpace(message),
	}, nil
}
