package invitations

import (
	"encoding/json"
	"errors"
	"slices"

	invsvc "yuime-backend/internal/application/invitations"
	policies "yuime-backend/internal/application/policies/invitations"
	"yuime-backend/internal/pkg/constants"
	"yuime-backend/internal/pkg/response"
	"yuime-backend/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
)

// Handlers bundles the staff invitation form endpoints.
type Handlers struct {
	Dispatcher *invsvc.Dispatcher
	// OnSubmitted, when set, sees every completed or rejected submission.
	OnSubmitted func(*invsvc.Submission)
}

type roleOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Roles GET /api/v1/invitations/roles: the 権限 select options, in display order.
func (h *Handlers) Roles(c *fiber.Ctx) error {
	opts := make([]roleOption, 0, len(constants.InviteRoles))
	for _, r := range constants.InviteRoles {
		opts = append(opts, roleOption{Value: r, Label: constants.RoleLabels[r]})
	}
	return response.Success(c, "Roles fetched", opts, nil)
}

// Preview POST /api/v1/invitations/preview {"emails": "..."}: live recipient
// count plus the addresses that would block submission.
func (h *Handlers) Preview(c *fiber.Ctx) error {
	var form invsvc.Form
	if err := json.Unmarshal(c.Body(), &form); err != nil {
		return response.BadRequest(c, "Invalid request body", nil)
	}
	recipients := slices.Collect(invsvc.ParseRecipients(form.Emails))
	invalid := validation.InvalidEmails(recipients)
	if invalid == nil {
		invalid = []string{}
	}
	dups := validation.Duplicates(recipients)
	if dups == nil {
		dups = []string{}
	}
	return response.Success(c, "Preview", fiber.Map{
		"count":      invsvc.CountRecipients(form.Emails),
		"invalid":    invalid,
		"duplicates": dups,
	}, nil)
}

// Submit POST /api/v1/invitations {"emails", "role", "message"}.
// Rejections answer 400 with the form message. A completed dispatch answers
// 200 even when some recipients failed; the summary says which.
func (h *Handlers) Submit(c *fiber.Ctx) error {
	var form invsvc.Form
	if err := json.Unmarshal(c.Body(), &form); err != nil {
		return response.BadRequest(c, "Invalid request body", nil)
	}
	sub := h.Dispatcher.Submit(c.UserContext(), form)
	if h.OnSubmitted != nil {
		h.OnSubmitted(sub)
	}

	if sub.Phase() == invsvc.PhaseRejected {
		err := sub.Err()
		details := fiber.Map{
			"kind":          rejectionKind(err),
			"submission_id": sub.ID.String(),
		}
		var ve *policies.ValidationError
		if errors.As(err, &ve) && len(ve.Addresses) > 0 {
			details["addresses"] = ve.Addresses
		}
		return response.BadRequest(c, messageOf(err), details)
	}

	summary := sub.Summary()
	msg := "招待を送信しました"
	if summary.FailedCount > 0 {
		msg = "一部の招待の送信に失敗しました"
	}
	return response.Success(c, msg, fiber.Map{
		"submission_id": sub.ID.String(),
		"phase":         sub.Phase(),
		"summary":       summary,
	}, nil)
}

// Register mounts the invitation routes under group.
func (h *Handlers) Register(group fiber.Router) {
	group.Get("/roles", h.Roles)
	group.Post("/preview", h.Preview)
	group.Post("/", h.Submit)
}

func rejectionKind(err error) string {
	switch {
	case errors.Is(err, policies.ErrEmptyRecipients):
		return "empty_recipients"
	case errors.Is(err, policies.ErrInvalidEmailFormat):
		return "invalid_email_format"
	case errors.Is(err, policies.ErrDuplicateRecipients):
		return "duplicate_recipients"
	case errors.Is(err, policies.ErrMissingRole):
		return "missing_role"
	}
	return "invalid"
}

// messageOf returns the sentinel's form message without the address list.
func messageOf(err error) string {
	var ve *policies.ValidationError
	if errors.As(err, &ve) {
		return ve.Err.Error()
	}
	return err.Error()
}
