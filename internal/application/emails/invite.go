package emails

import (
	"bytes"
	"context"
	"html/template"
	"net/url"

	"yuime-backend/internal/application/invitations"
	"yuime-backend/internal/pkg/constants"
)

const inviteSubject = "【YUIME】管理コンソールへの招待"

var inviteTmpl = template.Must(template.New("invite").Parse(`
    <h1>管理コンソールへの招待</h1>
    <p>YUIME 管理コンソールに<strong>{{.RoleLabel}}</strong>として招待されました。</p>
    {{if .Message}}<p style="white-space: pre-wrap; background: #F9FAFB; padding: 12px; border-radius: 6px;">{{.Message}}</p>{{end}}
    <p>下のボタンから招待を承認し、アカウントを作成してください。</p>
    <p style="text-align: center;"><a href="{{.Link}}" class="button">招待を承認する</a></p>
    <p style="font-size: 13px; color: #6B7280;">このリンクの有効期限は7日間です。心当たりのない場合はこのメールを破棄してください。</p>
`))

// InviteSender delivers staff invitations through Brevo.
type InviteSender struct {
	Client  *BrevoClient
	BaseURL string
}

var _ invitations.Sender = (*InviteSender)(nil)

func (s *InviteSender) Send(ctx context.Context, inv invitations.Invitation) error {
	html, err := RenderInvite(s.BaseURL, inv)
	if err != nil {
		return err
	}
	return s.Client.Send(ctx, inv.Recipient, inviteSubject, html)
}

// InviteLink points at the console's accept-invitation page.
func InviteLink(baseURL string, inv invitations.Invitation) string {
	q := url.Values{}
	q.Set("email", inv.Recipient)
	q.Set("role", inv.Role)
	return baseURL + "/invite/accept?" + q.Encode()
}

// RenderInvite renders the full invitation email.
func RenderInvite(baseURL string, inv invitations.Invitation) (string, error) {
	label := constants.RoleLabels[inv.Role]
	if label == "" {
		label = inv.Role
	}
	var buf bytes.Buffer
	err := inviteTmpl.Execute(&buf, struct {
		RoleLabel string
		Message   string
		Link      string
	}{label, inv.Message, InviteLink(baseURL, inv)})
	if err != nil {
		return "", err
	}
	return Layout(inviteSubject, template.HTML(buf.String()))
}
