package emails

import (
	"bytes"
	"html/template"
	"time"
)

const (
	senderName   = "YUIME"
	supportEmail = "support@yuime.jp"
)

var layoutTmpl = template.Must(template.New("layout").Parse(`<!DOCTYPE html>
<html lang="ja">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>{{.Title}}</title>
  <style>
    body { margin: 0; padding: 0; background-color: #F3F4F6; font-family: 'Hiragino Sans', 'Noto Sans JP', Meiryo, sans-serif; color: #1F2937; }
    .content-body p { margin: 0 0 20px 0; font-size: 15px; line-height: 1.7; }
    .content-body h1 { font-size: 20px; margin: 0 0 20px 0; }
    .button { display: inline-block; background-color: #2563EB; color: #ffffff !important; padding: 12px 32px; text-decoration: none; border-radius: 6px; font-weight: 600; }
    .footer-text { color: #6B7280; font-size: 12px; }
  </style>
</head>
<body>
  <table role="presentation" width="100%" cellspacing="0" cellpadding="0">
    <tr>
      <td align="center" style="padding: 40px 0;">
        <table role="presentation" width="600" cellspacing="0" cellpadding="0" style="background-color: #FFFFFF; border-radius: 8px;">
          <tr><td class="content-body" style="padding: 40px 48px 24px 48px;">{{.Content}}</td></tr>
          <tr>
            <td align="center" style="padding: 24px 48px 32px 48px;">
              <p class="footer-text">ご不明な点は <a href="mailto:{{.Support}}">{{.Support}}</a> までお問い合わせください。</p>
              <p class="footer-text">© {{.Year}} YUIME</p>
            </td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>`))

// Layout wraps already-rendered content in the shared mail frame.
func Layout(title string, content template.HTML) (string, error) {
	var buf bytes.Buffer
	err := layoutTmpl.Execute(&buf, struct {
		Title   string
		Content template.HTML
		Support string
		Year    int
	}{title, content, supportEmail, time.Now().Year()})
	return buf.String(), err
}
