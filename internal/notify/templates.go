package notify

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"
)

const htmlTemplates = `
{{define "low_balance"}}<p>Hi {{.Name}},</p>
<p>Your available balance is now <strong>{{.Available}}</strong>, below your alert threshold of {{.Threshold}}.</p>{{end}}
{{define "goal_completed"}}<p>Congratulations {{.Name}}!</p>
<p>You reached your goal <strong>{{.Goal}}</strong> of {{.Target}}.</p>{{end}}
{{define "welcome"}}<p>Welcome {{.Name}}!</p>
<p>Your wallet is ready. Start by recording your first income.</p>{{end}}
{{define "group_invitation"}}<p>{{.Inviter}} invited you to join <strong>{{.Group}}</strong>.</p>
<p>Use the invite code <code>{{.Code}}</code> to join.</p>{{end}}
`

const textTemplates = `
{{define "low_balance"}}Hi {{.Name}}, your available balance is now {{.Available}}, below your alert threshold of {{.Threshold}}.{{end}}
{{define "goal_completed"}}Congratulations {{.Name}}! You reached your goal {{.Goal}} of {{.Target}}.{{end}}
{{define "welcome"}}Welcome {{.Name}}! Your wallet is ready.{{end}}
{{define "group_invitation"}}{{.Inviter}} invited you to join {{.Group}}. Invite code: {{.Code}}{{end}}
`

var (
	htmlTmpl = htmltemplate.Must(htmltemplate.New("mail").Parse(htmlTemplates))
	textTmpl = texttemplate.Must(texttemplate.New("mail").Parse(textTemplates))
)

func render(name string, data interface{}) (string, string, error) {
	var html, text bytes.Buffer
	if err := htmlTmpl.ExecuteTemplate(&html, name, data); err != nil {
		return "", "", fmt.Errorf("failed to render HTML template %s: %w", name, err)
	}
	if err := textTmpl.ExecuteTemplate(&text, name, data); err != nil {
		return "", "", fmt.Errorf("failed to render text template %s: %w", name, err)
	}
	return html.String(), text.String(), nil
}
