package inform

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"
	"text/template"

	"github.com/jordan-wright/email"
	"github.com/prismwriting/prism/internal/pkg/messages"
	"github.com/spf13/viper"
)

type mailTemplate struct {
	subject *template.Template
	text    *template.Template
}

// TemplateMailMaker renders quote and newsletter emails from text templates
type TemplateMailMaker struct {
	from      string
	baseURL   string
	templates map[string]*mailTemplate
}

var defaultTemplates = map[string][2]string{
	messages.MailQuote: {
		"Your translation quote {{.ID}}",
		`Hello {{.Name}},

thank you for your request. {{.Text}}

Reply to this email or contact us to proceed with the order.

Prism Writing`},
	messages.MailNewsletterConfirm: {
		"Please confirm your subscription",
		`Hello,

please confirm your newsletter subscription by opening the link:
{{.Link}}

If you did not subscribe, ignore this email.

Prism Writing`},
}

// NewTemplateMailMaker creates the maker, "mail.<kind>.subject" and "mail.<kind>.text"
// override the built in templates
func NewTemplateMailMaker(c *viper.Viper) (*TemplateMailMaker, error) {
	res := &TemplateMailMaker{from: c.GetString("mail.from"), baseURL: strings.TrimSuffix(c.GetString("mail.baseURL"), "/"),
		templates: map[string]*mailTemplate{}}
	if res.from == "" {
		return nil, fmt.Errorf("no mail.from")
	}
	for k, v := range defaultTemplates {
		subject, text := v[0], v[1]
		if s := c.GetString("mail." + k + ".subject"); s != "" {
			subject = s
		}
		if s := c.GetString("mail." + k + ".text"); s != "" {
			text = s
		}
		var err error
		mt := &mailTemplate{}
		if mt.subject, err = template.New(k + "-subject").Parse(subject); err != nil {
			return nil, fmt.Errorf("can't parse %s subject: %w", k, err)
		}
		if mt.text, err = template.New(k + "-text").Parse(text); err != nil {
			return nil, fmt.Errorf("can't parse %s text: %w", k, err)
		}
		res.templates[k] = mt
	}
	return res, nil
}

type mailData struct {
	*messages.MailMessage
	Link string
}

// Make prepares the email
func (mm *TemplateMailMaker) Make(m *messages.MailMessage) (*email.Email, error) {
	mt, ok := mm.templates[m.Kind]
	if !ok {
		return nil, fmt.Errorf("unknown mail kind '%s'", m.Kind)
	}
	d := &mailData{MailMessage: m}
	if m.Token != "" {
		d.Link = mm.baseURL + "/newsletter/confirm/" + url.PathEscape(m.Token)
	}
	subject, err := execute(mt.subject, d)
	if err != nil {
		return nil, err
	}
	text, err := execute(mt.text, d)
	if err != nil {
		return nil, err
	}
	res := email.NewEmail()
	res.From = mm.from
	res.To = []string{m.Email}
	res.Subject = strings.TrimSpace(subject)
	res.Text = []byte(text)
	return res, nil
}

func execute(t *template.Template, d *mailData) (string, error) {
	var b bytes.Buffer
	if err := t.Execute(&b, d); err != nil {
		return "", fmt.Errorf("can't execute %s: %w", t.Name(), err)
	}
	return b.String(), nil
}
