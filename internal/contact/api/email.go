package api

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/wxmohd/walaa-dev/internal/contact"
	"github.com/wxmohd/walaa-dev/internal/mail"
)

var htmlBody = template.Must(template.New("contact").Parse(`<h3>New Contact Form Submission</h3>
<p><strong>Name:</strong> {{.Name}}</p>
<p><strong>Email:</strong> {{.Email}}</p>
<p><strong>Message:</strong> {{.Message}}</p>
`))

// Compose builds the notification sent to the site owner. Submitted values
// are escaped in the HTML part.
func Compose(fields contact.Fields, to, from string) (mail.Message, error) {
	var html bytes.Buffer
	if err := htmlBody.Execute(&html, fields); err != nil {
		return mail.Message{}, fmt.Errorf("rendering html body: %w", err)
	}

	var text strings.Builder
	fmt.Fprintf(&text, "Name: %s\n", fields.Name)
	fmt.Fprintf(&text, "Email: %s\n", fields.Email)
	fmt.Fprintf(&text, "Message: %s\n", fields.Message)

	return mail.Message{
		To:      to,
		From:    from,
		ReplyTo: fields.Email,
		Subject: "New Contact Form Submission from " + fields.Name,
		Text:    text.String(),
		HTML:    html.String(),
	}, nil
}
