package mail

import (
	"context"
	"fmt"
	"mime/multipart"
	"net/smtp"
	"net/textproto"
	"strings"
)

// SMTP sends mail through a plain-auth SMTP relay (e.g. smtp.gmail.com:587
// with an app password).
type SMTP struct {
	Host string
	Port string
	User string
	Pass string

	// send is smtp.SendMail; tests replace it.
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTP(host, port, user, pass string) *SMTP {
	return &SMTP{Host: host, Port: port, User: user, Pass: pass, send: smtp.SendMail}
}

func (s *SMTP) Send(ctx context.Context, msg Message) error {
	if s.User == "" || s.Pass == "" {
		return fmt.Errorf("smtp credentials: %w", ErrNotConfigured)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	from := msg.From
	if from == "" {
		from = s.User
	}
	body, err := buildMIME(from, msg)
	if err != nil {
		return fmt.Errorf("building message: %w", err)
	}

	auth := smtp.PlainAuth("", s.User, s.Pass, s.Host)
	if err := s.send(s.Host+":"+s.Port, auth, s.User, []string{msg.To}, body); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

// buildMIME renders msg as a multipart/alternative message with a text and
// an HTML part.
func buildMIME(from string, msg Message) ([]byte, error) {
	var b strings.Builder
	mw := multipart.NewWriter(&b)

	headers := []string{
		"To: " + msg.To,
		"From: " + from,
		"Subject: " + msg.Subject,
		"MIME-Version: 1.0",
		"Content-Type: multipart/alternative; boundary=" + mw.Boundary(),
	}
	if msg.ReplyTo != "" {
		headers = append(headers, "Reply-To: "+msg.ReplyTo)
	}
	for _, h := range headers {
		// Header values come from form input; a CR or LF would start a new header.
		b.WriteString(strings.NewReplacer("\r", "", "\n", "").Replace(h))
		b.WriteString("\r\n")
	}
	b.WriteString("\r\n")

	parts := []struct{ contentType, body string }{
		{"text/plain; charset=UTF-8", msg.Text},
		{"text/html; charset=UTF-8", msg.HTML},
	}
	for _, p := range parts {
		if p.body == "" {
			continue
		}
		w, err := mw.CreatePart(textproto.MIMEHeader{"Content-Type": {p.contentType}})
		if err != nil {
			return nil, err
		}
		if _, err := w.Write([]byte(p.body)); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}
	return []byte(b.String()), nil
}
