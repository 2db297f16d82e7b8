package mail

import (
	"context"
	"fmt"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

// DefaultSendGridHost is the public SendGrid API.
const DefaultSendGridHost = "https://api.sendgrid.com"

const sendGridEndpoint = "/v3/mail/send"

// SendGrid sends mail through the SendGrid v3 API.
//
// An empty API key is not rejected locally; SendGrid refuses the request and
// the refusal surfaces as a *ProviderError.
type SendGrid struct {
	apiKey string
	host   string
}

func NewSendGrid(apiKey, host string) *SendGrid {
	if host == "" {
		host = DefaultSendGridHost
	}
	return &SendGrid{apiKey: apiKey, host: strings.TrimRight(host, "/")}
}

func (s *SendGrid) Send(ctx context.Context, msg Message) error {
	m := sgmail.NewSingleEmail(
		sgmail.NewEmail("", msg.From),
		msg.Subject,
		sgmail.NewEmail("", msg.To),
		msg.Text,
		msg.HTML,
	)
	if msg.ReplyTo != "" {
		m.SetReplyTo(sgmail.NewEmail("", msg.ReplyTo))
	}

	request := sendgrid.GetRequest(s.apiKey, sendGridEndpoint, s.host)
	request.Method = "POST"
	request.Body = sgmail.GetRequestBody(m)

	resp, err := sendgrid.MakeRequestWithContext(ctx, request)
	if err != nil {
		return fmt.Errorf("sendgrid request: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &ProviderError{Provider: "sendgrid", StatusCode: resp.StatusCode, Body: resp.Body}
	}
	return nil
}
