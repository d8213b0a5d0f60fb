package sendgrid

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/walletsign/go-walletsign-server/email"
	"github.com/walletsign/go-walletsign-server/types"
)

const mailSendURL = "https://api.sendgrid.com/v3/mail/send"

// SendgridSender implements email.Sender over the SendGrid v3 REST API
type SendgridSender struct {
	client *resty.Client
}

func NewSendgridSender(apiKey string) *SendgridSender {
	cl := resty.New().
		SetTimeout(time.Second * 10).
		SetAuthToken(apiKey).
		SetHeader("Content-Type", "application/json")
	return &SendgridSender{client: cl}
}

func (s *SendgridSender) Send(ctx context.Context, msg *types.Mail) error {
	if msg.From == "" || msg.To == "" {
		return types.ErrBadRequest
	}
	text := msg.BodyText
	if text == "" {
		text = email.HtmlToText(msg.BodyHTML)
	}
	// plain text part must precede the html part
	content := []map[string]string{
		{"type": "text/plain", "value": text},
	}
	if msg.BodyHTML != "" {
		content = append(content, map[string]string{"type": "text/html", "value": msg.BodyHTML})
	}
	body := map[string]interface{}{
		"personalizations": []map[string]interface{}{
			{"to": []map[string]string{{"email": msg.To}}},
		},
		"from":    map[string]string{"email": msg.From, "name": msg.FromName},
		"subject": msg.Subject,
		"content": content,
	}

	resp, err := s.client.R().SetContext(ctx).SetBody(body).Post(mailSendURL)
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("sendgrid: delivery failed with status %d", resp.StatusCode())
	}
	return nil
}

// returns a resty client (tests)
func (s *SendgridSender) GetClient() *resty.Client {
	return s.client
}
