package email

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/walletsign/go-walletsign-server/types"
)

type noopSender struct{}

func (n *noopSender) Send(ctx context.Context, msg *types.Mail) error { return nil }

func TestSenderRegistry(t *testing.T) {
	unregisterAllSenders()
	RegisterSender("noop", &noopSender{})

	assert.NotNil(t, GetSender("noop"))
	assert.Nil(t, GetSender("missing"))
	assert.Equal(t, []string{"noop"}, Senders())

	assert.Panics(t, func() { RegisterSender("noop", &noopSender{}) })
	unregisterAllSenders()
}

func TestHtmlToText(t *testing.T) {
	text := HtmlToText("<p>Your verification code is:</p>\n<p style=\"font-size:24px\"><b>314159</b></p>")
	assert.Equal(t, "Your verification code is: 314159", text)
}
