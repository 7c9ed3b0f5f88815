// Package email sends messages through Amazon SES, Mailgun or SendGrid.
package email

import (
	"context"
	"fmt"
	"strings"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"github.com/tuumbleweed/xerr"
)

type Provider string

const (
	ProviderSES      Provider = "ses"
	ProviderMailgun  Provider = "mailgun"
	ProviderSendgrid Provider = "sendgrid"
)

// Attachment is a file sent along with a message.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

type Message struct {
	Sender      string
	Recipients  []string
	Subject     string
	Text        string
	HTML        string
	Attachments []Attachment
}

// sendFunc delivers a message and returns the provider's message id.
type sendFunc func(ctx context.Context, message Message) (messageID string, e *xerr.Error)

var providers = map[Provider]sendFunc{
	ProviderSES:      sendWithSES,
	ProviderMailgun:  sendWithMailgun,
	ProviderSendgrid: sendWithSendgrid,
}

// RequiredEnvVars lists the environment variables each provider reads.
func RequiredEnvVars(provider Provider) []string {
	switch provider {
	case ProviderSES:
		return []string{"AWS_ACCESS_KEY_ID", "AWS_SECRET_ACCESS_KEY", "AWS_REGION"}
	case ProviderMailgun:
		return []string{"MAILGUN_DOMAIN", "MAILGUN_API_KEY"}
	case ProviderSendgrid:
		return []string{"SENDGRID_API_KEY"}
	default:
		return nil
	}
}

/*
SendMessage sends one email through provider.

When sendEmails is nil or false the message is only logged, which lets
programs run end to end without touching a real mailbox.
*/
func SendMessage(
	provider Provider,
	sendEmails *bool,
	sender string,
	recipients []string,
	subject string,
	text string,
	html string,
	attachments []Attachment,
) (e *xerr.Error) {
	message := Message{
		Sender:      sender,
		Recipients:  recipients,
		Subject:     subject,
		Text:        text,
		HTML:        html,
		Attachments: attachments,
	}
	return SendMessageWithContext(context.Background(), provider, sendEmails, message)
}

// SendMessageWithContext is SendMessage for callers that carry a context.
func SendMessageWithContext(ctx context.Context, provider Provider, sendEmails *bool, message Message) (e *xerr.Error) {
	message.Recipients = cleanRecipients(message.Recipients)

	e = validateMessage(message)
	if e != nil {
		return e
	}

	send, ok := providers[Provider(strings.ToLower(string(provider)))]
	if !ok {
		err := fmt.Errorf("unknown email provider %q", provider)
		return xerr.NewError(err, "select email provider", string(provider))
	}

	if sendEmails == nil || !*sendEmails {
		tl.Log(
			tl.Important, palette.PurpleBold, "Not sending email '%s' to '%s' via %s: %s",
			message.Subject, strings.Join(message.Recipients, ", "), provider, "sending is disabled",
		)
		return nil
	}

	tl.Log(
		tl.Info, palette.Blue, "Sending email '%s' from '%s' to '%s' via %s (%s attachments)",
		message.Subject, message.Sender, strings.Join(message.Recipients, ", "), provider, fmt.Sprintf("%d", len(message.Attachments)),
	)

	messageID, e := send(ctx, message)
	if e != nil {
		return e
	}

	tl.Log(tl.Info1, palette.Green, "Email sent via %s, message id '%s'", provider, messageID)
	return nil
}

func cleanRecipients(recipients []string) []string {
	cleaned := make([]string, 0, len(recipients))
	for _, recipient := range recipients {
		trimmed := strings.TrimSpace(recipient)
		if trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	return cleaned
}

func validateMessage(message Message) (e *xerr.Error) {
	if strings.TrimSpace(message.Sender) == "" {
		err := fmt.Errorf("sender is empty")
		return xerr.NewError(err, "validate email", message.Subject)
	}
	if len(message.Recipients) == 0 {
		err := fmt.Errorf("no recipients")
		return xerr.NewError(err, "validate email", message.Subject)
	}
	if message.Text == "" && message.HTML == "" {
		err := fmt.Errorf("both text and html bodies are empty")
		return xerr.NewError(err, "validate email", message.Subject)
	}
	return nil
}
