package email

import (
	"context"
	"os"
	"strings"

	"github.com/mailgun/mailgun-go/v4"
	"github.com/tuumbleweed/xerr"
)

// sendWithMailgun reads MAILGUN_DOMAIN and MAILGUN_API_KEY; MAILGUN_API_BASE switches region (e.g. EU).
func sendWithMailgun(ctx context.Context, message Message) (messageID string, e *xerr.Error) {
	mg := mailgun.NewMailgun(os.Getenv("MAILGUN_DOMAIN"), os.Getenv("MAILGUN_API_KEY"))
	if apiBase := strings.TrimSpace(os.Getenv("MAILGUN_API_BASE")); apiBase != "" {
		mg.SetAPIBase(apiBase)
	}

	mgMessage := mg.NewMessage(message.Sender, message.Subject, message.Text, message.Recipients...)
	if message.HTML != "" {
		mgMessage.SetHtml(message.HTML)
	}
	for _, attachment := range message.Attachments {
		mgMessage.AddBufferAttachment(attachment.Filename, attachment.Data)
	}

	_, id, sendErr := mg.Send(ctx, mgMessage)
	if sendErr != nil {
		return "", xerr.NewError(sendErr, "send email via Mailgun", strings.Join(message.Recipients, ","))
	}
	return id, nil
}
