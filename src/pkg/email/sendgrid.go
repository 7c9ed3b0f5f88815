package email

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/tuumbleweed/xerr"
)

// sendWithSendgrid reads SENDGRID_API_KEY.
func sendWithSendgrid(ctx context.Context, message Message) (messageID string, e *xerr.Error) {
	client := sendgrid.NewSendClient(os.Getenv("SENDGRID_API_KEY"))

	response, sendErr := client.SendWithContext(ctx, buildSendgridMail(message))
	if sendErr != nil {
		return "", xerr.NewError(sendErr, "send email via SendGrid", strings.Join(message.Recipients, ","))
	}
	return checkSendgridResponse(response)
}

func buildSendgridMail(message Message) *mail.SGMailV3 {
	sgMail := mail.NewV3Mail()
	sgMail.SetFrom(mail.NewEmail("", message.Sender))
	sgMail.Subject = message.Subject

	personalization := mail.NewPersonalization()
	for _, recipient := range message.Recipients {
		personalization.AddTos(mail.NewEmail("", recipient))
	}
	sgMail.AddPersonalizations(personalization)

	if message.Text != "" {
		sgMail.AddContent(mail.NewContent("text/plain", message.Text))
	}
	if message.HTML != "" {
		sgMail.AddContent(mail.NewContent("text/html", message.HTML))
	}

	for _, attachment := range message.Attachments {
		sgAttachment := mail.NewAttachment()
		sgAttachment.SetContent(base64.StdEncoding.EncodeToString(attachment.Data))
		sgAttachment.SetType(attachment.ContentType)
		sgAttachment.SetFilename(attachment.Filename)
		sgAttachment.SetDisposition("attachment")
		sgMail.AddAttachment(sgAttachment)
	}

	return sgMail
}

// checkSendgridResponse turns a non-2xx answer into an error; SendGrid reports most failures that way.
func checkSendgridResponse(response *rest.Response) (messageID string, e *xerr.Error) {
	if response == nil {
		err := fmt.Errorf("empty response")
		return "", xerr.NewError(err, "send email via SendGrid", "nil response")
	}
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		err := fmt.Errorf("status %d: %s", response.StatusCode, response.Body)
		return "", xerr.NewError(err, "send email via SendGrid", fmt.Sprintf("%d", response.StatusCode))
	}
	if ids := response.Headers["X-Message-Id"]; len(ids) > 0 {
		return ids[0], nil
	}
	return "", nil
}
