package email

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"mime/multipart"
	"net/textproto"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	sestypes "github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/tuumbleweed/xerr"
)

/*
sendWithSES uses the SES v2 API with credentials from the default AWS chain.
Messages with attachments are sent as raw MIME, others as simple content.
*/
func sendWithSES(ctx context.Context, message Message) (messageID string, e *xerr.Error) {
	awsConfig, configErr := awsconfig.LoadDefaultConfig(ctx)
	if configErr != nil {
		return "", xerr.NewError(configErr, "load aws config for SES", message.Sender)
	}
	client := sesv2.NewFromConfig(awsConfig)

	input, e := buildSESInput(message)
	if e != nil {
		return "", e
	}

	output, sendErr := client.SendEmail(ctx, input)
	if sendErr != nil {
		return "", xerr.NewError(sendErr, "send email via SES", strings.Join(message.Recipients, ","))
	}
	return aws.ToString(output.MessageId), nil
}

func buildSESInput(message Message) (input *sesv2.SendEmailInput, e *xerr.Error) {
	input = &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(message.Sender),
		Destination:      &sestypes.Destination{ToAddresses: message.Recipients},
	}

	if len(message.Attachments) > 0 {
		raw, e := buildRawMIME(message)
		if e != nil {
			return nil, e
		}
		input.Content = &sestypes.EmailContent{Raw: &sestypes.RawMessage{Data: raw}}
		return input, nil
	}

	body := &sestypes.Body{}
	if message.Text != "" {
		body.Text = &sestypes.Content{Data: aws.String(message.Text), Charset: aws.String("UTF-8")}
	}
	if message.HTML != "" {
		body.Html = &sestypes.Content{Data: aws.String(message.HTML), Charset: aws.String("UTF-8")}
	}
	input.Content = &sestypes.EmailContent{
		Simple: &sestypes.Message{
			Subject: &sestypes.Content{Data: aws.String(message.Subject), Charset: aws.String("UTF-8")},
			Body:    body,
		},
	}
	return input, nil
}

// buildRawMIME renders a multipart/mixed message with an alternative text/html part.
func buildRawMIME(message Message) (raw []byte, e *xerr.Error) {
	var buf bytes.Buffer
	mixed := multipart.NewWriter(&buf)

	fmt.Fprintf(&buf, "From: %s\r\n", message.Sender)
	fmt.Fprintf(&buf, "To: %s\r\n", strings.Join(message.Recipients, ", "))
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", message.Subject))
	fmt.Fprintf(&buf, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=%q\r\n\r\n", mixed.Boundary())

	var alternativeBuf bytes.Buffer
	alternative := multipart.NewWriter(&alternativeBuf)
	parts := []struct{ contentType, body string }{
		{"text/plain; charset=UTF-8", message.Text},
		{"text/html; charset=UTF-8", message.HTML},
	}
	for _, part := range parts {
		if part.body == "" {
			continue
		}
		writer, err := alternative.CreatePart(textproto.MIMEHeader{"Content-Type": {part.contentType}})
		if err != nil {
			return nil, xerr.NewError(err, "create MIME body part", part.contentType)
		}
		_, _ = writer.Write([]byte(part.body))
	}
	if err := alternative.Close(); err != nil {
		return nil, xerr.NewError(err, "close MIME alternative part", message.Subject)
	}

	bodyWriter, err := mixed.CreatePart(textproto.MIMEHeader{
		"Content-Type": {fmt.Sprintf("multipart/alternative; boundary=%q", alternative.Boundary())},
	})
	if err != nil {
		return nil, xerr.NewError(err, "create MIME body", message.Subject)
	}
	_, _ = bodyWriter.Write(alternativeBuf.Bytes())

	for _, attachment := range message.Attachments {
		contentType := attachment.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		attachmentWriter, err := mixed.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {contentType},
			"Content-Transfer-Encoding": {"base64"},
			"Content-Disposition":       {fmt.Sprintf("attachment; filename=%q", attachment.Filename)},
		})
		if err != nil {
			return nil, xerr.NewError(err, "create MIME attachment", attachment.Filename)
		}
		encoded := base64.StdEncoding.EncodeToString(attachment.Data)
		for len(encoded) > 76 {
			_, _ = attachmentWriter.Write([]byte(encoded[:76] + "\r\n"))
			encoded = encoded[76:]
		}
		_, _ = attachmentWriter.Write([]byte(encoded))
	}

	if err := mixed.Close(); err != nil {
		return nil, xerr.NewError(err, "close MIME message", message.Subject)
	}
	return buf.Bytes(), nil
}
