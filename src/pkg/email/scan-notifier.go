package email

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/tuumbleweed/xerr"

	"document-scanner/src/pkg/frame"
	"document-scanner/src/pkg/scan"
)

/*
ScanNotifier emails every finished scan to the configured recipients.
The recognized text goes into the body and the document (the frame that was
sent to OCR) is attached as PNG.
*/
type ScanNotifier struct {
	cfg Config
}

func NewScanNotifier(cfg Config) *ScanNotifier {
	return &ScanNotifier{cfg: cfg}
}

func (n *ScanNotifier) Notify(ctx context.Context, result scan.Result, document *frame.Frame) (e *xerr.Error) {
	message, e := n.BuildMessage(result, document)
	if e != nil {
		return e
	}
	sendEmails := n.cfg.SendEmails
	return SendMessageWithContext(ctx, n.cfg.Provider, &sendEmails, message)
}

// BuildMessage renders the email for one scan result.
func (n *ScanNotifier) BuildMessage(result scan.Result, document *frame.Frame) (message Message, e *xerr.Error) {
	message = Message{
		Sender:     n.cfg.Sender,
		Recipients: n.cfg.Recipients,
		Subject:    ScanSubject(n.cfg.SubjectPrefix, result),
		Text:       ScanText(result),
		HTML:       ScanHTML(result),
	}

	if n.cfg.SkipAttachment || document.Empty() {
		return message, nil
	}

	data, e := document.PNG()
	if e != nil {
		return message, e
	}
	message.Attachments = []Attachment{{
		Filename:    fmt.Sprintf("%s_%s", result.RunID, scan.ArtifactCrop),
		ContentType: "image/png",
		Data:        data,
	}}
	return message, nil
}

func ScanSubject(prefix string, result scan.Result) string {
	subject := fmt.Sprintf("Scan of %s", result.Source)
	if result.MRZFormat != "" {
		subject = fmt.Sprintf("%s (%s MRZ)", subject, result.MRZFormat)
	} else if !result.HasText {
		subject += " (no text)"
	}
	if prefix = strings.TrimSpace(prefix); prefix != "" {
		subject = prefix + " " + subject
	}
	return subject
}

func ScanText(result scan.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Source: %s\n", result.Source)
	fmt.Fprintf(&b, "Run: %s\n", result.RunID)
	fmt.Fprintf(&b, "Frame: %dx%d\n", result.OriginalWidth, result.OriginalHeight)
	if result.Cropped {
		fmt.Fprintf(&b, "Document region: %dx%d\n", result.Width, result.Height)
	} else {
		fmt.Fprintf(&b, "Document region: not cropped (%s)\n", cropReason(result))
	}
	if len(result.MRZ) > 0 {
		fmt.Fprintf(&b, "\nMRZ (%s):\n%s\n", result.MRZFormat, strings.Join(result.MRZ, "\n"))
	}
	b.WriteString("\nText:\n")
	if result.HasText {
		b.WriteString(strings.TrimSpace(result.Text))
	} else {
		b.WriteString("(no text recognized)")
	}
	b.WriteString("\n")
	return b.String()
}

func ScanHTML(result scan.Result) string {
	var b strings.Builder
	b.WriteString("<html><body>\n")
	fmt.Fprintf(&b, "<h2>Scan of %s</h2>\n", html.EscapeString(result.Source))
	b.WriteString("<table>\n")
	fmt.Fprintf(&b, "<tr><td>Run</td><td>%s</td></tr>\n", html.EscapeString(result.RunID))
	fmt.Fprintf(&b, "<tr><td>Frame</td><td>%dx%d</td></tr>\n", result.OriginalWidth, result.OriginalHeight)
	if result.Cropped {
		fmt.Fprintf(&b, "<tr><td>Document region</td><td>%dx%d</td></tr>\n", result.Width, result.Height)
	} else {
		fmt.Fprintf(&b, "<tr><td>Document region</td><td>not cropped (%s)</td></tr>\n", html.EscapeString(cropReason(result)))
	}
	b.WriteString("</table>\n")
	if len(result.MRZ) > 0 {
		fmt.Fprintf(&b, "<h3>MRZ (%s)</h3>\n<pre>%s</pre>\n", result.MRZFormat, html.EscapeString(strings.Join(result.MRZ, "\n")))
	}
	b.WriteString("<h3>Text</h3>\n")
	if result.HasText {
		fmt.Fprintf(&b, "<pre>%s</pre>\n", html.EscapeString(strings.TrimSpace(result.Text)))
	} else {
		b.WriteString("<p><i>no text recognized</i></p>\n")
	}
	b.WriteString("</body></html>\n")
	return b.String()
}

func cropReason(result scan.Result) string {
	if result.CropError != "" {
		return result.CropError
	}
	return "disabled"
}
