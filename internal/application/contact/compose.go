package contact

import (
	"fmt"
	"html"
	"strings"

	"github.com/sunroad/backend/internal/domain/contact"
	"github.com/sunroad/backend/internal/infrastructure/email"
)

// ComposeNotification builds the email delivered to the artist for one
// accepted submission. The HTML body escapes every sender-controlled value;
// the plain-text body carries them unescaped. Name and subject are
// newline-stripped wherever they end up in a header position.
func ComposeNotification(artistName, recipient string, sub contact.Submission) email.OutboundMessage {
	fromName := stripNewlines(sub.FromName)
	subject := stripNewlines(sub.Subject)

	return email.OutboundMessage{
		To:      recipient,
		ReplyTo: sub.FromEmail,
		Subject: fmt.Sprintf("New message from %s: %s", fromName, subject),
		HTML:    composeHTML(artistName, fromName, sub.FromEmail, subject, sub.Message),
		Text:    composeText(artistName, fromName, sub.FromEmail, subject, sub.Message),
	}
}

func composeHTML(artistName, fromName, fromEmail, subject, message string) string {
	var b strings.Builder
	b.WriteString("<h2>New contact message</h2>\n")
	fmt.Fprintf(&b, "<p>Hi %s, someone reached out through your Sun Road page.</p>\n", html.EscapeString(artistName))
	b.WriteString("<table>\n")
	fmt.Fprintf(&b, "<tr><td><strong>From</strong></td><td>%s &lt;%s&gt;</td></tr>\n",
		html.EscapeString(fromName), html.EscapeString(fromEmail))
	fmt.Fprintf(&b, "<tr><td><strong>Subject</strong></td><td>%s</td></tr>\n", html.EscapeString(subject))
	b.WriteString("</table>\n")
	fmt.Fprintf(&b, "<p>%s</p>\n", html.EscapeString(message))
	b.WriteString("<p>Reply to this email to answer directly.</p>\n")
	return b.String()
}

func composeText(artistName, fromName, fromEmail, subject, message string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s, someone reached out through your Sun Road page.\n\n", artistName)
	fmt.Fprintf(&b, "From: %s <%s>\n", fromName, fromEmail)
	fmt.Fprintf(&b, "Subject: %s\n\n", subject)
	b.WriteString(message)
	b.WriteString("\n\nReply to this email to answer directly.\n")
	return b.String()
}

func stripNewlines(s string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
}
