package contact

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sunroad/backend/internal/domain/contact"
)

func TestComposeNotification(t *testing.T) {
	t.Run("escapes sender values in html only", func(t *testing.T) {
		sub := contact.Submission{
			FromName:  `Mallory <script>`,
			FromEmail: "mallory@example.com",
			Subject:   `"quotes" & <tags>`,
			Message:   `Hello <b>world</b> & 'friends'`,
		}

		out := ComposeNotification("Luna Waves", "luna@example.com", sub)

		assert.NotContains(t, out.HTML, "<script>")
		assert.Contains(t, out.HTML, "&lt;script&gt;")
		assert.Contains(t, out.HTML, "&amp;")
		assert.NotContains(t, out.HTML, "<b>world</b>")

		// Plain text keeps the raw values
		assert.Contains(t, out.Text, "Mallory <script>")
		assert.Contains(t, out.Text, "Hello <b>world</b> & 'friends'")
	})

	t.Run("strips newlines from header positions", func(t *testing.T) {
		sub := contact.Submission{
			FromName:  "Line\nBreaker",
			FromEmail: "breaker@example.com",
			Subject:   "Part one\r\npart two",
			Message:   "A perfectly ordinary message body.",
		}

		out := ComposeNotification("Luna Waves", "luna@example.com", sub)

		assert.NotContains(t, out.Subject, "\n")
		assert.NotContains(t, out.Subject, "\r")
		assert.Contains(t, out.Subject, "Line Breaker")
		assert.Contains(t, out.Subject, "Part one  part two")
	})

	t.Run("sets reply_to to the sender", func(t *testing.T) {
		sub := contact.Submission{
			FromName:  "A Fan",
			FromEmail: "fan@example.com",
			Subject:   "Hi",
			Message:   "A perfectly ordinary message body.",
		}

		out := ComposeNotification("Luna Waves", "luna@example.com", sub)

		assert.Equal(t, "luna@example.com", out.To)
		assert.Equal(t, "fan@example.com", out.ReplyTo)
		assert.True(t, strings.HasPrefix(out.Subject, "New message from A Fan"))
	})
}
