package mail_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/aussiebroadwan/stackplate/internal/server/mail"
	"github.com/stretchr/testify/require"
)

func testMessage() mail.ResetMessage {
	return mail.ResetMessage{
		To:       "a@x.com",
		Username: "alice",
		Company:  "Acme",
		Link:     "https://app.acme.test/reset?email=a%40x.com&key=abc123",
		Valid:    24 * time.Hour,
	}
}

func TestRender(t *testing.T) {
	text, html, err := mail.Render(testMessage())
	require.NoError(t, err)

	require.Contains(t, text, "Hi alice,")
	require.Contains(t, text, "https://app.acme.test/reset?email=a%40x.com&key=abc123")
	require.Contains(t, text, "24 hours")

	// html/template escapes the ampersand inside the attribute
	require.Contains(t, html, `href="https://app.acme.test/reset?email=a%40x.com&amp;key=abc123"`)
	require.Contains(t, html, "Acme account")
}

func TestRender_EscapesUsername(t *testing.T) {
	msg := testMessage()
	msg.Username = "<script>alert(1)</script>"

	_, html, err := mail.Render(msg)
	require.NoError(t, err)
	require.NotContains(t, html, "<script>")
}

func TestCompose(t *testing.T) {
	out, err := mail.Compose("noreply@acme.test", testMessage())
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = out.WriteTo(&buf)
	require.NoError(t, err)

	raw := buf.String()
	require.Contains(t, raw, "Subject: Reset your Acme password")
	require.Contains(t, raw, "<a@x.com>")
	require.Contains(t, raw, "multipart/alternative")
}

func TestCompose_RejectsBadAddress(t *testing.T) {
	_, err := mail.Compose("not an address", testMessage())
	require.Error(t, err)
}

func TestSMTPMailer_NotConfigured(t *testing.T) {
	m := mail.NewSMTPMailer(mail.Config{})
	err := m.SendReset(context.Background(), testMessage())
	require.ErrorIs(t, err, mail.ErrNotConfigured)
}
