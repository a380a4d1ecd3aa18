package mail

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/arkham-companion/internal/testutil"
)

func TestVerificationMessage(t *testing.T) {
	msg, err := VerificationMessage(TokenMail{Name: "Amanda", Email: "amanda@example.com", Token: "ABCDEF"})
	require.NoError(t, err)

	assert.Equal(t, "amanda@example.com", msg.To)
	assert.Equal(t, "Verify your email", msg.Subject)
	assert.Contains(t, msg.Body, "Hello Amanda")
	assert.Contains(t, msg.Body, "ABCDEF")
	assert.NotContains(t, msg.Body, "follow this link")
}

func TestResetPasswordMessageWithLink(t *testing.T) {
	msg, err := ResetPasswordMessage(TokenMail{
		Name:  "Amanda",
		Email: "amanda@example.com",
		Token: "QWERTY",
		Link:  "https://arkham.example.com/reset?email=amanda%40example.com&token=QWERTY",
	})
	require.NoError(t, err)

	assert.Equal(t, "Reset your password", msg.Subject)
	assert.Contains(t, msg.Body, "follow this link: https://arkham.example.com/reset?email=amanda%40example.com&token=QWERTY")
}

func TestSMTPSend(t *testing.T) {
	m := NewSMTP(SMTPConfig{Host: "mail.local", Port: 2525, Username: "u", Password: "p", From: "noreply@arkham"})

	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte
	var gotAuth smtp.Auth
	m.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotAuth, gotFrom, gotTo, gotMsg = addr, a, from, to, msg
		return nil
	}

	err := m.Send(context.Background(), Message{To: "amanda@example.com", Subject: "Hi", Body: "line1\nline2"})
	require.NoError(t, err)

	assert.Equal(t, "mail.local:2525", gotAddr)
	assert.NotNil(t, gotAuth)
	assert.Equal(t, "noreply@arkham", gotFrom)
	assert.Equal(t, []string{"amanda@example.com"}, gotTo)
	assert.True(t, strings.HasPrefix(string(gotMsg), "From: noreply@arkham\r\nTo: amanda@example.com\r\nSubject: Hi\r\n"))
	assert.True(t, strings.HasSuffix(string(gotMsg), "\r\n\r\nline1\r\nline2"))
}

func TestSMTPSendWrapsErrors(t *testing.T) {
	boom := errors.New("connection refused")
	m := NewSMTP(SMTPConfig{Host: "mail.local", Port: 25})
	m.send = func(string, smtp.Auth, string, []string, []byte) error { return boom }

	err := m.Send(context.Background(), Message{To: "a@b.c"})
	assert.ErrorIs(t, err, boom)
}

func TestSMTPSendHonoursCancelledContext(t *testing.T) {
	m := NewSMTP(SMTPConfig{Host: "mail.local", Port: 25})
	m.send = func(string, smtp.Auth, string, []string, []byte) error {
		t.Fatal("send should not be called")
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, m.Send(ctx, Message{To: "a@b.c"}), context.Canceled)
}

func TestLogMailerNeverFails(t *testing.T) {
	assert.NoError(t, NewLog(testutil.NopLogger()).Send(context.Background(), Message{To: "a@b.c"}))
}
