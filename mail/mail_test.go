package mail

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResetLink(t *testing.T) {
	token := strings.Repeat("ab", 32)
	cases := []struct {
		origin, entry, want string
	}{
		{"https://q63.example", "Q63_Tracker.html", "https://q63.example/Q63_Tracker.html#reset-confirm?token=" + token},
		{"https://q63.example/", "/Q63_Tracker.html", "https://q63.example/Q63_Tracker.html#reset-confirm?token=" + token},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ResetLink(tc.origin, tc.entry, token))
	}
}

func TestResetMessage(t *testing.T) {
	link := `https://q63.example/Q63_Tracker.html#reset-confirm?token=abc`
	msg := ResetMessage("a@b.co", link)

	assert.Equal(t, "a@b.co", msg.To)
	assert.Equal(t, "Reset Your Q63 Tracker Password", msg.Subject)
	assert.Contains(t, msg.HTML, `href="`+link+`"`)
	assert.Contains(t, msg.HTML, "expires in 1 hour")
}

func TestSMTPConfigEnabled(t *testing.T) {
	assert.False(t, SMTPConfig{}.Enabled())
	assert.False(t, SMTPConfig{Host: "smtp.resend.com", From: "x@y.z"}.Enabled())
	assert.True(t, SMTPConfig{Host: "smtp.resend.com", Password: "re_key", From: "x@y.z"}.Enabled())
}

func TestSMTPSenderRejectsEmptyRecipient(t *testing.T) {
	s := NewSMTPSender(SMTPConfig{Host: "127.0.0.1", Port: 1}, nil)
	require.Error(t, s.Send(context.Background(), Message{To: "  "}))
}

func TestSMTPSenderHonorsCanceledContext(t *testing.T) {
	s := NewSMTPSender(SMTPConfig{Host: "127.0.0.1", Port: 1}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, s.Send(ctx, Message{To: "a@b.co"}), context.Canceled)
}
