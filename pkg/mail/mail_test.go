package mail

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

func newTestSender(t *testing.T, sendFn func(msg *gomail.Message) error) *sender {
	t.Helper()
	s, ok := NewSender(Options{
		Host:           "smtp.example.com",
		Port:           587,
		From:           "audit@example.com",
		RetryCount:     2,
		RetryBackoffMs: 1,
	}, zap.NewNop().Sugar()).(*sender)
	require.True(t, ok)
	s.send = sendFn
	return s
}

func TestSendRetriesUntilSuccess(t *testing.T) {
	attempts := 0
	s := newTestSender(t, func(_ *gomail.Message) error {
		attempts++
		if attempts < 3 {
			return errors.New("connection refused")
		}
		return nil
	})

	err := s.Send(Message{To: []string{"ops@example.com"}, Subject: "report", Body: "<p>done</p>"})
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestSendExhaustsRetries(t *testing.T) {
	attempts := 0
	s := newTestSender(t, func(_ *gomail.Message) error {
		attempts++
		return errors.New("relay down")
	})

	err := s.Send(Message{To: []string{"ops@example.com"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "relay down")
	assert.Equal(t, 3, attempts)
}

func TestSendBuildsMessageWithAttachment(t *testing.T) {
	var captured *gomail.Message
	s := newTestSender(t, func(msg *gomail.Message) error {
		captured = msg
		return nil
	})

	err := s.Send(Message{
		To:      []string{"a@example.com", "b@example.com"},
		Subject: "Tracker access audit",
		Body:    "<p>attached</p>",
		Attachments: []Attachment{{
			Filename: "report.xlsx",
			WriteTo: func(w io.Writer) error {
				_, err := w.Write([]byte("workbook bytes"))
				return err
			},
		}},
	})
	require.NoError(t, err)
	require.NotNil(t, captured)
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, captured.GetHeader("To"))
	assert.Equal(t, []string{"Tracker access audit"}, captured.GetHeader("Subject"))
}

func TestRenderReport(t *testing.T) {
	body, err := RenderReport(ReportMailParams{
		OrgID:       "12345",
		RunID:       "run-abc",
		Scope:       "both",
		Duration:    "1m30s",
		QueueCount:  4,
		GrantCount:  9,
		IssueCount:  1,
		Interrupted: true,
	})
	require.NoError(t, err)
	assert.Contains(t, body, "run-abc")
	assert.Contains(t, body, "12345")
	assert.Contains(t, body, "partial results")
}
