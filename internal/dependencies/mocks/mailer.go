package mocks

import (
	"context"
	"sync"

	"github.com/mcoot/arkham-companion/internal/mail"
)

// RecordingMailer captures sent mail instead of delivering it
type RecordingMailer struct {
	mu   sync.Mutex
	Sent []mail.Message
}

// Ensure RecordingMailer implements Mailer
var _ mail.Mailer = (*RecordingMailer)(nil)

// NewRecordingMailer creates an empty RecordingMailer
func NewRecordingMailer() *RecordingMailer {
	return &RecordingMailer{}
}

func (m *RecordingMailer) Send(_ context.Context, msg mail.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, msg)
	return nil
}

// Last returns the most recent message sent to the address
func (m *RecordingMailer) Last(to string) (mail.Message, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.Sent) - 1; i >= 0; i-- {
		if m.Sent[i].To == to {
			return m.Sent[i], true
		}
	}
	return mail.Message{}, false
}
