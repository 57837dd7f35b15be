// Package mailtest provides an in-memory Mailer for tests.
package mailtest

import (
	"context"
	"sync"

	"github.com/aussiebroadwan/stackplate/internal/server/mail"
)

// Recorder keeps every message instead of sending it. Set Err to make
// SendReset fail.
type Recorder struct {
	mu   sync.Mutex
	sent []mail.ResetMessage
	Err  error
}

func (r *Recorder) SendReset(_ context.Context, msg mail.ResetMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.sent = append(r.sent, msg)
	return nil
}

// Sent returns a copy of the recorded messages.
func (r *Recorder) Sent() []mail.ResetMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]mail.ResetMessage(nil), r.sent...)
}

// Last returns the most recent message, ok is false if none was sent.
func (r *Recorder) Last() (mail.ResetMessage, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.sent) == 0 {
		return mail.ResetMessage{}, false
	}
	return r.sent[len(r.sent)-1], true
}

var _ mail.Mailer = (*Recorder)(nil)
