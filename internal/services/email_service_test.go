package services

import (
	"bytes"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"accountflow/internal/metrics"
)

type fakeSender struct {
	mu   sync.Mutex
	err  error
	msgs []*gomail.Message
}

func (f *fakeSender) DialAndSend(m ...*gomail.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, m...)
	return f.err
}

type emailRecorder struct {
	metrics.Noop
	mu       sync.Mutex
	outcomes map[string]int
}

func (r *emailRecorder) RecordEmail(kind, outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.outcomes == nil {
		r.outcomes = make(map[string]int)
	}
	r.outcomes[kind+"/"+outcome]++
}

func render(t *testing.T, m *gomail.Message) string {
	t.Helper()
	var buf bytes.Buffer
	_, err := m.WriteTo(&buf)
	require.NoError(t, err)
	return buf.String()
}

func TestEmailService_SendVerificationEmail(t *testing.T) {
	sender := &fakeSender{}
	s := newEmailService(sender, "no-reply@example.com", "Example", "https://app.example.com/", nil)

	require.NoError(t, s.SendVerificationEmail("a@x.com", "tok123"))
	require.Len(t, sender.msgs, 1)

	m := sender.msgs[0]
	assert.Equal(t, []string{"a@x.com"}, m.GetHeader("To"))
	assert.Equal(t, []string{"Verify your email"}, m.GetHeader("Subject"))

	body := render(t, m)
	assert.Contains(t, body, "https://app.example.com/verifytoken/tok123")
	assert.Contains(t, body, `<a href="https://app.example.com/verifytoken/tok123">Verify Email</a>`)
	assert.Contains(t, body, "text/plain")
	assert.Contains(t, body, "text/html")
}

func TestEmailService_SendPasswordResetEmail(t *testing.T) {
	sender := &fakeSender{}
	s := newEmailService(sender, "no-reply@example.com", "", "https://app.example.com", nil)

	require.NoError(t, s.SendPasswordResetEmail("a@x.com", "rt"))
	require.Len(t, sender.msgs, 1)
	assert.Equal(t, []string{"Reset your password"}, sender.msgs[0].GetHeader("Subject"))
	assert.Contains(t, render(t, sender.msgs[0]), "https://app.example.com/forgotpassword/rt")
}

func TestEmailService_SendErrorIsWrapped(t *testing.T) {
	sender := &fakeSender{err: errors.New("relay down")}
	s := newEmailService(sender, "f@x.com", "", "http://d", nil)

	err := s.SendPasswordResetEmail("a@x.com", "rt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "relay down")
}

func TestEmailService_DispatchIsFireAndForget(t *testing.T) {
	sender := &fakeSender{err: errors.New("relay down")}
	rec := &emailRecorder{}
	s := newEmailService(sender, "f@x.com", "", "http://d", rec)

	s.Dispatch(NotifyVerify, "a@x.com", "t1")
	s.Dispatch(NotifyReset, "b@x.com", "t2")
	s.Dispatch(NotificationKind("bogus"), "c@x.com", "t3")
	s.Wait()

	assert.Len(t, sender.msgs, 2)
	assert.Equal(t, 1, rec.outcomes["verify/"+metrics.OutcomeError])
	assert.Equal(t, 1, rec.outcomes["reset/"+metrics.OutcomeError])
	assert.Equal(t, 1, rec.outcomes["bogus/"+metrics.OutcomeError])
}

func TestEmailService_DispatchSuccess(t *testing.T) {
	sender := &fakeSender{}
	rec := &emailRecorder{}
	s := newEmailService(sender, "f@x.com", "", "http://d", rec)

	s.Dispatch(NotifyVerify, "a@x.com", "t1")
	s.Wait()

	assert.Len(t, sender.msgs, 1)
	assert.Equal(t, 1, rec.outcomes["verify/"+metrics.OutcomeSuccess])
}

func TestEmailService_LogModeWithoutSMTP(t *testing.T) {
	s := NewEmailService("", 0, "", "", "f@x.com", "", "http://d", nil)

	assert.NoError(t, s.SendVerificationEmail("a@x.com", "t"))
	s.Dispatch(NotifyReset, "a@x.com", "t")
	s.Wait()
}
