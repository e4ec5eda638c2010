package services

import (
	"fmt"
	"html"
	"log/slog"
	"strings"
	"sync"

	"gopkg.in/gomail.v2"

	"accountflow/internal/metrics"
)

type NotificationKind string

const (
	NotifyVerify NotificationKind = "verify"
	NotifyReset  NotificationKind = "reset"
)

// Notifier delivers token links out of band. Dispatch never blocks the caller
// and never reports delivery failures back to it.
type Notifier interface {
	Dispatch(kind NotificationKind, email, token string)
}

type EmailService interface {
	Notifier
	SendVerificationEmail(email, token string) error
	SendPasswordResetEmail(email, token string) error
	// Wait blocks until every dispatched email has been attempted.
	Wait()
}

type mailSender interface {
	DialAndSend(m ...*gomail.Message) error
}

type emailService struct {
	sender   mailSender
	from     string
	fromName string
	domain   string
	metrics  metrics.Recorder
	wg       sync.WaitGroup
}

// NewEmailService sends through the SMTP relay at smtpHost. With an empty
// smtpHost it only logs the links it would have sent.
func NewEmailService(smtpHost string, smtpPort int, smtpUser, smtpPassword, fromEmail, fromName, domain string, rec metrics.Recorder) EmailService {
	var sender mailSender
	if smtpHost != "" {
		sender = gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPassword)
	}
	return newEmailService(sender, fromEmail, fromName, domain, rec)
}

func newEmailService(sender mailSender, fromEmail, fromName, domain string, rec metrics.Recorder) *emailService {
	if rec == nil {
		rec = metrics.Noop{}
	}
	return &emailService{
		sender:   sender,
		from:     fromEmail,
		fromName: fromName,
		domain:   strings.TrimRight(domain, "/"),
		metrics:  rec,
	}
}

func (s *emailService) Dispatch(kind NotificationKind, email, token string) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		var err error
		switch kind {
		case NotifyVerify:
			err = s.SendVerificationEmail(email, token)
		case NotifyReset:
			err = s.SendPasswordResetEmail(email, token)
		default:
			err = fmt.Errorf("unknown notification kind %q", kind)
		}
		if err != nil {
			slog.Error("[email][dispatch] delivery failed", "kind", kind, "to", email, "error", err)
			s.metrics.RecordEmail(string(kind), metrics.OutcomeError)
			return
		}
		s.metrics.RecordEmail(string(kind), metrics.OutcomeSuccess)
	}()
}

func (s *emailService) Wait() {
	s.wg.Wait()
}

func (s *emailService) SendVerificationEmail(email, token string) error {
	link := s.domain + "/verifytoken/" + token
	m := s.newMessage(email, "Verify your email",
		"Please verify your email by clicking the following link: "+link,
		linkHTML("Please verify your email by clicking the following link:", link, "Verify Email"),
	)
	if err := s.send(m, link); err != nil {
		return fmt.Errorf("failed to send verification email: %w", err)
	}
	return nil
}

func (s *emailService) SendPasswordResetEmail(email, token string) error {
	link := s.domain + "/forgotpassword/" + token
	m := s.newMessage(email, "Reset your password",
		"Please reset your password by clicking the following link: "+link,
		linkHTML("Please reset your password by clicking the following link:", link, "Reset Password"),
	)
	if err := s.send(m, link); err != nil {
		return fmt.Errorf("failed to send password reset email: %w", err)
	}
	return nil
}

func (s *emailService) newMessage(to, subject, text, htmlBody string) *gomail.Message {
	m := gomail.NewMessage(gomail.SetEncoding(gomail.Unencoded))
	m.SetAddressHeader("From", s.from, s.fromName)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", text)
	m.AddAlternative("text/html", htmlBody)
	return m
}

func (s *emailService) send(m *gomail.Message, link string) error {
	if s.sender == nil {
		slog.Info("[email] smtp not configured, logging link instead",
			"to", m.GetHeader("To"), "subject", m.GetHeader("Subject"), "link", link)
		return nil
	}
	return s.sender.DialAndSend(m)
}

func linkHTML(intro, link, label string) string {
	l := html.EscapeString(link)
	return fmt.Sprintf(`<p>%s</p><p>%s <hr/><a href="%s">%s</a></p>`, intro, l, l, label)
}
