package email

import (
	"bytes"
	"context"
	"html/template"
	"sync"

	"github.com/rs/zerolog/log"
)

// Sender interface for sending emails
type Sender interface {
	SendVerificationCode(to, toName, code string)
	SendPasswordReset(to, toName, code string)
	SendWelcome(to, toName string)
}

// Service handles email sending with templates
type Service struct {
	client       *SendGridClient
	templates    map[string]*template.Template
	baseTemplate *template.Template
	queue        chan *QueuedEmail
	wg           sync.WaitGroup
}

// QueuedEmail represents an email in the send queue
type QueuedEmail struct {
	To           string
	ToName       string
	Subject      string
	TemplateName string
	Data         interface{}
}

// NewService creates email service
func NewService(config SendGridConfig) *Service {
	s := &Service{
		client:    NewSendGridClient(config),
		templates: make(map[string]*template.Template),
		queue:     make(chan *QueuedEmail, 100),
	}

	s.baseTemplate, _ = template.New("base").Parse(BaseTemplate)
	s.loadTemplates()

	// Start async worker
	s.wg.Add(1)
	go s.worker()

	return s
}

// loadTemplates loads all email templates
func (s *Service) loadTemplates() {
	templates := map[string]string{
		"verification":   VerificationTemplate,
		"password_reset": PasswordResetTemplate,
		"welcome":        WelcomeTemplate,
	}

	for name, content := range templates {
		tmpl, err := template.New(name).Parse(content)
		if err != nil {
			log.Error().Err(err).Str("template", name).Msg("Failed to parse email template")
			continue
		}
		s.templates[name] = tmpl
	}
}

// worker processes queued emails asynchronously
func (s *Service) worker() {
	defer s.wg.Done()

	for email := range s.queue {
		ctx := context.Background()
		if err := s.send(ctx, email); err != nil {
			log.Error().Err(err).
				Str("to", email.To).
				Str("template", email.TemplateName).
				Msg("Failed to send email")
		}
	}
}

// send actually sends the email
func (s *Service) send(ctx context.Context, email *QueuedEmail) error {
	tmpl, ok := s.templates[email.TemplateName]
	if !ok {
		log.Warn().Str("template", email.TemplateName).Msg("Template not found")
		return nil
	}

	var contentBuf bytes.Buffer
	if err := tmpl.Execute(&contentBuf, email.Data); err != nil {
		return err
	}

	var htmlBuf bytes.Buffer
	if err := s.baseTemplate.Execute(&htmlBuf, map[string]interface{}{
		"Content": template.HTML(contentBuf.String()),
	}); err != nil {
		return err
	}

	return s.client.Send(ctx, &EmailMessage{
		To:          email.To,
		ToName:      email.ToName,
		Subject:     email.Subject,
		HTMLContent: htmlBuf.String(),
	})
}

// Queue adds an email to the async send queue
func (s *Service) Queue(to, toName, templateName, subject string, data interface{}) {
	select {
	case s.queue <- &QueuedEmail{
		To:           to,
		ToName:       toName,
		Subject:      subject,
		TemplateName: templateName,
		Data:         data,
	}:
	default:
		log.Warn().Str("to", to).Msg("Email queue full, dropping email")
	}
}

// SendSync sends an email synchronously (blocking)
func (s *Service) SendSync(ctx context.Context, to, toName, templateName, subject string, data interface{}) error {
	return s.send(ctx, &QueuedEmail{
		To:           to,
		ToName:       toName,
		Subject:      subject,
		TemplateName: templateName,
		Data:         data,
	})
}

// Close stops the email worker
func (s *Service) Close() {
	close(s.queue)
	s.wg.Wait()
}

// --- Convenience methods for specific emails ---

// SendVerificationCode sends the email verification code to a new account
func (s *Service) SendVerificationCode(to, toName, code string) {
	s.Queue(to, toName, "verification", "Verify your Echo Era account", map[string]string{
		"Username": toName,
		"Code":     code,
	})
}

// SendPasswordReset sends the password reset code
func (s *Service) SendPasswordReset(to, toName, code string) {
	s.Queue(to, toName, "password_reset", "Reset your Echo Era password", map[string]string{
		"Username": toName,
		"Code":     code,
	})
}

// SendWelcome sends welcome email after verification
func (s *Service) SendWelcome(to, toName string) {
	s.Queue(to, toName, "welcome", "Welcome to Echo Era!", map[string]string{
		"Username": toName,
	})
}
