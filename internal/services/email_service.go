package services

import (
	"fmt"
	"net/url"

	"gopkg.in/gomail.v2"
)

type EmailService interface {
	SendOTPEmail(email, code string) error
	SendVerificationLinkEmail(email, link string) error
}

type emailService struct {
	dialer *gomail.Dialer
	from   string
}

func NewEmailService(smtpHost string, smtpPort int, smtpUser, smtpPassword, fromEmail string) EmailService {
	dialer := gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPassword)
	return &emailService{
		dialer: dialer,
		from:   fromEmail,
	}
}

func (s *emailService) send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)
	return s.dialer.DialAndSend(m)
}

func (s *emailService) SendOTPEmail(email, code string) error {
	body := fmt.Sprintf(`
		<h3>Auto Docs email verification</h3>
		<p>Your one-time code is: <strong>%s</strong></p>
		<p>If you did not request this code, you can ignore this email.</p>
	`, code)
	if err := s.send(email, "Your OTP for Auto Docs Account", body); err != nil {
		return fmt.Errorf("failed to send otp email: %w", err)
	}
	return nil
}

func (s *emailService) SendVerificationLinkEmail(email, link string) error {
	body := fmt.Sprintf(`
		<h3>Verify your Auto Docs account</h3>
		<p>Click the link below to verify <strong>%s</strong>:</p>
		<p><a href="%s">Verify email</a></p>
	`, email, link)
	if err := s.send(email, "Your Verification Link for Auto Docs Account", body); err != nil {
		return fmt.Errorf("failed to send verification link email: %w", err)
	}
	return nil
}

// VerificationLink собирает ссылку на GET /api/v1/email/verify?method=link.
func VerificationLink(publicURL, email, token string) string {
	q := url.Values{}
	q.Set("method", "link")
	q.Set("email", email)
	q.Set("unique_id", token)
	return publicURL + "/api/v1/email/verify?" + q.Encode()
}
