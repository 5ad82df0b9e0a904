package notification

import (
	"fmt"
	"net/smtp"
)

type EmailConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	FromName string
}

type EmailService struct {
	config EmailConfig
}

func NewEmailService(config EmailConfig) *EmailService {
	return &EmailService{config: config}
}

func (s *EmailService) SendPasscodeEmail(to, storeName, code string) error {
	subject := fmt.Sprintf("Your %s dashboard passcode", storeName)
	body := fmt.Sprintf(`<html><body>
		<h2>Your Sign-In Passcode</h2>
		<p>Use this passcode to sign in to the %s analytics dashboard:</p>
		<p style="font-size:24px;font-weight:bold;letter-spacing:4px;">%s</p>
		<p>The passcode expires in 5 minutes and can only be used once.</p>
		<p>If you did not request this passcode, please ignore this email.</p>
	</body></html>`, storeName, code)
	return s.sendEmail(to, subject, body)
}

func (s *EmailService) sendEmail(to, subject, body string) error {
	from := s.config.From
	if s.config.FromName != "" {
		from = fmt.Sprintf("%s <%s>", s.config.FromName, s.config.From)
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		from, to, subject, body)

	auth := smtp.PlainAuth("", s.config.User, s.config.Password, s.config.Host)
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	return smtp.SendMail(addr, auth, s.config.From, []string{to}, []byte(msg))
}
