package services

import (
	"fmt"
	"net/smtp"

	"github.com/username/tradejournal/backend/src/config"
	"github.com/username/tradejournal/backend/src/logger"
)

// EmailService delivers account emails. Delivery quality is out of scope;
// failures are logged by callers and never block the surrounding flow.
type EmailService interface {
	SendPasswordResetEmail(toEmail, resetToken string) error
}

// NewEmailService picks an implementation from configuration. The log
// provider prints reset links instead of sending mail and is the default
// for development.
func NewEmailService() EmailService {
	if config.Cfg.EmailServiceProvider == "smtp" && config.Cfg.SMTPServer != "" {
		return &smtpEmailService{}
	}
	return &logEmailService{}
}

type logEmailService struct{}

func (s *logEmailService) SendPasswordResetEmail(toEmail, resetToken string) error {
	resetURL := fmt.Sprintf("%s?token=%s", config.Cfg.PasswordResetBaseURL, resetToken)
	logger.L.Info("Password reset requested (log email provider)",
		"email", toEmail,
		"resetURL", resetURL,
		"expiresIn", config.Cfg.PasswordResetTokenExpiry.String(),
	)
	return nil
}

type smtpEmailService struct{}

func (s *smtpEmailService) SendPasswordResetEmail(toEmail, resetToken string) error {
	resetURL := fmt.Sprintf("%s?token=%s", config.Cfg.PasswordResetBaseURL, resetToken)

	body := fmt.Sprintf("From: %s <%s>\r\n"+
		"To: %s\r\n"+
		"Subject: Reset your %s password\r\n"+
		"\r\n"+
		"A password reset was requested for your account.\r\n\r\n"+
		"Open the link below to choose a new password. It expires in %s.\r\n\r\n"+
		"%s\r\n\r\n"+
		"If you did not request this, you can ignore this email.\r\n",
		config.Cfg.SenderName, config.Cfg.SenderEmail, toEmail, config.Cfg.SenderName,
		config.Cfg.PasswordResetTokenExpiry.String(), resetURL)

	addr := fmt.Sprintf("%s:%d", config.Cfg.SMTPServer, config.Cfg.SMTPPort)
	auth := smtp.PlainAuth("", config.Cfg.SMTPUser, config.Cfg.SMTPPassword, config.Cfg.SMTPServer)

	if err := smtp.SendMail(addr, auth, config.Cfg.SenderEmail, []string{toEmail}, []byte(body)); err != nil {
		return fmt.Errorf("sending password reset email: %w", err)
	}
	logger.L.Info("Password reset email sent", "email", toEmail)
	return nil
}
