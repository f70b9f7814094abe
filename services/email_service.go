package services

import (
	"fmt"
	"time"

	"gopkg.in/gomail.v2"

	"accu-registry/config"
)

// EmailService provides registry notifications over SMTP
type EmailService struct {
	dialer *gomail.Dialer
	from   string
}

// NewEmailService creates a new EmailService
func NewEmailService(cfg *config.Config) *EmailService {
	dialer := gomail.NewDialer(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Username,
		cfg.SMTP.Password,
	)

	return &EmailService{
		dialer: dialer,
		from:   cfg.SMTP.From,
	}
}

// SendEmail sends a single HTML email
func (s *EmailService) SendEmail(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("sending email: %w", err)
	}

	return nil
}

// SendReclassificationDecision notifies the submitter of a decision
func (s *EmailService) SendReclassificationDecision(to string, requestID uint, status string) error {
	subject := fmt.Sprintf("Reclassification request #%d %s", requestID, status)
	body := fmt.Sprintf(
		"<p>Your reclassification request #%d has been <b>%s</b>.</p>",
		requestID, status,
	)
	return s.SendEmail(to, subject, body)
}

// SendLoanRepaidNotification confirms a loan buyback
func (s *EmailService) SendLoanRepaidNotification(to string, loanID uint, batchNumber string) error {
	subject := fmt.Sprintf("Loan #%d repaid", loanID)
	body := fmt.Sprintf(
		"<p>Loan #%d against batch %s has been repaid. The pledged units are released.</p>",
		loanID, batchNumber,
	)
	return s.SendEmail(to, subject, body)
}

// SendBuybackReminder warns about an approaching or passed buyback date
func (s *EmailService) SendBuybackReminder(to string, loanID uint, batchNumber string, buybackDate time.Time) error {
	subject := fmt.Sprintf("Buyback due for loan #%d", loanID)
	body := fmt.Sprintf(
		"<p>Loan #%d against batch %s has a buyback date of %s.</p>",
		loanID, batchNumber, buybackDate.Format("2006-01-02"),
	)
	return s.SendEmail(to, subject, body)
}
