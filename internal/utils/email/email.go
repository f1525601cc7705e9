package email

import (
	"bytes"
	"fmt"
	"net/smtp"
	"sort"

	"github.com/Dan9191/finance-tracker/internal/config"
	"github.com/Dan9191/finance-tracker/internal/models"
	"github.com/Dan9191/finance-tracker/internal/report"
	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"
)

// Sender handles sending emails via SMTP
type Sender struct {
	cfg    *config.Config
	logger *logrus.Logger
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		logger: logger,
	}
}

// Digest is one user's monthly summary plus the spreadsheet to attach
type Digest struct {
	To         string
	Name       string
	Summary    models.MonthlySummary
	Attachment []byte
}

// SendMonthlyDigest mails the monthly summary with the transactions workbook attached
func (s *Sender) SendMonthlyDigest(d Digest) error {
	e, err := s.buildDigest(d)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	auth := smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	if err := e.Send(addr, auth); err != nil {
		s.logger.Errorf("Failed to send digest to %s: %v", d.To, err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Infof("Email sent to %s: %s", d.To, e.Subject)
	return nil
}

func (s *Sender) buildDigest(d Digest) (*email.Email, error) {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{d.To}
	e.Subject = fmt.Sprintf("Your %s finance summary", d.Summary.Month)
	e.Text = []byte(digestBody(d))

	if len(d.Attachment) > 0 {
		name := fmt.Sprintf("transactions_%s.xlsx", d.Summary.Month)
		if _, err := e.Attach(bytes.NewReader(d.Attachment), name, report.XLSXContentType); err != nil {
			return nil, fmt.Errorf("failed to attach workbook: %w", err)
		}
	}
	return e, nil
}

func digestBody(d Digest) string {
	sum := d.Summary
	body := fmt.Sprintf("Dear %s,\n\n", d.Name)
	body += fmt.Sprintf(
		"Here is your summary for %s.\n"+
			"Income: %s\n"+
			"Expenses: %s\n"+
			"Balance: %s\n"+
			"Transactions: %d\n",
		sum.Month, sum.TotalIncome.StringFixed(2), sum.TotalExpenses.StringFixed(2),
		sum.Balance.StringFixed(2), sum.TransactionCount,
	)

	if len(sum.CategoryBreakdown) > 0 {
		names := make([]string, 0, len(sum.CategoryBreakdown))
		for name := range sum.CategoryBreakdown {
			names = append(names, name)
		}
		sort.Strings(names)
		body += "\nExpenses by category:\n"
		for _, name := range names {
			body += fmt.Sprintf("  %s: %s\n", name, sum.CategoryBreakdown[name].StringFixed(2))
		}
	}
	body += "\nBest regards,\nFinance Tracker"
	return body
}
