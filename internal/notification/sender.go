package notification

import (
	"fmt"
	"net/smtp"

	"github.com/inferno/inferno-bank/internal/config"
	"github.com/inferno/inferno-bank/internal/models"
	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"
)

// Sender handles sending emails via SMTP. All sends are best-effort:
// callers log failures and never fail a workflow on them.
type Sender struct {
	cfg *config.Config
	log *logrus.Logger
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, log *logrus.Logger) *Sender {
	return &Sender{cfg: cfg, log: log}
}

func (s *Sender) send(to, subject, body string) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	e.Subject = subject
	e.Text = []byte(body)

	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	auth := smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	if err := e.Send(addr, auth); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.log.Infof("Email sent to %s: %s", to, subject)
	return nil
}

// SendWelcome sends the registration welcome email
func (s *Sender) SendWelcome(to, name string) error {
	body := fmt.Sprintf(
		"Dear %s,\n\n"+
			"Welcome to Inferno Bank. Your account has been created.\n"+
			"You can now request a DEBIT or CREDIT card from your profile.\n"+
			"\nBest regards,\nInferno Bank", name,
	)
	return s.send(to, "Welcome to Inferno Bank", body)
}

// SendCardIssued notifies the user that a card was issued
func (s *Sender) SendCardIssued(to, name string, card *models.Card) error {
	body := fmt.Sprintf(
		"Dear %s,\n\n", name,
	)
	if card.Type == models.CardTypeCredit {
		body += fmt.Sprintf(
			"Your CREDIT card %s has been issued with a limit of %d.\n"+
				"It is currently PENDING and must be activated before use.\n",
			card.UUID, card.Limit,
		)
	} else {
		body += fmt.Sprintf(
			"Your DEBIT card %s has been issued and is ready to use.\n",
			card.UUID,
		)
	}
	body += "\nBest regards,\nInferno Bank"
	return s.send(to, fmt.Sprintf("Your %s card", card.Type), body)
}

// SendCardsActivated notifies the user after a bulk activation
func (s *Sender) SendCardsActivated(to, name string, count int) error {
	body := fmt.Sprintf(
		"Dear %s,\n\n"+
			"%d of your cards have been activated and are ready to use.\n"+
			"\nBest regards,\nInferno Bank", name, count,
	)
	return s.send(to, "Cards activated", body)
}

// SendPendingReminder reminds the user about cards awaiting activation
func (s *Sender) SendPendingReminder(to, name string, count int) error {
	body := fmt.Sprintf(
		"Dear %s,\n\n"+
			"You have %d card(s) still awaiting activation.\n"+
			"Please activate them to start using them.\n"+
			"\nBest regards,\nInferno Bank", name, count,
	)
	return s.send(to, "Cards awaiting activation", body)
}
