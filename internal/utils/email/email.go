package email

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/Dan9191/investment-advisor/internal/config"
	"github.com/Dan9191/investment-advisor/internal/models"
	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"
)

// Sender handles sending emails via SMTP
type Sender struct {
	cfg    *config.Config
	logger *logrus.Logger
	send   func(e *email.Email, addr string, auth smtp.Auth) error
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		logger: logger,
		send: func(e *email.Email, addr string, auth smtp.Auth) error {
			return e.Send(addr, auth)
		},
	}
}

// Enabled reports whether an SMTP host is configured
func (s *Sender) Enabled() bool {
	return s.cfg.SMTPHost != ""
}

// SendPlanSummary mails a text summary of the plan to the user
func (s *Sender) SendPlanSummary(to, username string, plan *models.Plan) error {
	if !s.Enabled() {
		return fmt.Errorf("SMTP is not configured")
	}

	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	e.Subject = fmt.Sprintf("Your %s risk investment plan", plan.Risk)
	e.Text = []byte(planSummary(username, plan))

	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	auth := smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	if err := s.send(e, addr, auth); err != nil {
		s.logger.Errorf("Failed to send plan %s to %s: %v", plan.ID, to, err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Infof("Email sent to %s: %s", to, e.Subject)
	return nil
}

func planSummary(username string, plan *models.Plan) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Dear %s,\n\n", username)
	fmt.Fprintf(&b, "Here is your investment plan (%s risk, built from %s).\n\n", plan.Risk, plan.Source)
	fmt.Fprintf(&b, "Needs: %s\nWants: %s\nInvestments: %s\n",
		models.Money(plan.Allocation.Needs), models.Money(plan.Allocation.Wants), models.Money(plan.Allocation.Investable))
	fmt.Fprintf(&b, "Emergency fund: %s\nInvestable amount: %s\n\n", plan.EmergencyFund, plan.InvestableAmount)

	for _, inst := range models.Instruments {
		entry, ok := plan.Entries[inst.String()]
		if !ok || entry.Amount == 0 || entry.Projection == nil {
			continue
		}
		fmt.Fprintf(&b, "%s: %s at %.2f%% -> 1y %s, 3y %s, 5y %s\n",
			inst, entry.Amount, entry.Rate,
			entry.Projection.OneYear, entry.Projection.ThreeYears, entry.Projection.FiveYears)
	}

	b.WriteString("\nExpected returns:")
	for _, h := range models.Horizons {
		fmt.Fprintf(&b, " %s %s;", h.Key(), plan.Returns[h])
	}
	b.WriteString("\n\nBest regards,\nInvestment Advisor")
	return b.String()
}
