package notify

import (
	"fmt"
	"log"
	"strings"

	gomail "gopkg.in/gomail.v2"

	"github.com/summarizer/api/internal/config"
)

// EmailNotifier sends a mail to a user when their subtitle file is ready.
// It satisfies task.Notifier. Sending is fire-and-forget: a delivery
// failure is logged and dropped, it never affects the conversion job.
type EmailNotifier struct {
	dialer *gomail.Dialer
	cfg    config.SMTPConfig
}

// NewEmailNotifier creates a notifier. Returns a notifier that only logs
// when no SMTP host is configured, so development setups work without a
// mail server.
func NewEmailNotifier(cfg config.SMTPConfig) *EmailNotifier {
	n := &EmailNotifier{cfg: cfg}
	if cfg.Host != "" {
		n.dialer = gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	}
	return n
}

// IsConfigured returns true if a mail server is set up
func (n *EmailNotifier) IsConfigured() bool {
	return n.dialer != nil
}

// VttFinished notifies a user that their audio file has been transcribed
func (n *EmailNotifier) VttFinished(user, audio string) {
	if n.dialer == nil {
		log.Printf("SMTP not configured, skipping notification for %s (%s)", user, audio)
		return
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.cfg.From)
	m.SetHeader("To", n.recipient(user))
	m.SetHeader("Subject", fmt.Sprintf("Subtitles ready: %s", audio))
	m.SetBody("text/plain", fmt.Sprintf(
		"Hi %s,\n\nthe subtitle file for %s has been generated and is ready to use.\n", user, audio))

	if err := n.dialer.DialAndSend(m); err != nil {
		log.Printf("Failed to send notification to %s: %v", user, err)
	}
}

func (n *EmailNotifier) recipient(user string) string {
	if strings.Contains(user, "@") || n.cfg.Domain == "" {
		return user
	}
	return user + "@" + n.cfg.Domain
}
