package email

import (
	"fmt"
	"net/smtp"

	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"
	"github.com/vtarasov/blog-service/internal/config"
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

// SendWelcome sends a welcome email to a freshly registered user
func (s *Sender) SendWelcome(to, username string) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	e.Subject = "Welcome to the blog"

	body := fmt.Sprintf(
		"Dear %s,\n\n"+
			"Your account has been created. You can now write posts, leave comments\n"+
			"and like the posts you enjoy.\n",
		username,
	)
	body += "\nBest regards,\nBlog Service"
	e.Text = []byte(body)

	return s.send(e)
}

// SendCommentNotification tells a post author about a new comment
func (s *Sender) SendCommentNotification(to, username, postTitle, commenter, text string) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	e.Subject = fmt.Sprintf("New comment on \"%s\"", postTitle)

	body := fmt.Sprintf(
		"Dear %s,\n\n"+
			"%s commented on your post \"%s\":\n\n"+
			"%s\n",
		username, commenter, postTitle, text,
	)
	body += "\nBest regards,\nBlog Service"
	e.Text = []byte(body)

	return s.send(e)
}

func (s *Sender) send(e *email.Email) error {
	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	auth := smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	if err := e.Send(addr, auth); err != nil {
		s.logger.Errorf("Failed to send email to %v: %v", e.To, err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Infof("Email sent to %v: %s", e.To, e.Subject)
	return nil
}
