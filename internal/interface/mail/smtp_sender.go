// Package mail delivers notification emails over SMTP.
package mail

import (
	"crypto/tls"
	"fmt"
	"net/smtp"
	"regexp"
	"strings"

	"github.com/navellino/concierge-backend/internal/domain/repository"
	"github.com/navellino/concierge-backend/pkg/logger"
)

var (
	brRe  = regexp.MustCompile(`(?i)<br\s*/?>`)
	pRe   = regexp.MustCompile(`(?i)</p\s*>`)
	tagRe = regexp.MustCompile(`<[^>]+>`)
)

// SMTPSender implements EmailSender over plain SMTP, either implicit
// TLS (465) or STARTTLS.
type SMTPSender struct {
	host     string
	port     int
	username string
	password string
	from     string
	useSSL   bool
	logger   logger.Logger
}

var _ repository.EmailSender = (*SMTPSender)(nil)

// NewSMTPSender creates the sender.
func NewSMTPSender(host string, port int, username, password, from string, useSSL bool, log logger.Logger) *SMTPSender {
	return &SMTPSender{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
		useSSL:   useSSL,
		logger:   log,
	}
}

// Send delivers an HTML email with a plain-text alternative derived
// from the HTML.
func (s *SMTPSender) Send(to, subject, html string) error {
	if s.host == "" {
		return fmt.Errorf("smtp not configured")
	}

	msg := s.buildMessage(to, subject, html)
	addr := fmt.Sprintf("%s:%d", s.host, s.port)

	var auth smtp.Auth
	if s.username != "" {
		auth = smtp.PlainAuth("", s.username, s.password, s.host)
	}

	var err error
	if s.useSSL {
		err = s.sendTLS(addr, auth, to, msg)
	} else {
		err = smtp.SendMail(addr, auth, s.from, []string{to}, msg)
	}
	if err != nil {
		return fmt.Errorf("send email to %s: %w", to, err)
	}
	s.logger.Info("Email sent", "to", to, "subject", subject)
	return nil
}

// sendTLS handles implicit-TLS servers (port 465), which
// smtp.SendMail cannot reach directly.
func (s *SMTPSender) sendTLS(addr string, auth smtp.Auth, to string, msg []byte) error {
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: s.host})
	if err != nil {
		return err
	}
	client, err := smtp.NewClient(conn, s.host)
	if err != nil {
		conn.Close()
		return err
	}
	defer client.Close()

	if auth != nil {
		if err := client.Auth(auth); err != nil {
			return err
		}
	}
	if err := client.Mail(s.from); err != nil {
		return err
	}
	if err := client.Rcpt(to); err != nil {
		return err
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return client.Quit()
}

func (s *SMTPSender) buildMessage(to, subject, html string) []byte {
	boundary := "concierge-alt-boundary"
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", s.from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", boundary)

	fmt.Fprintf(&b, "--%s\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s\r\n", boundary, HTMLToText(html))
	fmt.Fprintf(&b, "--%s\r\nContent-Type: text/html; charset=utf-8\r\n\r\n%s\r\n", boundary, html)
	fmt.Fprintf(&b, "--%s--\r\n", boundary)
	return []byte(b.String())
}

// HTMLToText produces a minimal plain-text fallback from HTML.
func HTMLToText(html string) string {
	text := brRe.ReplaceAllString(html, "\n")
	text = pRe.ReplaceAllString(text, "\n\n")
	text = tagRe.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}
