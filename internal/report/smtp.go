package report

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/natea/berserk2/internal/model"
)

// SMTPMailer sends reminder mail over SMTP, with either implicit TLS or
// STARTTLS depending on configuration.
type SMTPMailer struct {
	cfg      model.SMTPConfig
	password string
}

// NewSMTPMailer creates a mailer. password takes precedence over the
// config's plaintext fallback when non-empty.
func NewSMTPMailer(cfg model.SMTPConfig, password string) *SMTPMailer {
	if password == "" {
		password = cfg.Password
	}
	return &SMTPMailer{cfg: cfg, password: password}
}

// Send composes and delivers one message. Bcc recipients receive the
// message but are not listed in its headers.
func (m *SMTPMailer) Send(from string, to []string, bcc []string, subject, body string) error {
	var msg strings.Builder
	msg.WriteString(fmt.Sprintf("From: %s\r\n", from))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", strings.Join(to, ", ")))
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	msg.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	recipients := append(append([]string{}, to...), bcc...)
	addr := m.cfg.Host + ":" + m.cfg.Port

	if m.cfg.TLS {
		return m.sendWithTLS(addr, from, recipients, msg.String())
	}
	return m.sendWithStartTLS(addr, from, recipients, msg.String())
}

// sendWithTLS sends a message over an implicit TLS connection.
func (m *SMTPMailer) sendWithTLS(addr, from string, to []string, body string) error {
	tlsConfig := &tls.Config{ServerName: m.cfg.Host}

	conn, err := tls.Dial("tcp", addr, tlsConfig)
	if err != nil {
		return fmt.Errorf("TLS dial to %s: %w", addr, err)
	}

	client, err := smtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("creating SMTP client: %w", err)
	}
	defer client.Close()

	auth := smtp.PlainAuth("", m.cfg.Username, m.password, m.cfg.Host)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("SMTP auth: %w", err)
	}

	return sendMailViaSMTPClient(client, from, to, body)
}

// sendWithStartTLS sends a message using STARTTLS.
func (m *SMTPMailer) sendWithStartTLS(addr, from string, to []string, body string) error {
	conn, err := net.DialTimeout("tcp", addr, 30*time.Second)
	if err != nil {
		return fmt.Errorf("dial to %s: %w", addr, err)
	}

	client, err := smtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("creating SMTP client: %w", err)
	}
	defer client.Close()

	tlsConfig := &tls.Config{ServerName: m.cfg.Host}
	if err := client.StartTLS(tlsConfig); err != nil {
		return fmt.Errorf("SMTP STARTTLS: %w", err)
	}

	auth := smtp.PlainAuth("", m.cfg.Username, m.password, m.cfg.Host)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("SMTP auth: %w", err)
	}

	return sendMailViaSMTPClient(client, from, to, body)
}

// sendMailViaSMTPClient sends a message using an already-authenticated
// SMTP client.
func sendMailViaSMTPClient(client *smtp.Client, from string, to []string, body string) error {
	if err := client.Mail(from); err != nil {
		return fmt.Errorf("SMTP MAIL FROM: %w", err)
	}

	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("SMTP RCPT TO %s: %w", rcpt, err)
		}
	}

	writer, err := client.Data()
	if err != nil {
		return fmt.Errorf("SMTP DATA: %w", err)
	}

	if _, err := writer.Write([]byte(body)); err != nil {
		return fmt.Errorf("writing mail body: %w", err)
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("closing mail body: %w", err)
	}

	return client.Quit()
}
