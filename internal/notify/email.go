package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"

	"github.com/mendhq/mend/internal/types"
)

// EmailSender delivers approval requests over SMTP with an HTML body
type EmailSender struct {
	cfg EmailConfig
}

// EmailConfig holds SMTP settings for the email channel
type EmailConfig struct {
	Host     string `yaml:"host" json:"host"`
	Port     int    `yaml:"port" json:"port"` // default 587
	From     string `yaml:"from" json:"from"`
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
	BaseURL  string `yaml:"base_url" json:"base_url"` // approve/reject link target
}

// NewEmailSender creates an email channel sender
func NewEmailSender(cfg EmailConfig) (*EmailSender, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("smtp host is required")
	}
	if cfg.From == "" {
		cfg.From = "noreply@mend.dev"
	}
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	return &EmailSender{cfg: cfg}, nil
}

// Name returns the channel name this sender serves
func (s *EmailSender) Name() string { return "email" }

// Send renders and delivers the approval email to every recipient. The dial
// honors ctx; writes are bounded by the connection deadline taken from ctx.
func (s *EmailSender) Send(ctx context.Context, req *types.ApprovalRequest) error {
	if len(req.Recipients) == 0 {
		return fmt.Errorf("no recipients")
	}

	body, err := renderEmailBody(req, s.cfg.BaseURL)
	if err != nil {
		return err
	}
	msg := s.buildMessage(req, body)

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("smtp dial failed: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("smtp handshake failed: %w", err)
	}
	defer func() { _ = client.Close() }()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: s.cfg.Host}); err != nil {
			return fmt.Errorf("starttls failed: %w", err)
		}
	}
	if s.cfg.Username != "" {
		auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth failed: %w", err)
		}
	}

	if err := client.Mail(s.cfg.From); err != nil {
		return fmt.Errorf("smtp mail from failed: %w", err)
	}
	for _, rcpt := range req.Recipients {
		if err := client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("smtp rcpt %s failed: %w", rcpt, err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data failed: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("smtp write failed: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp data close failed: %w", err)
	}
	return client.Quit()
}

// buildMessage assembles the MIME message for the approval email
func (s *EmailSender) buildMessage(req *types.ApprovalRequest, body string) []byte {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("From: %s\r\n", s.cfg.From))
	sb.WriteString(fmt.Sprintf("To: %s\r\n", strings.Join(req.Recipients, ", ")))
	sb.WriteString(fmt.Sprintf("Subject: %s\r\n", Subject(req)))
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	sb.WriteString("\r\n")
	sb.WriteString(body)
	return []byte(sb.String())
}
