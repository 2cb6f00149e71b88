// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BabyMiam Contributors

package mail

import (
	"fmt"
	"net/smtp"
	"strings"
)

// SMTPMailer delivers notifications through a plain SMTP relay.
type SMTPMailer struct {
	addr string // host:port
	from string
	auth smtp.Auth
}

// NewSMTPMailer creates an SMTPMailer. username may be empty for an
// unauthenticated relay.
func NewSMTPMailer(addr, from, username, password string) *SMTPMailer {
	m := &SMTPMailer{addr: addr, from: from}
	if username != "" {
		host, _, _ := strings.Cut(addr, ":")
		m.auth = smtp.PlainAuth("", username, password, host)
	}
	return m
}

// SendPasswordReset delivers a password-reset link.
func (m *SMTPMailer) SendPasswordReset(to, resetURL string) *NotificationError {
	body := fmt.Sprintf(
		"Someone requested a password reset for your BabyMiam account.\r\n\r\n"+
			"If this was you, open the link below within one hour:\r\n\r\n%s\r\n\r\n"+
			"If you did not ask for this, you can ignore this email.\r\n", resetURL)
	if err := m.send(to, "Reset your BabyMiam password", body); err != nil {
		return &NotificationError{Kind: "password_reset", Recipient: to, Err: err}
	}
	return nil
}

// SendEmailVerification delivers an address-verification link.
func (m *SMTPMailer) SendEmailVerification(to, verifyURL string) *NotificationError {
	body := fmt.Sprintf(
		"Welcome to BabyMiam!\r\n\r\n"+
			"Confirm your email address by opening the link below:\r\n\r\n%s\r\n", verifyURL)
	if err := m.send(to, "Confirm your BabyMiam email", body); err != nil {
		return &NotificationError{Kind: "email_verification", Recipient: to, Err: err}
	}
	return nil
}

func (m *SMTPMailer) send(to, subject, body string) error {
	msg := strings.Join([]string{
		"From: " + m.from,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=utf-8",
		"",
		body,
	}, "\r\n")
	return smtp.SendMail(m.addr, m.auth, m.from, []string{to}, []byte(msg))
}

var _ Mailer = (*SMTPMailer)(nil)
