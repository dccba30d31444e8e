package mail

import (
	"fmt"
	"log"
	"net/smtp"

	"github.com/matiuskuma2/SMG-sub004/internal/pkg/env"
)

const altBoundary = "portal-mail-boundary"

// SendMail sends an email via SMTP with text and HTML alternative parts.
// Delivery is best-effort: callers log the returned error, nothing more.
func SendMail(to string, subject string, textBody string, htmlBody string) error {
	host := env.GetEnv("SMTP_HOST", "")
	port := env.GetEnv("SMTP_PORT", "")
	username := env.GetEnv("SMTP_USERNAME", "")
	password := env.GetEnv("SMTP_PASSWORD", "")
	sender := env.GetEnv("SMTP_SENDER", "")

	if sender == "" {
		sender = fmt.Sprintf("no-reply@%s", "localhost")
		log.Printf("SMTP_SENDER not set, using default sender: %s", sender)
	}

	var auth smtp.Auth
	if username != "" && password != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}

	addr := fmt.Sprintf("%s:%s", host, port)

	msg := []byte(
		fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n", sender, to, subject) +
			"MIME-Version: 1.0\r\n" +
			fmt.Sprintf("Content-Type: multipart/alternative; boundary=%q\r\n\r\n", altBoundary) +
			fmt.Sprintf("--%s\r\n", altBoundary) +
			"Content-Type: text/plain; charset=UTF-8\r\n\r\n" +
			textBody + "\r\n" +
			fmt.Sprintf("--%s\r\n", altBoundary) +
			"Content-Type: text/html; charset=UTF-8\r\n\r\n" +
			htmlBody + "\r\n" +
			fmt.Sprintf("--%s--\r\n", altBoundary),
	)

	err := smtp.SendMail(addr, auth, sender, []string{to}, msg)
	if err != nil {
		log.Printf("SMTP send error: %v", err)
	} else {
		log.Printf("Email sent to %s via %s", to, addr)
	}
	return err
}
