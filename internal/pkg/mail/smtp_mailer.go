package mail

import (
	"fmt"
	"log"
	"net/smtp"

	"github.com/shopbill-app/shopbill/internal/pkg/env"
)

// SendMail sends a plain email via SMTP
func SendMail(to string, subject string, body string) error {
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
			"Content-Type: text/plain; charset=UTF-8\r\n\r\n" +
			body,
	)

	err := smtp.SendMail(addr, auth, sender, []string{to}, msg)
	if err != nil {
		log.Printf("SMTP send error: %v", err)
	} else {
		log.Printf("Email sent to %s via %s", to, addr)
	}
	return err
}

// SendPasswordResetMail sends the password-reset link. Failures are logged
// by SendMail; callers treat the mail as fire-and-forget.
func SendPasswordResetMail(to string, resetURL string) error {
	body := fmt.Sprintf(`Hi,

We received a request to reset your password.
Please open the link below to choose a new one:

%s

If you didn't request this, you can ignore this email.

Thanks,
The ShopBill Team
`, resetURL)

	return SendMail(to, "Password Reset Request", body)
}
