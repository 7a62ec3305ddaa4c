package mail

import (
	"errors"
	"fmt"
	"log"
	"net/smtp"
	"time"

	"github.com/dokseo/dokseo/internal/pkg/env"
)

// SendMail delivers a single HTML mail via the configured SMTP relay.
func SendMail(to string, subject string, body string) error {
	host := env.GetEnv("SMTP_HOST", "")
	port := env.GetEnv("SMTP_PORT", "587")
	username := env.GetEnv("SMTP_USERNAME", "")
	password := env.GetEnv("SMTP_PASSWORD", "")
	sender := env.GetEnv("SMTP_SENDER", "")

	if sender == "" {
		sender = "no-reply@dokseo.app"
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
			"Content-Type: text/html; charset=UTF-8\r\n\r\n" +
			body,
	)

	err := smtp.SendMail(addr, auth, sender, []string{to}, msg)
	if err != nil {
		log.Printf("SMTP send error: %v", err)
	}
	return err
}

// SendPaymentFailureNotice tells the user their automatic payment failed and
// when the grace period runs out. The deadline is rendered in Korea Standard
// Time, matching the app's billing timezone.
func SendPaymentFailureNotice(send func(to, subject, body string) error, to string, gracePeriodEnd *time.Time) error {
	if to == "" {
		return errors.New("recipient email is empty")
	}
	deadline := "soon"
	if gracePeriodEnd != nil {
		deadline = gracePeriodEnd.In(time.FixedZone("Asia/Seoul", 9*3600)).Format("2006-01-02")
	}
	body := fmt.Sprintf(
		"<p>Your subscription payment could not be processed.</p>"+
			"<p>Please update your payment method before <strong>%s</strong> to keep your subscription active.</p>",
		deadline,
	)
	return send(to, "Payment failed - action required", body)
}
