package mailer

import (
	"fmt"
	"net/smtp"
	"net/url"
	"strings"

	"github.com/hyeonlab/accounts-backend/config"
	"github.com/hyeonlab/accounts-backend/pkg/logger"
)

// Mailer delivers account-lifecycle email. Services depend on this interface;
// tests substitute a fake.
type Mailer interface {
	SendVerificationEmail(name, email, token string) error
	SendPasswordResetEmail(name, email, token string) error
}

type smtpMailer struct {
	mail config.MailConfig
	app  config.AppConfig
}

func NewSMTPMailer(mailCfg config.MailConfig, appCfg config.AppConfig) Mailer {
	return &smtpMailer{
		mail: mailCfg,
		app:  appCfg,
	}
}

func (m *smtpMailer) SendVerificationEmail(name, email, token string) error {
	link := fmt.Sprintf("%s/email/verify/%s", m.app.URL, token)

	body := fmt.Sprintf(`
		<p>Hello %s,</p>
		<p>Please click the button below to verify your email address.</p>
		<p><a href="%s">Verify Email Address</a></p>
		<p>If you did not create an account, no further action is required.</p>
		<p>Regards,<br />%s</p>
		<hr />
		<p>
			If you're having trouble clicking the "Verify Email Address" button, copy and paste the URL below into your web browser:
			<a href="%s">%s</a>
		</p>
	`, name, link, m.app.Name, link, link)

	return m.send(email, "Verify Email Address", body)
}

func (m *smtpMailer) SendPasswordResetEmail(name, email, token string) error {
	link := fmt.Sprintf("%s/password/reset?token=%s&email=%s", m.app.URL, token, url.QueryEscape(email))

	body := fmt.Sprintf(`
		<p>Hello %s,</p>
		<p>You are receiving this email because we received a password reset request for your account.</p>
		<p><a href="%s">Reset Password</a></p>
		<p>This password reset link will expire in 60 minutes.</p>
		<p>If you did not request a password reset, no further action is required.</p>
		<p>Regards,<br />%s</p>
		<hr />
		<p>If you're having trouble clicking the "Reset Password" button, copy and paste the URL below into your web browser:
			<a href="%s">%s</a>
		</p>
	`, name, link, m.app.Name, link, link)

	return m.send(email, "Reset Password Notification", body)
}

func (m *smtpMailer) send(to, subject, htmlBody string) error {
	addr := m.mail.Host + ":" + m.mail.Port

	var auth smtp.Auth
	if m.mail.Username != "" {
		auth = smtp.PlainAuth("", m.mail.Username, m.mail.Password, m.mail.Host)
	}

	headers := []string{
		fmt.Sprintf(`From: "No Reply" <%s>`, m.mail.FromAddress),
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		`Content-Type: text/html; charset="UTF-8"`,
	}
	msg := strings.Join(headers, "\r\n") + "\r\n\r\n" + htmlBody

	if err := smtp.SendMail(addr, auth, m.mail.FromAddress, []string{to}, []byte(msg)); err != nil {
		logger.Error("Failed to send email", err, map[string]interface{}{
			"to":      to,
			"subject": subject,
		})
		return err
	}

	logger.Debug("Email sent", map[string]interface{}{
		"to":      to,
		"subject": subject,
	})
	return nil
}
