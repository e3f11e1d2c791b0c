package mailer

import (
	"fmt"
	"net/url"
	"time"
)

// Templates renders the transactional messages of the auth flows
type Templates struct {
	AppName     string
	FrontendURL string
}

func (t Templates) SignupOTP(to, code string, ttl time.Duration) Message {
	return Message{
		To:      to,
		Subject: fmt.Sprintf("%s - Verify your email", t.AppName),
		Text: fmt.Sprintf(
			"Hello,\n\n"+
				"Thank you for signing up for %s! To complete your registration, please use the verification code below:\n\n"+
				"Verification Code: %s\n\n"+
				"This code will expire in %s.\n\n"+
				"Best regards,\nThe %s Team",
			t.AppName, code, humanize(ttl), t.AppName),
	}
}

func (t Templates) LoginOTP(to, code string, ttl time.Duration) Message {
	return Message{
		To:      to,
		Subject: fmt.Sprintf("%s - Login OTP", t.AppName),
		Text: fmt.Sprintf(
			"Hello,\n\n"+
				"You requested a code to log in to %s. Please use the verification code below to gain access:\n\n"+
				"Login Code: %s\n\n"+
				"This code will expire in %s. If you did not request this login, we recommend changing your password.\n\n"+
				"Best regards,\nThe %s Team",
			t.AppName, code, humanize(ttl), t.AppName),
	}
}

func (t Templates) PasswordReset(to, token string, ttl time.Duration) Message {
	link := fmt.Sprintf("%s/reset-password/%s?email=%s", t.FrontendURL, url.PathEscape(token), url.QueryEscape(to))
	return Message{
		To:      to,
		Subject: fmt.Sprintf("%s - Password Reset", t.AppName),
		Text: fmt.Sprintf(
			"Hello,\n\n"+
				"Click here to reset your password: %s\n\n"+
				"This link will expire in %s. If you did not request a reset, you can ignore this email.\n\n"+
				"Best regards,\nThe %s Team",
			link, humanize(ttl), t.AppName),
		HTML: fmt.Sprintf(
			`<p>Hello,</p><p><a href="%s">Click here to reset your password</a>.</p><p>This link will expire in %s.</p><p>Best regards,<br>The %s Team</p>`,
			link, humanize(ttl), t.AppName),
	}
}

func (t Templates) MFAEnabled(to string) Message {
	return Message{
		To:      to,
		Subject: fmt.Sprintf("%s - Authenticator app enabled", t.AppName),
		Text: fmt.Sprintf(
			"Hello,\n\n"+
				"An authenticator app was just linked to your %s account. Logins will now ask for its code after the email code.\n\n"+
				"If this wasn't you, reset your password immediately.\n\n"+
				"Best regards,\nThe %s Team",
			t.AppName, t.AppName),
	}
}

func humanize(d time.Duration) string {
	if d%time.Minute == 0 {
		m := int(d / time.Minute)
		if m == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", m)
	}
	return d.String()
}
