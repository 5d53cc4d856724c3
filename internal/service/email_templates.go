package service

import (
	"fmt"
	"html"
)

func passwordResetEmailTemplate(name, resetURL, appName string) (string, string) {
	if name == "" {
		name = "User"
	}
	subject := "Your Password Reset Link"
	body := fmt.Sprintf(`<p>Hello %s,</p>
<p>Click this link to reset your %s password. It is valid for 15 minutes.</p>
<p><a href="%s"><strong>Reset Password</strong></a></p>
<p>If you didn't request this, you can safely ignore this email.</p>`,
		html.EscapeString(name), html.EscapeString(appName), html.EscapeString(resetURL))

	return subject, body
}

func welcomeEmailTemplate(name, loginURL, appName string) (string, string) {
	subject := fmt.Sprintf("Welcome to %s!", appName)
	body := fmt.Sprintf(`<p>Hi %s,</p>
<p>Your account is ready. Sign in and start converting files:</p>
<p><a href="%s">%s</a></p>
<p>Best,<br>The %s Team</p>`,
		html.EscapeString(name), html.EscapeString(loginURL), html.EscapeString(loginURL), html.EscapeString(appName))

	return subject, body
}
