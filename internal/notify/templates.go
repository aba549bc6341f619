// AngelaMos | 2026
// templates.go

package notify

import (
	"fmt"
)

// The activation and verification links embed the user id directly.
// The password reset link carries the opaque one-time token instead.

func ActivationMessage(to, baseURL, userID string) Message {
	link := fmt.Sprintf("%s/v1/auth/activate/%s", baseURL, userID)

	return Message{
		To:      to,
		Subject: "Activate your account",
		Text: fmt.Sprintf(
			"Welcome! Activate your account by opening this link:\n\n%s\n",
			link,
		),
		HTML: fmt.Sprintf(
			`<p>Welcome!</p><p><a href="%s">Activate your account</a></p>`,
			link,
		),
	}
}

func VerificationMessage(to, baseURL, userID string) Message {
	link := fmt.Sprintf("%s/v1/auth/verify-email/%s", baseURL, userID)

	return Message{
		To:      to,
		Subject: "Verify your email address",
		Text: fmt.Sprintf(
			"Please verify your email address by opening this link:\n\n%s\n",
			link,
		),
		HTML: fmt.Sprintf(
			`<p><a href="%s">Verify your email address</a></p>`,
			link,
		),
	}
}

func PasswordResetMessage(to, baseURL, token string) Message {
	link := fmt.Sprintf("%s/reset-password?token=%s", baseURL, token)

	return Message{
		To:      to,
		Subject: "Reset your password",
		Text: fmt.Sprintf(
			"A password reset was requested for your account."+
				" If this was you, open this link:\n\n%s\n\n"+
				"The link expires shortly. If this was not you, ignore this email.\n",
			link,
		),
		HTML: fmt.Sprintf(
			`<p>A password reset was requested for your account.</p>`+
				`<p><a href="%s">Reset your password</a></p>`+
				`<p>The link expires shortly. If this was not you, ignore this email.</p>`,
			link,
		),
	}
}
