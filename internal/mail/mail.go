// mail.go

// Package mail sends transactional email. The sendgrid implementation is used
// in production; the console implementation logs messages and records them
// for tests.
package mail

import (
	"context"
	"fmt"
	"html"

	"github.com/grigoryblack/friendly-reminder/internal/config"
)

type Message struct {
	ToName    string
	ToAddress string
	Subject   string
	TextBody  string
	HTMLBody  string
}

type Service interface {
	Send(ctx context.Context, msg Message) error
}

func NewService(cfg config.MailConfig) (Service, error) {
	switch cfg.Provider {
	case "sendgrid":
		return NewSendgridService(cfg), nil
	case "console", "":
		return NewConsoleService(cfg), nil
	default:
		return nil, fmt.Errorf("unknown mail provider: %q", cfg.Provider)
	}
}

// PasswordResetMessage builds the reset email sent by the forgot-password
// flow. The link is valid for one hour.
func PasswordResetMessage(toName, toAddress, resetURL string) Message {
	text := fmt.Sprintf(
		"Hi %s,\n\n"+
			"We received a request to reset your password. "+
			"Click the link below to choose a new one:\n\n%s\n\n"+
			"This link expires in 1 hour. "+
			"If you did not request a reset, you can ignore this email.\n",
		toName, resetURL,
	)

	// Display names are user input and end up in markup.
	htmlBody := fmt.Sprintf(
		`<p>Hi %s,</p>`+
			`<p>We received a request to reset your password. `+
			`Click the link below to choose a new one:</p>`+
			`<p><a href="%s">Reset your password</a></p>`+
			`<p>This link expires in 1 hour. `+
			`If you did not request a reset, you can ignore this email.</p>`,
		html.EscapeString(toName), resetURL,
	)

	return Message{
		ToName:    toName,
		ToAddress: toAddress,
		Subject:   "Reset your password",
		TextBody:  text,
		HTMLBody:  htmlBody,
	}
}
