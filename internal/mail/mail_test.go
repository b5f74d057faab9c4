// mail_test.go

package mail

import (
	"strings"
	"testing"
)

func TestPasswordResetMessage_EscapesNameInHTML(t *testing.T) {
	msg := PasswordResetMessage(
		`<img src=x onerror=alert(1)>`,
		"sam@example.com",
		"http://localhost:3000/reset-password?token=abc",
	)

	if strings.Contains(msg.HTMLBody, "<img") {
		t.Error("display name markup must not survive into the HTML body")
	}
	if !strings.Contains(msg.HTMLBody, "&lt;img src=x onerror=alert(1)&gt;") {
		t.Errorf("expected escaped name in HTML body, got %q", msg.HTMLBody)
	}

	// The plain-text body carries the name as-is.
	if !strings.Contains(msg.TextBody, "<img src=x onerror=alert(1)>") {
		t.Errorf("text body must keep the raw name, got %q", msg.TextBody)
	}
}

func TestPasswordResetMessage_CarriesResetLink(t *testing.T) {
	resetURL := "http://localhost:3000/reset-password?token=abc"
	msg := PasswordResetMessage("Sam", "sam@example.com", resetURL)

	if msg.ToAddress != "sam@example.com" {
		t.Errorf("unexpected recipient %q", msg.ToAddress)
	}
	if !strings.Contains(msg.TextBody, resetURL) {
		t.Error("text body must contain the reset link")
	}
	if !strings.Contains(msg.HTMLBody, `href="`+resetURL+`"`) {
		t.Error("HTML body must link the reset URL")
	}
}
