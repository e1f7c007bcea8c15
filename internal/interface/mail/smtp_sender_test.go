package mail

import (
	"strings"
	"testing"

	"github.com/navellino/concierge-backend/pkg/logger"
)

func TestHTMLToText(t *testing.T) {
	tests := []struct {
		name, html, want string
	}{
		{"plain text untouched", "ciao", "ciao"},
		{"tags stripped", "<p>Ciao <b>Mario</b></p>", "Ciao Mario"},
		{"br becomes newline", "riga1<br>riga2", "riga1\nriga2"},
		{"br with slash", "riga1<br/>riga2", "riga1\nriga2"},
		{"list items flattened", "<ul><li>wifi</li><li>parcheggio</li></ul>", "wifiparcheggio"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := HTMLToText(tc.html); got != tc.want {
				t.Errorf("HTMLToText(%q) = %q, want %q", tc.html, got, tc.want)
			}
		})
	}
}

func TestBuildMessage(t *testing.T) {
	s := NewSMTPSender("smtp.example.com", 465, "user", "pass", "host@example.com", true, logger.NewLogger())
	msg := string(s.buildMessage("guest@example.com", "Benvenuto", "<p>Ciao</p>"))

	for _, want := range []string{
		"From: host@example.com",
		"To: guest@example.com",
		"Subject: Benvenuto",
		"multipart/alternative",
		"text/plain; charset=utf-8",
		"text/html; charset=utf-8",
		"<p>Ciao</p>",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing %q", want)
		}
	}
	// The plain-text part carries the stripped body.
	if !strings.Contains(msg, "\r\n\r\nCiao\r\n") {
		t.Error("plain-text alternative missing")
	}
}
