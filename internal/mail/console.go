// console.go

package mail

import (
	"context"
	"log/slog"
	"sync"

	"github.com/grigoryblack/friendly-reminder/internal/config"
)

// ConsoleService logs outgoing mail instead of delivering it. It keeps every
// message it has seen so tests can assert on what was sent.
type ConsoleService struct {
	from string

	mu   sync.Mutex
	sent []Message
}

func NewConsoleService(cfg config.MailConfig) *ConsoleService {
	return &ConsoleService{from: cfg.FromAddress}
}

func (s *ConsoleService) Send(ctx context.Context, msg Message) error {
	s.mu.Lock()
	s.sent = append(s.sent, msg)
	s.mu.Unlock()

	slog.Info("mail (console)",
		"from", s.from,
		"to", msg.ToAddress,
		"subject", msg.Subject,
		"body", msg.TextBody,
	)

	return nil
}

func (s *ConsoleService) Sent() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Message, len(s.sent))
	copy(out, s.sent)
	return out
}
