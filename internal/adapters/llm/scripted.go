package llm

import (
	"context"
	"fmt"
	"sync"

	"github.com/ronaldv/minime-agent/internal/domain"
)

// Scripted is a CompletionClient that replays a queue of canned replies.
// Used for dev mode and tests; it records the messages of every call.
type Scripted struct {
	mu      sync.Mutex
	replies []string
	calls   [][]domain.ChatMessage
}

func NewScripted(replies ...string) *Scripted {
	return &Scripted{replies: replies}
}

// Push appends more canned replies to the queue.
func (s *Scripted) Push(replies ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replies = append(s.replies, replies...)
}

func (s *Scripted) Complete(
	_ context.Context,
	messages []domain.ChatMessage,
	_ domain.CompleteOptions,
) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	recorded := make([]domain.ChatMessage, len(messages))
	copy(recorded, messages)
	s.calls = append(s.calls, recorded)

	if len(s.replies) == 0 {
		var last string
		for _, m := range messages {
			if m.Role == domain.RoleUser {
				last = m.Content
			}
		}
		return fmt.Sprintf("I hear you. You said %q. Tell me a bit more.", last), nil
	}

	reply := s.replies[0]
	s.replies = s.replies[1:]
	return reply, nil
}

// Calls returns the message sequences of every completed call.
func (s *Scripted) Calls() [][]domain.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]domain.ChatMessage, len(s.calls))
	copy(out, s.calls)
	return out
}
