package memctx

import (
	"context"

	"github.com/ronaldv/minime-agent/internal/domain"
)

// RecordingClient is the memory-augmented completion capability: it
// behaves like the wrapped client and additionally records each
// successful exchange as a conversation fact for its manager. Which
// capability a component gets (plain or recording) is decided where it
// is constructed.
type RecordingClient struct {
	inner   domain.CompletionClient
	manager *Manager
}

func NewRecordingClient(inner domain.CompletionClient, manager *Manager) *RecordingClient {
	return &RecordingClient{inner: inner, manager: manager}
}

func (c *RecordingClient) Complete(
	ctx context.Context,
	messages []domain.ChatMessage,
	opts domain.CompleteOptions,
) (string, error) {
	reply, err := c.inner.Complete(ctx, messages, opts)
	if err != nil {
		return "", err
	}

	if c.manager != nil {
		if user := lastUserContent(messages); user != "" {
			c.manager.AddConversation(ctx, user, reply)
		}
	}
	return reply, nil
}

func lastUserContent(messages []domain.ChatMessage) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == domain.RoleUser {
			return messages[i].Content
		}
	}
	return ""
}
