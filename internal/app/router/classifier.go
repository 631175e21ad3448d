package router

import (
	"context"
	"strings"

	"github.com/ronaldv/minime-agent/internal/domain"
	"github.com/ronaldv/minime-agent/internal/observability"
)

const classifyInstruction = `Classify the user's message into exactly one of these intents:
task, note, draft_reply, question, other, email.

task: the user wants something captured as a to-do or reminder.
note: the user wants information saved for later.
draft_reply: the user wants help writing a reply to someone.
question: the user asks something and expects an answer.
email: the user wants to read, summarize, draft or send email.
other: anything else.

Respond with only the single lowercase intent word. No punctuation, no explanation.`

// Mail keywords force the email intent regardless of the model's
// classification. Deliberately recall-biased: "draft a note" will
// misroute to email, and that trade-off is accepted.
var mailKeywords = []string{
	"email", "e-mail", "inbox", "gmail", "mailbox", "unread", "draft",
}

func hasMailKeyword(text string) bool {
	lowered := strings.ToLower(text)
	for _, kw := range mailKeywords {
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}

// classify maps the raw text to an intent through a single-shot prompt.
// Anything the model returns outside the known labels, including
// transport failures, resolves to IntentOther.
func (r *Router) classify(ctx context.Context, text, memoryContext string) domain.Intent {
	messages := []domain.ChatMessage{
		{Role: domain.RoleSystem, Content: classifyInstruction},
	}
	if memoryContext != "" {
		messages = append(messages, domain.ChatMessage{Role: domain.RoleSystem, Content: memoryContext})
	}
	messages = append(messages, domain.ChatMessage{Role: domain.RoleUser, Content: text})

	raw, err := r.llm.Complete(ctx, messages, domain.CompleteOptions{})
	if err != nil {
		observability.LoggerFromContext(ctx).Warn("intent classification failed", "error", err)
		return domain.IntentOther
	}

	fields := strings.Fields(strings.ToLower(raw))
	if len(fields) == 0 {
		return domain.IntentOther
	}

	intent, _ := domain.ParseIntent(fields[0])
	return intent
}
