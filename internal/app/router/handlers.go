package router

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ronaldv/minime-agent/internal/domain"
	"github.com/ronaldv/minime-agent/internal/observability"
)

const actionInstruction = `Respond ONLY as a JSON object with:
{
  "reply": string,
  "intent": "task" | "note" | "draft_reply" | "question" | "other",
  "task": {"title": string, "description": string, "due_date": string or null, "tags": [string]} or null,
  "note": {"title": string, "body": string, "tags": [string]} or null
}
Populate "task" only for the task intent and "note" only for the note intent.
No Markdown, no code fences, no text outside the JSON object.`

const conversationInstruction = `Answer naturally as the user's assistant. ` +
	`Plain text only: no JSON, no code fences.`

const fallbackReply = "Sorry, I ran into a problem handling that. Please try again."

// runActionHandler drives the structured-output path for task, note and
// draft_reply intents. A reply always comes back: parse failures degrade
// to the raw model text with intent other, and transport failures to a
// stock apology. Nothing is raised to the caller.
func (r *Router) runActionHandler(
	ctx context.Context,
	text string,
	hint domain.Intent,
	memoryContext string,
) domain.Result {
	messages := []domain.ChatMessage{
		{Role: domain.RoleSystem, Content: r.systemPrompt},
		{Role: domain.RoleSystem, Content: actionInstruction},
		{Role: domain.RoleSystem, Content: fmt.Sprintf("The message was classified as intent %q.", hint)},
	}
	if memoryContext != "" {
		messages = append(messages, domain.ChatMessage{Role: domain.RoleSystem, Content: memoryContext})
	}
	messages = append(messages, domain.ChatMessage{Role: domain.RoleUser, Content: text})

	raw, err := r.chat.Complete(ctx, messages, domain.CompleteOptions{})
	if err != nil {
		observability.LoggerFromContext(ctx).Error("action handler completion failed",
			"intent", hint,
			"error", err)
		return domain.Result{Reply: fallbackReply, Intent: domain.IntentOther}
	}

	cleaned := stripCodeFences(raw)

	var res domain.Result
	if err := json.Unmarshal([]byte(cleaned), &res); err != nil {
		observability.LoggerFromContext(ctx).Warn("structured output parse failed",
			"intent", hint,
			"error", err)
		return domain.Result{Reply: strings.TrimSpace(raw), Intent: domain.IntentOther}
	}

	if _, ok := domain.ParseIntent(string(res.Intent)); !ok || res.Intent == "" {
		res.Intent = hint
	}
	return res.Normalize()
}

// runConversation drives the free-form path for question/other intents.
func (r *Router) runConversation(
	ctx context.Context,
	text string,
	intent domain.Intent,
	memoryContext string,
) domain.Result {
	messages := []domain.ChatMessage{
		{Role: domain.RoleSystem, Content: r.systemPrompt},
		{Role: domain.RoleSystem, Content: conversationInstruction},
	}
	if memoryContext != "" {
		messages = append(messages, domain.ChatMessage{Role: domain.RoleSystem, Content: memoryContext})
	}
	messages = append(messages, domain.ChatMessage{Role: domain.RoleUser, Content: text})

	reply, err := r.chat.Complete(ctx, messages, domain.CompleteOptions{})
	if err != nil {
		observability.LoggerFromContext(ctx).Error("conversation completion failed",
			"intent", intent,
			"error", err)
		return domain.Result{Reply: fallbackReply, Intent: intent}
	}

	return domain.Result{Reply: strings.TrimSpace(reply), Intent: intent}
}

// stripCodeFences unwraps a ```json ... ``` block when the model adds
// one despite instructions.
func stripCodeFences(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	trimmed = strings.TrimPrefix(trimmed, "```")
	if idx := strings.Index(trimmed, "\n"); idx >= 0 {
		trimmed = trimmed[idx+1:] // drop the language tag line
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
