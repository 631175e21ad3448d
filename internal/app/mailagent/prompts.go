package mailagent

// PromptConfig holds the system instructions for the mail workflows.
type PromptConfig struct {
	InboxSummary  string
	ThreadSummary string
	DraftReply    string
}

func DefaultPrompts() PromptConfig {
	return PromptConfig{
		InboxSummary: "You summarize the user's inbox. Highlight urgent senders, dates, and" +
			" action items. Be concise and note unanswered questions.",
		ThreadSummary: "Summarize this email thread with key decisions, blockers, and next" +
			" steps so the user can quickly respond.",
		DraftReply: "Write a clear, polite reply that matches the user's voice. Mention any" +
			" commitments or follow-ups from the instructions, and keep it concise.",
	}
}

const routeInstruction = `You route an email request from the user to one action.
Respond ONLY as a JSON object with:
{
  "action": "summarize_inbox" | "summarize_thread" | "draft_reply" | "send_draft" | "status",
  "query": string,
  "instructions": string,
  "confirmation": string
}
"query" holds search words to locate a thread (sender, subject, topic), or "".
"instructions" holds what the reply should say, or "".
Set "confirmation" to "send_now" ONLY when the user explicitly confirms sending
a previously drafted email (for example "yes, send it").
No text outside the JSON object.`
