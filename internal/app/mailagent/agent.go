// Package mailagent wraps the managed mail provider behind an
// LLM-routed sub-agent: inbox and thread summaries, a single-slot
// pending draft and send-on-confirmation controls.
package mailagent

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/ronaldv/minime-agent/internal/domain"
	"github.com/ronaldv/minime-agent/internal/observability"
)

// ConfirmSendNow is the routing confirmation value that authorises a send.
const ConfirmSendNow = "send_now"

const noPendingReply = "There's no draft waiting to send."

// Agent holds the mail provider, the reply-writing LLM and the one
// pending-draft slot. One instance per process; the draft does not
// survive restarts.
type Agent struct {
	provider     domain.MailProvider
	llm          domain.CompletionClient
	sender       string
	prompts      PromptConfig
	summaryLimit int64

	pending *domain.PendingDraft
}

type Option func(*Agent)

// WithPrompts overrides the default workflow prompts.
func WithPrompts(p PromptConfig) Option {
	return func(a *Agent) { a.prompts = p }
}

// WithSummaryLimit bounds how many inbox messages a summary fetches.
func WithSummaryLimit(n int) Option {
	return func(a *Agent) {
		if n > 0 {
			a.summaryLimit = int64(n)
		}
	}
}

func New(provider domain.MailProvider, llm domain.CompletionClient, sender string, opts ...Option) *Agent {
	a := &Agent{
		provider:     provider,
		llm:          llm,
		sender:       sender,
		prompts:      DefaultPrompts(),
		summaryLimit: 10,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// command is the routing decision the LLM produces from free text.
type command struct {
	Action       string `json:"action"`
	Query        string `json:"query"`
	Instructions string `json:"instructions"`
	Confirmation string `json:"confirmation"`
}

// HandleCommand routes free text to a mail action and always returns a
// user-facing string; provider and LLM failures never propagate.
func (a *Agent) HandleCommand(ctx context.Context, text string) string {
	cmd := a.routeCommand(ctx, text)

	switch cmd.Action {
	case "summarize_thread":
		return a.SummarizeThread(ctx, cmd.Query)
	case "draft_reply":
		return a.DraftReply(ctx, cmd.Query, cmd.Instructions)
	case "send_draft":
		return a.SendDraft(ctx, cmd.Confirmation == ConfirmSendNow)
	case "status":
		return a.Status()
	default:
		return a.SummarizeInbox(ctx)
	}
}

// routeCommand converts free text into a command; unparseable routing
// output defaults to an inbox summary.
func (a *Agent) routeCommand(ctx context.Context, text string) command {
	messages := []domain.ChatMessage{
		{Role: domain.RoleSystem, Content: routeInstruction},
		{Role: domain.RoleUser, Content: text},
	}

	raw, err := a.llm.Complete(ctx, messages, domain.CompleteOptions{})
	if err != nil {
		observability.LoggerFromContext(ctx).Warn("mail routing failed", "error", err)
		return command{Action: "summarize_inbox"}
	}

	var cmd command
	if err := json.Unmarshal([]byte(stripCodeFences(raw)), &cmd); err != nil {
		observability.LoggerFromContext(ctx).Warn("mail routing output unparseable", "error", err)
		return command{Action: "summarize_inbox"}
	}
	return cmd
}

// SummarizeInbox lists recent INBOX messages and summarizes them.
func (a *Agent) SummarizeInbox(ctx context.Context) string {
	refs, err := a.provider.ListMessages(ctx, "INBOX", "label:inbox", a.summaryLimit)
	if err != nil {
		return fmt.Sprintf("I couldn't read your inbox: %v", err)
	}
	if len(refs) == 0 {
		return "Your inbox is clear right now."
	}

	var messages []*domain.EmailMessage
	for _, ref := range refs {
		msg, err := a.provider.GetMessage(ctx, ref.ID)
		if err != nil {
			return fmt.Sprintf("I couldn't fetch one of your messages: %v", err)
		}
		messages = append(messages, msg)
	}

	summary, err := a.runPrompt(ctx, a.prompts.InboxSummary, formatForSummary(messages))
	if err != nil {
		return fmt.Sprintf("I couldn't summarize the inbox: %v", err)
	}
	return summary
}

// SummarizeThread locates a thread by query and summarizes it.
func (a *Agent) SummarizeThread(ctx context.Context, query string) string {
	thread, err := a.findThread(ctx, query)
	if err != nil {
		return fmt.Sprintf("I couldn't search your mail: %v", err)
	}
	if thread == nil {
		return "I couldn't find a matching conversation in your inbox."
	}

	summary, err := a.runPrompt(ctx, a.prompts.ThreadSummary, formatThread(thread))
	if err != nil {
		return fmt.Sprintf("I couldn't summarize that thread: %v", err)
	}
	return summary
}

// DraftReply writes a reply to the located thread and holds it pending.
// A prior unsent draft is overwritten; the reply says so.
func (a *Agent) DraftReply(ctx context.Context, query, instructions string) string {
	thread, err := a.findThread(ctx, query)
	if err != nil {
		return fmt.Sprintf("I couldn't search your mail: %v", err)
	}
	if thread == nil {
		return "I couldn't locate that thread. Try a different keyword or sender."
	}

	if instructions == "" {
		instructions = "Reply briefly."
	}

	prompt := fmt.Sprintf("%s\n\nTHREAD:\n%s\n\nINSTRUCTIONS:\n%s",
		a.prompts.DraftReply, formatThread(thread), instructions)

	replyText, err := a.runPrompt(ctx, "You craft helpful email replies.", prompt)
	if err != nil {
		return fmt.Sprintf("I couldn't write that reply: %v", err)
	}

	latest := thread.Latest()
	raw, subject, err := a.buildReplyRaw(latest, replyText)
	if err != nil {
		return fmt.Sprintf("I couldn't build the reply: %v", err)
	}

	replaced := a.pending != nil
	a.pending = &domain.PendingDraft{
		ID:      uuid.NewString(),
		Raw:     raw,
		Preview: replyText,
		Subject: subject,
	}

	var b strings.Builder
	if replaced {
		b.WriteString("I replaced the earlier unsent draft.\n\n")
	}
	b.WriteString("Here's a draft. Let me know if you'd like me to send it.\n\n")
	b.WriteString(replyText)
	return b.String()
}

// SendDraft transmits the pending draft when explicitly confirmed.
// Without confirmation the slot is untouched and the user is asked to
// confirm; a provider failure keeps the slot populated.
func (a *Agent) SendDraft(ctx context.Context, confirmed bool) string {
	if a.pending == nil {
		return noPendingReply
	}

	if !confirmed {
		return fmt.Sprintf("You have a draft about %q ready. Say \"yes, send it\" when you want it to go out.",
			a.pending.Subject)
	}

	if err := a.provider.SendRaw(ctx, a.pending.Raw); err != nil {
		return fmt.Sprintf("Failed to send the email: %v", err)
	}

	subject := a.pending.Subject
	a.pending = nil
	return fmt.Sprintf("Done — I sent your reply about '%s'.", subject)
}

// Status reports the draft slot without changing state.
func (a *Agent) Status() string {
	if a.pending == nil {
		return "No draft is pending. Ask me to summarize your inbox or draft a reply."
	}
	return fmt.Sprintf("A draft about %q is waiting for your confirmation to send.", a.pending.Subject)
}

func (a *Agent) HasPendingDraft() bool {
	return a.pending != nil
}

// findThread returns the thread of the first search hit, nil when the
// search came back empty.
func (a *Agent) findThread(ctx context.Context, query string) (*domain.EmailThread, error) {
	refs, err := a.provider.ListMessages(ctx, "", query, 1)
	if err != nil {
		return nil, err
	}
	if len(refs) == 0 {
		return nil, nil
	}
	return a.provider.GetThread(ctx, refs[0].ThreadID)
}

func (a *Agent) runPrompt(ctx context.Context, system, user string) (string, error) {
	reply, err := a.llm.Complete(ctx, []domain.ChatMessage{
		{Role: domain.RoleSystem, Content: system},
		{Role: domain.RoleUser, Content: user},
	}, domain.CompleteOptions{})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(reply), nil
}

// buildReplyRaw assembles the base64url-encoded RFC-5322 reply. The
// configured sender address is required; its absence is a configuration
// error surfaced at this first point of use.
func (a *Agent) buildReplyRaw(latest *domain.EmailMessage, replyText string) (raw, subject string, err error) {
	if a.sender == "" {
		return "", "", fmt.Errorf("EMAIL_SENDER_ADDRESS is not set")
	}
	if latest == nil {
		return "", "", fmt.Errorf("thread has no messages")
	}

	subject = latest.Header("Subject")
	if subject == "" {
		subject = "(no subject)"
	}
	if !strings.HasPrefix(strings.ToLower(subject), "re:") {
		subject = "Re: " + subject
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", a.sender)
	fmt.Fprintf(&b, "To: %s\r\n", latest.ReplyAddress())
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	if msgID := latest.Header("Message-ID"); msgID != "" {
		fmt.Fprintf(&b, "In-Reply-To: %s\r\n", msgID)
		fmt.Fprintf(&b, "References: %s\r\n", msgID)
	}
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(replyText)

	return base64.URLEncoding.EncodeToString([]byte(b.String())), subject, nil
}

func formatForSummary(messages []*domain.EmailMessage) string {
	chunks := make([]string, 0, len(messages))
	for _, m := range messages {
		sender := m.Header("From")
		if sender == "" {
			sender = "Unknown sender"
		}
		subject := m.Header("Subject")
		if subject == "" {
			subject = "(no subject)"
		}
		chunks = append(chunks, fmt.Sprintf("From: %s\nSubject: %s\nSnippet: %s\n---", sender, subject, m.Snippet))
	}
	return strings.Join(chunks, "\n")
}

func formatThread(thread *domain.EmailThread) string {
	entries := make([]string, 0, len(thread.Messages))
	for _, m := range thread.Messages {
		entries = append(entries, fmt.Sprintf("[%s] %s:\n%s\n", m.Header("Date"), m.Header("From"), m.PlainText()))
	}
	return strings.Join(entries, "\n")
}

// stripCodeFences unwraps a fenced JSON block from the routing output.
func stripCodeFences(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```")
	if idx := strings.Index(trimmed, "\n"); idx >= 0 {
		trimmed = trimmed[idx+1:]
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
