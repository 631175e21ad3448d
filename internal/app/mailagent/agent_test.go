package mailagent_test

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"github.com/ronaldv/minime-agent/internal/adapters/llm"
	"github.com/ronaldv/minime-agent/internal/app/mailagent"
	"github.com/ronaldv/minime-agent/internal/domain"
)

// fakeProvider is an in-memory MailProvider with programmable failures.
type fakeProvider struct {
	refs    []domain.EmailRef
	threads map[string]*domain.EmailThread
	byID    map[string]*domain.EmailMessage

	listErr error
	sendErr error
	sent    []string
}

func (f *fakeProvider) ListMessages(_ context.Context, _, _ string, max int64) ([]domain.EmailRef, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	if int64(len(f.refs)) > max {
		return f.refs[:max], nil
	}
	return f.refs, nil
}

func (f *fakeProvider) GetMessage(_ context.Context, id string) (*domain.EmailMessage, error) {
	msg, ok := f.byID[id]
	if !ok {
		return nil, errors.New("message not found")
	}
	return msg, nil
}

func (f *fakeProvider) GetThread(_ context.Context, id string) (*domain.EmailThread, error) {
	thread, ok := f.threads[id]
	if !ok {
		return nil, errors.New("thread not found")
	}
	return thread, nil
}

func (f *fakeProvider) SendRaw(_ context.Context, raw string) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, raw)
	return nil
}

func newFakeProvider() *fakeProvider {
	msg := &domain.EmailMessage{
		ID:       "m1",
		ThreadID: "t1",
		Snippet:  "Can we move the meeting?",
		Headers: []domain.EmailHeader{
			{Name: "From", Value: "alice@example.com"},
			{Name: "Subject", Value: "Meeting on Friday"},
			{Name: "Date", Value: "Mon, 12 Jan 2026 10:00:00 +0000"},
			{Name: "Message-ID", Value: "<abc@example.com>"},
		},
		Body: "Can we move the meeting to Friday afternoon?",
	}
	return &fakeProvider{
		refs:    []domain.EmailRef{{ID: "m1", ThreadID: "t1"}},
		threads: map[string]*domain.EmailThread{"t1": {ID: "t1", Messages: []*domain.EmailMessage{msg}}},
		byID:    map[string]*domain.EmailMessage{"m1": msg},
	}
}

func TestSendDraftWithoutPending(t *testing.T) {
	agent := mailagent.New(newFakeProvider(), llm.NewScripted(), "me@example.com")

	got := agent.SendDraft(context.Background(), true)
	if got != "There's no draft waiting to send." {
		t.Errorf("unexpected reply: %q", got)
	}
}

func draftOne(t *testing.T, agent *mailagent.Agent) {
	t.Helper()

	got := agent.DraftReply(context.Background(), "meeting", "confirm Friday works")
	if !strings.Contains(got, "Here's a draft") {
		t.Fatalf("expected draft reply, got %q", got)
	}
	if !agent.HasPendingDraft() {
		t.Fatal("expected a pending draft")
	}
}

func TestSendDraftRequiresConfirmation(t *testing.T) {
	provider := newFakeProvider()
	agent := mailagent.New(provider, llm.NewScripted("Friday afternoon works for me."), "me@example.com")

	draftOne(t, agent)

	got := agent.SendDraft(context.Background(), false)
	if !strings.Contains(got, "send it") {
		t.Errorf("expected confirmation request, got %q", got)
	}
	if !agent.HasPendingDraft() {
		t.Error("unconfirmed send must leave the draft pending")
	}
	if len(provider.sent) != 0 {
		t.Error("unconfirmed send must not transmit anything")
	}
}

func TestSendDraftConfirmedClearsSlot(t *testing.T) {
	provider := newFakeProvider()
	agent := mailagent.New(provider, llm.NewScripted("Friday afternoon works for me."), "me@example.com")

	draftOne(t, agent)

	got := agent.SendDraft(context.Background(), true)
	if !strings.Contains(got, "I sent your reply") {
		t.Errorf("unexpected reply: %q", got)
	}
	if agent.HasPendingDraft() {
		t.Error("successful send must clear the pending draft")
	}
	if len(provider.sent) != 1 {
		t.Fatalf("expected 1 sent message, got %d", len(provider.sent))
	}

	decoded, err := base64.URLEncoding.DecodeString(provider.sent[0])
	if err != nil {
		t.Fatalf("sent payload is not base64url: %v", err)
	}
	payload := string(decoded)
	for _, want := range []string{
		"To: alice@example.com",
		"From: me@example.com",
		"Subject: Re: Meeting on Friday",
		"In-Reply-To: <abc@example.com>",
		"References: <abc@example.com>",
		"Friday afternoon works for me.",
	} {
		if !strings.Contains(payload, want) {
			t.Errorf("payload missing %q:\n%s", want, payload)
		}
	}
}

func TestSendDraftProviderFailureKeepsSlot(t *testing.T) {
	provider := newFakeProvider()
	provider.sendErr = errors.New("quota exceeded")
	agent := mailagent.New(provider, llm.NewScripted("ok"), "me@example.com")

	draftOne(t, agent)

	got := agent.SendDraft(context.Background(), true)
	if !strings.Contains(got, "Failed to send the email") {
		t.Errorf("unexpected reply: %q", got)
	}
	if !agent.HasPendingDraft() {
		t.Error("failed send must keep the draft pending")
	}
}

func TestDraftReplyOverwritesPrior(t *testing.T) {
	agent := mailagent.New(newFakeProvider(), llm.NewScripted("first draft", "second draft"), "me@example.com")

	draftOne(t, agent)

	got := agent.DraftReply(context.Background(), "meeting", "shorter")
	if !strings.Contains(got, "replaced the earlier unsent draft") {
		t.Errorf("expected overwrite notice, got %q", got)
	}
	if !strings.Contains(got, "second draft") {
		t.Errorf("expected new preview, got %q", got)
	}
}

func TestDraftReplyRequiresSender(t *testing.T) {
	agent := mailagent.New(newFakeProvider(), llm.NewScripted("text"), "")

	got := agent.DraftReply(context.Background(), "meeting", "")
	if !strings.Contains(got, "EMAIL_SENDER_ADDRESS") {
		t.Errorf("expected sender configuration error, got %q", got)
	}
	if agent.HasPendingDraft() {
		t.Error("failed draft must not occupy the slot")
	}
}

func TestDraftReplyThreadNotFound(t *testing.T) {
	provider := newFakeProvider()
	provider.refs = nil
	agent := mailagent.New(provider, llm.NewScripted(), "me@example.com")

	got := agent.DraftReply(context.Background(), "nothing matches", "")
	if !strings.Contains(got, "couldn't locate that thread") {
		t.Errorf("unexpected reply: %q", got)
	}
}

func TestSummarizeInboxEmpty(t *testing.T) {
	provider := newFakeProvider()
	provider.refs = nil
	agent := mailagent.New(provider, llm.NewScripted(), "me@example.com")

	got := agent.SummarizeInbox(context.Background())
	if got != "Your inbox is clear right now." {
		t.Errorf("unexpected reply: %q", got)
	}
}

func TestSummarizeInboxProviderError(t *testing.T) {
	provider := newFakeProvider()
	provider.listErr = errors.New("auth expired")
	agent := mailagent.New(provider, llm.NewScripted(), "me@example.com")

	got := agent.SummarizeInbox(context.Background())
	if !strings.Contains(got, "couldn't read your inbox") {
		t.Errorf("expected user-facing error string, got %q", got)
	}
}

func TestHandleCommandUnparseableRoutingDefaultsToInbox(t *testing.T) {
	provider := newFakeProvider()
	// First reply is garbage routing output, second is the summary.
	client := llm.NewScripted("not json at all", "Inbox summary: one meeting email.")
	agent := mailagent.New(provider, client, "me@example.com")

	got := agent.HandleCommand(context.Background(), "what's in my mail?")
	if !strings.Contains(got, "Inbox summary") {
		t.Errorf("expected inbox summary fallback, got %q", got)
	}
}

func TestHandleCommandRoutesSend(t *testing.T) {
	agent := mailagent.New(newFakeProvider(), llm.NewScripted(
		`{"action":"send_draft","confirmation":"send_now"}`,
	), "me@example.com")

	got := agent.HandleCommand(context.Background(), "yes, send it")
	if got != "There's no draft waiting to send." {
		t.Errorf("unexpected reply: %q", got)
	}
}

func TestSummarizeThread(t *testing.T) {
	agent := mailagent.New(newFakeProvider(), llm.NewScripted(
		"Alice wants to move the meeting to Friday.",
	), "me@example.com")

	got := agent.SummarizeThread(context.Background(), "meeting")
	if !strings.Contains(got, "Friday") {
		t.Errorf("unexpected summary: %q", got)
	}
}
