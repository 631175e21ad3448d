package domain

import "strings"

// EmailHeader is a single RFC-5322 header as returned by the provider.
type EmailHeader struct {
	Name  string
	Value string
}

// EmailRef is a lightweight reference from a provider listing; the full
// message is fetched separately.
type EmailRef struct {
	ID       string
	ThreadID string
}

// EmailMessage is a decoded provider message: headers plus the plain-text
// body (the adapter resolves MIME parts and base64 encoding).
type EmailMessage struct {
	ID       string
	ThreadID string
	Snippet  string
	Headers  []EmailHeader
	Body     string
}

// Header returns the value of the first header matching name,
// case-insensitively, or "".
func (m *EmailMessage) Header(name string) string {
	for _, h := range m.Headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}

// ReplyAddress is the address a reply should go to: Reply-To when the
// sender set one, otherwise From.
func (m *EmailMessage) ReplyAddress() string {
	if v := m.Header("Reply-To"); v != "" {
		return v
	}
	return m.Header("From")
}

// PlainText returns the decoded body, falling back to the snippet when
// the message carried no text part.
func (m *EmailMessage) PlainText() string {
	if m.Body != "" {
		return m.Body
	}
	return m.Snippet
}

// EmailThread is an ordered conversation of messages, oldest first.
type EmailThread struct {
	ID       string
	Messages []*EmailMessage
}

// Latest returns the most recent message of the thread, or nil.
func (t *EmailThread) Latest() *EmailMessage {
	if t == nil || len(t.Messages) == 0 {
		return nil
	}
	return t.Messages[len(t.Messages)-1]
}

// PendingDraft is an unsent, provider-ready reply held in memory until
// the user explicitly confirms the send. Single slot, never persisted.
type PendingDraft struct {
	ID      string
	Raw     string // base64url-encoded RFC-5322 message
	Preview string
	Subject string
}
