package domain

import "context"

// CompleteOptions carry the per-call knobs of the completion boundary.
// Zero values fall back to the client's configured defaults.
type CompleteOptions struct {
	Model       string
	Temperature float32
}

// CompletionClient defines how the core application talks to the text
// generation service: an ordered sequence of role-tagged messages in,
// generated text out. One opaque call, no streaming.
//
// Two implementations exist: the plain genai adapter and the
// memory-recording wrapper in memctx. Which one a component gets is
// decided at construction time.
type CompletionClient interface {
	Complete(ctx context.Context, messages []ChatMessage, opts CompleteOptions) (string, error)
}

// FactStore defines the long-term memory boundary: per-agent fact
// storage keyed by an external identifier resolved to a numeric id.
type FactStore interface {
	// EnsureEntity resolves (inserting if absent) the numeric id for an
	// agent's external identifier.
	EnsureEntity(ctx context.Context, externalID string) (int64, error)

	// EnsureProcess resolves (inserting if absent) the numeric id for a
	// namespace's external identifier.
	EnsureProcess(ctx context.Context, externalID string) (int64, error)

	// RecentFacts returns up to limit fact contents for an entity,
	// most recently touched first.
	RecentFacts(ctx context.Context, entityID int64, limit int) ([]string, error)

	// InsertFact stores a new fact for an entity/process pair.
	InsertFact(ctx context.Context, entityID, processID int64, content, kind, metadata string) error

	Close() error
}

// MailProvider defines the managed mail boundary: list message
// references by label/query, fetch decoded messages and threads, and
// send a raw RFC-5322 payload.
type MailProvider interface {
	ListMessages(ctx context.Context, label, query string, max int64) ([]EmailRef, error)
	GetMessage(ctx context.Context, id string) (*EmailMessage, error)
	GetThread(ctx context.Context, id string) (*EmailThread, error)
	SendRaw(ctx context.Context, raw string) error
}
