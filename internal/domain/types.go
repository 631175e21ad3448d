package domain

// AgentID partitions memory and mail state so multiple logical
// assistants never share facts.
type AgentID string

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatMessage is one entry of the ordered sequence sent to the
// completion service. It is not persisted beyond the call.
type ChatMessage struct {
	Role    Role
	Content string
}

// Intent is the classified purpose of a user message and drives routing.
type Intent string

const (
	IntentTask       Intent = "task"
	IntentNote       Intent = "note"
	IntentDraftReply Intent = "draft_reply"
	IntentQuestion   Intent = "question"
	IntentOther      Intent = "other"
	IntentEmail      Intent = "email"
)

// ParseIntent maps a raw label to a known intent. The second return
// value reports whether the label was recognised.
func ParseIntent(s string) (Intent, bool) {
	switch Intent(s) {
	case IntentTask, IntentNote, IntentDraftReply, IntentQuestion, IntentOther, IntentEmail:
		return Intent(s), true
	default:
		return IntentOther, false
	}
}
