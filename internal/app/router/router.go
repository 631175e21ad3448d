// Package router turns a raw user message into a Result: it classifies
// the intent, injects memory context, dispatches to an action handler or
// the mail sub-agent and records the turn.
package router

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ronaldv/minime-agent/internal/app/mailagent"
	"github.com/ronaldv/minime-agent/internal/app/memctx"
	"github.com/ronaldv/minime-agent/internal/domain"
	"github.com/ronaldv/minime-agent/internal/observability"
)

// Router orchestrates one user turn end to end. A single instance
// serves all agent namespaces; per-namespace state lives in the memory
// registry and the mail agent.
type Router struct {
	llm          domain.CompletionClient // classification and routing prompts
	chat         domain.CompletionClient // reply-producing handlers
	memory       *memctx.Registry        // may be nil: memory is best-effort
	mail         *mailagent.Agent        // may be nil: email unconfigured
	systemPrompt string
}

// Config wires the router. LLM is required; Chat defaults to LLM when
// unset, so the memory-augmented capability is opted into explicitly.
type Config struct {
	LLM          domain.CompletionClient
	Chat         domain.CompletionClient
	Memory       *memctx.Registry
	Mail         *mailagent.Agent
	SystemPrompt string
}

func New(cfg Config) *Router {
	chat := cfg.Chat
	if chat == nil {
		chat = cfg.LLM
	}
	return &Router{
		llm:          cfg.LLM,
		chat:         chat,
		memory:       cfg.Memory,
		mail:         cfg.Mail,
		systemPrompt: cfg.SystemPrompt,
	}
}

// HandleMessage handles one turn synchronously: build memory context,
// classify, apply the mail keyword override, dispatch, persist. It
// always returns a well-formed Result with one of the six intents.
func (r *Router) HandleMessage(ctx context.Context, agentID, text string) domain.Result {
	log := observability.LoggerFromContext(ctx).With("agent_id", agentID)

	mgr := r.manager(ctx, agentID)

	memoryContext := ""
	if mgr != nil {
		memoryContext = mgr.BuildContext(ctx, text)
	}

	intent := r.classify(ctx, text, memoryContext)
	if hasMailKeyword(text) {
		intent = domain.IntentEmail
	}
	log.Info("message classified", "intent", intent)

	var res domain.Result
	switch intent {
	case domain.IntentEmail:
		res = r.handleEmail(ctx, text)
	case domain.IntentTask, domain.IntentNote, domain.IntentDraftReply:
		res = r.runActionHandler(ctx, text, intent, memoryContext)
	default:
		res = r.runConversation(ctx, text, intent, memoryContext)
	}

	res = res.Normalize()
	r.persistTurn(ctx, mgr, text, res)
	return res
}

func (r *Router) handleEmail(ctx context.Context, text string) domain.Result {
	if r.mail == nil {
		return domain.Result{
			Reply:  "Email isn't set up yet. Configure the mail credentials and sender address first.",
			Intent: domain.IntentEmail,
		}
	}
	return domain.Result{
		Reply:  r.mail.HandleCommand(ctx, text),
		Intent: domain.IntentEmail,
	}
}

// manager resolves the memory manager for the agent. Any failure is
// logged and the turn proceeds without memory.
func (r *Router) manager(ctx context.Context, agentID string) *memctx.Manager {
	if r.memory == nil || agentID == "" {
		return nil
	}
	mgr, err := r.memory.Manager(ctx, agentID, "")
	if err != nil {
		observability.LoggerFromContext(ctx).Warn("memory unavailable",
			"agent_id", agentID,
			"error", err)
		return nil
	}
	return mgr
}

// persistTurn records the exchange and any captured task/note as facts.
// Fire-and-forget: failures are logged inside the manager and swallowed.
func (r *Router) persistTurn(ctx context.Context, mgr *memctx.Manager, text string, res domain.Result) {
	if mgr == nil {
		return
	}

	mgr.AddConversation(ctx, text, res.Reply)

	switch {
	case res.Intent == domain.IntentNote && res.Note != nil:
		content := fmt.Sprintf("%s: %s", res.Note.Title, res.Note.Body)
		mgr.StoreMemory(ctx, content, "note", tagsMetadata(res.Note.Tags, ""))
	case res.Intent == domain.IntentTask && res.Task != nil:
		content := fmt.Sprintf("Task: %s - %s", res.Task.Title, res.Task.Description)
		mgr.StoreMemory(ctx, content, "task", tagsMetadata(res.Task.Tags, res.Task.DueDate))
	}
}

func tagsMetadata(tags []string, dueDate string) string {
	meta := map[string]any{}
	if len(tags) > 0 {
		meta["tags"] = tags
	}
	if dueDate != "" {
		meta["due_date"] = dueDate
	}
	if len(meta) == 0 {
		return ""
	}
	b, err := json.Marshal(meta)
	if err != nil {
		return ""
	}
	return string(b)
}
