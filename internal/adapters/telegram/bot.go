// Package telegram runs the assistant as a long-polling Telegram bot.
package telegram

import (
	"context"
	"fmt"
	"strings"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"
	tu "github.com/mymmrac/telego/telegoutil"

	"github.com/ronaldv/minime-agent/internal/app/router"
	"github.com/ronaldv/minime-agent/internal/domain"
	"github.com/ronaldv/minime-agent/internal/observability"
)

const startReply = "Hello! I'm your Mini-Me Assistant. Send me a message and I'll help you out!\n\n" +
	"Use /help to see available commands."

const helpReply = "Available commands:\n" +
	"/start - Start the bot\n" +
	"/help - Show this help message\n\n" +
	"Just send me a message and I'll respond as your assistant!"

const emptyReply = "I received your message, but I don't have a response right now."

const errorReply = "Sorry, I encountered an error processing your message. Please try again."

// Bot bridges Telegram updates to the router. One logical agent serves
// every chat; per-chat identity is not part of the routing.
type Bot struct {
	bot     *telego.Bot
	router  *router.Router
	agentID string
}

func NewBot(token string, r *router.Router, agentID string) (*Bot, error) {
	if token == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is not set, get a token from @BotFather first")
	}

	bot, err := telego.NewBot(token)
	if err != nil {
		return nil, fmt.Errorf("creating telegram bot: %w", err)
	}

	return &Bot{bot: bot, router: r, agentID: agentID}, nil
}

// Run starts long polling and blocks until the context is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	log := observability.Logger()

	updates, err := b.bot.UpdatesViaLongPolling(ctx, &telego.GetUpdatesParams{
		Timeout: 30,
	})
	if err != nil {
		return fmt.Errorf("starting long polling: %w", err)
	}

	bh, err := th.NewBotHandler(b.bot, updates)
	if err != nil {
		return fmt.Errorf("creating bot handler: %w", err)
	}

	bh.HandleMessage(func(ctx *th.Context, message telego.Message) error {
		_, err := b.bot.SendMessage(ctx, tu.Message(tu.ID(message.Chat.ID), startReply))
		return err
	}, th.CommandEqual("start"))

	bh.HandleMessage(func(ctx *th.Context, message telego.Message) error {
		_, err := b.bot.SendMessage(ctx, tu.Message(tu.ID(message.Chat.ID), helpReply))
		return err
	}, th.CommandEqual("help"))

	bh.HandleMessage(func(ctx *th.Context, message telego.Message) error {
		return b.handleText(ctx, message)
	}, th.AnyMessage())

	log.Info("telegram bot connected", "username", b.bot.Username())

	go func() {
		<-ctx.Done()
		bh.Stop()
	}()

	return bh.Start()
}

func (b *Bot) handleText(ctx *th.Context, message telego.Message) error {
	chatID := tu.ID(message.Chat.ID)

	text := strings.TrimSpace(message.Text)
	if text == "" {
		_, err := b.bot.SendMessage(ctx, tu.Message(chatID, "Please send me a message with some text."))
		return err
	}

	// Typing indicator while the completion runs.
	if err := b.bot.SendChatAction(ctx, tu.ChatAction(chatID, telego.ChatActionTyping)); err != nil {
		observability.Logger().Warn("failed to send chat action", "error", err)
	}

	res := b.router.HandleMessage(ctx, b.agentID, text)

	reply := res.Reply
	if reply == "" {
		reply = emptyReply
	}

	if _, err := b.bot.SendMessage(ctx, tu.Message(chatID, reply)); err != nil {
		observability.Logger().Error("failed to send reply", "error", err)
		_, fallbackErr := b.bot.SendMessage(ctx, tu.Message(chatID, errorReply))
		return fallbackErr
	}

	if res.Intent == domain.IntentTask || res.Intent == domain.IntentNote {
		observability.Logger().Info("captured item from chat",
			"intent", res.Intent,
			"chat_id", message.Chat.ID)
	}
	return nil
}
