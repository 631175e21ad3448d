package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ronaldv/minime-agent/internal/adapters/console"
	httpadapter "github.com/ronaldv/minime-agent/internal/adapters/http"
	"github.com/ronaldv/minime-agent/internal/adapters/llm"
	"github.com/ronaldv/minime-agent/internal/adapters/mail"
	"github.com/ronaldv/minime-agent/internal/adapters/storage/memstore"
	"github.com/ronaldv/minime-agent/internal/adapters/storage/sqlite"
	"github.com/ronaldv/minime-agent/internal/adapters/telegram"
	"github.com/ronaldv/minime-agent/internal/app/mailagent"
	"github.com/ronaldv/minime-agent/internal/app/memctx"
	"github.com/ronaldv/minime-agent/internal/app/router"
	"github.com/ronaldv/minime-agent/internal/config"
	"github.com/ronaldv/minime-agent/internal/domain"
	"github.com/ronaldv/minime-agent/internal/identity"
	"github.com/ronaldv/minime-agent/internal/observability"
)

var version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "minime",
		Short: "Personal assistant with memory, intents and a mail sub-agent",
		Long: `Mini-Me is a personal assistant that classifies what you send it
(tasks, notes, questions, email requests), keeps a long-term memory of
your conversations and handles your inbox through a mail sub-agent.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		cliCmd(),
		telegramCmd(),
		serveCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func cliCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cli",
		Short: "Run the interactive terminal assistant",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			cfg := config.Load()
			r, cleanup, err := buildRouter(ctx, cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			loop := console.NewLoop(r, cfg.DefaultAgentID, os.Stdin, os.Stdout)
			return loop.Run(ctx)
		},
	}
}

func telegramCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "telegram",
		Short: "Run the Telegram bot",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			cfg := config.Load()
			r, cleanup, err := buildRouter(ctx, cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			bot, err := telegram.NewBot(cfg.TelegramToken, r, cfg.DefaultAgentID)
			if err != nil {
				return err
			}
			return bot.Run(ctx)
		},
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			cfg := config.Load()
			r, cleanup, err := buildRouter(ctx, cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			handler := httpadapter.NewServer(r, cfg.DefaultAgentID)
			srv := &http.Server{Addr: ":" + cfg.HTTPPort, Handler: handler}

			go func() {
				<-ctx.Done()
				_ = srv.Shutdown(context.Background())
			}()

			observability.Logger().Info("http api listening", "port", cfg.HTTPPort)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return err
			}
			return nil
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("minime version %s\n", version)
		},
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// buildRouter wires the whole application: persona, completion client,
// memory store, mail sub-agent and router. The returned cleanup closes
// the fact store.
func buildRouter(ctx context.Context, cfg *config.Config) (*router.Router, func(), error) {
	observability.Init(cfg.LogLevel)
	log := observability.Logger()

	profile, err := identity.Load(cfg.ProfilePath)
	if err != nil {
		return nil, nil, fmt.Errorf("loading profile: %w", err)
	}
	systemPrompt := identity.BuildSystemPrompt(profile)

	var client domain.CompletionClient
	if cfg.UseMockLLM {
		log.Info("using scripted completion client")
		client = llm.NewScripted()
	} else {
		genaiClient, err := llm.NewGenAIClient(ctx, cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("initializing completion client: %w", err)
		}
		client = genaiClient
	}

	store, cleanup := buildFactStore(cfg, log)

	var registry *memctx.Registry
	if store != nil {
		registry = memctx.NewRegistry(store)
	}

	mailAgent, err := buildMailAgent(ctx, cfg, client, registry)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	r := router.New(router.Config{
		LLM:          client,
		Memory:       registry,
		Mail:         mailAgent,
		SystemPrompt: systemPrompt,
	})
	return r, cleanup, nil
}

// buildFactStore picks the configured backend. A broken sqlite file is
// not fatal: the assistant runs without memory and says so in the logs.
func buildFactStore(cfg *config.Config, log *slog.Logger) (domain.FactStore, func()) {
	switch cfg.StorageBackend {
	case "memory":
		log.Info("using in-memory fact store")
		return memstore.NewFactStore(), func() {}
	default:
		store, err := sqlite.NewStore(cfg.MemoryDBPath)
		if err != nil {
			log.Warn("memory store unavailable, continuing without memory", "error", err)
			return nil, func() {}
		}
		log.Info("using sqlite fact store", "path", cfg.MemoryDBPath)
		return store, func() { _ = store.Close() }
	}
}

// buildMailAgent wires the Gmail-backed sub-agent. Its completion client
// records every exchange under the email_agent namespace so mail
// conversations feed the same long-term memory.
func buildMailAgent(ctx context.Context, cfg *config.Config, client domain.CompletionClient, registry *memctx.Registry) (*mailagent.Agent, error) {
	provider := mail.NewGmailProvider(cfg.GmailCredentialsPath, cfg.GmailTokenPath)

	mailLLM := client
	if registry != nil {
		mgr, err := registry.Manager(ctx, cfg.DefaultAgentID, "email_agent")
		if err != nil {
			observability.Logger().Warn("mail memory unavailable", "error", err)
		} else {
			mailLLM = memctx.NewRecordingClient(client, mgr)
		}
	}

	return mailagent.New(provider, mailLLM, cfg.SenderAddress,
		mailagent.WithSummaryLimit(cfg.EmailSummaryLimit)), nil
}
