package console_test

import (
	"context"
	"strings"
	"testing"

	"github.com/ronaldv/minime-agent/internal/adapters/console"
	"github.com/ronaldv/minime-agent/internal/adapters/llm"
	"github.com/ronaldv/minime-agent/internal/app/router"
)

func TestLoopHandlesAndExits(t *testing.T) {
	r := router.New(router.Config{
		LLM:          llm.NewScripted("question", "It's in Paris."),
		SystemPrompt: "You are the user's personal assistant.",
	})

	in := strings.NewReader("where is the Louvre?\nexit\n")
	var out strings.Builder

	loop := console.NewLoop(r, "main_assistant", in, &out)
	if err := loop.Run(context.Background()); err != nil {
		t.Fatalf("loop returned error: %v", err)
	}

	got := out.String()
	if !strings.Contains(got, "Assistant: It's in Paris.") {
		t.Errorf("output missing reply:\n%s", got)
	}
}

func TestLoopMarksCapturedItems(t *testing.T) {
	r := router.New(router.Config{
		LLM: llm.NewScripted(
			"task",
			`{"reply":"Will do.","intent":"task","task":{"title":"Buy milk","description":""},"note":null}`,
		),
		SystemPrompt: "You are the user's personal assistant.",
	})

	in := strings.NewReader("remind me to buy milk\nexit\n")
	var out strings.Builder

	loop := console.NewLoop(r, "main_assistant", in, &out)
	if err := loop.Run(context.Background()); err != nil {
		t.Fatalf("loop returned error: %v", err)
	}

	if !strings.Contains(out.String(), "(captured task)") {
		t.Errorf("output missing capture marker:\n%s", out.String())
	}
}

func TestLoopSkipsBlankLines(t *testing.T) {
	client := llm.NewScripted()
	r := router.New(router.Config{LLM: client})

	in := strings.NewReader("\n   \nquit\n")
	var out strings.Builder

	loop := console.NewLoop(r, "main_assistant", in, &out)
	if err := loop.Run(context.Background()); err != nil {
		t.Fatalf("loop returned error: %v", err)
	}

	if len(client.Calls()) != 0 {
		t.Errorf("blank lines must not reach the router, got %d calls", len(client.Calls()))
	}
}
