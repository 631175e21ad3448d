// Package console runs the assistant as an interactive terminal loop.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/ronaldv/minime-agent/internal/app/router"
	"github.com/ronaldv/minime-agent/internal/domain"
)

// Loop reads lines from in, routes each through the router and writes
// the replies to out. "exit" and "quit" end the loop, as does EOF.
type Loop struct {
	router  *router.Router
	agentID string
	in      io.Reader
	out     io.Writer
}

func NewLoop(r *router.Router, agentID string, in io.Reader, out io.Writer) *Loop {
	return &Loop{router: r, agentID: agentID, in: in, out: out}
}

func (l *Loop) Run(ctx context.Context) error {
	fmt.Fprintln(l.out, "Mini-Me Assistant CLI (type 'exit' to quit)")
	fmt.Fprintln(l.out)

	scanner := bufio.NewScanner(l.in)
	for {
		fmt.Fprint(l.out, "You: ")
		if !scanner.Scan() {
			break
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		lowered := strings.ToLower(text)
		if lowered == "exit" || lowered == "quit" {
			break
		}

		res := l.router.HandleMessage(ctx, l.agentID, text)
		fmt.Fprintf(l.out, "Assistant: %s\n", res.Reply)
		if res.Intent == domain.IntentTask || res.Intent == domain.IntentNote {
			fmt.Fprintf(l.out, "(captured %s)\n", res.Intent)
		}
	}
	return scanner.Err()
}
