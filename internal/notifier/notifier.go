package notifier

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
)

// Notifier delivers a text report somewhere a user can read it.
type Notifier interface {
	Send(ctx context.Context, text string) error
}

// CommandHandler is called when a user command is received.
type CommandHandler func(command string) string

var htmlTags = strings.NewReplacer("<b>", "", "</b>", "", "<i>", "", "</i>", "", "<code>", "", "</code>", "")

// ConsoleNotifier writes reports to W with Telegram markup stripped.
type ConsoleNotifier struct {
	W io.Writer

	mu sync.Mutex
}

// NewConsoleNotifier creates a notifier writing to w.
func NewConsoleNotifier(w io.Writer) *ConsoleNotifier {
	return &ConsoleNotifier{W: w}
}

func (c *ConsoleNotifier) Send(_ context.Context, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := fmt.Fprintln(c.W, htmlTags.Replace(text)); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// ReadCommands reads one command per line from r and sends each non-empty
// reply through n. It returns when r is exhausted or ctx is cancelled.
func ReadCommands(ctx context.Context, r io.Reader, n Notifier, handler CommandHandler) error {
	lines := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(r)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		errc <- sc.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-errc:
					if err != nil {
						return fmt.Errorf("read commands: %w", err)
					}
				default:
				}
				return nil
			}
			cmd := strings.TrimSpace(line)
			if cmd == "" {
				continue
			}
			reply := handler(cmd)
			if reply == "" {
				continue
			}
			if err := n.Send(ctx, reply); err != nil {
				log.Printf("[ERROR] send reply: %v", err)
			}
		}
	}
}
