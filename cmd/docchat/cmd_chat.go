package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/yungbote/neurobridge-docchat/internal/domain"
	"github.com/yungbote/neurobridge-docchat/internal/platform/apierr"
	"github.com/yungbote/neurobridge-docchat/internal/realtime"
	"github.com/yungbote/neurobridge-docchat/internal/session"
	"github.com/yungbote/neurobridge-docchat/internal/view"
)

var chatConversationID string

var chatCmd = &cobra.Command{
	Use:   "chat [message]",
	Short: "Ask questions about your documents",
	Long: `With a message, sends it and prints the conversation's new messages.
Without one, starts an interactive prompt; type /quit to leave.

A new conversation is created on the first message unless --conversation
names an existing one.`,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVarP(&chatConversationID, "conversation", "c", "", "Continue an existing conversation")
}

type chatResult struct {
	ConversationID string            `json:"conversation_id" yaml:"conversation_id"`
	Messages       []view.MessageRow `json:"messages" yaml:"messages"`
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	m, err := docchat.NewSession(chatConversationID, func(c domain.Conversation) {
		if outputFormat == "text" {
			fmt.Fprintln(cmd.ErrOrStderr(), styles.Muted.Render("Started conversation "+c.ID))
		}
	})
	if err != nil {
		return err
	}
	defer m.Close()

	var events *realtime.Subscriber
	if verbose && outputFormat == "text" {
		events = docchat.Hub.Subscribe(m.Channel())
		defer docchat.Hub.CloseSubscriber(events)
	}
	var dropped int64
	trace := func() { dropped = printEvents(cmd.ErrOrStderr(), events, dropped) }

	renderer := newMarkdownRenderer()

	if len(args) > 0 {
		seen := len(m.Messages())
		err := sendAndSync(ctx, m, strings.Join(args, " "))
		trace()
		if err != nil {
			return err
		}
		msgs := m.Messages()
		return render(out, chatResult{ConversationID: m.ConversationID(), Messages: view.MessageRows(msgs)}, func(w io.Writer) {
			printMessages(w, renderer, msgs[min(seen, len(msgs)):])
		})
	}
	return chatREPL(ctx, cmd.InOrStdin(), out, m, renderer, trace)
}

// printEvents writes the session events buffered since the last call and
// returns the subscriber's drop count so the next call reports only new drops.
func printEvents(w io.Writer, sub *realtime.Subscriber, seenDropped int64) int64 {
	if sub == nil {
		return 0
	}
	for _, msg := range sub.Pending() {
		fmt.Fprintln(w, styles.Muted.Render("event "+string(msg.Event)))
	}
	n := sub.Dropped()
	if n > seenDropped {
		fmt.Fprintln(w, styles.Muted.Render(fmt.Sprintf("%d events dropped", n-seenDropped)))
	}
	return n
}

func sendAndSync(ctx context.Context, m *session.Manager, text string) error {
	if _, err := m.SendMessage(ctx, "", text); err != nil {
		return err
	}
	return m.Sync(ctx)
}

func chatREPL(ctx context.Context, in io.Reader, out io.Writer, m *session.Manager, renderer *glamour.TermRenderer, trace func()) error {
	if id := m.ConversationID(); id != "" {
		if err := m.Sync(ctx); err != nil {
			return err
		}
		printMessages(out, renderer, m.Messages())
	}
	fmt.Fprintln(out, styles.Muted.Render("Type a question, or /quit to leave."))

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for {
		fmt.Fprint(out, styles.User.Render("you> "))
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "/quit", "/exit":
			return nil
		}

		seen := len(m.Messages())
		err := sendAndSync(ctx, m, line)
		trace()
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			fmt.Fprintln(out, styles.Error.Render(apierr.UserMessage(err)))
			continue
		}
		msgs := m.Messages()
		for _, msg := range msgs[min(seen, len(msgs)):] {
			// The user's own line is already on screen.
			if msg.Role == domain.RoleAssistant {
				printMessages(out, renderer, []domain.Message{msg})
			}
		}
	}
}

func newMarkdownRenderer() *glamour.TermRenderer {
	if outputFormat != "text" {
		return nil
	}
	if fi, err := os.Stdout.Stat(); err != nil || fi.Mode()&os.ModeCharDevice == 0 {
		return nil
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(80))
	if err != nil {
		return nil
	}
	return r
}

func printMessages(w io.Writer, renderer *glamour.TermRenderer, msgs []domain.Message) {
	for _, row := range view.MessageRows(msgs) {
		label := styles.User.Render("you")
		if row.Role == string(domain.RoleAssistant) {
			label = styles.Assistant.Render("assistant")
		}
		meta := row.Time
		if row.Pending {
			meta = "sending..."
		}
		fmt.Fprintf(w, "%s %s\n", label, styles.Muted.Render(meta))
		body := row.Content
		if renderer != nil && row.Role == string(domain.RoleAssistant) {
			if rendered, err := renderer.Render(body); err == nil {
				body = strings.TrimRight(rendered, "\n")
			}
		}
		fmt.Fprintln(w, body)
		fmt.Fprintln(w)
	}
}
