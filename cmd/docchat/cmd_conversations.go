package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/yungbote/neurobridge-docchat/internal/domain"
	"github.com/yungbote/neurobridge-docchat/internal/view"
)

var (
	convSkip  int
	convLimit int
)

var conversationsCmd = &cobra.Command{
	Use:     "conversations",
	Aliases: []string{"conv"},
	Short:   "List, show and delete conversations",
	RunE:    runConversationsList,
}

var conversationsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List conversations, most recent first",
	RunE:  runConversationsList,
}

var conversationsShowCmd = &cobra.Command{
	Use:   "show <conversation-id>",
	Short: "Show a conversation and its messages",
	Args:  cobra.ExactArgs(1),
	RunE:  runConversationsShow,
}

var conversationsDeleteCmd = &cobra.Command{
	Use:   "delete <conversation-id>",
	Short: "Delete a conversation",
	Args:  cobra.ExactArgs(1),
	RunE:  runConversationsDelete,
}

func init() {
	conversationsCmd.PersistentFlags().IntVar(&convSkip, "skip", 0, "Number of conversations to skip")
	conversationsCmd.PersistentFlags().IntVar(&convLimit, "limit", 20, "Maximum number of conversations")
	conversationsCmd.AddCommand(conversationsListCmd)
	conversationsCmd.AddCommand(conversationsShowCmd)
	conversationsCmd.AddCommand(conversationsDeleteCmd)
}

type conversationList struct {
	Conversations []view.ConversationRow `json:"conversations" yaml:"conversations"`
	Total         int                    `json:"total" yaml:"total"`
}

func runConversationsList(cmd *cobra.Command, args []string) error {
	page, err := docchat.Conversations.List(cmd.Context(), convSkip, convLimit)
	if err != nil {
		return err
	}
	rows := view.ConversationRows(page.Data, docchat.Cfg.Chat.PreviewLength)
	return render(cmd.OutOrStdout(), conversationList{Conversations: rows, Total: page.Total}, func(w io.Writer) {
		cells := make([][]string, 0, len(rows))
		for _, r := range rows {
			cells = append(cells, []string{r.ID, r.Title, r.Updated})
		}
		table(w, []string{"ID", "TITLE", "UPDATED"}, cells)
		if page.Total > len(rows) {
			fmt.Fprintln(w, styles.Muted.Render(fmt.Sprintf("showing %d of %d", len(rows), page.Total)))
		}
	})
}

type conversationDetail struct {
	Conversation domain.Conversation       `json:"conversation" yaml:"conversation"`
	Stats        *domain.ConversationStats `json:"stats,omitempty" yaml:"stats,omitempty"`
	Messages     []view.MessageRow         `json:"messages" yaml:"messages"`
}

func runConversationsShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	conv, err := docchat.Conversations.Get(ctx, args[0])
	if err != nil {
		return err
	}
	m, err := docchat.NewSession(conv.ID, nil)
	if err != nil {
		return err
	}
	defer m.Close()
	msgs, err := m.ListMessages(ctx, conv.ID)
	if err != nil {
		return err
	}
	detail := conversationDetail{Conversation: conv, Messages: view.MessageRows(msgs)}
	if stats, ok, err := docchat.Analytics.ConversationStats(ctx, conv.ID); err == nil && ok {
		detail.Stats = &stats
	} else if err != nil {
		docchat.Log.Debug("conversation stats unavailable", "conversation_id", conv.ID, "error", err)
	}
	return render(cmd.OutOrStdout(), detail, func(w io.Writer) {
		fmt.Fprintln(w, styles.Title.Render(conv.Title))
		if detail.Stats != nil {
			fmt.Fprintln(w, styles.Muted.Render(fmt.Sprintf("%d messages, %d tokens",
				detail.Stats.TotalMessages, detail.Stats.TotalTokensUsed)))
		}
		fmt.Fprintln(w)
		printMessages(w, newMarkdownRenderer(), msgs)
	})
}

func runConversationsDelete(cmd *cobra.Command, args []string) error {
	if err := docchat.Conversations.Delete(cmd.Context(), args[0]); err != nil {
		return err
	}
	return render(cmd.OutOrStdout(), map[string]string{"deleted": args[0]}, func(w io.Writer) {
		fmt.Fprintln(w, "Deleted conversation "+args[0])
	})
}
