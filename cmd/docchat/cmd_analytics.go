package main

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/yungbote/neurobridge-docchat/internal/analytics"
	"github.com/yungbote/neurobridge-docchat/internal/view"
)

var (
	analyticsDays         int
	analyticsConversation string
)

var analyticsCmd = &cobra.Command{
	Use:   "analytics",
	Short: "Show usage overview and popular topics",
	Long: `Shows totals, recent activity and the most discussed topics.
With --conversation, shows statistics for a single conversation instead.`,
	RunE: runAnalytics,
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the API's health",
	RunE:  runHealth,
}

func init() {
	analyticsCmd.Flags().IntVar(&analyticsDays, "days", analytics.DefaultTopicDays, "Topic window in days")
	analyticsCmd.Flags().StringVarP(&analyticsConversation, "conversation", "c", "", "Show stats for one conversation")
}

func runAnalytics(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if analyticsConversation != "" {
		stats, _, err := docchat.Analytics.ConversationStats(ctx, analyticsConversation)
		if err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), stats, func(w io.Writer) {
			fmt.Fprintln(w, styles.Title.Render("Conversation "+analyticsConversation))
			table(w, []string{"METRIC", "VALUE"}, [][]string{
				{"messages", strconv.Itoa(stats.TotalMessages)},
				{"from you", strconv.Itoa(stats.UserMessageCount)},
				{"from assistant", strconv.Itoa(stats.AssistantMessageCount)},
				{"tokens", strconv.Itoa(stats.TotalTokensUsed)},
				{"avg response", view.FormatDuration(int64(stats.AverageResponseTime * 1000))},
			})
		})
	}

	dash, err := docchat.Analytics.Dashboard(ctx, analyticsDays)
	if err != nil {
		return err
	}
	return render(cmd.OutOrStdout(), dash, func(w io.Writer) {
		ov := dash.Overview
		fmt.Fprintln(w, styles.Title.Render("Overview"))
		table(w, []string{"CONVERSATIONS", "MESSAGES", "DOCUMENTS"}, [][]string{{
			strconv.Itoa(ov.TotalConversations), strconv.Itoa(ov.TotalMessages), strconv.Itoa(ov.TotalDocuments),
		}})
		if len(ov.RecentActivity) > 0 {
			fmt.Fprintln(w)
			fmt.Fprintln(w, styles.Title.Render("Recent activity"))
			cells := make([][]string, 0, len(ov.RecentActivity))
			for _, a := range ov.RecentActivity {
				cells = append(cells, []string{a.Timestamp.Local().Format("Jan 2 15:04"), a.Type, view.Preview(a.Details, 60)})
			}
			table(w, []string{"WHEN", "TYPE", "DETAILS"}, cells)
		}
		fmt.Fprintln(w)
		fmt.Fprintln(w, styles.Title.Render(fmt.Sprintf("Popular topics (last %d days)", dash.Days)))
		topics := append(dash.Topics[:0:0], dash.Topics...)
		sort.SliceStable(topics, func(i, j int) bool { return topics[i].Count > topics[j].Count })
		cells := make([][]string, 0, len(topics))
		for _, t := range topics {
			cells = append(cells, []string{t.Topic, strconv.Itoa(t.Count)})
		}
		table(w, []string{"TOPIC", "COUNT"}, cells)
	})
}

func runHealth(cmd *cobra.Command, args []string) error {
	h, err := docchat.Analytics.Health(cmd.Context())
	if err != nil {
		return err
	}
	return render(cmd.OutOrStdout(), h, func(w io.Writer) {
		color := view.ColorSuccess
		if h.Status != "healthy" && h.Status != "ok" {
			color = view.ColorWarning
		}
		fmt.Fprintln(w, styles.Status(color, h.Status))
		names := make([]string, 0, len(h.Services))
		for name := range h.Services {
			names = append(names, name)
		}
		sort.Strings(names)
		cells := make([][]string, 0, len(names))
		for _, name := range names {
			cells = append(cells, []string{name, h.Services[name]})
		}
		if len(cells) > 0 {
			table(w, []string{"SERVICE", "STATUS"}, cells)
		}
	})
}
