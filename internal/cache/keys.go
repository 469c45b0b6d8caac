package cache

import (
	"fmt"
	"strings"
)

const (
	KeyConversations = "conversations"
	KeyDocuments     = "documents"
	KeyOverview      = "system-overview"
	KeyTopics        = "popular-topics"
)

// Keys are colon-separated; invalidating a key also drops every key below it.

func ConversationsPageKey(skip, limit int) string {
	return fmt.Sprintf("%s:%d:%d", KeyConversations, skip, limit)
}

func ConversationKey(id string) string { return "conversation:" + id }

func MessagesKey(conversationID string) string { return "messages:" + conversationID }

func MessagesPageKey(conversationID string, skip, limit int) string {
	return fmt.Sprintf("%s:%d:%d", MessagesKey(conversationID), skip, limit)
}

func DocumentStatusKey(id string) string { return "document-status:" + id }

func TopicsKey(days int) string { return fmt.Sprintf("%s:%d", KeyTopics, days) }

func ConversationStatsKey(id string) string { return "conversation-stats:" + id }

func matches(key, keyOrPrefix string) bool {
	return key == keyOrPrefix || strings.HasPrefix(key, keyOrPrefix+":")
}
