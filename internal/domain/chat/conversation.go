package chat

import "time"

type Conversation struct {
	ID        string    `json:"id" yaml:"id"`
	Title     string    `json:"title" yaml:"title"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}

// ConversationStats is the per-conversation analytics summary.
type ConversationStats struct {
	TotalMessages         int     `json:"total_messages" yaml:"total_messages"`
	AverageResponseTime   float64 `json:"average_response_time" yaml:"average_response_time"`
	UserMessageCount      int     `json:"user_message_count" yaml:"user_message_count"`
	AssistantMessageCount int     `json:"assistant_message_count" yaml:"assistant_message_count"`
	TotalTokensUsed       int     `json:"total_tokens_used" yaml:"total_tokens_used"`
}
