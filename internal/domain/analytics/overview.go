package analytics

import "time"

type Activity struct {
	Type      string    `json:"type" yaml:"type"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
	Details   string    `json:"details" yaml:"details"`
}

type SystemOverview struct {
	TotalConversations int        `json:"total_conversations" yaml:"total_conversations"`
	TotalMessages      int        `json:"total_messages" yaml:"total_messages"`
	TotalDocuments     int        `json:"total_documents" yaml:"total_documents"`
	RecentActivity     []Activity `json:"recent_activity" yaml:"recent_activity"`
}

type PopularTopic struct {
	Topic          string  `json:"topic" yaml:"topic"`
	Count          int     `json:"count" yaml:"count"`
	RelevanceScore float64 `json:"relevance_score,omitempty" yaml:"relevance_score,omitempty"`
}

type Health struct {
	Status   string            `json:"status" yaml:"status"`
	Services map[string]string `json:"services,omitempty" yaml:"services,omitempty"`
}
