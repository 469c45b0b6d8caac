package handlers

import "github.com/yungbote/neurobridge-docchat/internal/domain"

// Backend is the state behind the handlers. Errors should be *apierr.Error
// with a status so they render with the right code.
type Backend interface {
	CreateConversation(title string) (domain.Conversation, error)
	ListConversations(skip, limit int) domain.Page[domain.Conversation]
	GetConversation(id string) (domain.Conversation, error)
	DeleteConversation(id string) error
	SendMessage(conversationID string, role domain.Role, content string) (domain.Message, error)
	ListMessages(conversationID string, skip, limit int) (domain.Page[domain.Message], error)

	AddDocument(name, contentType string, size int64, head []byte) (domain.Document, error)
	ListDocuments() domain.Page[domain.Document]
	DeleteDocument(id string) error
	DocumentStatus(id string) (domain.Document, error)

	Overview() domain.SystemOverview
	PopularTopics(days int) domain.Page[domain.PopularTopic]
	ConversationStats(id string) (domain.ConversationStats, error)
	Health() domain.Health
	ClearCache()
}
