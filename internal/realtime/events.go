package realtime

type Event string

const (
	EventMessageAppended     Event = "message.appended"
	EventMessageConfirmed    Event = "message.confirmed"
	EventMessageRolledBack   Event = "message.rolled_back"
	EventConversationCreated Event = "conversation.created"

	EventDocumentUploaded Event = "document.uploaded"
	EventDocumentStatus   Event = "document.status"
	EventDocumentDeleted  Event = "document.deleted"
)

const ChannelDocuments = "documents"

func SessionChannel(sessionID string) string { return "session:" + sessionID }

type Message struct {
	Channel string `json:"channel"`
	Event   Event  `json:"event"`
	Data    any    `json:"data,omitempty"`
}
