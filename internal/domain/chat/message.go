package chat

import (
	"strings"
	"time"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Origin records whether the server has acknowledged a message.
type Origin string

const (
	OriginOptimistic Origin = "optimistic"
	OriginConfirmed  Origin = "confirmed"
)

// TempIDPrefix marks ids generated locally for optimistic messages.
const TempIDPrefix = "tmp-"

type Message struct {
	ID             string    `json:"id" yaml:"id"`
	ConversationID string    `json:"conversation_id" yaml:"conversation_id"`
	Role           Role      `json:"role" yaml:"role"`
	Content        string    `json:"content" yaml:"content"`
	CreatedAt      time.Time `json:"created_at" yaml:"created_at"`
	TokensUsed     *int      `json:"tokens_used,omitempty" yaml:"tokens_used,omitempty"`

	// Origin is local bookkeeping and is not part of the wire format.
	Origin Origin `json:"-" yaml:"origin"`
}

func (m Message) Optimistic() bool {
	if m.Origin != "" {
		return m.Origin == OriginOptimistic
	}
	return strings.HasPrefix(m.ID, TempIDPrefix)
}
