package session

import (
	"fmt"

	"github.com/yungbote/neurobridge-docchat/internal/domain"
)

// SendState tracks one optimistic send. Pending is the only state an entry
// can leave; RolledBack entries are removed from the list.
type SendState uint8

const (
	Pending SendState = iota
	Confirmed
	RolledBack
)

func (s SendState) String() string {
	switch s {
	case Pending:
		return "pending"
	case Confirmed:
		return "confirmed"
	case RolledBack:
		return "rolled_back"
	default:
		return fmt.Sprintf("SendState(%d)", uint8(s))
	}
}

func validTransition(from, to SendState) bool {
	switch from {
	case Pending:
		return to == Confirmed || to == RolledBack
	case Confirmed, RolledBack:
		return false
	default:
		return false
	}
}

// entry is one row of the local message list. seq is assigned at insertion
// and is the tiebreaker that keeps issue order stable.
type entry struct {
	seq   uint64
	state SendState
	msg   domain.Message
}

// MessageEvent is the payload published for message lifecycle events.
type MessageEvent struct {
	TempID  string         `json:"temp_id,omitempty"`
	State   string         `json:"state"`
	Message domain.Message `json:"message"`
	Error   string         `json:"error,omitempty"`
}
