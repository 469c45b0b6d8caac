package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/yungbote/neurobridge-docchat/internal/cache"
	"github.com/yungbote/neurobridge-docchat/internal/domain"
	"github.com/yungbote/neurobridge-docchat/internal/platform/apierr"
	"github.com/yungbote/neurobridge-docchat/internal/platform/ctxutil"
	"github.com/yungbote/neurobridge-docchat/internal/platform/logger"
	"github.com/yungbote/neurobridge-docchat/internal/realtime"
)

const (
	DefaultMaxMessageLength = 4000
	DefaultTitle            = "New Conversation"
	DefaultPageSize         = 50
	DefaultCreateTimeout    = 30 * time.Second
)

var ErrClosed = errors.New("session closed")

// API is the slice of the request client the manager needs.
type API interface {
	CreateConversation(ctx context.Context, title string) (domain.Conversation, error)
	SendMessage(ctx context.Context, conversationID, content string) (domain.Message, error)
	ListMessages(ctx context.Context, conversationID string, skip, limit int) (domain.Page[domain.Message], error)
}

type Options struct {
	// ConversationID binds the manager to an existing conversation.
	ConversationID string

	DefaultTitle     string
	MaxMessageLength int
	PageSize         int
	StaleTime        time.Duration

	// CreateTimeout bounds the shared create call, which outlives the
	// send that started it.
	CreateTimeout time.Duration

	// OnConversationCreated runs once the server has assigned an id to the
	// conversation this manager created.
	OnConversationCreated func(domain.Conversation)

	Now func() time.Time
}

// creation is the shared outcome of the single in-flight create call.
type creation struct {
	done chan struct{}
	conv domain.Conversation
	err  error
}

// Manager owns one conversation's local message list.
type Manager struct {
	log   *logger.Logger
	api   API
	store *cache.Store
	hub   *realtime.Hub

	id      string
	channel string

	title     string
	maxLen    int
	pageSize  int
	staleTime time.Duration
	createTTL time.Duration
	onCreated func(domain.Conversation)
	now       func() time.Time

	mu             sync.Mutex
	conversationID string
	creating       *creation
	entries        []*entry
	seq            uint64
	closed         bool
}

func New(log *logger.Logger, api API, store *cache.Store, hub *realtime.Hub, opts Options) (*Manager, error) {
	if api == nil {
		return nil, fmt.Errorf("api required")
	}
	if store == nil {
		return nil, fmt.Errorf("cache store required")
	}
	if log == nil {
		log = logger.Nop()
	}
	title := strings.TrimSpace(opts.DefaultTitle)
	if title == "" {
		title = DefaultTitle
	}
	maxLen := opts.MaxMessageLength
	if maxLen <= 0 {
		maxLen = DefaultMaxMessageLength
	}
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	createTTL := opts.CreateTimeout
	if createTTL <= 0 {
		createTTL = DefaultCreateTimeout
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	id := uuid.NewString()
	return &Manager{
		log:            log.With("component", "SessionManager", "session", id),
		api:            api,
		store:          store,
		hub:            hub,
		id:             id,
		channel:        realtime.SessionChannel(id),
		title:          title,
		maxLen:         maxLen,
		pageSize:       pageSize,
		staleTime:      opts.StaleTime,
		createTTL:      createTTL,
		onCreated:      opts.OnConversationCreated,
		now:            now,
		conversationID: strings.TrimSpace(opts.ConversationID),
	}, nil
}

func (m *Manager) ID() string { return m.id }

// Channel is the hub channel this manager publishes on.
func (m *Manager) Channel() string { return m.channel }

func (m *Manager) ConversationID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.conversationID
}

// SendMessage appends an optimistic message, makes sure a conversation
// exists, sends, and then confirms or rolls back the optimistic entry.
// An empty conversationID uses the bound conversation, creating one if
// none is bound yet.
func (m *Manager) SendMessage(ctx context.Context, conversationID, content string) (domain.Message, error) {
	ctx = ctxutil.WithSessionID(ctx, m.id)
	content = strings.TrimSpace(content)
	if content == "" {
		return domain.Message{}, apierr.Validation("empty_message", "Message is empty.")
	}
	if n := utf8.RuneCountInString(content); n > m.maxLen {
		return domain.Message{}, apierr.Validation("message_too_long",
			fmt.Sprintf("Message is %d characters; the limit is %d.", n, m.maxLen))
	}
	conversationID = strings.TrimSpace(conversationID)

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return domain.Message{}, ErrClosed
	}
	if conversationID != "" {
		switch {
		case m.conversationID == "" && m.creating == nil:
			m.conversationID = conversationID
		case m.conversationID != conversationID:
			m.mu.Unlock()
			return domain.Message{}, apierr.Validation("conversation_mismatch",
				"This session belongs to a different conversation.")
		}
	}
	opt := m.appendOptimisticLocked(content)
	m.mu.Unlock()

	tempID := opt.ID
	m.publish(realtime.EventMessageAppended, MessageEvent{TempID: tempID, State: Pending.String(), Message: opt})

	convID, err := m.resolveConversation(ctx)
	if err != nil {
		m.settle(tempID, RolledBack, domain.Message{}, err)
		return domain.Message{}, err
	}

	confirmed, err := m.api.SendMessage(ctx, convID, content)
	if err != nil {
		m.log.Warn("send failed; rolling back", "conversation_id", convID, "kind", apierr.KindOf(err))
		m.settle(tempID, RolledBack, domain.Message{}, err)
		return domain.Message{}, err
	}
	if confirmed.ConversationID == "" {
		confirmed.ConversationID = convID
	}
	confirmed = m.settle(tempID, Confirmed, confirmed, nil)
	m.store.Invalidate(cache.MessagesKey(convID))
	return confirmed, nil
}

func (m *Manager) appendOptimisticLocked(content string) domain.Message {
	m.seq++
	now := m.now()
	msg := domain.Message{
		ID:             fmt.Sprintf("%s%d-%d", domain.TempIDPrefix, now.UnixNano(), m.seq),
		ConversationID: m.conversationID,
		Role:           domain.RoleUser,
		Content:        content,
		CreatedAt:      now,
		Origin:         domain.OriginOptimistic,
	}
	m.entries = append(m.entries, &entry{seq: m.seq, state: Pending, msg: msg})
	return msg
}

// resolveConversation returns the bound id, or joins the single in-flight
// create call (starting it if needed) and returns its outcome. The create
// call runs detached from every caller; each caller stops waiting only
// when its own ctx ends.
func (m *Manager) resolveConversation(ctx context.Context) (string, error) {
	m.mu.Lock()
	if m.conversationID != "" {
		id := m.conversationID
		m.mu.Unlock()
		return id, nil
	}
	c := m.creating
	owner := c == nil
	if owner {
		c = &creation{done: make(chan struct{})}
		m.creating = c
	}
	m.mu.Unlock()

	if owner {
		createCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.createTTL)
		go func() {
			defer cancel()
			m.create(createCtx, c)
		}()
	}
	select {
	case <-c.done:
	case <-ctx.Done():
		return "", apierr.Network(ctx.Err())
	}
	if c.err != nil {
		return "", c.err
	}
	return c.conv.ID, nil
}

func (m *Manager) create(ctx context.Context, c *creation) {
	conv, err := m.api.CreateConversation(ctx, m.title)
	if err == nil && strings.TrimSpace(conv.ID) == "" {
		err = &apierr.Error{Kind: apierr.KindServer, Code: "missing_conversation_id", Message: "server returned a conversation without an id"}
	}

	m.mu.Lock()
	c.conv, c.err = conv, err
	m.creating = nil
	closed := m.closed
	if err == nil && !closed {
		m.conversationID = conv.ID
		for _, e := range m.entries {
			if e.state == Pending && e.msg.ConversationID == "" {
				e.msg.ConversationID = conv.ID
			}
		}
	}
	close(c.done)
	m.mu.Unlock()

	if err != nil {
		m.log.Warn("create conversation failed", "kind", apierr.KindOf(err), "error", err)
		return
	}
	m.store.Invalidate(cache.KeyConversations)
	if closed {
		m.log.Debug("conversation created after close; not binding", "conversation_id", conv.ID)
		return
	}
	m.log.Info("conversation created", "conversation_id", conv.ID)
	m.publish(realtime.EventConversationCreated, conv)
	if m.onCreated != nil {
		m.onCreated(conv)
	}
}

// settle moves the entry for tempID out of Pending. It is a no-op once the
// manager is closed or the entry is gone.
func (m *Manager) settle(tempID string, to SendState, confirmed domain.Message, cause error) domain.Message {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		m.log.Debug("result arrived after close; dropped", "temp_id", tempID, "state", to)
		if to == Confirmed {
			confirmed.Origin = domain.OriginConfirmed
		}
		return confirmed
	}
	idx := m.indexLocked(tempID)
	if idx < 0 || !validTransition(m.entries[idx].state, to) {
		m.mu.Unlock()
		return confirmed
	}
	e := m.entries[idx]

	var event realtime.Event
	var payload MessageEvent
	switch to {
	case Confirmed:
		msg := confirmed
		msg.Origin = domain.OriginConfirmed
		if msg.ID == "" {
			msg.ID = e.msg.ID
		}
		if msg.CreatedAt.IsZero() {
			msg.CreatedAt = e.msg.CreatedAt
		}
		if msg.Role == "" {
			msg.Role = e.msg.Role
		}
		if msg.Content == "" {
			msg.Content = e.msg.Content
		}
		e.msg = msg
		e.state = Confirmed
		m.dropDuplicatesLocked(e)
		confirmed = msg
		event = realtime.EventMessageConfirmed
		payload = MessageEvent{TempID: tempID, State: Confirmed.String(), Message: msg}
	case RolledBack:
		m.entries = append(m.entries[:idx], m.entries[idx+1:]...)
		event = realtime.EventMessageRolledBack
		payload = MessageEvent{TempID: tempID, State: RolledBack.String(), Message: e.msg}
		if cause != nil {
			payload.Error = apierr.UserMessage(cause)
		}
	default:
		m.mu.Unlock()
		return confirmed
	}
	m.mu.Unlock()

	m.publish(event, payload)
	return confirmed
}

// dropDuplicatesLocked removes other entries carrying keep's server id,
// which a concurrent Sync may have inserted.
func (m *Manager) dropDuplicatesLocked(keep *entry) {
	out := m.entries[:0]
	for _, e := range m.entries {
		if e != keep && e.state == Confirmed && e.msg.ID == keep.msg.ID {
			continue
		}
		out = append(out, e)
	}
	m.entries = out
}

func (m *Manager) indexLocked(id string) int {
	for i, e := range m.entries {
		if e.msg.ID == id {
			return i
		}
	}
	return -1
}

// Messages returns a snapshot of the local list in display order.
func (m *Manager) Messages() []domain.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Message, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, e.msg)
	}
	return out
}

// PendingCount is the number of sends still awaiting an outcome.
func (m *Manager) PendingCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.entries {
		if e.state == Pending {
			n++
		}
	}
	return n
}

// ListMessages reads a conversation's messages through the cache, ordered by
// CreatedAt. An empty id is disabled: nothing is fetched.
func (m *Manager) ListMessages(ctx context.Context, conversationID string) ([]domain.Message, error) {
	conversationID = strings.TrimSpace(conversationID)
	if conversationID == "" {
		return nil, nil
	}
	page, err := cache.Query(ctx, m.store, cache.MessagesPageKey(conversationID, 0, m.pageSize), m.staleTime,
		func(ctx context.Context) (domain.Page[domain.Message], error) {
			return m.api.ListMessages(ctxutil.WithSessionID(ctx, m.id), conversationID, 0, m.pageSize)
		})
	if err != nil {
		return nil, err
	}
	out := make([]domain.Message, len(page.Data))
	copy(out, page.Data)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// Sync merges the server's list into the local one. Confirmed messages are
// ordered by CreatedAt then insertion sequence; pending sends stay last in
// the order they were issued.
func (m *Manager) Sync(ctx context.Context) error {
	convID := m.ConversationID()
	if convID == "" {
		return nil
	}
	server, err := m.ListMessages(ctx, convID)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed || m.conversationID != convID {
		return nil
	}

	local := make(map[string]*entry, len(m.entries))
	var pending []*entry
	for _, e := range m.entries {
		if e.state == Pending {
			pending = append(pending, e)
			continue
		}
		local[e.msg.ID] = e
	}

	confirmed := make([]*entry, 0, len(server)+len(local))
	seen := make(map[string]bool, len(server))
	for _, msg := range server {
		if seen[msg.ID] {
			continue
		}
		seen[msg.ID] = true
		msg.Origin = domain.OriginConfirmed
		if e, ok := local[msg.ID]; ok {
			e.msg = msg
			confirmed = append(confirmed, e)
			continue
		}
		m.seq++
		confirmed = append(confirmed, &entry{seq: m.seq, state: Confirmed, msg: msg})
	}
	// Keep confirmations the (possibly stale) server list has not caught up with.
	for id, e := range local {
		if !seen[id] {
			confirmed = append(confirmed, e)
		}
	}
	sort.SliceStable(confirmed, func(i, j int) bool {
		a, b := confirmed[i], confirmed[j]
		if !a.msg.CreatedAt.Equal(b.msg.CreatedAt) {
			return a.msg.CreatedAt.Before(b.msg.CreatedAt)
		}
		return a.seq < b.seq
	})
	sort.SliceStable(pending, func(i, j int) bool { return pending[i].seq < pending[j].seq })
	m.entries = append(confirmed, pending...)
	return nil
}

// Close tears the session down. In-flight calls may still finish but their
// results no longer touch local state.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *Manager) publish(event realtime.Event, data any) {
	if m.hub == nil {
		return
	}
	m.hub.Broadcast(realtime.Message{Channel: m.channel, Event: event, Data: data})
}
