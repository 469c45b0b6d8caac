package fakeapi

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/neurobridge-docchat/internal/domain"
	"github.com/yungbote/neurobridge-docchat/internal/platform/apierr"
)

type storedDoc struct {
	doc    domain.Document
	reads  int
	result extraction
}

// State is the in-memory backend. All methods are safe for concurrent use.
type State struct {
	mu sync.Mutex

	now          func() time.Time
	processAfter int
	reply        func(content string) string

	conversations map[string]domain.Conversation
	messages      map[string][]domain.Message
	documents     map[string]*storedDoc
	docOrder      []string
	activity      []domain.Activity
	topics        map[string]int

	faults map[string][]fault
}

type fault struct {
	status     int
	retryAfter int
}

func newState(opts Options) *State {
	s := &State{
		now:           opts.Now,
		processAfter:  opts.ProcessAfterReads,
		reply:         opts.Reply,
		conversations: make(map[string]domain.Conversation),
		messages:      make(map[string][]domain.Message),
		documents:     make(map[string]*storedDoc),
		topics:        make(map[string]int),
		faults:        make(map[string][]fault),
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.processAfter < 0 {
		s.processAfter = 0
	}
	if s.reply == nil {
		s.reply = defaultReply
	}
	return s
}

func defaultReply(content string) string {
	return fmt.Sprintf("You said: %q. I have no documents loaded that answer that yet.", content)
}

func notFound(what string) *apierr.Error {
	return apierr.FromStatus(http.StatusNotFound, "not_found", what+" not found")
}

// FailNext makes the next n requests to method+route fail with status.
// route is the router pattern, for example "/documents/:id/status".
func (s *State) FailNext(method, route string, status, n int) {
	s.FailNextRetryAfter(method, route, status, 0, n)
}

func (s *State) FailNextRetryAfter(method, route string, status, retryAfterSeconds, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.ToUpper(method) + " " + route
	for i := 0; i < n; i++ {
		s.faults[key] = append(s.faults[key], fault{status: status, retryAfter: retryAfterSeconds})
	}
}

func (s *State) Take(method, route string) (int, int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.ToUpper(method) + " " + route
	q := s.faults[key]
	if len(q) == 0 {
		return 0, 0, false
	}
	f := q[0]
	if len(q) == 1 {
		delete(s.faults, key)
	} else {
		s.faults[key] = q[1:]
	}
	return f.status, f.retryAfter, true
}

func (s *State) record(kind, details string) {
	s.activity = append(s.activity, domain.Activity{Type: kind, Timestamp: s.now(), Details: details})
	if len(s.activity) > 20 {
		s.activity = s.activity[len(s.activity)-20:]
	}
}

func (s *State) CreateConversation(title string) (domain.Conversation, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		title = "New Conversation"
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	conv := domain.Conversation{ID: uuid.NewString(), Title: title, CreatedAt: now, UpdatedAt: now}
	s.conversations[conv.ID] = conv
	s.record("conversation_created", title)
	return conv, nil
}

func (s *State) ListConversations(skip, limit int) domain.Page[domain.Conversation] {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := make([]domain.Conversation, 0, len(s.conversations))
	for _, c := range s.conversations {
		all = append(all, c)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].UpdatedAt.After(all[j].UpdatedAt) })
	return domain.Page[domain.Conversation]{Data: window(all, skip, limit), Total: len(all)}
}

func (s *State) GetConversation(id string) (domain.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.conversations[id]
	if !ok {
		return domain.Conversation{}, notFound("Conversation")
	}
	return c, nil
}

func (s *State) DeleteConversation(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.conversations[id]; !ok {
		return notFound("Conversation")
	}
	delete(s.conversations, id)
	delete(s.messages, id)
	s.record("conversation_deleted", id)
	return nil
}

// SendMessage stores the user's message and an assistant reply, and
// returns the stored user message.
func (s *State) SendMessage(conversationID string, role domain.Role, content string) (domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	conv, ok := s.conversations[conversationID]
	if !ok {
		return domain.Message{}, notFound("Conversation")
	}
	now := s.now()
	msg := domain.Message{ID: uuid.NewString(), ConversationID: conversationID, Role: role, Content: content, CreatedAt: now}
	s.messages[conversationID] = append(s.messages[conversationID], msg)
	if role == domain.RoleUser {
		answer := s.reply(content)
		tokens := len(strings.Fields(content)) + len(strings.Fields(answer))
		s.messages[conversationID] = append(s.messages[conversationID], domain.Message{
			ID:             uuid.NewString(),
			ConversationID: conversationID,
			Role:           domain.RoleAssistant,
			Content:        answer,
			CreatedAt:      now.Add(time.Millisecond),
			TokensUsed:     &tokens,
		})
		for _, w := range strings.Fields(strings.ToLower(content)) {
			if w = strings.Trim(w, ".,!?;:\"'()"); len(w) > 4 {
				s.topics[w]++
			}
		}
	}
	conv.UpdatedAt = now
	s.conversations[conversationID] = conv
	s.record("message_sent", conversationID)
	return msg, nil
}

func (s *State) ListMessages(conversationID string, skip, limit int) (domain.Page[domain.Message], error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.conversations[conversationID]; !ok {
		return domain.Page[domain.Message]{}, notFound("Conversation")
	}
	all := s.messages[conversationID]
	return domain.Page[domain.Message]{Data: window(append([]domain.Message(nil), all...), skip, limit), Total: len(all)}, nil
}

// AddDocument registers an upload. It starts in processing and settles
// after the configured number of status reads, as processed with a chunk
// count or as error when head holds no extractable content.
func (s *State) AddDocument(name, contentType string, size int64, head []byte) (domain.Document, error) {
	result := extract(name, contentType, head, size)
	s.mu.Lock()
	defer s.mu.Unlock()
	doc := domain.Document{
		ID:         uuid.NewString(),
		Filename:   name,
		FileType:   contentType,
		SizeBytes:  size,
		Status:     domain.StatusProcessing,
		UploadDate: s.now(),
	}
	s.documents[doc.ID] = &storedDoc{doc: doc, result: result}
	s.docOrder = append(s.docOrder, doc.ID)
	s.record("document_uploaded", name)
	return doc, nil
}

func (s *State) ListDocuments() domain.Page[domain.Document] {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Document, 0, len(s.docOrder))
	for _, id := range s.docOrder {
		out = append(out, s.documents[id].doc)
	}
	return domain.Page[domain.Document]{Data: out, Total: len(out)}
}

func (s *State) DeleteDocument(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.documents[id]; !ok {
		return notFound("Document")
	}
	delete(s.documents, id)
	for i, d := range s.docOrder {
		if d == id {
			s.docOrder = append(s.docOrder[:i], s.docOrder[i+1:]...)
			break
		}
	}
	s.record("document_deleted", id)
	return nil
}

func (s *State) DocumentStatus(id string) (domain.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sd, ok := s.documents[id]
	if !ok {
		return domain.Document{}, notFound("Document")
	}
	sd.reads++
	if sd.doc.Status == domain.StatusProcessing && sd.reads > s.processAfter {
		if sd.result.err != "" {
			sd.doc.Status = domain.StatusError
			sd.doc.ErrorMessage = sd.result.err
		} else {
			chunks := sd.result.chunks
			sd.doc.Status = domain.StatusProcessed
			sd.doc.Processed = true
			sd.doc.EmbeddingCount = &chunks
		}
	}
	return sd.doc, nil
}

func (s *State) Overview() domain.SystemOverview {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, msgs := range s.messages {
		total += len(msgs)
	}
	recent := make([]domain.Activity, len(s.activity))
	for i := range s.activity {
		recent[i] = s.activity[len(s.activity)-1-i]
	}
	return domain.SystemOverview{
		TotalConversations: len(s.conversations),
		TotalMessages:      total,
		TotalDocuments:     len(s.documents),
		RecentActivity:     recent,
	}
}

// PopularTopics ranks words from user messages. days is accepted for
// wire compatibility; the in-memory store keeps no history window.
func (s *State) PopularTopics(days int) domain.Page[domain.PopularTopic] {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.PopularTopic, 0, len(s.topics))
	top := 0
	for w, n := range s.topics {
		out = append(out, domain.PopularTopic{Topic: w, Count: n})
		if n > top {
			top = n
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Topic < out[j].Topic
	})
	if len(out) > 10 {
		out = out[:10]
	}
	for i := range out {
		out[i].RelevanceScore = float64(out[i].Count) / float64(top)
	}
	return domain.Page[domain.PopularTopic]{Data: out, Total: len(out)}
}

func (s *State) ConversationStats(id string) (domain.ConversationStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.conversations[id]; !ok {
		return domain.ConversationStats{}, notFound("Conversation")
	}
	var st domain.ConversationStats
	for _, m := range s.messages[id] {
		st.TotalMessages++
		switch m.Role {
		case domain.RoleUser:
			st.UserMessageCount++
		case domain.RoleAssistant:
			st.AssistantMessageCount++
		}
		if m.TokensUsed != nil {
			st.TotalTokensUsed += *m.TokensUsed
		}
	}
	if st.AssistantMessageCount > 0 {
		st.AverageResponseTime = 0.001
	}
	return st, nil
}

func (s *State) Health() domain.Health {
	return domain.Health{Status: "healthy", Services: map[string]string{"store": "memory"}}
}

func (s *State) ClearCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("cache_cleared", "")
}

func window[T any](all []T, skip, limit int) []T {
	if skip >= len(all) {
		return []T{}
	}
	end := len(all)
	if limit > 0 && skip+limit < end {
		end = skip + limit
	}
	return all[skip:end]
}
