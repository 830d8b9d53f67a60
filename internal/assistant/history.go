package assistant

import "sync"

const (
	RoleSystem    string = "system"
	RoleUser      string = "user"
	RoleAssistant string = "assistant"
)

// HistoryCap bounds each user's conversation: one system anchor plus ten turns.
const HistoryCap = 11

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type conversation struct {
	mu       sync.Mutex
	messages []Message
}

// ConversationStore maps user ids to bounded, ordered conversation histories.
// It is the sole owner of that state: callers only ever see snapshot copies.
// Each conversation carries its own mutex so that concurrent requests from the
// same user serialize without blocking unrelated users; the store-level mutex
// guards only the map itself.
type ConversationStore struct {
	mu            sync.Mutex
	conversations map[uint]*conversation
}

func NewConversationStore() *ConversationStore {
	return &ConversationStore{conversations: make(map[uint]*conversation)}
}

func (s *ConversationStore) conversation(userId uint) *conversation {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.conversations[userId]
	if !ok {
		c = &conversation{}
		s.conversations[userId] = c
	}
	return c
}

// GetOrCreate returns the user's history, seeding a new one with the system
// anchor if none exists. The anchor is first-write-wins: once a history
// exists, later calls never overwrite it.
func (s *ConversationStore) GetOrCreate(userId uint, systemPrompt string) []Message {
	c := s.conversation(userId)

	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.messages) == 0 {
		c.messages = []Message{{Role: RoleSystem, Content: systemPrompt}}
	}
	return snapshot(c.messages)
}

// AppendTurn appends the user message then the assistant reply as a single
// atomic mutation, then trims the oldest non-anchor messages until the history
// is back at the cap. Two concurrent calls for one user never tear a pair.
func (s *ConversationStore) AppendTurn(userId uint, userMessage, assistantMessage string) {
	c := s.conversation(userId)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.messages = append(c.messages,
		Message{Role: RoleUser, Content: userMessage},
		Message{Role: RoleAssistant, Content: assistantMessage},
	)
	c.messages = trimToCap(c.messages)
}

// Read returns a snapshot of the user's history, or nil if no conversation
// has been started.
func (s *ConversationStore) Read(userId uint) []Message {
	s.mu.Lock()
	c, ok := s.conversations[userId]
	s.mu.Unlock()
	if !ok {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return snapshot(c.messages)
}

// trimToCap drops the oldest non-anchor messages until len == HistoryCap. It
// trims exactly back to the cap after each append rather than applying a
// fixed-width window, preserving the relative order of survivors.
func trimToCap(messages []Message) []Message {
	if len(messages) <= HistoryCap {
		return messages
	}

	if messages[0].Role == RoleSystem {
		trimmed := make([]Message, 0, HistoryCap)
		trimmed = append(trimmed, messages[0])
		return append(trimmed, messages[len(messages)-(HistoryCap-1):]...)
	}

	// No anchor to preserve; keep the newest HistoryCap messages.
	return append([]Message(nil), messages[len(messages)-HistoryCap:]...)
}

func snapshot(messages []Message) []Message {
	return append([]Message(nil), messages...)
}
