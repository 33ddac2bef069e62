package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/set-night/finmind/internal/config"
	"github.com/set-night/finmind/internal/domain"
)

// Replier answers a message given the prior turns. *ChatService implements it.
type Replier interface {
	Reply(ctx context.Context, history []domain.ChatTurn, message string) (string, error)
}

// ChatHistory is the message list of one chat panel. It is never persisted and
// keeps at most limit messages, dropping the oldest.
type ChatHistory struct {
	mu       sync.Mutex
	limit    int
	messages []domain.ChatMessage
}

// NewChatHistory starts a panel with the assistant greeting.
func NewChatHistory(limit int) *ChatHistory {
	if limit <= 0 {
		limit = config.MaxHistoryMessages
	}
	h := &ChatHistory{limit: limit}
	h.Reset()
	return h
}

// Send appends content as a user message, asks r for a reply using the turns
// that preceded it, and appends the reply. On failure the appended reply is a
// fixed apology and the error is returned for logging.
func (h *ChatHistory) Send(ctx context.Context, r Replier, content string) (domain.ChatMessage, error) {
	h.mu.Lock()
	prior := h.turnsLocked()
	h.appendLocked(domain.RoleUser, content)
	h.mu.Unlock()

	reply, err := r.Reply(ctx, prior, content)
	if err != nil {
		return h.add(domain.RoleAssistant, config.ApologyReply), err
	}
	return h.add(domain.RoleAssistant, reply), nil
}

func (h *ChatHistory) AddUser(content string) domain.ChatMessage {
	return h.add(domain.RoleUser, content)
}

func (h *ChatHistory) AddAssistant(content string) domain.ChatMessage {
	return h.add(domain.RoleAssistant, content)
}

func (h *ChatHistory) Messages() []domain.ChatMessage {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]domain.ChatMessage(nil), h.messages...)
}

// Turns is the history in wire form, oldest first.
func (h *ChatHistory) Turns() []domain.ChatTurn {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.turnsLocked()
}

func (h *ChatHistory) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.messages)
}

// Reset drops everything and starts over with the greeting.
func (h *ChatHistory) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = nil
	h.appendLocked(domain.RoleAssistant, config.GreetingReply)
}

func (h *ChatHistory) add(role domain.ChatRole, content string) domain.ChatMessage {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.appendLocked(role, content)
}

func (h *ChatHistory) appendLocked(role domain.ChatRole, content string) domain.ChatMessage {
	msg := domain.ChatMessage{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
	h.messages = append(h.messages, msg)
	if over := len(h.messages) - h.limit; over > 0 {
		h.messages = append([]domain.ChatMessage(nil), h.messages[over:]...)
	}
	return msg
}

func (h *ChatHistory) turnsLocked() []domain.ChatTurn {
	turns := make([]domain.ChatTurn, len(h.messages))
	for i, m := range h.messages {
		turns[i] = domain.ChatTurn{Role: m.Role, Content: m.Content}
	}
	return turns
}
