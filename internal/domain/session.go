package domain

import "time"

// Session is the authenticated identity held by the client.
type Session struct {
	Token string
	User  *UserProfile
}

func (s Session) IsAuthenticated() bool {
	return s.Token != "" && s.User != nil
}

type ChatRole string

const (
	RoleSystem    ChatRole = "system"
	RoleUser      ChatRole = "user"
	RoleAssistant ChatRole = "assistant"
)

// ChatTurn is one conversation turn on the wire.
type ChatTurn struct {
	Role    ChatRole `json:"role"`
	Content string   `json:"content"`
}

// ChatMessage lives only as long as one chat panel; it is never persisted.
type ChatMessage struct {
	ID        string
	Role      ChatRole
	Content   string
	Timestamp time.Time
}
