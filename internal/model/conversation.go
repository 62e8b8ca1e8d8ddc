package model

import "time"

// Conversation roles. Alternation between them is a convention of the AI
// flow, not an enforced invariant.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ConversationEntry is one turn of a project's AI interaction history.
// Immutable once created.
type ConversationEntry struct {
	ID        int64
	ProjectID int64
	Role      string
	Content   string
	Timestamp time.Time
}

// ConversationEntryRequest is one entry in a bulk import or replacement
// payload. Timestamp defaults to now when omitted.
type ConversationEntryRequest struct {
	Role      string     `json:"role"`
	Content   string     `json:"content"`
	Timestamp *time.Time `json:"timestamp"`
}

// ConversationEntryResponse is a conversation entry as rendered in API
// responses.
type ConversationEntryResponse struct {
	ID        int64     `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}
