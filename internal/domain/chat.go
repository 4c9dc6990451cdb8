package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ChatMessage is one entry of a trip's append-only chat log.
type ChatMessage struct {
	ID        uuid.UUID `json:"id"`
	SenderID  uuid.UUID `json:"sender_id"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// PostMessage appends a message from sender stamped with now.
// Messages are never edited or deleted.
func (t *Trip) PostMessage(sender uuid.UUID, content string, now time.Time) (ChatMessage, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return ChatMessage{}, Invalid("content", "content is required")
	}
	m := ChatMessage{ID: uuid.New(), SenderID: sender, Content: content, Timestamp: now}
	t.Messages = append(t.Messages, m)
	t.UpdatedAt = now
	return m, nil
}
