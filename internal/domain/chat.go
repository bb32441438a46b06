package domain

import (
	"time"

	"github.com/google/uuid"
)

// ChatEntry is one logged exchange: the user's message and the
// generated response. Entries are append-only and never mutated.
type ChatEntry struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"-"`
	Message   string    `json:"user_message"`
	Response  string    `json:"ai_response"`
	CreatedAt time.Time `json:"timestamp"`
}
