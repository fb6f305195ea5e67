// Package conversation stores the per-complaint assistant threads. The
// coordinator only creates the empty thread at complaint creation; the
// conversational assistant (out of process) appends to it afterwards.
package conversation

import (
	"time"

	"github.com/google/uuid"
)

// Role tags a message author.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn in a thread.
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Thread is the conversation attached to a complaint.
type Thread struct {
	ComplaintID uuid.UUID `json:"complaint_id"`
	Messages    []Message `json:"messages"`
	Language    string    `json:"language"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DefaultLanguage is the thread language when the reporter specifies none.
const DefaultLanguage = "hi"
