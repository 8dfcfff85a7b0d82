package models

import "time"

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry in the conversation log. Messages are immutable once
// appended; ids are assigned monotonically within a session.
type Message struct {
	ID        int64
	Role      Role
	Content   string
	Timestamp time.Time
}
