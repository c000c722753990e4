package core

import "time"

// UIDocument is the html/css/js triple produced by a generation.
// All three fields are always present; JS is empty when the page needs no script.
type UIDocument struct {
	HTML string `json:"html"`
	CSS  string `json:"css"`
	JS   string `json:"js"`
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	default:
		return false
	}
}

// ChatTurn is one entry of a conversation. Turns are never edited in place:
// an edit-and-resend is recorded as a new turn.
type ChatTurn struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

func NewTurn(role Role, content string) ChatTurn {
	return ChatTurn{Role: role, Content: content, Timestamp: time.Now().UTC()}
}
