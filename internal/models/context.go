package models

// ContextRole tags an entry of a participant's rolling context window
type ContextRole string

const (
	RoleOwn    ContextRole = "own"    // the participant's own output
	RoleInput  ContextRole = "input"  // messages written by others
	RoleSystem ContextRole = "system" // notices from the game
)

// ContextEntry references a stored message or carries an inline system notice
type ContextEntry struct {
	Role      ContextRole `json:"role"`
	MessageID string      `json:"message_id,omitempty"`
	Text      string      `json:"text,omitempty"`
}

// IsMessageRef reports whether the entry points into the message store
func (e ContextEntry) IsMessageRef() bool {
	return e.MessageID != ""
}
