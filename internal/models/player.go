package models

// Profile describes a participant when a game is created
type Profile struct {
	ID      string `json:"id"`
	Persona string `json:"persona"`
}

// ParticipantView is a read-only copy of a participant's bookkeeping
type ParticipantView struct {
	ID        string         `json:"id"`
	Persona   string         `json:"persona"`
	Remaining bool           `json:"remaining"`
	Human     bool           `json:"human"`
	Authored  []string       `json:"authored"`
	Context   []ContextEntry `json:"context"`
}
