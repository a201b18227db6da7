package types

// SaveSlot is a client-local snapshot of a game: the move list plus enough
// UI state to resume. Restoring replays the moves into a freshly created
// server-side game; this is not a server-state save.
type SaveSlot struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Moves        []Move `json:"moves"`
	PlayerColor  string `json:"player_color"`
	Orientation  string `json:"orientation"`
	AIColor      string `json:"ai_color,omitempty"`
	WhiteSeconds int    `json:"white_seconds"`
	BlackSeconds int    `json:"black_seconds"`
	SavedAt      string `json:"saved_at"`
}

// FileItem describes one stored slot file for listing in the UI.
type FileItem struct {
	Name      string `json:"name"`
	Moves     int    `json:"moves"`
	UpdatedAt string `json:"updated_at"`
}
