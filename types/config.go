package types

// AppConfig holds all application settings
type AppConfig struct {
	ServerHost   string `json:"server_host"`   // Base URL of the go-chess server
	PlayerName   string `json:"player_name"`   // Display name shown in the UI and chat
	PlayerColor  string `json:"player_color"`  // "white" or "black"
	AILevel      int    `json:"ai_level"`      // Search depth/level passed to the engine
	AIEngine     string `json:"ai_engine"`     // Engine name passed to ai-move/ai-hint
	AIDelayMs    int    `json:"ai_delay_ms"`   // Delay before requesting the AI move
	UndoEnabled  bool   `json:"undo_enabled"`
	HintsEnabled bool   `json:"hints_enabled"`
	ChatEnabled  bool   `json:"chat_enabled"`
	TimerEnabled bool   `json:"timer_enabled"`
	TimerMode    string `json:"timer_mode"`    // "count_up" or "count_down"
	TimeLimitMin int    `json:"time_limit_min"`
	LiveUpdates  bool   `json:"live_updates"`  // Subscribe to the websocket feed

	// Per-category debug toggles, keyed by logging category name.
	DebugCategories map[string]bool `json:"debug_categories,omitempty"`
}
