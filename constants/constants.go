package constants

// Event Names
const (
	EventGameUpdated       = "game-updated"
	EventGameOver          = "game-over"
	EventMoveRejected      = "move-rejected"
	EventPromotionRequired = "promotion-required"
	EventAIThinking        = "ai-thinking"
	EventAIFailed          = "ai-failed"
	EventHint              = "hint"
	EventUndoFailed        = "undo-failed"
	EventReplayProgress    = "replay-progress"
	EventRestoreSuggested  = "restore-suggested"
	EventTimerTick         = "timer-tick"
	EventTimerExpired      = "timer-expired"
	EventChatMessage       = "chat-message"
)

// Path Components
const (
	AppDir     = ".go-chess-desk"
	ConfigDir  = "config"
	SavesDir   = "saves"
	ArchiveDir = "archive"
)

// AutosaveName is the rolling slot overwritten after every applied move.
const AutosaveName = "autosave"

// Defaults
const (
	DefaultAILevel      = 3
	DefaultAIEngine     = "minimax"
	DefaultAIDelayMs    = 800
	DefaultTimeLimitMin = 10
	DefaultTimerMode    = "count_up"

	// Bounds for the configurable delay before an AI move is requested.
	MinAIDelayMs = 700
	MaxAIDelayMs = 1000
)

// Timer Modes
const (
	TimerCountUp   = "count_up"
	TimerCountDown = "count_down"
)
