package configsrv

import (
	"fmt"
	"go-chess-desk/types"
)

// ConfigManager defines the interface for managing the app configuration.
type ConfigManager interface {
	GetConfig() types.AppConfig
	Save(cfg types.AppConfig) error
}

// Service handles configuration-related logic.
type Service struct {
	cm ConfigManager
}

// New creates a new Config service.
func New(cm ConfigManager) *Service {
	return &Service{cm: cm}
}

// GetConfig returns the current configuration.
func (s *Service) GetConfig() types.AppConfig {
	return s.cm.GetConfig()
}

// SaveConfig merges and saves the configuration. Empty string fields and
// zero numeric fields in the incoming config leave the stored value alone;
// booleans are always taken as-is since the UI sends the full toggle set.
// The second return reports whether the server host changed, so callers can
// rebuild the API client.
func (s *Service) SaveConfig(cfg types.AppConfig) (string, bool) {
	current := s.cm.GetConfig()
	oldHost := current.ServerHost

	updateIfNotEmpty(&current.ServerHost, cfg.ServerHost)
	updateIfNotEmpty(&current.PlayerName, cfg.PlayerName)
	updateIfNotEmpty(&current.PlayerColor, cfg.PlayerColor)
	updateIfNotEmpty(&current.AIEngine, cfg.AIEngine)
	updateIfNotEmpty(&current.TimerMode, cfg.TimerMode)
	updateIfPositive(&current.AILevel, cfg.AILevel)
	updateIfPositive(&current.AIDelayMs, cfg.AIDelayMs)
	updateIfPositive(&current.TimeLimitMin, cfg.TimeLimitMin)

	current.UndoEnabled = cfg.UndoEnabled
	current.HintsEnabled = cfg.HintsEnabled
	current.ChatEnabled = cfg.ChatEnabled
	current.TimerEnabled = cfg.TimerEnabled
	current.LiveUpdates = cfg.LiveUpdates

	if cfg.DebugCategories != nil {
		current.DebugCategories = cfg.DebugCategories
	}

	if err := s.cm.Save(current); err != nil {
		return fmt.Sprintf("Error saving config: %s", err.Error()), false
	}

	hostChanged := current.ServerHost != oldHost
	return "Configuration saved successfully!", hostChanged
}

// SetDebugCategory flips one debug toggle and persists immediately, matching
// the original per-category cookie behavior.
func (s *Service) SetDebugCategory(category string, enabled bool) error {
	current := s.cm.GetConfig()
	if current.DebugCategories == nil {
		current.DebugCategories = make(map[string]bool)
	}
	current.DebugCategories[category] = enabled
	return s.cm.Save(current)
}

func updateIfNotEmpty(target *string, value string) {
	if value != "" {
		*target = value
	}
}

func updateIfPositive(target *int, value int) {
	if value > 0 {
		*target = value
	}
}
