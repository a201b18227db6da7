package config

import (
	"encoding/json"
	"fmt"
	"go-chess-desk/constants"
	"go-chess-desk/types"
	"os"
	"path/filepath"
	"sync"
)

// ConfigManager handles loading/saving
type ConfigManager struct {
	Config     *types.AppConfig
	ConfigPath string
	Mu         sync.RWMutex // Thread-safety for UI reads/writes
}

// NewConfigManager initializes the manager and determines the file path
func NewConfigManager() *ConfigManager {
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to executable dir if home is not available
		exePath, err := os.Executable()
		if err != nil {
			exePath = "."
		}
		configPath := filepath.Join(filepath.Dir(exePath), "config.json")
		return &ConfigManager{
			ConfigPath: configPath,
			Config:     &types.AppConfig{},
		}
	}
	configPath := filepath.Join(home, constants.AppDir, constants.ConfigDir, "config.json")

	return &ConfigManager{
		ConfigPath: configPath,
		Config:     &types.AppConfig{},
	}
}

// Load reads the config from disk
func (cm *ConfigManager) Load() error {
	cm.Mu.Lock()
	defer cm.Mu.Unlock()

	if _, err := os.Stat(cm.ConfigPath); os.IsNotExist(err) {
		return cm.createDefault()
	}

	data, err := os.ReadFile(cm.ConfigPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, cm.Config); err != nil {
		return fmt.Errorf("failed to parse config json: %w", err)
	}

	normalize(cm.Config)
	return nil
}

// GetConfig returns a copy of the current config (Thread-Safe)
func (cm *ConfigManager) GetConfig() types.AppConfig {
	cm.Mu.RLock()
	defer cm.Mu.RUnlock()
	return *cm.Config
}

// Save writes the current config to disk
func (cm *ConfigManager) Save(newConfig types.AppConfig) error {
	cm.Mu.Lock()
	defer cm.Mu.Unlock()

	*cm.Config = newConfig
	normalize(cm.Config)

	dir := filepath.Dir(cm.ConfigPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cm.Config, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(cm.ConfigPath, data, 0o644)
}

// normalize clamps fields the UI could set to unusable values.
func normalize(cfg *types.AppConfig) {
	if cfg.PlayerColor != types.ColorBlack {
		cfg.PlayerColor = types.ColorWhite
	}
	if cfg.AILevel <= 0 {
		cfg.AILevel = constants.DefaultAILevel
	}
	if cfg.AIEngine == "" {
		cfg.AIEngine = constants.DefaultAIEngine
	}
	if cfg.AIDelayMs < constants.MinAIDelayMs || cfg.AIDelayMs > constants.MaxAIDelayMs {
		cfg.AIDelayMs = constants.DefaultAIDelayMs
	}
	if cfg.TimerMode != constants.TimerCountDown {
		cfg.TimerMode = constants.TimerCountUp
	}
	if cfg.TimeLimitMin <= 0 {
		cfg.TimeLimitMin = constants.DefaultTimeLimitMin
	}
}

// DefaultConfig returns the settings a fresh install starts with.
func DefaultConfig() types.AppConfig {
	return types.AppConfig{
		ServerHost:   "",
		PlayerName:   "Player",
		PlayerColor:  types.ColorWhite,
		AILevel:      constants.DefaultAILevel,
		AIEngine:     constants.DefaultAIEngine,
		AIDelayMs:    constants.DefaultAIDelayMs,
		UndoEnabled:  true,
		HintsEnabled: true,
		ChatEnabled:  true,
		TimerEnabled: true,
		TimerMode:    constants.DefaultTimerMode,
		TimeLimitMin: constants.DefaultTimeLimitMin,
	}
}

// createDefault generates a dummy config file if none exists
func (cm *ConfigManager) createDefault() error {
	defaultConfig := DefaultConfig()
	cm.Config = &defaultConfig

	fmt.Println("Config file not found. Creating default at:", cm.ConfigPath)

	dir := filepath.Dir(cm.ConfigPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cm.Config, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(cm.ConfigPath, data, 0o644)
}
