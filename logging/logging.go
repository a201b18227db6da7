// Package logging provides a category-gated logger for the debug panel.
// Each subsystem logs under a named category; categories can be toggled at
// runtime and the toggle set is persisted in the app config, mirroring the
// per-category debug cookies of the original web clients.
package logging

import (
	"sync"

	"go.uber.org/zap"
)

// Log categories.
const (
	CatGame    = "game"
	CatAPI     = "api"
	CatTimer   = "timer"
	CatWS      = "ws"
	CatSlots   = "slots"
	CatArchive = "archive"
	CatChat    = "chat"
	CatUI      = "ui"
)

// Categories lists every known category for the debug panel.
var Categories = []string{CatGame, CatAPI, CatTimer, CatWS, CatSlots, CatArchive, CatChat, CatUI}

var (
	mu      sync.RWMutex
	logger  = zap.NewNop().Sugar()
	enabled = map[string]bool{}
)

// Init installs the real zap logger. Development mode uses the human-readable
// console encoder.
func Init(development bool) error {
	var (
		l   *zap.Logger
		err error
	)
	if development {
		l, err = zap.NewDevelopment()
	} else {
		l, err = zap.NewProduction()
	}
	if err != nil {
		return err
	}
	mu.Lock()
	logger = l.Sugar()
	mu.Unlock()
	return nil
}

// SetLogger replaces the underlying logger, used by tests.
func SetLogger(l *zap.Logger) {
	mu.Lock()
	logger = l.Sugar()
	mu.Unlock()
}

// SetCategory enables or disables debug output for one category.
func SetCategory(category string, on bool) {
	mu.Lock()
	enabled[category] = on
	mu.Unlock()
}

// SetCategories replaces the whole toggle set, typically from loaded config.
func SetCategories(toggles map[string]bool) {
	mu.Lock()
	enabled = make(map[string]bool, len(toggles))
	for k, v := range toggles {
		enabled[k] = v
	}
	mu.Unlock()
}

// CategoryEnabled reports whether a category's debug output is on.
func CategoryEnabled(category string) bool {
	mu.RLock()
	defer mu.RUnlock()
	return enabled[category]
}

// Debugf logs a formatted debug message when the category is enabled.
func Debugf(category, format string, args ...interface{}) {
	mu.RLock()
	on := enabled[category]
	l := logger
	mu.RUnlock()
	if on {
		l.With("category", category).Debugf(format, args...)
	}
}

// Infof logs a formatted info message. Info is not gated by category toggles.
func Infof(category, format string, args ...interface{}) {
	mu.RLock()
	l := logger
	mu.RUnlock()
	l.With("category", category).Infof(format, args...)
}

// Errorf logs a formatted error message. Errors are never gated.
func Errorf(category, format string, args ...interface{}) {
	mu.RLock()
	l := logger
	mu.RUnlock()
	l.With("category", category).Errorf(format, args...)
}
