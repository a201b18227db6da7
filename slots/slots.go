// Package slots persists client-local game snapshots: named save slots and
// a rolling autosave. A slot stores the move list plus UI state; restoring
// replays those moves into a brand-new server game, so this is a
// reconstruction aid, not a server-state save.
package slots

import (
	"encoding/json"
	"fmt"
	"go-chess-desk/constants"
	"go-chess-desk/logging"
	"go-chess-desk/types"
	"go-chess-desk/utils"
	"go-chess-desk/utils/fileio"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Service manages the slot files in one directory.
type Service struct {
	Dir string
}

// New creates a slot service rooted at dir.
func New(dir string) *Service {
	return &Service{Dir: dir}
}

// NewDefault roots the service at ~/.go-chess-desk/saves.
func NewDefault() (*Service, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user home dir: %w", err)
	}
	return New(filepath.Join(home, constants.AppDir, constants.SavesDir)), nil
}

func (s *Service) path(name string) string {
	return filepath.Join(s.Dir, utils.SanitizeSlotName(name)+".json")
}

// Save writes a named slot. The stored name is the sanitized one; missing
// ids and timestamps are filled in.
func (s *Service) Save(slot types.SaveSlot) (types.SaveSlot, error) {
	// A mkdir failure surfaces through the WriteFile below.
	fileio.MkdirAll(s.Dir, 0o755, s.logf)

	slot.Name = utils.SanitizeSlotName(slot.Name)
	if slot.ID == "" {
		slot.ID = uuid.NewString()
	}
	if slot.SavedAt == "" {
		slot.SavedAt = time.Now().UTC().Format(time.RFC3339)
	}

	data, err := json.MarshalIndent(slot, "", "  ")
	if err != nil {
		return types.SaveSlot{}, err
	}
	if err := os.WriteFile(s.path(slot.Name), data, 0o644); err != nil {
		return types.SaveSlot{}, fmt.Errorf("failed to write slot %s: %w", slot.Name, err)
	}

	logging.Debugf(logging.CatSlots, "saved slot %s with %d moves", slot.Name, len(slot.Moves))
	return slot, nil
}

// Autosave overwrites the rolling autosave slot.
func (s *Service) Autosave(slot types.SaveSlot) error {
	slot.Name = constants.AutosaveName
	_, err := s.Save(slot)
	return err
}

// Load reads one slot by name.
func (s *Service) Load(name string) (types.SaveSlot, error) {
	data, err := os.ReadFile(s.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return types.SaveSlot{}, fmt.Errorf("slot %q does not exist", name)
		}
		return types.SaveSlot{}, fmt.Errorf("failed to read slot %s: %w", name, err)
	}

	var slot types.SaveSlot
	if err := json.Unmarshal(data, &slot); err != nil {
		return types.SaveSlot{}, fmt.Errorf("failed to parse slot %s: %w", name, err)
	}
	return slot, nil
}

// LoadAutosave reads the rolling autosave.
func (s *Service) LoadAutosave() (types.SaveSlot, error) {
	return s.Load(constants.AutosaveName)
}

// ClearAutosave removes the rolling autosave, best effort. A finished game
// should not be offered for restore on the next start.
func (s *Service) ClearAutosave() {
	if _, err := os.Stat(s.path(constants.AutosaveName)); os.IsNotExist(err) {
		return
	}
	fileio.Remove(s.path(constants.AutosaveName), s.logf)
}

func (s *Service) logf(format string, args ...interface{}) {
	logging.Errorf(logging.CatSlots, format, args...)
}

// List returns the stored slots, autosave included, sorted by file name.
func (s *Service) List() ([]types.FileItem, error) {
	items := []types.FileItem{}
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return items, nil
		}
		return nil, err
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), ".json")
		slot, err := s.Load(name)
		if err != nil {
			logging.Errorf(logging.CatSlots, "skipping unreadable slot %s: %v", name, err)
			continue
		}
		items = append(items, types.FileItem{
			Name:      name,
			Moves:     len(slot.Moves),
			UpdatedAt: slot.SavedAt,
		})
	}
	return items, nil
}

// Delete removes a slot file. Deleting a missing slot is not an error.
func (s *Service) Delete(name string) error {
	err := os.Remove(s.path(name))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete slot %s: %w", name, err)
	}
	return nil
}
