package slots

import (
	"go-chess-desk/types"
	"os"
	"testing"
)

func testService(t *testing.T) *Service {
	t.Helper()
	dir, err := os.MkdirTemp("", "slots-test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })
	return New(dir)
}

func TestSaveAndLoad(t *testing.T) {
	s := testService(t)

	slot := types.SaveSlot{
		Name:        "evening game",
		PlayerColor: types.ColorWhite,
		Orientation: types.ColorWhite,
		AIColor:     types.ColorBlack,
		Moves: []types.Move{
			{From: "e2", To: "e4"},
			{From: "e7", To: "e5"},
		},
		WhiteSeconds: 42,
		BlackSeconds: 37,
	}

	saved, err := s.Save(slot)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if saved.ID == "" {
		t.Error("Expected an id to be assigned")
	}
	if saved.SavedAt == "" {
		t.Error("Expected a timestamp to be assigned")
	}

	loaded, err := s.Load("evening game")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(loaded.Moves) != 2 {
		t.Errorf("Expected 2 moves, got %d", len(loaded.Moves))
	}
	if loaded.Moves[0].From != "e2" {
		t.Errorf("Unexpected first move: %+v", loaded.Moves[0])
	}
	if loaded.WhiteSeconds != 42 {
		t.Errorf("Expected white seconds 42, got %d", loaded.WhiteSeconds)
	}
}

func TestSaveSanitizesName(t *testing.T) {
	s := testService(t)

	saved, err := s.Save(types.SaveSlot{Name: "../../escape"})
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if saved.Name != "escape" {
		t.Errorf("Expected sanitized name escape, got %q", saved.Name)
	}
	if _, err := s.Load("escape"); err != nil {
		t.Errorf("Expected slot loadable under sanitized name: %v", err)
	}
}

func TestAutosaveOverwrites(t *testing.T) {
	s := testService(t)

	if err := s.Autosave(types.SaveSlot{Moves: []types.Move{{From: "e2", To: "e4"}}}); err != nil {
		t.Fatalf("Autosave failed: %v", err)
	}
	if err := s.Autosave(types.SaveSlot{Moves: []types.Move{{From: "e2", To: "e4"}, {From: "e7", To: "e5"}}}); err != nil {
		t.Fatalf("Autosave failed: %v", err)
	}

	slot, err := s.LoadAutosave()
	if err != nil {
		t.Fatalf("LoadAutosave failed: %v", err)
	}
	if len(slot.Moves) != 2 {
		t.Errorf("Expected latest autosave with 2 moves, got %d", len(slot.Moves))
	}
}

func TestListAndDelete(t *testing.T) {
	s := testService(t)

	if items, err := s.List(); err != nil || len(items) != 0 {
		t.Errorf("Expected empty list on missing dir, got %v / %v", items, err)
	}

	s.Save(types.SaveSlot{Name: "a", Moves: []types.Move{{From: "e2", To: "e4"}}})
	s.Save(types.SaveSlot{Name: "b"})

	items, err := s.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("Expected 2 slots, got %d", len(items))
	}

	if err := s.Delete("a"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := s.Delete("a"); err != nil {
		t.Errorf("Deleting a missing slot should not error: %v", err)
	}

	items, _ = s.List()
	if len(items) != 1 || items[0].Name != "b" {
		t.Errorf("Expected only slot b to remain, got %v", items)
	}
}

func TestLoadMissing(t *testing.T) {
	s := testService(t)
	if _, err := s.Load("nope"); err == nil {
		t.Error("Expected error for missing slot")
	}
}

func TestClearAutosave(t *testing.T) {
	s := testService(t)

	if err := s.Autosave(types.SaveSlot{Moves: []types.Move{{From: "e2", To: "e4"}}}); err != nil {
		t.Fatalf("Autosave failed: %v", err)
	}
	if _, err := s.LoadAutosave(); err != nil {
		t.Fatalf("LoadAutosave failed: %v", err)
	}

	s.ClearAutosave()

	if _, err := s.LoadAutosave(); err == nil {
		t.Error("Expected the autosave to be gone after clearing")
	}

	// Clearing again must be a quiet no-op.
	s.ClearAutosave()
}
