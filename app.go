package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go-chess-desk/archive"
	"go-chess-desk/board"
	"go-chess-desk/chat"
	"go-chess-desk/chessapi"
	"go-chess-desk/config"
	"go-chess-desk/configsrv"
	"go-chess-desk/constants"
	"go-chess-desk/game"
	"go-chess-desk/live"
	"go-chess-desk/logging"
	"go-chess-desk/pgnio"
	"go-chess-desk/slots"
	"go-chess-desk/timer"
	"go-chess-desk/types"

	"github.com/google/uuid"
	"github.com/wailsapp/wails/v2/pkg/runtime"
)

// App struct
type App struct {
	ctx context.Context

	configManager *config.ConfigManager
	configService *configsrv.Service
	controller    *game.Controller
	slots         *slots.Service
	store         *archive.Store
	chat          *chat.Service
	sub           *live.Subscriber
}

// NewApp creates a new App application struct
func NewApp(cm *config.ConfigManager) *App {
	cfg := cm.GetConfig()

	a := &App{
		configManager: cm,
		configService: configsrv.New(cm),
		chat:          chat.New(),
	}

	saves, err := slots.NewDefault()
	if err != nil {
		logging.Errorf(logging.CatSlots, "save directory unavailable: %v", err)
	}
	a.slots = saves

	if dbPath, err := archive.DefaultPath(); err == nil {
		if db, err := archive.New(dbPath); err == nil {
			a.store = archive.NewStore(db)
		} else {
			logging.Errorf(logging.CatArchive, "archive unavailable: %v", err)
		}
	}

	var saver game.Autosaver
	if a.slots != nil {
		saver = a.slots
	}

	client := chessapi.NewClient(cfg.ServerHost)
	a.controller = game.NewController(client, cm, a, saver, a.store)
	return a
}

// startup is called when the app starts. The context is saved
// so we can call the runtime methods
func (a *App) startup(ctx context.Context) {
	a.ctx = ctx

	cfg := a.configManager.GetConfig()
	logging.SetCategories(cfg.DebugCategories)

	// An autosave with moves means the last session ended mid-game.
	if a.slots != nil {
		if slot, err := a.slots.LoadAutosave(); err == nil && len(slot.Moves) > 0 {
			a.EventsEmit(constants.EventRestoreSuggested, map[string]interface{}{
				"moves":    len(slot.Moves),
				"saved_at": slot.SavedAt,
			})
		}
	}
}

// shutdown stops background activity before the window closes.
func (a *App) shutdown(_ context.Context) {
	a.stopLive()
	a.controller.Close()
}

// EventsEmit forwards controller events to the frontend.
func (a *App) EventsEmit(eventName string, args ...interface{}) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventName, args...)
}

// GetConfig returns the current configuration
func (a *App) GetConfig() types.AppConfig {
	return a.configService.GetConfig()
}

// SaveConfig saves the configuration
func (a *App) SaveConfig(cfg types.AppConfig) string {
	msg, hostChanged := a.configService.SaveConfig(cfg)
	current := a.configManager.GetConfig()
	logging.SetCategories(current.DebugCategories)

	if hostChanged {
		a.controller.SetAPI(chessapi.NewClient(current.ServerHost))
		a.stopLive()
	}
	return msg
}

// SetDebugCategory toggles one debug logging category and persists it.
func (a *App) SetDebugCategory(category string, enabled bool) error {
	if err := a.configService.SetDebugCategory(category, enabled); err != nil {
		return err
	}
	logging.SetCategory(category, enabled)
	return nil
}

// NewGame starts a fresh game against the AI.
func (a *App) NewGame() (types.GameState, error) {
	state, err := a.controller.NewGame()
	if err != nil {
		return types.GameState{}, err
	}
	a.startLive(state.ID)
	return state, nil
}

// GetGameState returns the cached game state.
func (a *App) GetGameState() types.GameState {
	return a.controller.State()
}

// GetLegalMoves returns the cached legal-moves snapshot.
func (a *App) GetLegalMoves() []types.LegalMove {
	return a.controller.LegalSnapshot()
}

// GetBoard renders the cached board as cells in display order.
func (a *App) GetBoard() ([]board.Cell, error) {
	state := a.controller.State()
	if state.Board == "" {
		return nil, nil
	}
	b, err := board.Parse(state.Board)
	if err != nil {
		return nil, fmt.Errorf("failed to parse board snapshot: %w", err)
	}
	cfg := a.configManager.GetConfig()
	return b.Squares(cfg.PlayerColor), nil
}

// SubmitMove submits a human move by from/to square.
func (a *App) SubmitMove(from, to string) error {
	return a.controller.SubmitHumanMove(from, to)
}

// ChoosePromotion completes a pending promotion.
func (a *App) ChoosePromotion(piece string) error {
	return a.controller.ChoosePromotion(piece)
}

// CancelPromotion abandons a pending promotion.
func (a *App) CancelPromotion() {
	a.controller.CancelPromotion()
}

// GetPendingPromotion returns the parked promotion, if any.
func (a *App) GetPendingPromotion() *game.PendingPromotion {
	return a.controller.PendingPromotionSquare()
}

// Undo takes back the player's last move.
func (a *App) Undo() (types.GameState, error) {
	state, err := a.controller.Undo()
	if err != nil {
		return state, err
	}
	a.startLive(state.ID)
	return state, nil
}

// Hint asks the engine for a suggestion.
func (a *App) Hint() (types.Hint, error) {
	return a.controller.Hint()
}

// RefreshState re-fetches the game from the server.
func (a *App) RefreshState() error {
	return a.controller.RefreshState()
}

// GetTimer returns the clock snapshot.
func (a *App) GetTimer() timer.Snapshot {
	return a.controller.TimerSnapshot()
}

// PauseTimer pauses the game clock.
func (a *App) PauseTimer() {
	a.controller.PauseClock()
}

// ResumeTimer resumes the game clock.
func (a *App) ResumeTimer() {
	a.controller.ResumeClock()
}

// SaveGame writes the current game to a named slot.
func (a *App) SaveGame(name string) (types.SaveSlot, error) {
	if a.slots == nil {
		return types.SaveSlot{}, errors.New("save directory unavailable")
	}
	slot, err := a.controller.SlotSnapshot(name)
	if err != nil {
		return types.SaveSlot{}, err
	}
	return a.slots.Save(slot)
}

// ListSaves lists the stored save slots.
func (a *App) ListSaves() ([]types.FileItem, error) {
	if a.slots == nil {
		return nil, errors.New("save directory unavailable")
	}
	return a.slots.List()
}

// LoadGame restores a named slot by replaying it into a fresh game.
func (a *App) LoadGame(name string) (types.GameState, error) {
	if a.slots == nil {
		return types.GameState{}, errors.New("save directory unavailable")
	}
	slot, err := a.slots.Load(name)
	if err != nil {
		return types.GameState{}, err
	}
	state, err := a.controller.Restore(slot)
	if err != nil {
		return state, err
	}
	a.startLive(state.ID)
	return state, nil
}

// RestoreAutosave rebuilds the game from the rolling autosave.
func (a *App) RestoreAutosave() (types.GameState, error) {
	if a.slots == nil {
		return types.GameState{}, errors.New("save directory unavailable")
	}
	slot, err := a.slots.LoadAutosave()
	if err != nil {
		return types.GameState{}, err
	}
	state, err := a.controller.Restore(slot)
	if err != nil {
		return state, err
	}
	a.startLive(state.ID)
	return state, nil
}

// DeleteSave removes a stored slot.
func (a *App) DeleteSave(name string) error {
	if a.slots == nil {
		return errors.New("save directory unavailable")
	}
	return a.slots.Delete(name)
}

// RecentGames lists the newest archived games.
func (a *App) RecentGames(limit int) ([]archive.GameRecord, error) {
	return a.store.Recent(a.runtimeCtx(), limit)
}

// ArchiveStats returns the win/loss/draw totals.
func (a *App) ArchiveStats() (archive.Stats, error) {
	return a.store.FetchStats(a.runtimeCtx())
}

// GetArchivedGame loads one archived game with its PGN text.
func (a *App) GetArchivedGame(id string) (archive.GameRecord, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return archive.GameRecord{}, fmt.Errorf("invalid archive id: %w", err)
	}
	return a.store.Get(a.runtimeCtx(), parsed)
}

// DeleteArchivedGame removes one archived game.
func (a *App) DeleteArchivedGame(id string) error {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid archive id: %w", err)
	}
	return a.store.Delete(a.runtimeCtx(), parsed)
}

// ExportGamePGN writes the current game as a PGN file chosen in a dialog.
func (a *App) ExportGamePGN() (string, error) {
	state := a.controller.State()
	if state.ID == "" {
		return "", game.ErrNoGame
	}

	cfg := a.configManager.GetConfig()
	result := pgnio.ResultFromStatus(state.Status, state.ActiveColor)
	aiColor := a.controller.AIColor()
	white := cfg.PlayerName
	black := "AI (" + cfg.AIEngine + ")"
	if aiColor == types.ColorWhite {
		white, black = black, white
	}

	pgn, err := pgnio.Export(state.Moves, white, black, result)
	if err != nil {
		return "", err
	}

	path, err := runtime.SaveFileDialog(a.ctx, runtime.SaveDialogOptions{
		Title:           "Export PGN",
		DefaultFilename: "game.pgn",
		Filters: []runtime.FileFilter{
			{DisplayName: "PGN files", Pattern: "*.pgn"},
		},
	})
	if err != nil || path == "" {
		return "", err
	}
	if err := os.WriteFile(path, []byte(pgn), 0644); err != nil {
		return "", fmt.Errorf("failed to write PGN: %w", err)
	}
	return path, nil
}

// ImportPGNFile loads games from a PGN file or archive chosen in a dialog.
func (a *App) ImportPGNFile() ([]pgnio.ImportedGame, error) {
	path, err := runtime.OpenFileDialog(a.ctx, runtime.OpenDialogOptions{
		Title: "Import PGN",
		Filters: []runtime.FileFilter{
			{DisplayName: "PGN and archives", Pattern: "*.pgn;*.zip;*.7z;*.rar"},
		},
	})
	if err != nil || path == "" {
		return nil, err
	}
	return pgnio.ImportFile(path)
}

// SendChat returns the opponent's canned reply and emits it as an event.
func (a *App) SendChat(text string) chat.Message {
	cfg := a.configManager.GetConfig()
	if !cfg.ChatEnabled {
		return chat.Message{}
	}
	reply := a.chat.Reply(cfg.PlayerName, text)
	a.EventsEmit(constants.EventChatMessage, reply)
	return reply
}

func (a *App) runtimeCtx() context.Context {
	if a.ctx != nil {
		return a.ctx
	}
	return context.Background()
}

// startLive subscribes to the server's push feed for the given game. Pushes
// only trigger a refresh; polling still works when the feed is down.
func (a *App) startLive(gameID string) {
	a.stopLive()

	cfg := a.configManager.GetConfig()
	if !cfg.LiveUpdates {
		return
	}

	sub, err := live.New(cfg.ServerHost, gameID, func() {
		if err := a.controller.RefreshState(); err != nil {
			logging.Debugf(logging.CatWS, "refresh after push failed: %v", err)
		}
	})
	if err != nil {
		logging.Errorf(logging.CatWS, "live feed unavailable: %v", err)
		return
	}
	sub.Start()
	a.sub = sub
}

func (a *App) stopLive() {
	if a.sub != nil {
		a.sub.Stop()
		a.sub = nil
	}
}
