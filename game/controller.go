// Package game holds the turn-orchestration core: the cached server state,
// the legal-move gate in front of every human move, the delayed AI turn, and
// undo-by-replay. Every UI layer binds to this controller through its event
// stream instead of owning game logic itself.
package game

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go-chess-desk/archive"
	"go-chess-desk/chessapi"
	"go-chess-desk/constants"
	"go-chess-desk/logging"
	"go-chess-desk/pgnio"
	"go-chess-desk/timer"
	"go-chess-desk/types"
	"go-chess-desk/utils"
)

// Sentinel errors surfaced to the binding layer.
var (
	ErrNoGame             = errors.New("no game in progress")
	ErrBusy               = errors.New("a move is already being processed")
	ErrAITurn             = errors.New("waiting for the AI to move")
	ErrGameOver           = errors.New("the game is over")
	ErrNotLegal           = errors.New("move is not in the legal-moves snapshot")
	ErrNoPendingPromotion = errors.New("no promotion is awaiting a piece choice")
	ErrUndoDisabled       = errors.New("undo is disabled")
	ErrNothingToUndo      = errors.New("no moves to undo")
	ErrHintsDisabled      = errors.New("hints are disabled")
)

// API is the slice of the chess server client the controller needs.
type API interface {
	CreateGame(ctx context.Context, aiColor string) (types.GameState, error)
	GetGame(ctx context.Context, id string) (types.GameState, error)
	SubmitMove(ctx context.Context, id string, move types.MoveRequest) (types.GameState, error)
	LegalMoves(ctx context.Context, id string) ([]types.LegalMove, error)
	AIMove(ctx context.Context, id string, level int, engine string) (types.Move, error)
	AIHint(ctx context.Context, id string, level int, engine string) (types.Hint, error)
}

// ConfigProvider supplies the current app configuration.
type ConfigProvider interface {
	GetConfig() types.AppConfig
}

// EventSink receives the controller's event stream. The Wails runtime
// implements this; tests use a recorder.
type EventSink interface {
	EventsEmit(eventName string, args ...interface{})
}

// Autosaver persists the rolling snapshot after every applied move and
// clears it once the game is over.
type Autosaver interface {
	Autosave(slot types.SaveSlot) error
	ClearAutosave()
}

// Recorder archives finished games.
type Recorder interface {
	RecordGame(ctx context.Context, rec archive.GameRecord) (archive.GameRecord, error)
}

// PendingPromotion is a human move parked until a piece is chosen.
type PendingPromotion struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Controller owns the client-side view of one game at a time.
type Controller struct {
	mu sync.Mutex

	api      API
	config   ConfigProvider
	events   EventSink
	saver    Autosaver
	recorder Recorder
	clock    *timer.Timer

	state      types.GameState
	hasGame    bool
	legal      []types.LegalMove
	aiColor    string
	processing bool
	aiTurn     bool
	pending    *PendingPromotion

	// generation invalidates scheduled AI turns that outlive an undo,
	// restore or new game.
	generation uint64

	// schedule defers the AI turn; tests replace it to run synchronously.
	schedule func(d time.Duration, f func())
}

// NewController wires the orchestration core. saver and recorder may be nil.
func NewController(api API, cfg ConfigProvider, events EventSink, saver Autosaver, recorder Recorder) *Controller {
	c := &Controller{
		api:      api,
		config:   cfg,
		events:   events,
		saver:    saver,
		recorder: recorder,
		schedule: func(d time.Duration, f func()) { time.AfterFunc(d, f) },
	}
	return c
}

// SetAPI swaps the server client, used when the configured host changes.
func (c *Controller) SetAPI(api API) {
	c.mu.Lock()
	c.api = api
	c.mu.Unlock()
}

// SetScheduler replaces the AI-turn scheduler, used by tests.
func (c *Controller) SetScheduler(schedule func(d time.Duration, f func())) {
	c.mu.Lock()
	c.schedule = schedule
	c.mu.Unlock()
}

// State returns the cached game state.
func (c *Controller) State() types.GameState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// LegalSnapshot returns the cached legal-moves list.
func (c *Controller) LegalSnapshot() []types.LegalMove {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]types.LegalMove, len(c.legal))
	copy(out, c.legal)
	return out
}

// AIColor reports which side the engine plays in the current game.
func (c *Controller) AIColor() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aiColor
}

// Flags reports the processing guards the UI disables input on.
func (c *Controller) Flags() (processing, aiTurn bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.processing, c.aiTurn
}

// TimerSnapshot returns the clock view, zero when the timer is disabled.
func (c *Controller) TimerSnapshot() timer.Snapshot {
	c.mu.Lock()
	clock := c.clock
	c.mu.Unlock()
	if clock == nil {
		return timer.Snapshot{State: timer.StateStopped}
	}
	return clock.Snapshot()
}

// PauseClock pauses the game clock, if one is running.
func (c *Controller) PauseClock() {
	c.mu.Lock()
	clock := c.clock
	c.mu.Unlock()
	if clock != nil {
		clock.Pause()
	}
}

// ResumeClock resumes a paused game clock.
func (c *Controller) ResumeClock() {
	c.mu.Lock()
	clock := c.clock
	c.mu.Unlock()
	if clock != nil {
		clock.Resume()
	}
}

// NewGame creates a fresh server game against the AI, with the engine on
// the opposite color of the configured player color.
func (c *Controller) NewGame() (types.GameState, error) {
	cfg := c.config.GetConfig()
	aiColor := types.ColorBlack
	if cfg.PlayerColor == types.ColorBlack {
		aiColor = types.ColorWhite
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	state, err := c.api.CreateGame(context.Background(), aiColor)
	if err != nil {
		return types.GameState{}, err
	}

	c.installGameLocked(state, aiColor, cfg)
	c.refreshLegalLocked()
	logging.Infof(logging.CatGame, "new game %s, player %s vs AI %s", state.ID, cfg.PlayerColor, aiColor)

	c.afterStateChangeLocked(cfg)
	return c.state, nil
}

// installGameLocked resets all per-game state around a freshly created game.
func (c *Controller) installGameLocked(state types.GameState, aiColor string, cfg types.AppConfig) {
	c.state = state
	c.hasGame = true
	c.aiColor = aiColor
	c.legal = nil
	c.pending = nil
	c.processing = false
	c.aiTurn = false

	if c.clock != nil {
		c.clock.Stop()
		c.clock = nil
	}
	if cfg.TimerEnabled {
		c.clock = timer.New(cfg.TimerMode, cfg.TimeLimitMin*60, c.emitTick, c.emitExpired)
		c.clock.Start(state.ActiveColor)
		c.clock.Run()
	}
}

func (c *Controller) emitTick(s timer.Snapshot) {
	c.events.EventsEmit(constants.EventTimerTick, s)
}

func (c *Controller) emitExpired(color string) {
	c.events.EventsEmit(constants.EventTimerExpired, map[string]interface{}{"color": color})
}

// SubmitHumanMove validates a from/to pair against the legal-moves snapshot
// and submits it. Promotions are parked for a piece choice instead of being
// sent; castling and en passant need no special fields, the server infers
// them from the from/to pair the snapshot listed.
func (c *Controller) SubmitHumanMove(from, to string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.acceptingInputLocked(); err != nil {
		return err
	}

	legal := c.findLegalLocked(from, to)
	if legal == nil {
		logging.Debugf(logging.CatGame, "rejecting %s-%s: not in snapshot", from, to)
		c.events.EventsEmit(constants.EventMoveRejected, map[string]interface{}{
			"from": from, "to": to, "reason": "not a legal move",
		})
		return ErrNotLegal
	}

	if isPromotion(legal) {
		c.pending = &PendingPromotion{From: from, To: to}
		c.events.EventsEmit(constants.EventPromotionRequired, c.pending)
		return nil
	}

	return c.applyMoveLocked(types.MoveRequest{From: from, To: to})
}

// ChoosePromotion completes a parked promotion with the chosen piece.
func (c *Controller) ChoosePromotion(piece string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pending == nil {
		return ErrNoPendingPromotion
	}
	req := types.MoveRequest{From: c.pending.From, To: c.pending.To, Promotion: piece}
	c.pending = nil
	return c.applyMoveLocked(req)
}

// CancelPromotion abandons a parked promotion, leaving the board untouched.
func (c *Controller) CancelPromotion() {
	c.mu.Lock()
	c.pending = nil
	c.mu.Unlock()
}

// PendingPromotionSquare returns the parked promotion, if any.
func (c *Controller) PendingPromotionSquare() *PendingPromotion {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending == nil {
		return nil
	}
	p := *c.pending
	return &p
}

func (c *Controller) acceptingInputLocked() error {
	if !c.hasGame {
		return ErrNoGame
	}
	if c.state.Terminal() {
		return ErrGameOver
	}
	if c.processing {
		return ErrBusy
	}
	if c.aiTurn {
		return ErrAITurn
	}
	return nil
}

func (c *Controller) findLegalLocked(from, to string) *types.LegalMove {
	for i := range c.legal {
		if c.legal[i].From == from && c.legal[i].To == to {
			return &c.legal[i]
		}
	}
	return nil
}

func isPromotion(m *types.LegalMove) bool {
	return m.Type == types.MoveTypePromotion || strings.Contains(m.Notation, "=")
}

// applyMoveLocked submits one move and runs the shared post-move path.
func (c *Controller) applyMoveLocked(req types.MoveRequest) error {
	c.processing = true
	defer func() { c.processing = false }()

	state, err := c.api.SubmitMove(context.Background(), c.state.ID, req)
	if err != nil {
		var ill *chessapi.IllegalMoveError
		if errors.As(err, &ill) {
			// The gate should have caught this; the snapshot was stale.
			c.events.EventsEmit(constants.EventMoveRejected, map[string]interface{}{
				"from": req.From, "to": req.To, "reason": ill.Message,
			})
		}
		return err
	}

	c.state = state
	c.refreshLegalLocked()
	c.autosaveLocked()

	cfg := c.config.GetConfig()
	c.afterStateChangeLocked(cfg)
	return nil
}

// afterStateChangeLocked updates the clock, emits the state event, archives
// terminal games and schedules the AI turn when it is the engine's move.
func (c *Controller) afterStateChangeLocked(cfg types.AppConfig) {
	if c.clock != nil && !c.state.Terminal() {
		c.clock.SwitchTo(c.state.ActiveColor)
	}

	c.events.EventsEmit(constants.EventGameUpdated, c.state)

	if c.state.Terminal() {
		c.finishGameLocked(cfg)
		return
	}

	if c.state.ActiveColor == c.aiColor {
		c.scheduleAITurnLocked(cfg)
	}
}

func (c *Controller) scheduleAITurnLocked(cfg types.AppConfig) {
	c.aiTurn = true
	c.events.EventsEmit(constants.EventAIThinking, map[string]interface{}{"color": c.aiColor})

	delay := time.Duration(cfg.AIDelayMs) * time.Millisecond
	gen := c.generation
	logging.Debugf(logging.CatGame, "AI turn scheduled in %s", delay)
	c.schedule(delay, func() { c.playAITurn(gen) })
}

// playAITurn fetches and submits the engine's move. Failures reset the turn
// flag and are surfaced; there is no retry.
func (c *Controller) playAITurn(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation || !c.aiTurn || !c.hasGame || c.state.Terminal() {
		return
	}

	cfg := c.config.GetConfig()
	move, err := c.api.AIMove(context.Background(), c.state.ID, cfg.AILevel, cfg.AIEngine)
	if err == nil {
		var state types.GameState
		state, err = c.api.SubmitMove(context.Background(), c.state.ID, types.MoveRequest{
			From: move.From, To: move.To, Promotion: move.Promotion,
		})
		if err == nil {
			c.state = state
		}
	}

	c.aiTurn = false
	if err != nil {
		logging.Errorf(logging.CatGame, "AI turn failed: %v", err)
		c.events.EventsEmit(constants.EventAIFailed, map[string]interface{}{"error": err.Error()})
		return
	}

	c.refreshLegalLocked()
	c.autosaveLocked()
	c.afterStateChangeLocked(cfg)
}

// Hint fetches an engine suggestion for the player.
func (c *Controller) Hint() (types.Hint, error) {
	cfg := c.config.GetConfig()
	if !cfg.HintsEnabled {
		return types.Hint{}, ErrHintsDisabled
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.hasGame {
		return types.Hint{}, ErrNoGame
	}

	hint, err := c.api.AIHint(context.Background(), c.state.ID, cfg.AILevel, cfg.AIEngine)
	if err != nil {
		return types.Hint{}, err
	}
	c.events.EventsEmit(constants.EventHint, hint)
	return hint, nil
}

// Undo discards the trailing half-moves and replays the rest into a fresh
// server game. When the player is to move the last two half-moves go (the
// AI reply and the player's move); when the AI is to move only the player's
// last move goes.
func (c *Controller) Undo() (types.GameState, error) {
	cfg := c.config.GetConfig()
	if !cfg.UndoEnabled {
		return types.GameState{}, ErrUndoDisabled
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.hasGame {
		return types.GameState{}, ErrNoGame
	}
	if c.processing {
		return types.GameState{}, ErrBusy
	}

	drop := 2
	if c.state.ActiveColor == c.aiColor {
		drop = 1
	}
	if len(c.state.Moves) < drop {
		return types.GameState{}, ErrNothingToUndo
	}

	truncated := c.state.Moves[:len(c.state.Moves)-drop]
	logging.Infof(logging.CatGame, "undo: replaying %d of %d moves", len(truncated), len(c.state.Moves))

	if err := c.replayLocked(truncated); err != nil {
		return c.state, err
	}
	return c.state, nil
}

// Restore rebuilds a game from a saved move list, seeding the clock. The
// slot decides which side the AI plays; a fresh session has no game context
// of its own to fall back on.
func (c *Controller) Restore(slot types.SaveSlot) (types.GameState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch {
	case slot.AIColor != "":
		c.aiColor = slot.AIColor
	case slot.PlayerColor == types.ColorBlack:
		c.aiColor = types.ColorWhite
	case slot.PlayerColor == types.ColorWhite:
		c.aiColor = types.ColorBlack
	}

	if err := c.replayLocked(slot.Moves); err != nil {
		return c.state, err
	}
	if c.clock != nil {
		c.clock.Restore(slot.WhiteSeconds, slot.BlackSeconds)
	}
	return c.state, nil
}

// replayLocked creates a fresh server game and replays moves into it. On a
// mid-replay failure the partially replayed game becomes current and the
// failure is surfaced; the autosave written before the replay still allows
// another attempt.
func (c *Controller) replayLocked(moves []types.Move) error {
	cfg := c.config.GetConfig()

	// Invalidate any scheduled AI turn against the old game id.
	c.generation++
	c.aiTurn = false
	c.pending = nil
	c.processing = true
	defer func() { c.processing = false }()

	aiColor := c.aiColor
	if aiColor == "" {
		aiColor = types.ColorBlack
	}

	state, err := c.api.CreateGame(context.Background(), aiColor)
	if err != nil {
		return fmt.Errorf("failed to create replacement game: %w", err)
	}

	total := len(moves)
	for i, m := range moves {
		next, submitErr := c.api.SubmitMove(context.Background(), state.ID, types.MoveRequest{
			From: m.From, To: m.To, Promotion: m.Promotion,
		})
		if submitErr != nil {
			// Keep the partially replayed game current so the player can
			// see where the replay stopped and retry from the autosave.
			c.state = state
			c.hasGame = true
			c.refreshLegalLocked()
			c.events.EventsEmit(constants.EventUndoFailed, map[string]interface{}{
				"replayed": i, "expected": total, "error": submitErr.Error(),
			})
			return fmt.Errorf("replay stopped after %d of %d moves: %w", i, total, submitErr)
		}
		state = next
		c.events.EventsEmit(constants.EventReplayProgress, map[string]interface{}{
			"current": i + 1, "total": total,
		})
	}

	c.state = state
	c.hasGame = true
	c.refreshLegalLocked()
	c.autosaveLocked()

	if c.clock == nil && cfg.TimerEnabled {
		c.clock = timer.New(cfg.TimerMode, cfg.TimeLimitMin*60, c.emitTick, c.emitExpired)
		c.clock.Start(state.ActiveColor)
		c.clock.Run()
	}
	c.afterStateChangeLocked(cfg)
	return nil
}

// RefreshState re-fetches the game and legal moves, e.g. after a live push.
func (c *Controller) RefreshState() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.hasGame {
		return ErrNoGame
	}

	state, err := c.api.GetGame(context.Background(), c.state.ID)
	if err != nil {
		if errors.Is(err, chessapi.ErrGameNotFound) {
			// The server lost the game; the autosave can rebuild it.
			c.events.EventsEmit(constants.EventRestoreSuggested, map[string]interface{}{
				"game_id": c.state.ID, "moves": len(c.state.Moves),
			})
		}
		return err
	}

	c.state = state
	c.refreshLegalLocked()
	c.events.EventsEmit(constants.EventGameUpdated, c.state)
	if c.state.Terminal() {
		c.finishGameLocked(c.config.GetConfig())
	}
	return nil
}

// refreshLegalLocked updates the snapshot; a failure keeps the stale list,
// which only ever delays the player, never corrupts state.
func (c *Controller) refreshLegalLocked() {
	legal, err := c.api.LegalMoves(context.Background(), c.state.ID)
	if err != nil {
		logging.Errorf(logging.CatGame, "failed to refresh legal moves: %v", err)
		return
	}
	c.legal = legal
}

// SlotSnapshot builds a save slot for the current game, with elapsed clock
// seconds per color so a restore can reseed the timer.
func (c *Controller) SlotSnapshot(name string) (types.SaveSlot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.hasGame {
		return types.SaveSlot{}, ErrNoGame
	}
	slot := c.slotLocked()
	slot.Name = name
	return slot, nil
}

func (c *Controller) slotLocked() types.SaveSlot {
	cfg := c.config.GetConfig()
	slot := types.SaveSlot{
		Moves:       c.state.Moves,
		PlayerColor: cfg.PlayerColor,
		Orientation: cfg.PlayerColor,
		AIColor:     c.aiColor,
	}
	if c.clock != nil {
		slot.WhiteSeconds = c.clock.ElapsedSeconds(types.ColorWhite)
		slot.BlackSeconds = c.clock.ElapsedSeconds(types.ColorBlack)
	}
	return slot
}

func (c *Controller) autosaveLocked() {
	if c.saver == nil {
		return
	}
	if err := c.saver.Autosave(c.slotLocked()); err != nil {
		logging.Errorf(logging.CatSlots, "autosave failed: %v", err)
	}
}

// finishGameLocked stops the clock, archives the result and announces the
// end of the game.
func (c *Controller) finishGameLocked(cfg types.AppConfig) {
	if c.clock != nil {
		c.clock.Pause()
		c.clock.Stop()
	}

	pgnResult := pgnio.ResultFromStatus(c.state.Status, c.state.ActiveColor)
	result := playerResult(pgnResult, cfg.PlayerColor)

	if c.recorder != nil {
		pgn, err := pgnio.Export(c.state.Moves, whiteName(cfg, c.aiColor), blackName(cfg, c.aiColor), pgnResult)
		if err != nil {
			logging.Errorf(logging.CatArchive, "PGN export failed: %v", err)
		}
		rec := archive.GameRecord{
			ServerGameID: c.state.ID,
			PlayerColor:  cfg.PlayerColor,
			AIColor:      c.aiColor,
			Status:       c.state.Status,
			Result:       result,
			MoveCount:    len(c.state.Moves),
			PGN:          pgn,
		}
		if c.state.CreatedAt != "" {
			if started, err := utils.ParseTimestamp(c.state.CreatedAt); err == nil {
				rec.StartedAt = started
			}
		}
		if _, err := c.recorder.RecordGame(context.Background(), rec); err != nil {
			logging.Errorf(logging.CatArchive, "failed to archive game: %v", err)
		}
	}

	if c.saver != nil {
		c.saver.ClearAutosave()
	}

	c.events.EventsEmit(constants.EventGameOver, map[string]interface{}{
		"status": c.state.Status,
		"result": result,
	})
}

func playerResult(pgnResult, playerColor string) string {
	switch pgnResult {
	case pgnio.ResultWhiteWins:
		if playerColor == types.ColorWhite {
			return archive.ResultWin
		}
		return archive.ResultLoss
	case pgnio.ResultBlackWins:
		if playerColor == types.ColorBlack {
			return archive.ResultWin
		}
		return archive.ResultLoss
	}
	return archive.ResultDraw
}

func whiteName(cfg types.AppConfig, aiColor string) string {
	if aiColor == types.ColorWhite {
		return "AI (" + cfg.AIEngine + ")"
	}
	return cfg.PlayerName
}

func blackName(cfg types.AppConfig, aiColor string) string {
	if aiColor == types.ColorBlack {
		return "AI (" + cfg.AIEngine + ")"
	}
	return cfg.PlayerName
}

// Close stops background activity.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	if c.clock != nil {
		c.clock.Stop()
	}
}
