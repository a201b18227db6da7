// Package timer implements the per-color game clock: a one-tick-per-second
// state machine that counts up, or counts down from a limit and fires an
// expiry callback exactly once at zero. Elapsed time is recomputed from the
// span start timestamp on every tick, so a late or missed tick never drifts
// the clock.
package timer

import (
	"go-chess-desk/constants"
	"go-chess-desk/logging"
	"go-chess-desk/types"
	"go-chess-desk/utils"
	"sync"
	"time"
)

// Timer states.
const (
	StateStopped = "stopped"
	StateRunning = "running"
	StatePaused  = "paused"
)

// Snapshot is the UI-facing view of the clock.
type Snapshot struct {
	Mode         string `json:"mode"`
	State        string `json:"state"`
	Active       string `json:"active"`
	WhiteSeconds int    `json:"white_seconds"` // elapsed (count_up) or remaining (count_down)
	BlackSeconds int    `json:"black_seconds"`
	WhiteDisplay string `json:"white_display"` // M:SS clock text
	BlackDisplay string `json:"black_display"`
}

// Timer is safe for concurrent use.
type Timer struct {
	mu sync.Mutex

	mode      string
	limit     int // seconds per color, count_down only
	state     string
	active    string
	base      map[string]int // seconds banked before the running span
	spanStart time.Time
	expired   bool

	now      func() time.Time
	onTick   func(Snapshot)
	onExpire func(color string)

	stop chan struct{}
}

// New creates a stopped timer. mode is one of the constants.Timer* modes,
// limitSeconds applies to count_down only.
func New(mode string, limitSeconds int, onTick func(Snapshot), onExpire func(color string)) *Timer {
	if mode != constants.TimerCountDown {
		mode = constants.TimerCountUp
	}
	return &Timer{
		mode:     mode,
		limit:    limitSeconds,
		state:    StateStopped,
		base:     map[string]int{types.ColorWhite: 0, types.ColorBlack: 0},
		now:      time.Now,
		onTick:   onTick,
		onExpire: onExpire,
	}
}

// SetNow replaces the clock source, used by tests.
func (t *Timer) SetNow(now func() time.Time) {
	t.mu.Lock()
	t.now = now
	t.mu.Unlock()
}

// Start begins timing the given color from zero. A running timer is reset.
func (t *Timer) Start(color string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.base[types.ColorWhite] = 0
	t.base[types.ColorBlack] = 0
	t.active = color
	t.spanStart = t.now()
	t.state = StateRunning
	t.expired = false
	logging.Debugf(logging.CatTimer, "timer started for %s (%s)", color, t.mode)
}

// SwitchTo banks the active color's span and starts timing the other side.
func (t *Timer) SwitchTo(color string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != StateRunning {
		t.active = color
		return
	}
	if color == t.active {
		return
	}
	t.base[t.active] += t.spanSecondsLocked()
	t.active = color
	t.spanStart = t.now()
}

// Pause freezes the clock, banking the running span.
func (t *Timer) Pause() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != StateRunning {
		return
	}
	t.base[t.active] += t.spanSecondsLocked()
	t.state = StatePaused
}

// Resume continues a paused clock.
func (t *Timer) Resume() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != StatePaused {
		return
	}
	t.spanStart = t.now()
	t.state = StateRunning
}

// Reset stops the clock and clears both sides.
func (t *Timer) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.base[types.ColorWhite] = 0
	t.base[types.ColorBlack] = 0
	t.state = StateStopped
	t.expired = false
}

// Restore seeds banked seconds, used when resuming from a save slot.
func (t *Timer) Restore(whiteSeconds, blackSeconds int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.base[types.ColorWhite] = whiteSeconds
	t.base[types.ColorBlack] = blackSeconds
}

// Tick recomputes the clock and fires callbacks. Call once per second; the
// math tolerates any actual interval.
func (t *Timer) Tick() {
	t.mu.Lock()
	if t.state != StateRunning {
		t.mu.Unlock()
		return
	}
	snap := t.snapshotLocked()

	var expiredColor string
	if t.mode == constants.TimerCountDown && !t.expired {
		if t.elapsedLocked(t.active) >= t.limit {
			t.expired = true
			t.base[t.active] = t.limit
			t.state = StateStopped
			expiredColor = t.active
			snap = t.snapshotLocked()
		}
	}
	onTick := t.onTick
	onExpire := t.onExpire
	t.mu.Unlock()

	if onTick != nil {
		onTick(snap)
	}
	if expiredColor != "" {
		logging.Debugf(logging.CatTimer, "time expired for %s", expiredColor)
		if onExpire != nil {
			onExpire(expiredColor)
		}
	}
}

// Run starts a background tick loop; Stop ends it. The loop interval is one
// second, matching the original clients' setInterval cadence.
func (t *Timer) Run() {
	t.mu.Lock()
	if t.stop != nil {
		t.mu.Unlock()
		return
	}
	stop := make(chan struct{})
	t.stop = stop
	t.mu.Unlock()

	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				t.Tick()
			case <-stop:
				return
			}
		}
	}()
}

// Stop ends the background tick loop started by Run.
func (t *Timer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stop != nil {
		close(t.stop)
		t.stop = nil
	}
}

// Snapshot returns the current clock view.
func (t *Timer) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked()
}

// ElapsedSeconds returns raw elapsed seconds for a color, independent of mode.
func (t *Timer) ElapsedSeconds(color string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.elapsedLocked(color)
}

func (t *Timer) spanSecondsLocked() int {
	return int(t.now().Sub(t.spanStart).Seconds())
}

func (t *Timer) elapsedLocked(color string) int {
	elapsed := t.base[color]
	if t.state == StateRunning && color == t.active {
		elapsed += t.spanSecondsLocked()
	}
	return elapsed
}

func (t *Timer) displayLocked(color string) int {
	elapsed := t.elapsedLocked(color)
	if t.mode == constants.TimerCountDown {
		remaining := t.limit - elapsed
		if remaining < 0 {
			remaining = 0
		}
		return remaining
	}
	return elapsed
}

func (t *Timer) snapshotLocked() Snapshot {
	white := t.displayLocked(types.ColorWhite)
	black := t.displayLocked(types.ColorBlack)
	return Snapshot{
		Mode:         t.mode,
		State:        t.state,
		Active:       t.active,
		WhiteSeconds: white,
		BlackSeconds: black,
		WhiteDisplay: utils.FormatClock(white),
		BlackDisplay: utils.FormatClock(black),
	}
}
