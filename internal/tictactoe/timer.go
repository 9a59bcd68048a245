package tictactoe

import (
	"math"
	"time"

	"github.com/benbjohnson/clock"
)

const DefaultTurnTimeout = 15 * time.Second

// TurnTimer is a single replaceable countdown. It is not safe for concurrent use;
// the owning Session serialises access.
type TurnTimer struct {
	clock    clock.Clock
	duration time.Duration

	timer      *clock.Timer
	generation uint64
	deadline   time.Time
	active     bool
}

func NewTurnTimer(clk clock.Clock, duration time.Duration) *TurnTimer {
	if duration <= 0 {
		duration = DefaultTurnTimeout
	}

	return &TurnTimer{clock: clk, duration: duration}
}

// Start cancels any running countdown and arms a new one. onExpire receives the
// generation it was armed with so stale expiries can be told apart.
func (that *TurnTimer) Start(onExpire func(generation uint64)) uint64 {
	that.Stop()

	that.active = true
	generation := that.generation
	that.deadline = that.clock.Now().Add(that.duration)
	that.timer = that.clock.AfterFunc(that.duration, func() {
		onExpire(generation)
	})

	return generation
}

func (that *TurnTimer) Stop() {
	if that.timer != nil {
		that.timer.Stop()
		that.timer = nil
	}

	that.active = false
	that.generation++
}

// IsCurrent reports whether generation belongs to the countdown that is still armed.
func (that *TurnTimer) IsCurrent(generation uint64) bool {
	return that.active && that.generation == generation
}

func (that *TurnTimer) Active() bool {
	return that.active
}

// Remaining returns the whole seconds left, rounded up.
func (that *TurnTimer) Remaining() int {
	if !that.active {
		return 0
	}

	left := that.deadline.Sub(that.clock.Now())
	if left <= 0 {
		return 0
	}

	return int(math.Ceil(left.Seconds()))
}

func (that *TurnTimer) Duration() time.Duration {
	return that.duration
}
