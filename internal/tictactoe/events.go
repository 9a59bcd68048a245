package tictactoe

import "github.com/rocketscienceinc/tictactoe-engine/internal/entity"

const (
	EventRoundStarted   = "round_started"
	EventMove           = "move"
	EventBotMove        = "bot_move"
	EventRoundEnded     = "round_ended"
	EventTimeout        = "timeout"
	EventMatchCompleted = "match_completed"
	EventMenu           = "menu"
)

// Event is emitted after every state change of a Session. Cell is -1 unless a mark was placed.
type Event struct {
	Type     string          `json:"type"`
	Cell     int             `json:"cell"`
	Snapshot entity.Snapshot `json:"snapshot"`
}

// Observer receives events after the session lock has been released. Events arrive in the order the
// session produced them, across operations and timer expiries alike. Observers must not block for long
// and must not call session commands synchronously; hand the event to another goroutine instead.
type Observer func(Event)

type subscription struct {
	id       int
	observer Observer
}
