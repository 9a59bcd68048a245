package websocket

import (
	"encoding/json"

	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
	"github.com/rocketscienceinc/tictactoe-engine/internal/probability"
)

const (
	actionSessionState = "session:state"
	actionSessionEvent = "session:event"
	actionSessionStart = "session:start"
	actionSessionMove  = "session:move"
	actionSessionNext  = "session:next"
	actionSessionMenu  = "session:menu"
)

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type RequestPayload struct {
	Cell  *int                 `json:"cell,omitempty"`
	Match *entity.MatchRequest `json:"match,omitempty"`
}

type ResponsePayload struct {
	Event       string             `json:"event,omitempty"`
	Cell        *int               `json:"cell,omitempty"`
	Snapshot    *entity.Snapshot   `json:"snapshot,omitempty"`
	Probability *probability.Split `json:"probability,omitempty"`
	Error       string             `json:"error,omitempty"`
}
