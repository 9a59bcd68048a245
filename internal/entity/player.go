package entity

const (
	DefaultPlayerOneName = "Player 1"
	DefaultPlayerTwoName = "Player 2"
	DefaultHumanName     = "You"
	BotName              = "AI"
)

// Identity is one side of a session: a display name and its accumulated score.
type Identity struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
	Mark  string `json:"mark,omitempty"`
}
