package entity

import (
	"fmt"
	"strings"
)

type Mode string

const (
	ModeNone       Mode = ""
	ModePVP        Mode = "pvp"
	ModeBot        Mode = "bot"
	ModeTournament Mode = "tournament"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// ParseDifficulty falls back to hard for anything it does not recognise.
func ParseDifficulty(level string) Difficulty {
	switch Difficulty(strings.ToLower(strings.TrimSpace(level))) {
	case DifficultyEasy:
		return DifficultyEasy
	case DifficultyMedium:
		return DifficultyMedium
	default:
		return DifficultyHard
	}
}

const (
	StatusIdle          = "idle"
	StatusRoundRunning  = "round_in_progress"
	StatusRoundOver     = "round_over"
	StatusMatchComplete = "match_complete"

	MinTournamentRounds = 2
)

// Outcome describes how a round or a whole match ended. An empty Winner means a draw.
type Outcome struct {
	Winner     string `json:"winner,omitempty"`
	WinnerMark string `json:"winner_mark,omitempty"`
	Draw       bool   `json:"draw"`
	Forfeit    bool   `json:"forfeit,omitempty"`
	Message    string `json:"message"`
}

// Snapshot is the read-only view of a session handed to transports and observers.
type Snapshot struct {
	ID           string      `json:"id"`
	Mode         Mode        `json:"mode"`
	Status       string      `json:"status"`
	Board        Board       `json:"board"`
	Turn         string      `json:"turn"`
	Players      [2]Identity `json:"players"`
	Difficulty   Difficulty  `json:"difficulty,omitempty"`
	Round        int         `json:"round"`
	TotalRounds  int         `json:"total_rounds,omitempty"`
	Starter      string      `json:"starter"`
	TimeLeft     int         `json:"time_left"`
	TimerActive  bool        `json:"timer_active"`
	RoundOutcome *Outcome    `json:"round_outcome,omitempty"`
	MatchOutcome *Outcome    `json:"match_outcome,omitempty"`
}

// TournamentResult picks the overall winner by strictly higher score; equal scores are a draw.
func TournamentResult(name1 string, score1 int, name2 string, score2 int) Outcome {
	if name1 == "" {
		name1 = DefaultPlayerOneName
	}
	if name2 == "" {
		name2 = DefaultPlayerTwoName
	}

	switch {
	case score1 > score2:
		return Outcome{Winner: name1, Message: fmt.Sprintf("%s wins the tournament!", name1)}
	case score2 > score1:
		return Outcome{Winner: name2, Message: fmt.Sprintf("%s wins the tournament!", name2)}
	default:
		return Outcome{Draw: true, Message: "Tournament Draw"}
	}
}

// MatchRequest selects a mode and its players. Names and rounds are optional.
type MatchRequest struct {
	Mode       Mode       `json:"mode"`
	Player1    string     `json:"player1,omitempty"`
	Player2    string     `json:"player2,omitempty"`
	Difficulty Difficulty `json:"difficulty,omitempty"`
	Rounds     int        `json:"rounds,omitempty"`
}
