package apperror

import "errors"

var (
	ErrNoActiveGame    = errors.New("no active game")
	ErrNotYourTurn     = errors.New("it's not your turn")
	ErrCellOccupied    = errors.New("cell is already occupied")
	ErrInvalidCell     = errors.New("invalid cell index")
	ErrRoundOver       = errors.New("round is already over")
	ErrRoundInProgress = errors.New("round is still in progress")
	ErrMatchComplete   = errors.New("match is complete")
	ErrSessionNotFound = errors.New("session not found")
	ErrEngineInvariant = errors.New("engine invariant violated")
)

var ErrUnknownMode = errors.New("unknown game mode")
