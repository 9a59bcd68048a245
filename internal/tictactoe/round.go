package tictactoe

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
)

const (
	StateAwaitingMove = "awaiting_move"
	StateEvaluating   = "evaluating"
	StateRoundOver    = "round_over"
)

// Round is the turn state machine of a single board.
type Round struct {
	Board     entity.Board
	Turn      string
	Starter   string
	State     string
	Winner    string
	Forfeited bool
}

func NewRound(starter string) *Round {
	return &Round{
		Turn:    starter,
		Starter: starter,
		State:   StateAwaitingMove,
	}
}

// MakeTurn applies mark at cell. A rejected move leaves the round untouched.
func (that *Round) MakeTurn(mark string, cell int) error {
	if that.IsOver() {
		return apperror.ErrRoundOver
	}

	if err := that.validateMove(mark, cell); err != nil {
		return fmt.Errorf("invalid turn: %w", err)
	}

	that.Board[cell] = mark
	that.State = StateEvaluating
	that.updateState(mark)

	return nil
}

// Forfeit ends the round in favour of the side not on move.
func (that *Round) Forfeit() (string, error) {
	if that.IsOver() {
		return "", apperror.ErrRoundOver
	}

	winner := entity.Opponent(that.Turn)
	that.finish(winner)
	that.Forfeited = true

	return winner, nil
}

func (that *Round) IsOver() bool {
	return that.State == StateRoundOver
}

func (that *Round) IsDraw() bool {
	return that.IsOver() && that.Winner == entity.PlayerTie
}

func (that *Round) validateMove(mark string, cell int) error {
	if !entity.IsValidCell(cell) {
		return fmt.Errorf("%w: cell %d", apperror.ErrInvalidCell, cell)
	}

	if that.Turn != mark {
		return apperror.ErrNotYourTurn
	}

	if that.Board[cell] != entity.EmptyCell {
		return apperror.ErrCellOccupied
	}

	return nil
}

func (that *Round) updateState(mover string) {
	switch {
	case entity.CheckLine(that.Board, mover):
		that.finish(mover)
	case entity.IsFull(that.Board):
		that.finish(entity.PlayerTie)
	default:
		that.Turn = entity.Opponent(mover)
		that.State = StateAwaitingMove
	}
}

func (that *Round) finish(winner string) {
	that.Winner = winner
	that.State = StateRoundOver
	that.Turn = entity.EmptyCell
}
