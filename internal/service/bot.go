package service

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"sync"

	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
)

var ErrNoAvailableMoves = errors.New("no available moves")

const (
	botWinScore  = 10
	botLossScore = -10
)

type BotService interface {
	NextMove(board entity.Board, botMark string, difficulty entity.Difficulty) (int, error)
}

type botService struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewBotService builds the automated opponent. A nil rnd seeds a fresh generator.
func NewBotService(rnd *rand.Rand) BotService {
	if rnd == nil {
		rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())) //nolint: gosec // it's ok
	}

	return &botService{rnd: rnd}
}

// NextMove picks a cell for botMark. The board is received by value, so the caller's board is never touched.
func (that *botService) NextMove(board entity.Board, botMark string, difficulty entity.Difficulty) (int, error) {
	if entity.IsTerminal(board) {
		return -1, ErrNoAvailableMoves
	}

	var (
		cell  int
		found bool
	)

	switch difficulty {
	case entity.DifficultyEasy:
		cell, found = that.randomMove(board)
	case entity.DifficultyMedium:
		cell, found = that.mediumMove(board, botMark)
	default:
		cell, found = bestMove(board, botMark)
	}

	if !found {
		return -1, fmt.Errorf("%w: difficulty %s", ErrNoAvailableMoves, difficulty)
	}

	return cell, nil
}

func (that *botService) randomMove(board entity.Board) (int, bool) {
	availableCells := entity.EmptyCells(board)
	if len(availableCells) == 0 {
		return -1, false
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	return availableCells[that.rnd.IntN(len(availableCells))], true
}

func (that *botService) coinFlip() bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.rnd.IntN(2) == 0
}

// mediumMove wins if it can, blocks if it must, otherwise flips a coin between the best and a random move.
func (that *botService) mediumMove(board entity.Board, botMark string) (int, bool) {
	if cell, ok := findWinningMove(board, botMark); ok {
		return cell, true
	}

	if cell, ok := findWinningMove(board, entity.Opponent(botMark)); ok {
		return cell, true
	}

	if that.coinFlip() {
		return bestMove(board, botMark)
	}

	return that.randomMove(board)
}

// findWinningMove returns the lowest cell that completes a line for mark.
func findWinningMove(board entity.Board, mark string) (int, bool) {
	for _, cell := range entity.EmptyCells(board) {
		board[cell] = mark
		won := entity.CheckLine(board, mark)
		board[cell] = entity.EmptyCell

		if won {
			return cell, true
		}
	}

	return -1, false
}

// bestMove takes an immediate win when there is one, otherwise the first cell with the highest minimax value.
func bestMove(board entity.Board, botMark string) (int, bool) {
	if cell, ok := findWinningMove(board, botMark); ok {
		return cell, true
	}

	bestScore := math.MinInt
	move := -1

	for _, cell := range entity.EmptyCells(board) {
		board[cell] = botMark
		score := minimax(&board, entity.Opponent(botMark), botMark)
		board[cell] = entity.EmptyCell

		if score > bestScore {
			bestScore = score
			move = cell
		}
	}

	return move, move != -1
}

func minimax(board *entity.Board, toMove, botMark string) int {
	if entity.CheckLine(*board, botMark) {
		return botWinScore
	}
	if entity.CheckLine(*board, entity.Opponent(botMark)) {
		return botLossScore
	}
	if entity.IsFull(*board) {
		return 0
	}

	maximizing := toMove == botMark
	best := math.MaxInt
	if maximizing {
		best = math.MinInt
	}

	for i := range board {
		if board[i] != entity.EmptyCell {
			continue
		}

		board[i] = toMove
		score := minimax(board, entity.Opponent(toMove), botMark)
		board[i] = entity.EmptyCell

		if maximizing {
			best = max(best, score)
		} else {
			best = min(best, score)
		}
	}

	return best
}
