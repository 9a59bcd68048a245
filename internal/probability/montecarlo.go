package probability

import (
	"context"
	"math"
	"math/rand/v2"
	"sync"

	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
)

const (
	DefaultSimulations = 800
	DefaultEpsilon     = 0.18

	ctxCheckEvery = 64
)

// MonteCarlo estimates the split from epsilon-greedy playouts: a near-optimal policy
// that plays a random move with probability Epsilon. Draws count half for each side.
type MonteCarlo struct {
	Simulations int
	Epsilon     float64

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewMonteCarlo(simulations int, epsilon float64, rnd *rand.Rand) *MonteCarlo {
	if simulations <= 0 {
		simulations = DefaultSimulations
	}
	if epsilon < 0 || epsilon > 1 {
		epsilon = DefaultEpsilon
	}
	if rnd == nil {
		rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())) //nolint: gosec // it's ok
	}

	return &MonteCarlo{
		Simulations: simulations,
		Epsilon:     epsilon,
		rnd:         rnd,
	}
}

func (that *MonteCarlo) Probability(ctx context.Context, board entity.Board) (Split, error) {
	if entity.IsEmpty(board) {
		return Even, nil
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	startMark := entity.MarkToMove(board)
	var winsX, winsO, draws int

	for sim := 0; sim < that.Simulations; sim++ {
		if sim%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return Split{}, err
			}
		}

		switch that.playout(board, startMark) {
		case entity.PlayerX:
			winsX++
		case entity.PlayerO:
			winsO++
		default:
			draws++
		}
	}

	scoreX := float64(winsX) + float64(draws)*0.5
	scoreO := float64(winsO) + float64(draws)*0.5
	total := scoreX + scoreO
	if total == 0 {
		return Even, nil
	}

	x := int(math.Round(scoreX / total * 100))

	return Split{X: x, O: 100 - x}, nil
}

func (that *MonteCarlo) playout(board entity.Board, turn string) string {
	for {
		if result := entity.DetermineResult(board); result != "" {
			return result
		}

		var move int
		if that.rnd.Float64() < 1-that.Epsilon {
			move = that.policyMove(board, turn)
		} else {
			move = that.randomCell(board)
		}

		board[move] = turn
		turn = entity.Opponent(turn)
	}
}

// policyMove: win, block, center, first free corner, then any free cell.
func (that *MonteCarlo) policyMove(board entity.Board, mark string) int {
	if cell, ok := completingCell(board, mark); ok {
		return cell
	}
	if cell, ok := completingCell(board, entity.Opponent(mark)); ok {
		return cell
	}
	if board[4] == entity.EmptyCell {
		return 4
	}
	for _, idx := range corners {
		if board[idx] == entity.EmptyCell {
			return idx
		}
	}

	return that.randomCell(board)
}

func (that *MonteCarlo) randomCell(board entity.Board) int {
	empties := entity.EmptyCells(board)
	return empties[that.rnd.IntN(len(empties))]
}

func completingCell(board entity.Board, mark string) (int, bool) {
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
