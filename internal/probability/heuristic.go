package probability

import (
	"math"

	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
)

const (
	maxDepth = 8
	winScore = 100

	twoInLineScore = 50
	oneInLineScore = 8
	centerScore    = 6
	cornerScore    = 3
)

var corners = [4]int{0, 2, 6, 8}

// Split is a pair of win percentages that sums to 100.
type Split struct {
	X int `json:"x"`
	O int `json:"o"`
}

var Even = Split{X: 50, O: 50}

func (that Split) Valid() bool {
	return that.X >= 0 && that.O >= 0 && that.X+that.O == 100
}

// Heuristic estimates the split with a depth-bounded minimax scored from X's side.
func Heuristic(board entity.Board) Split {
	if entity.IsEmpty(board) {
		return Even
	}

	return FromScore(search(&board, entity.MarkToMove(board), 0))
}

// FromScore maps a signed score in roughly -100..100 onto a split, 0 being even.
func FromScore(score int) Split {
	x := int(math.Round(50 + float64(score)/2))
	x = max(0, min(100, x))

	return Split{X: x, O: 100 - x}
}

func search(board *entity.Board, toMove string, depth int) int {
	if entity.CheckLine(*board, entity.PlayerX) {
		return winScore - depth
	}
	if entity.CheckLine(*board, entity.PlayerO) {
		return -(winScore - depth)
	}
	if entity.IsFull(*board) {
		return 0
	}
	if depth >= maxDepth {
		return staticScore(*board)
	}

	maximizing := toMove == entity.PlayerX
	best := math.MaxInt
	if maximizing {
		best = math.MinInt
	}

	for i := range board {
		if board[i] != entity.EmptyCell {
			continue
		}

		board[i] = toMove
		score := search(board, entity.Opponent(toMove), depth+1)
		board[i] = entity.EmptyCell

		if maximizing {
			best = max(best, score)
		} else {
			best = min(best, score)
		}
	}

	return best
}

// staticScore rewards open lines, the center and the corners, positive for X.
func staticScore(board entity.Board) int {
	return positionalScore(board, entity.PlayerX) - positionalScore(board, entity.PlayerO)
}

func positionalScore(board entity.Board, mark string) int {
	opponent := entity.Opponent(mark)
	score := 0

	for _, combo := range entity.WinCombos {
		own, blocked := 0, false
		for _, idx := range combo {
			switch board[idx] {
			case mark:
				own++
			case opponent:
				blocked = true
			}
		}

		if blocked {
			continue
		}

		switch own {
		case 2:
			score += twoInLineScore
		case 1:
			score += oneInLineScore
		}
	}

	if board[4] == mark {
		score += centerScore
	}

	for _, idx := range corners {
		if board[idx] == mark {
			score += cornerScore
		}
	}

	return score
}
